package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kirillkom/document-qa/internal/bootstrap"
	"github.com/kirillkom/document-qa/internal/infrastructure/chunking"
)

func newChunkCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "chunk <file>",
		Short: "Print the chunks a document is split into",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.settings(cmd)
			if err != nil {
				return err
			}
			storage, doc, err := openDocument(args[0])
			if err != nil {
				return err
			}

			text, err := bootstrap.NewExtractor(storage, opts.logger(cmd, cfg)).Extract(cmd.Context(), doc)
			if err != nil {
				return err
			}

			splitter := chunking.NewSplitter(cfg.Chunking)
			chunks := splitter.Split(text)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d chunks (size %d, overlap %d words)\n", len(chunks), cfg.Chunking.ChunkSize, splitter.OverlapWordCount())
			for i, chunk := range chunks {
				fmt.Fprintf(out, "\n[%d] %d chars\n%s\n", i, len([]rune(chunk)), strings.TrimSpace(chunk))
			}
			return nil
		},
	}
}

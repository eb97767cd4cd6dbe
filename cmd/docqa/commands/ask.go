package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newAskCmd(opts *options) *cobra.Command {
	var showSources bool

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a question about the document",
		Example: `  docqa ask --document handbook.pdf "How many vacation days do I get?"
  docqa ask "Does this require an internet connection?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.TrimSpace(strings.Join(args, " "))
			if question == "" {
				return fmt.Errorf("question is required")
			}

			pipeline, err := opts.loadPipeline(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			answer, err := pipeline.Knowledge.Answer(cmd.Context(), question)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, answer.Text)
			fmt.Fprintf(out, "\nstrategy: %s", answer.Strategy)
			if answer.RetrievalMode != "" {
				fmt.Fprintf(out, "  retrieval: %s", answer.RetrievalMode)
			}
			if answer.FallbackReason != "" {
				fmt.Fprintf(out, "  fallback: %s", answer.FallbackReason)
			}
			fmt.Fprintf(out, "  backend: %s\n", pipeline.Knowledge.Status().Backend)

			if showSources {
				for _, source := range answer.Sources {
					fmt.Fprintf(out, "\n[chunk %d, score %.3f]\n%s\n", source.Index, source.Score, source.Text)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showSources, "sources", false, "print the retrieved chunks")
	return cmd
}

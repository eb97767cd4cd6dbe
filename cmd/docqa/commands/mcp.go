package commands

import (
	"fmt"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	mcpadapter "github.com/kirillkom/document-qa/internal/adapters/mcp"
)

func newMCPCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the document over MCP (stdio)",
		Long: `Serve the loaded document as a Model Context Protocol server on stdio.

LLM agents can call the ask_document tool to get grounded answers and the
session_status tool to see which document and compute backend are in use.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pipeline, err := opts.loadPipeline(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			if err := mcpserver.ServeStdio(mcpadapter.NewServer(pipeline.Knowledge, version)); err != nil {
				return fmt.Errorf("mcp server: %w", err)
			}
			return nil
		},
	}
}

// Package mcp exposes the answering session as Model Context Protocol tools.
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/kirillkom/document-qa/internal/core/ports"
)

const (
	ToolAskDocument   = "ask_document"
	ToolSessionStatus = "session_status"
)

func NewServer(answers ports.AnswerService, version string) *mcpserver.MCPServer {
	server := mcpserver.NewMCPServer("document-qa", version)
	RegisterTools(server, answers)
	return server
}

// RegisterTools registers ask_document and session_status.
func RegisterTools(server *mcpserver.MCPServer, answers ports.AnswerService) *Handlers {
	handlers := &Handlers{answers: answers}

	server.AddTool(mcp.Tool{
		Name:        ToolAskDocument,
		Description: "Answer a question using only the content of the loaded document. Returns the answer with the strategy that produced it and the source chunks.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"question": map[string]interface{}{
					"type":        "string",
					"description": "Question about the document",
				},
			},
			Required: []string{"question"},
		},
	}, handlers.AskDocument)

	server.AddTool(mcp.Tool{
		Name:        ToolSessionStatus,
		Description: "Report which document is loaded, the session state and the compute backend in use.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, handlers.SessionStatus)

	return handlers
}

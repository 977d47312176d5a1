// Package mcp implements the Model Context Protocol server for Kansa.
//
// The MCP server exposes the audit pipeline and the report archive through
// MCP tools, resources and prompts, so MCP-compatible assistants can audit a
// nonprofit's web presence and read past reports.
package mcp

import (
	"context"
	"log/slog"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/ashita-ai/kansa/internal/model"
	"github.com/ashita-ai/kansa/internal/storage"
)

// Auditor runs one audit and returns the completed report.
type Auditor interface {
	Audit(ctx context.Context, url string, kind model.SourceKind) (model.Report, error)
}

// Server wraps the MCP server with Kansa's audit and archive.
type Server struct {
	mcpServer *mcpserver.MCPServer
	auditor   Auditor
	store     storage.Store // nil when archiving is disabled
	logger    *slog.Logger
}

// New creates and configures a new MCP server with all resources, tools and prompts.
// store may be nil; the archive tools and resources then report that archiving is off.
func New(auditor Auditor, store storage.Store, logger *slog.Logger, version string) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		auditor: auditor,
		store:   store,
		logger:  logger,
	}

	s.mcpServer = mcpserver.NewMCPServer(
		"kansa",
		version,
		mcpserver.WithResourceCapabilities(true, true),
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithPromptCapabilities(true),
	)

	s.registerResources()
	s.registerTools()
	s.registerPrompts()

	return s
}

// MCPServer returns the underlying mcp-go server for transport setup.
func (s *Server) MCPServer() *mcpserver.MCPServer {
	return s.mcpServer
}

// ServeStdio serves MCP over stdin/stdout until the client disconnects.
func (s *Server) ServeStdio() error {
	return mcpserver.ServeStdio(s.mcpServer)
}

func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{
			mcplib.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}

func textResult(text string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{
			mcplib.TextContent{Type: "text", Text: text},
		},
	}
}

// Package mcp exposes recorded netdiag sessions over the Model Context
// Protocol so diagnostic assistants can inspect past runs without
// shelling out to the CLI.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/Wes1101/T4-1000-netdiag/internal/session"
)

// Server implements the MCP server over stdio.
type Server struct {
	mcpServer *server.MCPServer
	store     session.Store
}

// NewServer creates an MCP server backed by the given session store.
func NewServer(store session.Store, version string) *Server {
	mcpServer := server.NewMCPServer(
		"netdiag",
		version,
		server.WithLogging(),
	)

	s := &Server{
		mcpServer: mcpServer,
		store:     store,
	}
	s.registerTools()

	return s
}

// registerTools registers the session inspection tools
func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("session_list",
		mcp.WithDescription("List recorded telemetry sessions, newest first"),
	), s.handleSessionList)

	s.mcpServer.AddTool(mcp.NewTool("session_show",
		mcp.WithDescription("Show one recorded session: status, output location, agent log, load exit code"),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Session ID as reported by session_list or 'netdiag run'"),
		),
	), s.handleSessionShow)
}

// handleSessionList handles the session_list tool
func (s *Server) handleSessionList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessions, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	return jsonResult(sessions)
}

// handleSessionShow handles the session_show tool
func (s *Server) handleSessionShow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	id, ok := args["session_id"].(string)
	if !ok || id == "" {
		return nil, fmt.Errorf("invalid or missing session_id argument")
	}

	sess, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	return jsonResult(sess)
}

// jsonResult wraps a value as a JSON text tool result.
func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: string(data),
			},
		},
	}, nil
}

// Serve runs the server on stdio until the client disconnects.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcpServer)
}

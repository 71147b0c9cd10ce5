package mcp

import (
	"context"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Wes1101/T4-1000-netdiag/internal/session"
)

func seededServer(t *testing.T) *Server {
	t.Helper()

	store := session.NewFileStore(t.TempDir())
	require.NoError(t, store.Save(context.Background(), &session.Session{
		ID:           "11111111-2222-3333-4444-555555555555",
		Target:       "10.0.0.5",
		Iface:        "eth0",
		Status:       session.StatusCompleted,
		StartedAt:    time.Now(),
		OutputPath:   "/tmp/events.ndjson",
		OutputExists: true,
	}))

	return NewServer(store, "test")
}

func textContent(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()

	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestHandleSessionList(t *testing.T) {
	s := seededServer(t)

	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: "session_list"},
	}
	result, err := s.handleSessionList(context.Background(), req)
	require.NoError(t, err)

	out := textContent(t, result)
	assert.Contains(t, out, "10.0.0.5")
	assert.Contains(t, out, "completed")
}

func TestHandleSessionShow(t *testing.T) {
	s := seededServer(t)

	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name: "session_show",
			Arguments: map[string]interface{}{
				"session_id": "11111111-2222-3333-4444-555555555555",
			},
		},
	}
	result, err := s.handleSessionShow(context.Background(), req)
	require.NoError(t, err)

	out := textContent(t, result)
	assert.Contains(t, out, `"output_path": "/tmp/events.ndjson"`)
}

func TestHandleSessionShow_MissingArgument(t *testing.T) {
	s := seededServer(t)

	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: "session_show"},
	}
	_, err := s.handleSessionShow(context.Background(), req)
	assert.Error(t, err)
}

func TestHandleSessionShow_UnknownSession(t *testing.T) {
	s := seededServer(t)

	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name: "session_show",
			Arguments: map[string]interface{}{
				"session_id": "does-not-exist",
			},
		},
	}
	_, err := s.handleSessionShow(context.Background(), req)
	assert.Error(t, err)
}

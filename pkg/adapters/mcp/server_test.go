package mcp

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillflow/quill"
	"github.com/quillflow/quill/pkg/domain"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	engine, err := quill.New()
	require.NoError(t, err)
	return NewServer(engine)
}

func TestStartWorkflowTool(t *testing.T) {
	s := newTestServer(t)

	view, err := s.handleStart(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"user_id":  "user-1",
		"document": "Agreement between Acme Corp and Example LLC.",
		"filename": "contract.txt",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, view.ID)
	assert.True(t, view.AwaitingInput)
	assert.Equal(t, domain.InputApproval, view.InputKind)
}

func TestContinueWorkflowTool(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	view, err := s.handleStart(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"user_id":  "user-1",
		"document": "Agreement body.",
	})
	require.NoError(t, err)

	view, err = s.handleContinue(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"session_id": view.ID,
		"approved":   true,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.InputMeetingDate, view.InputKind)

	view, err = s.handleContinue(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"session_id":   view.ID,
		"meeting_date": "2026-04-01",
	})
	require.NoError(t, err)
	assert.True(t, view.WorkflowComplete)
	assert.Equal(t, domain.StatusSuccess, view.FinalStatus)
}

func TestGetWorkflowStateTool(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, err := s.handleState(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"session_id": "ghost",
	})
	assert.Error(t, err)

	started, err := s.handleStart(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"user_id":  "user-1",
		"document": "Agreement body.",
	})
	require.NoError(t, err)

	state, err := s.handleState(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"session_id": started.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, started.ID, state.ID)
	assert.True(t, state.AwaitingInput)
}

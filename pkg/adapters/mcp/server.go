// Package mcp exposes the workflow engine as a Model Context Protocol server,
// so agent frontends can start, resume, and inspect approval sessions as tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/quillflow/quill"
	"github.com/quillflow/quill/pkg/domain"
)

// Engine defines the workflow operations exposed over MCP.
type Engine interface {
	Start(ctx context.Context, req quill.StartRequest) (*domain.View, error)
	Resume(ctx context.Context, sessionID string, input *domain.HumanInput) (*domain.View, error)
	State(ctx context.Context, sessionID string) (*domain.View, error)
	Sessions(ctx context.Context) ([]string, error)
}

// Server wraps the workflow Engine and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine) *Server {
	s := &Server{
		engine:    engine,
		mcpServer: server.NewMCPServer("quill-mcp", quill.Version),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)

	go func() {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: start_workflow
	startTool := mcp.NewTool("start_workflow",
		mcp.WithDescription("Start a document approval workflow. Runs analysis and pauses for the approval decision."),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("Owner of the session")),
		mcp.WithString("document", mcp.Required(), mcp.Description("Extracted document text to analyze")),
		mcp.WithString("filename", mcp.Description("Original filename (optional)")),
		mcp.WithString("params", mcp.Description("JSON object with analysis parameters (optional)")),
		mcp.WithOutputSchema[domain.View](),
	)
	s.mcpServer.AddTool(startTool, mcp.NewStructuredToolHandler(s.handleStart))

	// TOOL: continue_workflow
	continueTool := mcp.NewTool("continue_workflow",
		mcp.WithDescription("Supply human input to a paused workflow: an approval decision or a meeting date."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Paused session ID")),
		mcp.WithBoolean("approved", mcp.Description("Approval decision (when the session awaits approval)")),
		mcp.WithString("meeting_date", mcp.Description("Kickoff meeting date, YYYY-MM-DD (when the session awaits a date)")),
		mcp.WithOutputSchema[domain.View](),
	)
	s.mcpServer.AddTool(continueTool, mcp.NewStructuredToolHandler(s.handleContinue))

	// TOOL: get_workflow_state
	stateTool := mcp.NewTool("get_workflow_state",
		mcp.WithDescription("Get the latest checkpoint of a workflow session without advancing it."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithOutputSchema[domain.View](),
	)
	s.mcpServer.AddTool(stateTool, mcp.NewStructuredToolHandler(s.handleState))

	// TOOL: list_sessions
	s.mcpServer.AddTool(mcp.NewTool("list_sessions",
		mcp.WithDescription("List the IDs of all known workflow sessions."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ids, err := s.engine.Sessions(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
		}
		jsonBytes, _ := json.Marshal(ids)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})
}

// Handler methods for structured tools

func (s *Server) handleStart(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (domain.View, error) {
	userID, _ := args["user_id"].(string)
	document, _ := args["document"].(string)
	filename, _ := args["filename"].(string)

	var params *domain.AnalysisParams
	if paramStr, ok := args["params"].(string); ok && paramStr != "" {
		params = &domain.AnalysisParams{}
		if err := json.Unmarshal([]byte(paramStr), params); err != nil {
			return domain.View{}, fmt.Errorf("malformed params: %w", err)
		}
	}

	view, err := s.engine.Start(ctx, quill.StartRequest{
		UserID:   userID,
		Filename: filename,
		Text:     document,
		Params:   params,
	})
	if err != nil {
		return domain.View{}, fmt.Errorf("start failed: %w", err)
	}
	return *view, nil
}

func (s *Server) handleContinue(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (domain.View, error) {
	sessionID, _ := args["session_id"].(string)

	input := &domain.HumanInput{}
	if approved, ok := args["approved"].(bool); ok {
		input.Approved = &approved
	}
	if date, ok := args["meeting_date"].(string); ok {
		input.MeetingDate = date
	}

	view, err := s.engine.Resume(ctx, sessionID, input)
	if err != nil {
		return domain.View{}, fmt.Errorf("continue failed: %w", err)
	}
	return *view, nil
}

func (s *Server) handleState(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (domain.View, error) {
	sessionID, _ := args["session_id"].(string)

	view, err := s.engine.State(ctx, sessionID)
	if err != nil {
		return domain.View{}, fmt.Errorf("state lookup failed: %w", err)
	}
	return *view, nil
}

func (s *Server) registerResources() {
	// EXPOSE: quill://sessions
	s.mcpServer.AddResource(mcp.NewResource("quill://sessions", "Known Workflow Sessions",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		ids, err := s.engine.Sessions(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list sessions: %w", err)
		}
		jsonBytes, _ := json.Marshal(ids)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "quill://sessions",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}

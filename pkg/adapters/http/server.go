// Package http exposes the workflow engine over a JSON REST API.
//
// Every workflow route requires a bearer token scoped to the operation; the
// health and metrics endpoints are unauthenticated.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/quillflow/quill"
	"github.com/quillflow/quill/pkg/auth"
	"github.com/quillflow/quill/pkg/domain"
	"github.com/quillflow/quill/pkg/extract"
)

// DefaultMaxUploadBytes bounds multipart uploads on /workflow/start.
const DefaultMaxUploadBytes int64 = 16 << 20

// Engine defines the workflow operations the server exposes.
type Engine interface {
	Start(ctx context.Context, req quill.StartRequest) (*domain.View, error)
	Resume(ctx context.Context, sessionID string, input *domain.HumanInput) (*domain.View, error)
	State(ctx context.Context, sessionID string) (*domain.View, error)
	Sessions(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, sessionID string) error
}

// Server routes workflow requests to the engine.
type Server struct {
	engine    Engine
	gate      *auth.Gate
	logger    *slog.Logger
	validate  *validator.Validate
	metrics   http.Handler
	maxUpload int64
}

// ServerOption configures the HTTP server.
type ServerOption func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) { s.logger = logger }
}

// WithMetricsHandler mounts a handler at GET /metrics.
func WithMetricsHandler(h http.Handler) ServerOption {
	return func(s *Server) { s.metrics = h }
}

// WithMaxUploadBytes bounds the multipart upload size.
func WithMaxUploadBytes(n int64) ServerOption {
	return func(s *Server) { s.maxUpload = n }
}

// NewHandler creates the HTTP handler for the engine.
func NewHandler(engine Engine, gate *auth.Gate, opts ...ServerOption) http.Handler {
	s := &Server{
		engine:    engine,
		gate:      gate,
		logger:    slog.Default(),
		validate:  validator.New(),
		maxUpload: DefaultMaxUploadBytes,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/healthz", s.health)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/workflow", func(r chi.Router) {
		r.Post("/start", s.authorized(auth.PermUpload, s.start))
		r.Post("/continue", s.authorized(auth.PermContinue, s.resume))
		r.Get("/state/{sessionID}", s.authorized(auth.PermView, s.state))
		r.Get("/sessions", s.authorized(auth.PermView, s.sessions))
		r.Delete("/state/{sessionID}", s.authorized(auth.PermView, s.delete))
	})

	return r
}

// identityHandler is a request handler that already passed the permission gate.
type identityHandler func(w http.ResponseWriter, r *http.Request, id *auth.Identity)

func (s *Server) authorized(permission string, next identityHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := s.gate.Verify(bearerToken(r), permission)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		next(w, r, id)
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return token
	}
	return ""
}

// start handles POST /workflow/start: a multipart upload with optional
// analysis parameters under the "params" form field.
func (s *Server) start(w http.ResponseWriter, r *http.Request, id *auth.Identity) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		s.respondStatus(w, http.StatusRequestEntityTooLarge, "upload exceeds size limit")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondStatus(w, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.respondStatus(w, http.StatusBadRequest, "unreadable upload")
		return
	}

	contentType := extract.DetectContentType(header.Header.Get("Content-Type"), data)

	pageCount := 0
	if contentType == "application/pdf" {
		count, err := extract.PDFPageCount(data)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		pageCount = count
	}

	var params *domain.AnalysisParams
	if raw := r.FormValue("params"); raw != "" {
		params = &domain.AnalysisParams{}
		if err := json.Unmarshal([]byte(raw), params); err != nil {
			s.respondStatus(w, http.StatusBadRequest, "malformed analysis params")
			return
		}
	}

	view, err := s.engine.Start(r.Context(), quill.StartRequest{
		SessionID:   r.FormValue("session_id"),
		UserID:      id.UserID,
		Filename:    header.Filename,
		ContentType: contentType,
		PageCount:   pageCount,
		Document:    data,
		Params:      params,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusCreated, view)
}

type continueRequest struct {
	SessionID string         `json:"session_id" validate:"required"`
	Input     map[string]any `json:"input" validate:"required"`
}

// resume handles POST /workflow/continue.
func (s *Server) resume(w http.ResponseWriter, r *http.Request, id *auth.Identity) {
	var req continueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondStatus(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.respondStatus(w, http.StatusBadRequest, "session_id and input are required")
		return
	}

	input, err := domain.DecodeHumanInput(req.Input)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if err := s.authorizeOwner(r.Context(), id, req.SessionID); err != nil {
		s.respondError(w, r, err)
		return
	}

	view, err := s.engine.Resume(r.Context(), req.SessionID, input)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusOK, view)
}

// state handles GET /workflow/state/{sessionID}.
func (s *Server) state(w http.ResponseWriter, r *http.Request, id *auth.Identity) {
	sessionID := chi.URLParam(r, "sessionID")

	view, err := s.engine.State(r.Context(), sessionID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if view.UserID != id.UserID && !id.IsAdmin() {
		s.respondError(w, r, auth.ErrPermissionDenied)
		return
	}

	s.respondJSON(w, http.StatusOK, view)
}

// sessions handles GET /workflow/sessions. Listing spans all users, so it is
// restricted to admins.
func (s *Server) sessions(w http.ResponseWriter, r *http.Request, id *auth.Identity) {
	if !id.IsAdmin() {
		s.respondError(w, r, auth.ErrPermissionDenied)
		return
	}

	ids, err := s.engine.Sessions(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string][]string{"sessions": ids})
}

// delete handles DELETE /workflow/state/{sessionID}.
func (s *Server) delete(w http.ResponseWriter, r *http.Request, id *auth.Identity) {
	sessionID := chi.URLParam(r, "sessionID")

	if err := s.authorizeOwner(r.Context(), id, sessionID); err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := s.engine.Delete(r.Context(), sessionID); err != nil {
		s.respondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": quill.Version,
	})
}

// authorizeOwner checks that the caller owns the session or is an admin.
func (s *Server) authorizeOwner(ctx context.Context, id *auth.Identity, sessionID string) error {
	if id.IsAdmin() {
		return nil
	}
	view, err := s.engine.State(ctx, sessionID)
	if err != nil {
		return err
	}
	if view.UserID != id.UserID {
		return auth.ErrPermissionDenied
	}
	return nil
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}

func (s *Server) respondStatus(w http.ResponseWriter, status int, msg string) {
	s.respondJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		s.logger.Warn("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	s.respondStatus(w, status, err.Error())
}

func mapStatus(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNotAwaitingInput), errors.Is(err, domain.ErrSessionComplete):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrUnsupportedType),
		errors.Is(err, domain.ErrExtractionFailed):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrProviderUnavailable), errors.Is(err, domain.ErrTimeout):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

package quill

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/quillflow/quill/internal/logging"
	"github.com/quillflow/quill/internal/workflow"
	"github.com/quillflow/quill/pkg/adapters/local"
	"github.com/quillflow/quill/pkg/adapters/memory"
	"github.com/quillflow/quill/pkg/adapters/provider"
	"github.com/quillflow/quill/pkg/analysis"
	"github.com/quillflow/quill/pkg/cache"
	"github.com/quillflow/quill/pkg/domain"
	"github.com/quillflow/quill/pkg/extract"
	"github.com/quillflow/quill/pkg/persistence/middleware"
	"github.com/quillflow/quill/pkg/ports"
	"github.com/quillflow/quill/pkg/session"
)

// Version is the library version reported by the CLI and the MCP server.
const Version = "0.3.0"

// Engine is the high-level entry point for the Quill library.
// It wraps the internal workflow engine and provides a simplified API for consumers.
type Engine struct {
	store      ports.SessionStore
	storeWraps []middleware.Middleware
	locker     ports.DistributedLocker
	signer     ports.Signer
	scheduler  ports.Scheduler
	provider   ports.AnalysisProvider
	extractor  ports.TextExtractor
	hooks      domain.LifecycleHooks
	logger     *slog.Logger

	cacheSize  int
	cacheTTL   time.Duration
	cacheHooks cache.Hooks

	analysisTimeout  time.Duration
	retryUnavailable int

	sessions *session.Manager
	workflow *workflow.Engine
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithStore injects a session store (default: in-memory).
func WithStore(store ports.SessionStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithStoreMiddleware wraps the session store, outermost first. Used for
// encryption at rest and PII masking of persisted checkpoints.
func WithStoreMiddleware(mws ...middleware.Middleware) Option {
	return func(e *Engine) {
		e.storeWraps = append(e.storeWraps, mws...)
	}
}

// WithLocker enables distributed locking for multi-replica deployments.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(e *Engine) {
		e.locker = locker
	}
}

// WithSigner injects the signing collaborator (default: local simulated signer).
func WithSigner(signer ports.Signer) Option {
	return func(e *Engine) {
		e.signer = signer
	}
}

// WithScheduler injects the scheduling collaborator (default: local simulated scheduler).
func WithScheduler(scheduler ports.Scheduler) Option {
	return func(e *Engine) {
		e.scheduler = scheduler
	}
}

// WithProvider injects the analysis model provider (default: static canned responses).
func WithProvider(p ports.AnalysisProvider) Option {
	return func(e *Engine) {
		e.provider = p
	}
}

// WithExtractor injects a text extractor (default: plain text and markdown).
func WithExtractor(x ports.TextExtractor) Option {
	return func(e *Engine) {
		e.extractor = x
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithCacheHooks registers analysis cache hit/miss hooks.
func WithCacheHooks(hooks cache.Hooks) Option {
	return func(e *Engine) {
		e.cacheHooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithResultCache configures the analysis cache capacity and TTL.
func WithResultCache(size int, ttl time.Duration) Option {
	return func(e *Engine) {
		e.cacheSize = size
		e.cacheTTL = ttl
	}
}

// WithAnalysisTimeout bounds each provider call.
func WithAnalysisTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.analysisTimeout = d
	}
}

// WithUnavailableRetry allows up to n extra provider attempts when it is unreachable.
func WithUnavailableRetry(n int) Option {
	return func(e *Engine) {
		e.retryUnavailable = n
	}
}

// New initializes a new Quill Engine.
// Every collaborator has a working default, so New() alone yields an
// in-memory engine with simulated signing and scheduling.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		cacheSize: 256,
		cacheTTL:  time.Hour,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = logging.NewNop()
	}
	if e.store == nil {
		e.store = memory.NewStore()
	}
	for i := len(e.storeWraps) - 1; i >= 0; i-- {
		e.store = e.storeWraps[i](e.store)
	}
	if e.signer == nil {
		e.signer = local.NewSigner()
	}
	if e.scheduler == nil {
		e.scheduler = local.NewScheduler()
	}
	if e.provider == nil {
		e.provider = provider.NewStatic()
	}
	if e.extractor == nil {
		e.extractor = extract.NewRegistry()
	}

	sessionOpts := []session.Option{session.WithLogger(e.logger)}
	if e.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(e.locker))
	}
	e.sessions = session.NewManager(e.store, sessionOpts...)

	results := cache.New[string](e.cacheSize, e.cacheTTL,
		cache.WithHooks[string](e.cacheHooks),
		cache.WithLogger[string](e.logger),
	)

	pipelineOpts := []analysis.Option{analysis.WithLogger(e.logger)}
	if e.analysisTimeout > 0 {
		pipelineOpts = append(pipelineOpts, analysis.WithTimeout(e.analysisTimeout))
	}
	if e.retryUnavailable > 0 {
		pipelineOpts = append(pipelineOpts, analysis.WithUnavailableRetry(e.retryUnavailable))
	}

	rt := &workflow.Runtime{
		Analyzer:  analysis.NewPipeline(e.provider, results, pipelineOpts...),
		Signer:    e.signer,
		Scheduler: e.scheduler,
		Logger:    e.logger,
	}

	eng, err := workflow.NewEngine(e.sessions, rt,
		workflow.WithLifecycleHooks(e.hooks),
		workflow.WithLogger(e.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build workflow engine: %w", err)
	}
	e.workflow = eng

	return e, nil
}

// StartRequest describes a new workflow submission.
type StartRequest struct {
	// SessionID is optional; a UUID is assigned when empty.
	SessionID string

	// UserID is the authenticated caller the session belongs to. Required.
	UserID string

	Filename    string
	ContentType string
	PageCount   int

	// Document is the uploaded raw content. It is extracted via the
	// configured TextExtractor unless Text is already set.
	Document []byte
	Text     string

	Params *domain.AnalysisParams
}

// Start creates a session, runs it to the first interrupt point or terminal
// stage, and returns the session view.
func (e *Engine) Start(ctx context.Context, req StartRequest) (*domain.View, error) {
	if req.UserID == "" {
		return nil, fmt.Errorf("%w: a session requires an authenticated user", domain.ErrInvalidInput)
	}

	id := req.SessionID
	if id == "" {
		id = uuid.NewString()
	}

	text := req.Text
	if text == "" {
		extracted, err := e.extractor.Extract(req.Document, req.ContentType)
		if err != nil {
			return nil, err
		}
		text = extracted
	}

	s := domain.NewSession(id, req.UserID)
	s.Filename = req.Filename
	s.ContentType = req.ContentType
	s.PageCount = req.PageCount
	s.DocumentText = text
	s.AnalysisParams = req.Params

	return e.workflow.Start(ctx, s)
}

// Resume supplies human input to a paused session and continues execution
// until the next interrupt or terminal stage.
func (e *Engine) Resume(ctx context.Context, sessionID string, input *domain.HumanInput) (*domain.View, error) {
	return e.workflow.Resume(ctx, sessionID, input)
}

// State returns the latest checkpoint without advancing execution.
func (e *Engine) State(ctx context.Context, sessionID string) (*domain.View, error) {
	return e.workflow.State(ctx, sessionID)
}

// Sessions lists known session IDs.
func (e *Engine) Sessions(ctx context.Context) ([]string, error) {
	return e.workflow.Sessions(ctx)
}

// Delete removes a session checkpoint.
func (e *Engine) Delete(ctx context.Context, sessionID string) error {
	return e.workflow.Delete(ctx, sessionID)
}

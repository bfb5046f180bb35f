// Package workflow implements the engine core: the static stage graph, its
// validation, and the run loop that drives a session from stage to stage,
// checkpointing at interrupt points and terminal stages.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/quillflow/quill/internal/logging"
	"github.com/quillflow/quill/pkg/domain"
	"github.com/quillflow/quill/pkg/ports"
	"github.com/quillflow/quill/pkg/session"
)

// maxSteps bounds one run: the graph is acyclic, so hitting the bound means a
// broken transition table.
const maxSteps = 16

// Engine drives workflow execution. All session mutation flows through it.
type Engine struct {
	sessions *session.Manager
	store    ports.SessionStore
	rt       *Runtime
	graph    map[domain.Stage]stageSpec
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
}

// Option configures the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates the workflow engine and validates the stage graph.
func NewEngine(sessions *session.Manager, rt *Runtime, opts ...Option) (*Engine, error) {
	graph := newGraph()
	if err := validateGraph(graph); err != nil {
		return nil, err
	}

	e := &Engine{
		sessions: sessions,
		store:    sessions.Store(),
		rt:       rt,
		graph:    graph,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if rt.Logger == nil {
		rt.Logger = e.logger
	}
	return e, nil
}

// Start runs a freshly created session from the entry stage until the first
// interrupt point or terminal stage. Starting an ID that already exists is
// idempotent: the existing checkpoint is returned untouched.
func (e *Engine) Start(ctx context.Context, s *domain.Session) (*domain.View, error) {
	var view *domain.View
	err := e.sessions.WithLock(ctx, s.ID, func(ctx context.Context) error {
		existing, err := e.store.Load(ctx, s.ID)
		if err == nil {
			e.logger.Debug("start on existing session, returning checkpoint", "session_id", s.ID)
			view = existing.View()
			return nil
		}
		if !errors.Is(err, domain.ErrSessionNotFound) {
			return err
		}

		s.CurrentStage = entryStage
		runErr := e.run(ctx, s)
		view = s.View()
		return runErr
	})
	return view, err
}

// Resume loads the last checkpoint, merges the human input, and continues
// execution from the paused stage until the next interrupt or terminal stage.
func (e *Engine) Resume(ctx context.Context, sessionID string, input *domain.HumanInput) (*domain.View, error) {
	var view *domain.View
	err := e.sessions.WithLock(ctx, sessionID, func(ctx context.Context) error {
		s, err := e.store.Load(ctx, sessionID)
		if err != nil {
			return err
		}
		if s.Terminal() {
			return fmt.Errorf("%w: session %s is %s", domain.ErrSessionComplete, sessionID, s.FinalStatus)
		}
		if !s.AwaitingInput {
			return fmt.Errorf("%w: session %s", domain.ErrNotAwaitingInput, sessionID)
		}
		if err := input.Validate(s.InputKind); err != nil {
			return err
		}

		input.MergeInto(s, s.InputKind)
		s.AwaitingInput = false
		s.InputKind = ""

		runErr := e.run(ctx, s)
		view = s.View()
		return runErr
	})
	return view, err
}

// State returns a read-only snapshot of the latest checkpoint.
// It does not advance execution.
func (e *Engine) State(ctx context.Context, sessionID string) (*domain.View, error) {
	s, err := e.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.View(), nil
}

// Sessions returns the IDs of all known sessions.
func (e *Engine) Sessions(ctx context.Context) ([]string, error) {
	return e.sessions.List(ctx)
}

// Delete removes a session checkpoint.
func (e *Engine) Delete(ctx context.Context, sessionID string) error {
	return e.sessions.Delete(ctx, sessionID)
}

// run executes stages from s.CurrentStage until an interrupt or terminal
// stage. Checkpoints are written only at those two points: a crash mid-stage
// is indistinguishable from the stage never having run.
func (e *Engine) run(ctx context.Context, s *domain.Session) error {
	for steps := 0; steps < maxSteps; steps++ {
		spec, ok := e.graph[s.CurrentStage]
		if !ok {
			return e.fail(ctx, s, fmt.Errorf("%w: undeclared stage %q", domain.ErrMalformedTransition, s.CurrentStage))
		}

		if spec.interrupt && !inputSatisfied(s, spec.kind) {
			if err := s.Apply(domain.Patch{AwaitInput: spec.kind}); err != nil {
				return err
			}
			if err := e.store.Save(ctx, s); err != nil {
				return fmt.Errorf("checkpoint write failed: %w", err)
			}
			e.fire(ctx, e.hooks.OnInterrupt, s, domain.EventInterrupt)
			e.logger.Info("session paused",
				"session_id", s.ID,
				"stage", s.CurrentStage,
				"input_kind", s.InputKind,
			)
			return nil
		}

		e.fire(ctx, e.hooks.OnStageEnter, s, domain.EventStageEnter)

		if spec.handler != nil {
			patch, err := spec.handler(ctx, e.rt, s)
			if err != nil {
				if errors.Is(err, domain.ErrTimeout) {
					// Pre-stage checkpoint stays untouched; the caller may retry.
					e.logger.Warn("stage timed out", "session_id", s.ID, "stage", s.CurrentStage)
					return err
				}
				return e.fail(ctx, s, err)
			}
			if err := s.Apply(patch); err != nil {
				return err
			}
		}

		e.fire(ctx, e.hooks.OnStageLeave, s, domain.EventStageLeave)

		if s.Terminal() {
			if err := e.store.Save(ctx, s); err != nil {
				return fmt.Errorf("checkpoint write failed: %w", err)
			}
			e.fire(ctx, e.hooks.OnTerminal, s, domain.EventTerminal)
			e.logger.Info("session finished",
				"session_id", s.ID,
				"status", s.FinalStatus,
			)
			return nil
		}

		next := spec.next
		if spec.decide != nil {
			var err error
			next, err = spec.decide(s)
			if err != nil {
				return e.fail(ctx, s, err)
			}
		}
		s.CurrentStage = next
	}
	return e.fail(ctx, s, fmt.Errorf("%w: exceeded %d transitions", domain.ErrMalformedTransition, maxSteps))
}

// fail marks the session terminal FAILED, checkpoints it, and surfaces err.
func (e *Engine) fail(ctx context.Context, s *domain.Session, err error) error {
	e.logger.Error("stage failed",
		"session_id", s.ID,
		"stage", s.CurrentStage,
		"err", err,
	)
	if applyErr := s.Apply(failed(err.Error())); applyErr != nil {
		return errors.Join(err, applyErr)
	}
	if saveErr := e.store.Save(ctx, s); saveErr != nil {
		return errors.Join(err, saveErr)
	}
	e.fire(ctx, e.hooks.OnTerminal, s, domain.EventTerminal)
	return err
}

func (e *Engine) fire(ctx context.Context, fn func(context.Context, *domain.StageEvent), s *domain.Session, typ domain.EventType) {
	if fn == nil {
		return
	}
	fn(ctx, &domain.StageEvent{
		Timestamp: time.Now().UTC(),
		Type:      typ,
		SessionID: s.ID,
		Stage:     s.CurrentStage,
		InputKind: s.InputKind,
		Status:    s.FinalStatus,
	})
}

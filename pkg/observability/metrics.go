package observability

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/quillflow/quill/pkg/cache"
	"github.com/quillflow/quill/pkg/domain"
)

// Metrics records workflow and cache activity as Prometheus counters.
type Metrics struct {
	registry *prometheus.Registry
	logger   *slog.Logger

	stageEnters *prometheus.CounterVec
	interrupts  *prometheus.CounterVec
	completions *prometheus.CounterVec
	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter
}

// NewMetrics registers the workflow collectors on a fresh registry.
func NewMetrics(logger *slog.Logger) *Metrics {
	if logger == nil {
		logger = slog.Default()
	}

	m := &Metrics{
		registry: prometheus.NewRegistry(),
		logger:   logger,
		stageEnters: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quill_stage_enters_total",
				Help: "Total number of stage executions, by stage",
			},
			[]string{"stage"},
		),
		interrupts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quill_interrupts_total",
				Help: "Total number of workflow pauses awaiting human input, by input kind",
			},
			[]string{"input_kind"},
		),
		completions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quill_completions_total",
				Help: "Total number of terminal workflows, by final status",
			},
			[]string{"status"},
		),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quill_analysis_cache_hits_total",
			Help: "Total analysis result cache hits",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quill_analysis_cache_misses_total",
			Help: "Total analysis result cache misses",
		}),
	}

	m.registry.MustRegister(m.stageEnters, m.interrupts, m.completions, m.cacheHits, m.cacheMisses)
	return m
}

// Hooks returns lifecycle hooks that feed the workflow counters and emit
// structured log events per transition.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStageEnter: func(ctx context.Context, e *domain.StageEvent) {
			m.logger.Info("stage_enter", "session_id", e.SessionID, "stage", e.Stage)
			m.stageEnters.WithLabelValues(string(e.Stage)).Inc()
		},
		OnStageLeave: func(ctx context.Context, e *domain.StageEvent) {
			m.logger.Debug("stage_leave", "session_id", e.SessionID, "stage", e.Stage)
		},
		OnInterrupt: func(ctx context.Context, e *domain.StageEvent) {
			m.logger.Info("interrupt", "session_id", e.SessionID, "stage", e.Stage, "input_kind", e.InputKind)
			m.interrupts.WithLabelValues(string(e.InputKind)).Inc()
		},
		OnTerminal: func(ctx context.Context, e *domain.StageEvent) {
			m.logger.Info("terminal", "session_id", e.SessionID, "stage", e.Stage, "status", e.Status)
			m.completions.WithLabelValues(string(e.Status)).Inc()
		},
	}
}

// CacheHooks returns cache hooks that feed the hit/miss counters.
func (m *Metrics) CacheHooks() cache.Hooks {
	return cache.Hooks{
		OnHit:  func(key string) { m.cacheHits.Inc() },
		OnMiss: func(key string) { m.cacheMisses.Inc() },
	}
}

// Handler exposes the collected metrics in Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

package main

import (
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/quillflow/quill"
	"github.com/quillflow/quill/internal/config"
	"github.com/quillflow/quill/internal/logging"
	"github.com/quillflow/quill/pkg/adapters/provider"
	"github.com/quillflow/quill/pkg/adapters/redis"
	"github.com/quillflow/quill/pkg/observability"
	"github.com/quillflow/quill/pkg/persistence/middleware"
	"github.com/quillflow/quill/pkg/ports"
)

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}

func newLogger(cfg *config.Config) *slog.Logger {
	return logging.New(logging.ParseLevel(cfg.Log.Level))
}

// buildStore creates the configured session store, or nil when sessions
// should stay in process memory.
func buildStore(cfg *config.Config) (ports.SessionStore, ports.DistributedLocker) {
	if cfg.Redis.Addr == "" {
		return nil, nil
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	store := redis.NewFromClient(client, redis.WithTTL(cfg.Redis.TTL.Std()))
	locker := redis.NewLocker(client, "quill:lock:")
	return store, locker
}

// buildEngine assembles a workflow engine from the configuration.
func buildEngine(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) (*quill.Engine, error) {
	opts := []quill.Option{
		quill.WithLogger(logger),
		quill.WithResultCache(cfg.Cache.Size, cfg.Cache.TTL.Std()),
		quill.WithAnalysisTimeout(cfg.Analysis.Timeout.Std()),
	}

	if cfg.Analysis.RetryUnavailable > 0 {
		opts = append(opts, quill.WithUnavailableRetry(cfg.Analysis.RetryUnavailable))
	}
	if metrics != nil {
		opts = append(opts,
			quill.WithLifecycleHooks(metrics.Hooks()),
			quill.WithCacheHooks(metrics.CacheHooks()),
		)
	}

	if store, locker := buildStore(cfg); store != nil {
		opts = append(opts, quill.WithStore(store), quill.WithLocker(locker))
	}

	key, err := cfg.EncryptionKeyBytes()
	if err != nil {
		return nil, err
	}
	var wraps []middleware.Middleware
	if len(cfg.Persistence.MaskPatterns) > 0 {
		wraps = append(wraps, middleware.NewPIIMiddleware(cfg.Persistence.MaskPatterns))
	}
	if key != nil {
		wraps = append(wraps, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}))
	}
	if len(wraps) > 0 {
		opts = append(opts, quill.WithStoreMiddleware(wraps...))
	}

	if cfg.Provider.BaseURL != "" {
		opts = append(opts, quill.WithProvider(
			provider.NewHTTP(cfg.Provider.BaseURL, cfg.Provider.APIKey, cfg.Provider.Model),
		))
	}

	engine, err := quill.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build engine: %w", err)
	}
	return engine, nil
}

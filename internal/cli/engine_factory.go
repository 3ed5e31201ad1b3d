package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/vali"
	"github.com/aretw0/vali/internal/config"
	"github.com/aretw0/vali/pkg/adapters/file"
	"github.com/aretw0/vali/pkg/adapters/memory"
	"github.com/aretw0/vali/pkg/adapters/redis"
	"github.com/aretw0/vali/pkg/observability"
	"github.com/aretw0/vali/pkg/ports"
)

// App bundles an engine with the resources it was built from.
type App struct {
	Engine  *vali.Engine
	Metrics *observability.Metrics
	Config  *config.Config
	closers []io.Closer
}

// Close releases store connections.
func (a *App) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// NewApp initializes a vali engine following the configuration: store
// backend, strict mode, depth limit, metrics and log hooks.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	app := &App{Config: cfg, Metrics: observability.NewMetrics()}

	store, locker, err := openStore(ctx, cfg, app)
	if err != nil {
		return nil, err
	}

	hooks := observability.LogHooks(logger)
	if cfg.Serve.Metrics {
		hooks = hooks.Merge(app.Metrics.Hooks())
	}

	engineOpts := []vali.Option{
		vali.WithStore(store),
		vali.WithLogger(logger),
		vali.WithLifecycleHooks(hooks),
		vali.WithStrict(cfg.Strict),
		vali.WithMaxDepth(cfg.MaxDepth),
	}
	if locker != nil {
		engineOpts = append(engineOpts, vali.WithLocker(locker))
	}
	app.Engine = vali.New(engineOpts...)
	return app, nil
}

func openStore(ctx context.Context, cfg *config.Config, app *App) (ports.SchemeStore, ports.DistributedLocker, error) {
	switch cfg.Store.Backend {
	case config.BackendMemory:
		return memory.NewStore(), nil, nil
	case config.BackendFile:
		return file.New(cfg.Store.Dir), nil, nil
	case config.BackendRedis:
		r := cfg.Store.Redis
		store := redis.New(r.Addr, r.Password, r.DB, redis.WithPrefix(r.Prefix), redis.WithTTL(r.TTL))
		if err := store.Client().Ping(ctx).Err(); err != nil {
			_ = store.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", r.Addr, err)
		}
		app.closers = append(app.closers, store)
		return store, redis.NewLocker(store.Client(), r.Prefix), nil
	}
	return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}

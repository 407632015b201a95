package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/flowpaths"
	"github.com/aretw0/flowpaths/internal/adapters/file"
	"github.com/aretw0/flowpaths/internal/logging"
	"github.com/aretw0/flowpaths/pkg/adapters/amqp"
	"github.com/aretw0/flowpaths/pkg/adapters/memory"
	"github.com/aretw0/flowpaths/pkg/adapters/postgres"
	"github.com/aretw0/flowpaths/pkg/adapters/redis"
	"github.com/aretw0/flowpaths/pkg/domain"
	"github.com/aretw0/flowpaths/pkg/observability"
	"github.com/aretw0/flowpaths/pkg/persistence/middleware"
	"github.com/aretw0/flowpaths/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
)

// Runtime is an extractor wired to the adapters selected by a Config.
type Runtime struct {
	Extractor *flowpaths.Extractor
	Store     ports.ResultStore
	Registry  *prometheus.Registry
	Logger    *slog.Logger

	closers []func() error
}

// Close releases every backend connection.
func (r *Runtime) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		errs = append(errs, r.closers[i]())
	}
	return errors.Join(errs...)
}

// NewLogger configures the application logger.
// Without --debug only warnings reach Stderr.
func NewLogger(cfg Config) *slog.Logger {
	level := slog.LevelWarn
	if cfg.Debug {
		level = slog.LevelDebug
	}
	return logging.New(level, logging.WithJSON(cfg.LogJSON))
}

// Build creates the extractor and its store, publisher and locker.
func Build(ctx context.Context, cfg Config, logger *slog.Logger) (*Runtime, error) {
	rt := &Runtime{
		Registry: prometheus.NewRegistry(),
		Logger:   logger,
	}

	metrics := observability.NewMetrics(rt.Registry)
	hooks := metrics.Hooks()
	if cfg.Debug {
		hooks = observability.Combine(hooks, observability.LogHooks(logger))
	}

	switchMode, err := domain.ParseSwitchMode(cfg.SwitchMode)
	if err != nil {
		return nil, err
	}
	occurrences, err := domain.ParseOccurrencePolicy(cfg.Occurrences)
	if err != nil {
		return nil, err
	}

	opts := []flowpaths.Option{
		flowpaths.WithLogger(logger),
		flowpaths.WithHooks(hooks),
		flowpaths.WithLoopDependence(!cfg.IndependentLoops),
		flowpaths.WithMaxAlternatives(cfg.MaxAlternatives),
		flowpaths.WithSwitchMode(switchMode),
		flowpaths.WithOccurrencePolicy(occurrences),
		flowpaths.WithConcurrency(cfg.Concurrency),
	}

	store, locker, err := rt.openStore(ctx, cfg)
	if err != nil {
		rt.Close()
		return nil, err
	}
	if store != nil {
		var mws []middleware.Middleware
		if cfg.Store.CacheTTL > 0 {
			mws = append(mws, middleware.NewCacheMiddleware(cfg.Store.CacheTTL))
		}
		if len(cfg.Store.Redact) > 0 {
			mws = append(mws, middleware.NewRedactMiddleware(cfg.Store.Redact))
		}
		rt.Store = middleware.Chain(store, mws...)
		opts = append(opts,
			flowpaths.WithStore(rt.Store),
			flowpaths.WithLocker(locker, cfg.Lock.TTL),
		)
	}

	if cfg.Publisher.URL != "" {
		pubOpts := []amqp.Option{amqp.WithLogger(logger)}
		if cfg.Publisher.Exchange != "" {
			pubOpts = append(pubOpts, amqp.WithExchange(cfg.Publisher.Exchange))
		}
		pub, err := amqp.Dial(cfg.Publisher.URL, pubOpts...)
		if err != nil {
			rt.Close()
			return nil, err
		}
		rt.closers = append(rt.closers, pub.Close)
		opts = append(opts, flowpaths.WithPublisher(pub))
	}

	x, err := flowpaths.New(ctx, cfg.Dir, opts...)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("error initializing extractor: %w", err)
	}
	rt.Extractor = x
	return rt, nil
}

// openStore connects the configured store and the locker that goes with it.
// Only the redis store shares its lock across processes.
func (rt *Runtime) openStore(ctx context.Context, cfg Config) (ports.ResultStore, ports.DistributedLocker, error) {
	switch cfg.Store.Kind {
	case "", StoreNone:
		return nil, nil, nil

	case StoreMemory:
		return memory.NewStore(), memory.NewLocker(), nil

	case StoreFile:
		return file.New(cfg.Store.Path), memory.NewLocker(), nil

	case StoreRedis:
		rc := cfg.Store.Redis
		var storeOpts []redis.Option
		if rc.TTL > 0 {
			storeOpts = append(storeOpts, redis.WithTTL(rc.TTL))
		}
		if rc.Prefix != "" {
			storeOpts = append(storeOpts, redis.WithPrefix(rc.Prefix))
		}
		addr := rc.Addr
		if addr == "" {
			addr = "localhost:6379"
		}
		store := redis.New(addr, rc.Password, rc.DB, storeOpts...)
		if err := store.Client().Ping(ctx).Err(); err != nil {
			store.Close()
			return nil, nil, fmt.Errorf("connect redis %s: %w", addr, err)
		}
		rt.closers = append(rt.closers, store.Close)

		prefix := rc.Prefix
		if prefix == "" {
			prefix = "flowpaths:"
		}
		return store, redis.NewLocker(store.Client(), prefix), nil

	case StorePostgres:
		pool, err := postgres.NewPool(ctx, cfg.Store.Postgres.DSN)
		if err != nil {
			return nil, nil, err
		}
		store := postgres.New(pool)
		rt.closers = append(rt.closers, func() error { store.Close(); return nil })
		if err := store.Migrate(ctx); err != nil {
			return nil, nil, err
		}
		return store, memory.NewLocker(), nil
	}
	return nil, nil, fmt.Errorf("unknown store kind %q", cfg.Store.Kind)
}

package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/trustroute"
	"github.com/aretw0/trustroute/internal/config"
	"github.com/aretw0/trustroute/pkg/adapters/memory"
	"github.com/aretw0/trustroute/pkg/adapters/redis"
	"github.com/aretw0/trustroute/pkg/controller"
	"github.com/aretw0/trustroute/pkg/domain"
	"github.com/aretw0/trustroute/pkg/feedback"
	"github.com/aretw0/trustroute/pkg/observability"
	"github.com/aretw0/trustroute/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
)

// Runtime is everything a command needs, wired from one Config.
type Runtime struct {
	Config     config.Config
	Engine     *trustroute.Engine
	Controller *controller.Controller
	// Registry is nil when metrics are disabled.
	Registry *prometheus.Registry
	Metrics  *observability.Metrics

	closeStore func() error
}

// Close releases the store connection.
func (r *Runtime) Close() error {
	if r.closeStore == nil {
		return nil
	}
	return r.closeStore()
}

// Build creates the store, engine and controller described by cfg.
// A redis backend is pinged before use and gets a distributed locker so that
// replicas sharing it serialise their updates.
func Build(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Runtime, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	rt := &Runtime{Config: cfg}
	store, locker, err := rt.openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	hooks := observability.LogHooks(logger)
	if cfg.Metrics.Enabled {
		rt.Registry = prometheus.NewRegistry()
		rt.Metrics, err = observability.NewMetrics(rt.Registry)
		if err != nil {
			_ = rt.Close()
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
		hooks = hooks.Merge(rt.Metrics.Hooks())
	}

	opts := []trustroute.Option{
		trustroute.WithStore(store),
		trustroute.WithHyperparameters(cfg.Engine),
		trustroute.WithLogger(logger),
		trustroute.WithLifecycleHooks(hooks),
	}
	if locker != nil {
		opts = append(opts, trustroute.WithLocker(locker, cfg.Store.Redis.LockTTL))
	}
	rt.Engine, err = trustroute.New(opts...)
	if err != nil {
		_ = rt.Close()
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}

	ctrlOpts := []controller.Option{
		controller.WithLogger(logger),
		controller.WithFeedback(feedback.Constant{Reward: cfg.Feedback.Reward, SuccessRate: cfg.Feedback.SuccessRate}),
	}
	if rt.Metrics != nil {
		ctrlOpts = append(ctrlOpts, controller.WithOutcomeObserver(rt.Metrics.ObserveOutcome))
	}
	rt.Controller = controller.New(rt.Engine, ctrlOpts...)

	logger.Debug("Runtime ready", "backend", cfg.Store.Backend, "metrics", cfg.Metrics.Enabled)
	return rt, nil
}

func (rt *Runtime) openStore(ctx context.Context, cfg config.Config) (ports.StateStore, ports.DistributedLocker, error) {
	switch cfg.Store.Backend {
	case config.BackendMemory:
		return memory.NewStore(memory.WithDefaultTrust(cfg.Engine.DefaultTrust)), nil, nil
	case config.BackendRedis:
		rc := cfg.Store.Redis
		store := redis.New(rc.Addr, rc.Password, rc.DB,
			redis.WithPrefix(rc.Prefix),
			redis.WithDefaultTrust(cfg.Engine.DefaultTrust),
		)
		if err := store.Client().Ping(ctx).Err(); err != nil {
			_ = store.Close()
			return nil, nil, fmt.Errorf("failed to reach redis at %s: %w", rc.Addr, err)
		}
		rt.closeStore = store.Close
		return store, redis.NewLocker(store.Client(), rc.Prefix), nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", domain.ErrUnknownBackend, cfg.Store.Backend)
	}
}

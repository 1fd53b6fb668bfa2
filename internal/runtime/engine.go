package runtime

import (
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/trustroute/pkg/domain"
	"github.com/aretw0/trustroute/pkg/ports"
	"github.com/google/uuid"
)

// Engine is the forwarding-decision core: a policy and a learner over one StateStore.
// It is safe for concurrent use when the store is.
type Engine struct {
	store  ports.StateStore
	params domain.Hyperparameters
	hooks  domain.LifecycleHooks
	logger *slog.Logger
	locks  *keyLocks
	now    func() time.Time
	newID  func() string
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithHyperparameters overrides the defaults. Callers validate them first.
func WithHyperparameters(params domain.Hyperparameters) EngineOption {
	return func(e *Engine) {
		e.params = params
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLocker serialises learner updates across replicas sharing the store.
func WithLocker(locker ports.DistributedLocker, ttl time.Duration) EngineOption {
	return func(e *Engine) {
		e.locks.locker = locker
		if ttl > 0 {
			e.locks.ttl = ttl
		}
	}
}

// WithClock replaces time.Now for event timestamps.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// WithIDGenerator replaces the decision ID generator.
func WithIDGenerator(newID func() string) EngineOption {
	return func(e *Engine) {
		e.newID = newID
	}
}

// NewEngine creates a new engine over store.
func NewEngine(store ports.StateStore, opts ...EngineOption) *Engine {
	e := &Engine{
		store:  store,
		params: domain.DefaultHyperparameters(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		locks:  newKeyLocks(),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.locks.logger = e.logger
	return e
}

// Store returns the underlying state store.
func (e *Engine) Store() ports.StateStore {
	return e.store
}

// Hyperparameters returns the engine's fixed parameters.
func (e *Engine) Hyperparameters() domain.Hyperparameters {
	return e.params
}

func (e *Engine) base(t domain.EventType) domain.EventBase {
	return domain.EventBase{Timestamp: e.now(), Type: t}
}

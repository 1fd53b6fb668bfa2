package trustroute

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/trustroute/internal/runtime"
	"github.com/aretw0/trustroute/pkg/adapters/memory"
	"github.com/aretw0/trustroute/pkg/domain"
	"github.com/aretw0/trustroute/pkg/ports"
)

// ErrNotInspectable is returned by Snapshot when the store cannot list its contents.
var ErrNotInspectable = errors.New("store does not support snapshots")

// Engine is the high-level entry point for the library.
// It wraps the internal runtime and exposes the two inbound operations of the
// control plane: a frame was observed, and an outcome was observed.
type Engine struct {
	runtime *runtime.Engine
	store   ports.StateStore
	params  domain.Hyperparameters
	hooks   domain.LifecycleHooks
	logger  *slog.Logger
	locker  ports.DistributedLocker
	lockTTL time.Duration
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithStore injects a StateStore. The default is a fresh in-memory store.
func WithStore(store ports.StateStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithHyperparameters overrides the default learning constants. DefaultTrust only
// applies to the default store; injected stores carry their own default.
func WithHyperparameters(params domain.Hyperparameters) Option {
	return func(e *Engine) {
		e.params = params
	}
}

// WithLifecycleHooks registers observability hooks. Repeated calls are merged.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLocker serialises learner updates across engines sharing one store.
func WithLocker(locker ports.DistributedLocker, ttl time.Duration) Option {
	return func(e *Engine) {
		e.locker = locker
		e.lockTTL = ttl
	}
}

// New initializes a new Engine.
func New(opts ...Option) (*Engine, error) {
	eng := &Engine{
		params: domain.DefaultHyperparameters(),
	}
	for _, opt := range opts {
		opt(eng)
	}

	if err := eng.params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid hyperparameters: %w", err)
	}
	if eng.logger == nil {
		eng.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if eng.store == nil {
		eng.store = memory.NewStore(memory.WithDefaultTrust(eng.params.DefaultTrust))
	}

	runtimeOpts := []runtime.EngineOption{
		runtime.WithHyperparameters(eng.params),
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithLogger(eng.logger),
	}
	if eng.locker != nil {
		runtimeOpts = append(runtimeOpts, runtime.WithLocker(eng.locker, eng.lockTTL))
	}
	eng.runtime = runtime.NewEngine(eng.store, runtimeOpts...)

	return eng, nil
}

// OnFrameObserved returns the egress action for a frame from src to dst.
// candidates are the ports the transport can use; they are recorded but do not
// restrict the choice.
func (e *Engine) OnFrameObserved(ctx context.Context, src, dst domain.NodeID, candidates []domain.Action) (domain.Action, error) {
	d, err := e.runtime.SelectAction(ctx, src, dst, candidates)
	if err != nil {
		return 0, err
	}
	return d.Action, nil
}

// Decide is OnFrameObserved returning the full decision record.
func (e *Engine) Decide(ctx context.Context, src, dst domain.NodeID, candidates []domain.Action) (domain.Decision, error) {
	return e.runtime.SelectAction(ctx, src, dst, candidates)
}

// OnOutcomeObserved feeds back the result of a decision: the Q-value of
// (src, dst, action) learns from reward and the trust of node from successRate.
// The outcome is validated as a whole before either table changes.
func (e *Engine) OnOutcomeObserved(ctx context.Context, outcome domain.Outcome) error {
	return e.runtime.ApplyOutcome(ctx, outcome)
}

// UpdateQ applies a single Q-learning step and returns the new value.
func (e *Engine) UpdateQ(ctx context.Context, src, dst domain.NodeID, action domain.Action, reward float64) (float64, error) {
	return e.runtime.UpdateQ(ctx, src, dst, action, reward)
}

// UpdateTrust folds a success rate into a node's trust and returns the new score.
func (e *Engine) UpdateTrust(ctx context.Context, node domain.NodeID, successRate float64) (float64, error) {
	return e.runtime.UpdateTrust(ctx, node, successRate)
}

// Trust returns the current trust of node.
func (e *Engine) Trust(ctx context.Context, node domain.NodeID) (float64, error) {
	if err := node.Validate(); err != nil {
		return 0, err
	}
	return e.store.GetTrust(ctx, node)
}

// Actions returns the values recorded for (src, dst) without creating the entry.
func (e *Engine) Actions(ctx context.Context, src, dst domain.NodeID) (domain.ActionValues, bool, error) {
	if err := src.Validate(); err != nil {
		return nil, false, err
	}
	if err := dst.Validate(); err != nil {
		return nil, false, err
	}
	return e.store.PeekActions(ctx, src, dst)
}

// Snapshot lists both tables when the store supports it.
func (e *Engine) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	inspectable, ok := e.store.(ports.Inspectable)
	if !ok {
		return domain.Snapshot{}, ErrNotInspectable
	}
	return inspectable.Snapshot(ctx)
}

// Hyperparameters returns the engine's fixed learning constants.
func (e *Engine) Hyperparameters() domain.Hyperparameters {
	return e.params
}

// Store returns the underlying StateStore.
func (e *Engine) Store() ports.StateStore {
	return e.store
}

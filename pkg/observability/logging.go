package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/trustroute/pkg/domain"
)

// LogHooks writes one structured line per engine event at debug level.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnDecision: func(ctx context.Context, e *domain.DecisionEvent) {
			logger.DebugContext(ctx, "decision",
				"decision_id", e.Decision.ID,
				"src", e.Decision.Src,
				"dst", e.Decision.Dst,
				"action", e.Decision.Action,
				"gated", e.Decision.Gated,
				"trust", e.Decision.Trust,
			)
		},
		OnQUpdate: func(ctx context.Context, e *domain.QUpdateEvent) {
			logger.DebugContext(ctx, "q_update",
				"src", e.Src,
				"dst", e.Dst,
				"action", e.Action,
				"reward", e.Reward,
				"new", e.New,
			)
		},
		OnTrustUpdate: func(ctx context.Context, e *domain.TrustUpdateEvent) {
			logger.DebugContext(ctx, "trust_update", "node", e.Node, "new", e.New)
		},
	}
}

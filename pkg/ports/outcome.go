package ports

import (
	"context"

	"github.com/aretw0/trustroute/pkg/domain"
)

// OutcomeSource reports how a decision turned out once the transport has realised it.
type OutcomeSource interface {
	Outcome(ctx context.Context, decision domain.Decision) (domain.Outcome, error)
}

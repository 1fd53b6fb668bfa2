// Package feedback provides ports.OutcomeSource implementations.
package feedback

import (
	"context"

	"github.com/aretw0/trustroute/pkg/domain"
	"github.com/aretw0/trustroute/pkg/ports"
)

// Constant reports the same reward and success rate for every decision, crediting the
// decision's source node. It is a stub: nothing measures whether the frame arrived.
type Constant struct {
	Reward      float64
	SuccessRate float64
}

// Stub returns the feedback the controller has always used: reward 1, success 0.9.
func Stub() Constant {
	return Constant{Reward: domain.StubReward, SuccessRate: domain.StubSuccessRate}
}

// Outcome implements ports.OutcomeSource.
func (c Constant) Outcome(_ context.Context, d domain.Decision) (domain.Outcome, error) {
	return domain.Outcome{
		Src:         d.Src,
		Dst:         d.Dst,
		Action:      d.Action,
		Reward:      c.Reward,
		Node:        d.Src,
		SuccessRate: c.SuccessRate,
	}, nil
}

// Func adapts a function to ports.OutcomeSource, for callers that measure real
// transmission results.
type Func func(ctx context.Context, d domain.Decision) (domain.Outcome, error)

// Outcome implements ports.OutcomeSource.
func (f Func) Outcome(ctx context.Context, d domain.Decision) (domain.Outcome, error) {
	return f(ctx, d)
}

var (
	_ ports.OutcomeSource = Constant{}
	_ ports.OutcomeSource = Func(nil)
)

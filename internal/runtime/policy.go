package runtime

import (
	"context"
	"fmt"
	"slices"

	"github.com/aretw0/trustroute/pkg/domain"
)

// SelectAction picks the egress action for a frame from src to dst.
//
// The learned choice is the highest-valued action recorded for the pair, ties going to
// the action inserted first. A source whose trust is below the threshold always gets
// Flood, whatever the learned values say. available is recorded on the decision but
// never restricts the choice: the pair may hold actions learned from earlier
// candidate sets.
func (e *Engine) SelectAction(ctx context.Context, src, dst domain.NodeID, available []domain.Action) (domain.Decision, error) {
	if err := validatePair(src, dst); err != nil {
		return domain.Decision{}, err
	}
	for _, a := range available {
		if err := a.Validate(); err != nil {
			return domain.Decision{}, fmt.Errorf("candidate: %w", err)
		}
	}

	actions, seeded, err := e.store.GetOrInitActions(ctx, src, dst)
	if err != nil {
		return domain.Decision{}, fmt.Errorf("failed to load actions for %s->%s: %w", src, dst, err)
	}
	trust, err := e.store.GetTrust(ctx, src)
	if err != nil {
		return domain.Decision{}, fmt.Errorf("failed to load trust for %s: %w", src, err)
	}

	d := domain.Decision{
		ID:        e.newID(),
		Src:       src,
		Dst:       dst,
		Learned:   actions.Best(),
		Trust:     trust,
		Seeded:    seeded,
		DecidedAt: e.now(),
	}
	if trust >= e.params.TrustThreshold {
		d.Action = d.Learned.Action
	} else {
		d.Action = domain.Flood
		d.Gated = true
		e.logger.Info("Trust gate closed, flooding",
			"src", src,
			"dst", dst,
			"trust", trust,
			"threshold", e.params.TrustThreshold,
		)
	}
	d.InCandidates = d.Action.IsFlood() || slices.Contains(available, d.Action)

	e.logger.Debug("Action selected",
		"decision_id", d.ID,
		"src", src,
		"dst", dst,
		"action", d.Action,
		"learned", d.Learned.Action,
		"learned_value", d.Learned.Value,
		"seeded", seeded,
		"in_candidates", d.InCandidates,
	)
	if e.hooks.OnDecision != nil {
		e.hooks.OnDecision(ctx, &domain.DecisionEvent{
			EventBase: e.base(domain.EventDecision),
			Decision:  d,
		})
	}
	return d, nil
}

func validatePair(src, dst domain.NodeID) error {
	if err := src.Validate(); err != nil {
		return fmt.Errorf("src: %w", err)
	}
	if err := dst.Validate(); err != nil {
		return fmt.Errorf("dst: %w", err)
	}
	return nil
}

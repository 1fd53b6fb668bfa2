package runtime

import (
	"context"
	"fmt"

	"github.com/aretw0/trustroute/pkg/domain"
)

// NextStateEstimate stands in for a state transition model, which the engine does not
// have: it is the best value recorded for the reverse pair (dst, src), or 0 when that
// pair has never been observed. The reverse pair is not seeded by this lookup.
func (e *Engine) NextStateEstimate(ctx context.Context, src, dst domain.NodeID) (float64, error) {
	actions, found, err := e.store.PeekActions(ctx, dst, src)
	if err != nil {
		return 0, fmt.Errorf("failed to load reverse actions for %s->%s: %w", dst, src, err)
	}
	if !found {
		return 0, nil
	}
	return actions.Max(), nil
}

// UpdateQ applies one Q-learning step for taking action on (src, dst):
//
//	new = old + alpha * (reward + gamma * NextStateEstimate(src, dst) - old)
//
// old is 0 for an action the pair has not recorded yet. Returns the stored value.
func (e *Engine) UpdateQ(ctx context.Context, src, dst domain.NodeID, action domain.Action, reward float64) (float64, error) {
	if err := validatePair(src, dst); err != nil {
		return 0, err
	}
	if err := action.Validate(); err != nil {
		return 0, err
	}
	if err := domain.ValidateFinite("reward", reward); err != nil {
		return 0, err
	}

	var event domain.QUpdateEvent
	err := e.locks.withLock(ctx, "q:"+domain.PairKey(src, dst), func(ctx context.Context) error {
		actions, _, err := e.store.GetOrInitActions(ctx, src, dst)
		if err != nil {
			return fmt.Errorf("failed to load actions for %s->%s: %w", src, dst, err)
		}
		old, _ := actions.Get(action)

		next, err := e.NextStateEstimate(ctx, src, dst)
		if err != nil {
			return err
		}

		alpha, gamma := e.params.LearningRate, e.params.DiscountFactor
		value := old + alpha*(reward+gamma*next-old)
		if err := domain.ValidateFinite("q-value", value); err != nil {
			return fmt.Errorf("update of %s->%s action %s: %w", src, dst, action, err)
		}
		if err := e.store.SetQ(ctx, src, dst, action, value); err != nil {
			return fmt.Errorf("failed to store q-value for %s->%s: %w", src, dst, err)
		}

		event = domain.QUpdateEvent{
			EventBase: e.base(domain.EventQUpdate),
			Src:       src,
			Dst:       dst,
			Action:    action,
			Reward:    reward,
			Old:       old,
			NextState: next,
			New:       value,
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	e.logger.Debug("Updated Q-value",
		"src", src,
		"dst", dst,
		"action", action,
		"old", event.Old,
		"next_state", event.NextState,
		"new", event.New,
	)
	if e.hooks.OnQUpdate != nil {
		e.hooks.OnQUpdate(ctx, &event)
	}
	return event.New, nil
}

// UpdateTrust folds an observed success rate into node's trust score:
//
//	trust = decay * trust + (1 - decay) * successRate
//
// The rate must lie in [0,1], which keeps the score in [0,1]. Returns the stored value.
func (e *Engine) UpdateTrust(ctx context.Context, node domain.NodeID, successRate float64) (float64, error) {
	if err := node.Validate(); err != nil {
		return 0, fmt.Errorf("node: %w", err)
	}
	if err := domain.ValidateUnit("success_rate", successRate); err != nil {
		return 0, err
	}

	var event domain.TrustUpdateEvent
	err := e.locks.withLock(ctx, "trust:"+string(node), func(ctx context.Context) error {
		old, err := e.store.GetTrust(ctx, node)
		if err != nil {
			return fmt.Errorf("failed to load trust for %s: %w", node, err)
		}

		decay := e.params.TrustDecay
		value := decay*old + (1-decay)*successRate
		if err := e.store.SetTrust(ctx, node, value); err != nil {
			return fmt.Errorf("failed to store trust for %s: %w", node, err)
		}

		event = domain.TrustUpdateEvent{
			EventBase:   e.base(domain.EventTrustUpdate),
			Node:        node,
			SuccessRate: successRate,
			Old:         old,
			New:         value,
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	e.logger.Debug("Updated trust value", "node", node, "old", event.Old, "new", event.New)
	if e.hooks.OnTrustUpdate != nil {
		e.hooks.OnTrustUpdate(ctx, &event)
	}
	return event.New, nil
}

// ApplyOutcome validates the whole outcome before touching either table, then runs
// UpdateQ and UpdateTrust.
func (e *Engine) ApplyOutcome(ctx context.Context, o domain.Outcome) error {
	if err := o.Validate(); err != nil {
		return err
	}
	if _, err := e.UpdateQ(ctx, o.Src, o.Dst, o.Action, o.Reward); err != nil {
		return err
	}
	_, err := e.UpdateTrust(ctx, o.Node, o.SuccessRate)
	return err
}

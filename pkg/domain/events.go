package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventDecision    EventType = "decision"
	EventQUpdate     EventType = "q_update"
	EventTrustUpdate EventType = "trust_update"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// DecisionEvent is emitted after every action selection.
type DecisionEvent struct {
	EventBase
	Decision Decision `json:"decision"`
}

// QUpdateEvent is emitted after a Q-value is written.
type QUpdateEvent struct {
	EventBase
	Src       NodeID  `json:"src"`
	Dst       NodeID  `json:"dst"`
	Action    Action  `json:"action"`
	Reward    float64 `json:"reward"`
	Old       float64 `json:"old"`
	NextState float64 `json:"next_state"`
	New       float64 `json:"new"`
}

// TrustUpdateEvent is emitted after a trust score is written.
type TrustUpdateEvent struct {
	EventBase
	Node        NodeID  `json:"node"`
	SuccessRate float64 `json:"success_rate"`
	Old         float64 `json:"old"`
	New         float64 `json:"new"`
}

// LifecycleHooks defines callbacks for engine observability.
// Hooks run synchronously on the calling goroutine and must not block.
type LifecycleHooks struct {
	OnDecision    func(context.Context, *DecisionEvent)
	OnQUpdate     func(context.Context, *QUpdateEvent)
	OnTrustUpdate func(context.Context, *TrustUpdateEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnDecision:    chain(h.OnDecision, other.OnDecision),
		OnQUpdate:     chain(h.OnQUpdate, other.OnQUpdate),
		OnTrustUpdate: chain(h.OnTrustUpdate, other.OnTrustUpdate),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}

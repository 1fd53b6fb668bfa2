package domain

import "time"

// Decision is the result of one action selection.
type Decision struct {
	ID     string `json:"id"`
	Src    NodeID `json:"src" yaml:"src"`
	Dst    NodeID `json:"dst" yaml:"dst"`
	Action Action `json:"action" yaml:"action"`
	// Learned is the argmax over the pair's action values, before gating.
	Learned ActionValue `json:"learned"`
	Trust   float64     `json:"trust"`
	// Gated is true when the source's trust forced Flood.
	Gated bool `json:"gated"`
	// Seeded is true when the pair was first seen by this decision.
	Seeded bool `json:"seeded"`
	// InCandidates reports whether Action was among the candidates offered by the
	// transport. Candidates never restrict the choice.
	InCandidates bool      `json:"in_candidates"`
	DecidedAt    time.Time `json:"decided_at"`
}

// Outcome is the feedback for a decision.
type Outcome struct {
	Src         NodeID  `json:"src" yaml:"src"`
	Dst         NodeID  `json:"dst" yaml:"dst"`
	Action      Action  `json:"action" yaml:"action"`
	Reward      float64 `json:"reward" yaml:"reward"`
	Node        NodeID  `json:"node" yaml:"node"`
	SuccessRate float64 `json:"success_rate" yaml:"success_rate"`
}

// Validate rejects malformed identities, actions and numbers.
func (o Outcome) Validate() error {
	for _, n := range []NodeID{o.Src, o.Dst, o.Node} {
		if err := n.Validate(); err != nil {
			return err
		}
	}
	if err := o.Action.Validate(); err != nil {
		return err
	}
	if err := ValidateFinite("reward", o.Reward); err != nil {
		return err
	}
	return ValidateUnit("success_rate", o.SuccessRate)
}

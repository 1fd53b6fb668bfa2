package domain

import (
	"fmt"
	"math"
)

// ActionValue is one learned estimate for an action.
type ActionValue struct {
	Action Action  `json:"action" yaml:"action"`
	Value  float64 `json:"value" yaml:"value"`
}

// ActionValues holds the estimates recorded for a (src, dst) pair in first-insertion
// order. The order is the tie-break contract for Best.
type ActionValues []ActionValue

// Get returns the value for action and whether it has been recorded.
func (av ActionValues) Get(action Action) (float64, bool) {
	for _, v := range av {
		if v.Action == action {
			return v.Value, true
		}
	}
	return 0, false
}

// Best returns the highest-valued action. Ties go to the earliest inserted action.
// An empty set yields Flood.
func (av ActionValues) Best() ActionValue {
	if len(av) == 0 {
		return ActionValue{Action: Flood}
	}
	best := av[0]
	for _, v := range av[1:] {
		if v.Value > best.Value {
			best = v
		}
	}
	return best
}

// Max returns the highest value, or 0 for an empty set.
func (av ActionValues) Max() float64 {
	if len(av) == 0 {
		return 0
	}
	return av.Best().Value
}

// With returns a copy with action set to value, appending it if it is new.
func (av ActionValues) With(action Action, value float64) ActionValues {
	out := make(ActionValues, len(av), len(av)+1)
	copy(out, av)
	for i := range out {
		if out[i].Action == action {
			out[i].Value = value
			return out
		}
	}
	return append(out, ActionValue{Action: action, Value: value})
}

// Clone returns an independent copy.
func (av ActionValues) Clone() ActionValues {
	if av == nil {
		return nil
	}
	out := make(ActionValues, len(av))
	copy(out, av)
	return out
}

// PairEntry is one row of the Q-table.
type PairEntry struct {
	Src     NodeID       `json:"src" yaml:"src"`
	Dst     NodeID       `json:"dst" yaml:"dst"`
	Actions ActionValues `json:"actions" yaml:"actions"`
}

// TrustEntry is one row of the trust table.
type TrustEntry struct {
	Node  NodeID  `json:"node" yaml:"node"`
	Trust float64 `json:"trust" yaml:"trust"`
}

// Snapshot is a point-in-time copy of both tables, sorted by key.
type Snapshot struct {
	QTable []PairEntry  `json:"q_table" yaml:"q_table"`
	Trust  []TrustEntry `json:"trust" yaml:"trust"`
}

// ValidateFinite rejects NaN and infinities.
func ValidateFinite(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s must be finite, got %v", ErrInvalidArgument, name, v)
	}
	return nil
}

// ValidateUnit rejects values outside [0,1].
func ValidateUnit(name string, v float64) error {
	if err := ValidateFinite(name, v); err != nil {
		return err
	}
	if v < 0 || v > 1 {
		return fmt.Errorf("%w: %s must be within [0,1], got %v", ErrInvalidArgument, name, v)
	}
	return nil
}

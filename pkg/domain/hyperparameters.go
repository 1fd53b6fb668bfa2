package domain

import "fmt"

// Hyperparameters are fixed for the lifetime of an engine.
type Hyperparameters struct {
	// LearningRate is alpha in the Q update.
	LearningRate float64 `json:"learning_rate" yaml:"learning_rate" mapstructure:"learning_rate"`
	// DiscountFactor is gamma in the Q update.
	DiscountFactor float64 `json:"discount_factor" yaml:"discount_factor" mapstructure:"discount_factor"`
	// TrustDecay is the weight kept from the previous trust score; the observation
	// gets 1-TrustDecay.
	TrustDecay float64 `json:"trust_decay" yaml:"trust_decay" mapstructure:"trust_decay"`
	// TrustThreshold is the gate: sources below it are always flooded.
	TrustThreshold float64 `json:"trust_threshold" yaml:"trust_threshold" mapstructure:"trust_threshold"`
	// DefaultTrust is the score of a node that has never been updated.
	DefaultTrust float64 `json:"default_trust" yaml:"default_trust" mapstructure:"default_trust"`
}

// DefaultHyperparameters returns alpha 0.5, gamma 0.9, a 0.9/0.1 trust average and a 0.5 gate.
func DefaultHyperparameters() Hyperparameters {
	return Hyperparameters{
		LearningRate:   DefaultLearningRate,
		DiscountFactor: DefaultDiscountFactor,
		TrustDecay:     DefaultTrustDecay,
		TrustThreshold: DefaultTrustThreshold,
		DefaultTrust:   DefaultTrust,
	}
}

// Validate checks that every parameter is finite and within range.
func (h Hyperparameters) Validate() error {
	if err := ValidateFinite("learning_rate", h.LearningRate); err != nil {
		return err
	}
	if h.LearningRate <= 0 || h.LearningRate > 1 {
		return fmt.Errorf("%w: learning_rate must be within (0,1], got %v", ErrInvalidArgument, h.LearningRate)
	}
	if err := ValidateFinite("discount_factor", h.DiscountFactor); err != nil {
		return err
	}
	if h.DiscountFactor < 0 || h.DiscountFactor >= 1 {
		return fmt.Errorf("%w: discount_factor must be within [0,1), got %v", ErrInvalidArgument, h.DiscountFactor)
	}
	if err := ValidateUnit("trust_decay", h.TrustDecay); err != nil {
		return err
	}
	if err := ValidateUnit("trust_threshold", h.TrustThreshold); err != nil {
		return err
	}
	return ValidateUnit("default_trust", h.DefaultTrust)
}

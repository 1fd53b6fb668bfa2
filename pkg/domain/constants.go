package domain

// Default hyperparameters.
const (
	DefaultLearningRate   = 0.5
	DefaultDiscountFactor = 0.9
	DefaultTrustDecay     = 0.9
	DefaultTrustThreshold = 0.5
	DefaultTrust          = 1.0
)

// Stub feedback values used until real transmission outcomes are wired in.
const (
	StubReward      = 1.0
	StubSuccessRate = 0.9
)

// KeySeparator joins a source and destination into a pair key. NodeIDs may not contain it.
const KeySeparator = "|"

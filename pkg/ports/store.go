package ports

import (
	"context"

	"github.com/aretw0/trustroute/pkg/domain"
)

// StateStore owns the Q-table and the trust table. Every method is atomic with
// respect to the others: a pair is seeded exactly once and readers never observe a
// partially written value.
type StateStore interface {
	// GetOrInitActions returns the action values for (src, dst), creating the entry
	// with a single Flood action seeded uniformly in [0,1) when it is absent.
	// The bool reports whether this call created the entry.
	GetOrInitActions(ctx context.Context, src, dst domain.NodeID) (domain.ActionValues, bool, error)

	// PeekActions returns the action values for (src, dst) without creating them.
	PeekActions(ctx context.Context, src, dst domain.NodeID) (domain.ActionValues, bool, error)

	// SetQ records value for action, appending the action if it is new to the pair.
	// An unseen pair is seeded first so that it still holds Flood.
	SetQ(ctx context.Context, src, dst domain.NodeID, action domain.Action, value float64) error

	// GetTrust returns the trust score of node, or the store's default for unseen nodes.
	GetTrust(ctx context.Context, node domain.NodeID) (float64, error)

	// SetTrust records the trust score of node.
	SetTrust(ctx context.Context, node domain.NodeID, value float64) error
}

// Inspectable is implemented by stores that can list their full contents.
type Inspectable interface {
	Snapshot(ctx context.Context) (domain.Snapshot, error)
}

// Seeder produces the initial Flood value of a new pair. It must return values in [0,1).
type Seeder func() float64

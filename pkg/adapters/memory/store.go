package memory

import (
	"context"
	"math/rand/v2"
	"sort"
	"sync"

	"github.com/aretw0/trustroute/pkg/domain"
	"github.com/aretw0/trustroute/pkg/ports"
)

// Store implements ports.StateStore in memory.
// Safe for concurrent use: one RWMutex guards both tables.
type Store struct {
	mu           sync.RWMutex
	q            map[string]domain.ActionValues
	trust        map[domain.NodeID]float64
	seed         ports.Seeder
	defaultTrust float64
}

type Option func(*Store)

// WithSeeder replaces the uniform random seed of new pairs.
func WithSeeder(seed ports.Seeder) Option {
	return func(s *Store) {
		s.seed = seed
	}
}

// WithDefaultTrust sets the score reported for unseen nodes.
func WithDefaultTrust(trust float64) Option {
	return func(s *Store) {
		s.defaultTrust = trust
	}
}

// NewStore creates a new, empty in-memory store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		q:            make(map[string]domain.ActionValues),
		trust:        make(map[domain.NodeID]float64),
		seed:         rand.Float64,
		defaultTrust: domain.DefaultTrust,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetOrInitActions returns a copy of the pair's values, seeding it on first use.
func (s *Store) GetOrInitActions(ctx context.Context, src, dst domain.NodeID) (domain.ActionValues, bool, error) {
	key := domain.PairKey(src, dst)

	s.mu.RLock()
	actions, ok := s.q[key]
	s.mu.RUnlock()
	if ok {
		return actions.Clone(), false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	created := s.initLocked(key)
	return s.q[key].Clone(), created, nil
}

// initLocked seeds key if it is absent. The caller holds the write lock.
func (s *Store) initLocked(key string) bool {
	if _, ok := s.q[key]; ok {
		return false
	}
	s.q[key] = domain.ActionValues{{Action: domain.Flood, Value: s.seed()}}
	return true
}

// PeekActions returns a copy of the pair's values without seeding.
func (s *Store) PeekActions(ctx context.Context, src, dst domain.NodeID) (domain.ActionValues, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	actions, ok := s.q[domain.PairKey(src, dst)]
	return actions.Clone(), ok, nil
}

// SetQ records a value.
func (s *Store) SetQ(ctx context.Context, src, dst domain.NodeID, action domain.Action, value float64) error {
	key := domain.PairKey(src, dst)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.initLocked(key)
	s.q[key] = s.q[key].With(action, value)
	return nil
}

// GetTrust returns the node's score or the default.
func (s *Store) GetTrust(ctx context.Context, node domain.NodeID) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if v, ok := s.trust[node]; ok {
		return v, nil
	}
	return s.defaultTrust, nil
}

// SetTrust records a score.
func (s *Store) SetTrust(ctx context.Context, node domain.NodeID, value float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trust[node] = value
	return nil
}

// Snapshot copies both tables, sorted by key.
func (s *Store) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := domain.Snapshot{
		QTable: make([]domain.PairEntry, 0, len(s.q)),
		Trust:  make([]domain.TrustEntry, 0, len(s.trust)),
	}
	for key, actions := range s.q {
		src, dst, _ := domain.SplitPairKey(key)
		snap.QTable = append(snap.QTable, domain.PairEntry{Src: src, Dst: dst, Actions: actions.Clone()})
	}
	for node, v := range s.trust {
		snap.Trust = append(snap.Trust, domain.TrustEntry{Node: node, Trust: v})
	}

	sort.Slice(snap.QTable, func(i, j int) bool {
		a, b := snap.QTable[i], snap.QTable[j]
		if a.Src != b.Src {
			return a.Src < b.Src
		}
		return a.Dst < b.Dst
	})
	sort.Slice(snap.Trust, func(i, j int) bool { return snap.Trust[i].Node < snap.Trust[j].Node })
	return snap, nil
}

var (
	_ ports.StateStore  = (*Store)(nil)
	_ ports.Inspectable = (*Store)(nil)
)

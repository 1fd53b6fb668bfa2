package ports

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/trustroute/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore implementation
// adheres to the defined interface contract. The store must use the default trust of 1.0.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	run := time.Now().Format("150405.000000")
	node := func(name string) domain.NodeID {
		return domain.NodeID(fmt.Sprintf("%s-%s", name, run))
	}

	t.Run("Lazy seeding", func(t *testing.T) {
		src, dst := node("seed-a"), node("seed-b")

		_, found, err := store.PeekActions(ctx, src, dst)
		require.NoError(t, err)
		assert.False(t, found, "Peek must not find an unseen pair")

		actions, created, err := store.GetOrInitActions(ctx, src, dst)
		require.NoError(t, err)
		assert.True(t, created)
		require.Len(t, actions, 1, "A new pair holds exactly one action")
		assert.Equal(t, domain.Flood, actions[0].Action)
		assert.GreaterOrEqual(t, actions[0].Value, 0.0)
		assert.Less(t, actions[0].Value, 1.0)

		again, created, err := store.GetOrInitActions(ctx, src, dst)
		require.NoError(t, err)
		assert.False(t, created, "Second call must not reseed")
		assert.Equal(t, actions, again)

		peeked, found, err := store.PeekActions(ctx, src, dst)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, actions, peeked)
	})

	t.Run("Pairs are ordered", func(t *testing.T) {
		a, b := node("dir-a"), node("dir-b")
		_, _, err := store.GetOrInitActions(ctx, a, b)
		require.NoError(t, err)

		_, found, err := store.PeekActions(ctx, b, a)
		require.NoError(t, err)
		assert.False(t, found, "(a,b) and (b,a) are distinct entries")
	})

	t.Run("SetQ keeps insertion order", func(t *testing.T) {
		src, dst := node("order-a"), node("order-b")
		seeded, _, err := store.GetOrInitActions(ctx, src, dst)
		require.NoError(t, err)

		require.NoError(t, store.SetQ(ctx, src, dst, 7, 0.25))
		require.NoError(t, store.SetQ(ctx, src, dst, 3, 0.75))
		require.NoError(t, store.SetQ(ctx, src, dst, 7, 0.5))

		actions, _, err := store.PeekActions(ctx, src, dst)
		require.NoError(t, err)
		assert.Equal(t, domain.ActionValues{
			{Action: domain.Flood, Value: seeded[0].Value},
			{Action: 7, Value: 0.5},
			{Action: 3, Value: 0.75},
		}, actions)
	})

	t.Run("SetQ on unseen pair", func(t *testing.T) {
		src, dst := node("direct-a"), node("direct-b")
		require.NoError(t, store.SetQ(ctx, src, dst, 2, 0.5))

		actions, found, err := store.PeekActions(ctx, src, dst)
		require.NoError(t, err)
		require.True(t, found)
		require.Len(t, actions, 2, "The entry is seeded before the write")
		assert.Equal(t, domain.Flood, actions[0].Action)
		v, ok := actions.Get(2)
		assert.True(t, ok)
		assert.Equal(t, 0.5, v)
	})

	t.Run("Trust defaults and updates", func(t *testing.T) {
		n := node("trust")

		trust, err := store.GetTrust(ctx, n)
		require.NoError(t, err)
		assert.Equal(t, 1.0, trust, "Unseen nodes are fully trusted")

		require.NoError(t, store.SetTrust(ctx, n, 0.42))
		trust, err = store.GetTrust(ctx, n)
		require.NoError(t, err)
		assert.Equal(t, 0.42, trust)
	})

	t.Run("Concurrent seeding", func(t *testing.T) {
		src, dst := node("race-a"), node("race-b")

		const workers = 16
		results := make([]domain.ActionValues, workers)
		created := make([]bool, workers)
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				actions, c, err := store.GetOrInitActions(ctx, src, dst)
				assert.NoError(t, err)
				results[i] = actions
				created[i] = c
			}(i)
		}
		wg.Wait()

		creators := 0
		for i := 0; i < workers; i++ {
			assert.Equal(t, results[0], results[i], "Every caller observes the same seed")
			if created[i] {
				creators++
			}
		}
		assert.Equal(t, 1, creators, "Exactly one caller seeds the pair")
	})

	if inspectable, ok := store.(Inspectable); ok {
		t.Run("Snapshot", func(t *testing.T) {
			src, dst := node("snap-a"), node("snap-b")
			_, _, err := store.GetOrInitActions(ctx, src, dst)
			require.NoError(t, err)
			require.NoError(t, store.SetTrust(ctx, src, 0.8))

			snap, err := inspectable.Snapshot(ctx)
			require.NoError(t, err)

			var pairFound, trustFound bool
			for _, e := range snap.QTable {
				if e.Src == src && e.Dst == dst {
					pairFound = true
					assert.Equal(t, domain.Flood, e.Actions[0].Action)
				}
			}
			for _, e := range snap.Trust {
				if e.Node == src {
					trustFound = true
					assert.Equal(t, 0.8, e.Trust)
				}
			}
			assert.True(t, pairFound)
			assert.True(t, trustFound)

			for i := 1; i < len(snap.QTable); i++ {
				prev, cur := snap.QTable[i-1], snap.QTable[i]
				assert.True(t, prev.Src < cur.Src || (prev.Src == cur.Src && prev.Dst < cur.Dst), "Snapshot is sorted")
			}
		})
	}
}

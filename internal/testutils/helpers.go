package testutils

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/trustroute/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// SetupRedis starts an in-process redis server that stops when the test ends.
func SetupRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	return miniredis.RunT(t)
}

// NewRedisClient connects a fresh client to mr. Each call models one replica.
// The client is closed when the test ends.
func NewRedisClient(t *testing.T, mr *miniredis.Miniredis) *backend.Client {
	t.Helper()
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client
}

// FixedSeed makes every new pair start with the same FLOOD value.
func FixedSeed(v float64) ports.Seeder {
	return func() float64 { return v }
}

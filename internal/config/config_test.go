package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/trustroute/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	require.NoError(t, Default().Validate())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Contains(t, err.Error(), "failed to read config")
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "trustroute.yaml", `
log_level: debug
engine:
  learning_rate: 0.25
  trust_threshold: "0.6"
store:
  backend: redis
  redis:
    addr: redis:6379
    lock_ttl: 2s
http:
  shutdown_timeout: 1m
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 0.25, cfg.Engine.LearningRate)
	assert.Equal(t, 0.6, cfg.Engine.TrustThreshold)
	assert.Equal(t, 0.9, cfg.Engine.DiscountFactor, "Unset keys keep their default")
	assert.Equal(t, BackendRedis, cfg.Store.Backend)
	assert.Equal(t, "redis:6379", cfg.Store.Redis.Addr)
	assert.Equal(t, "trustroute:", cfg.Store.Redis.Prefix)
	assert.Equal(t, 2*time.Second, cfg.Store.Redis.LockTTL)
	assert.Equal(t, time.Minute, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
}

func TestLoad_JSON(t *testing.T) {
	path := writeFile(t, "trustroute.json", `{"feedback":{"reward":2,"success_rate":0.5},"metrics":{"enabled":false}}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2.0, cfg.Feedback.Reward)
	assert.Equal(t, 0.5, cfg.Feedback.SuccessRate)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		target  error
	}{
		{"Unknown backend", "store:\n  backend: etcd\n", domain.ErrUnknownBackend},
		{"Discount out of range", "engine:\n  discount_factor: 1\n", domain.ErrInvalidArgument},
		{"Success rate out of range", "feedback:\n  success_rate: 1.5\n", domain.ErrInvalidArgument},
		{"Bad log level", "log_level: loud\n", domain.ErrInvalidArgument},
		{"Non-positive lock ttl", "store:\n  backend: redis\n  redis:\n    lock_ttl: 0s\n", domain.ErrInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, "c.yaml", tt.content))
			assert.ErrorIs(t, err, tt.target)
		})
	}

	t.Run("Unknown key", func(t *testing.T) {
		_, err := Load(writeFile(t, "c.yaml", "engine:\n  alpha: 0.3\n"))
		assert.ErrorContains(t, err, "alpha")
	})

	t.Run("Malformed yaml", func(t *testing.T) {
		_, err := Load(writeFile(t, "c.yaml", "engine: [\n"))
		assert.ErrorContains(t, err, "failed to parse")
	})
}

// Package config loads the trustroute configuration file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/trustroute/internal/logging"
	"github.com/aretw0/trustroute/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config is the full process configuration.
type Config struct {
	LogLevel string                 `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Engine   domain.Hyperparameters `mapstructure:"engine" yaml:"engine" json:"engine"`
	Feedback FeedbackConfig         `mapstructure:"feedback" yaml:"feedback" json:"feedback"`
	Store    StoreConfig            `mapstructure:"store" yaml:"store" json:"store"`
	HTTP     HTTPConfig             `mapstructure:"http" yaml:"http" json:"http"`
	Metrics  MetricsConfig          `mapstructure:"metrics" yaml:"metrics" json:"metrics"`
}

// FeedbackConfig sets the stub outcome credited to every decision.
type FeedbackConfig struct {
	Reward      float64 `mapstructure:"reward" yaml:"reward" json:"reward"`
	SuccessRate float64 `mapstructure:"success_rate" yaml:"success_rate" json:"success_rate"`
}

// StoreConfig selects the state backend.
type StoreConfig struct {
	Backend string      `mapstructure:"backend" yaml:"backend" json:"backend"`
	Redis   RedisConfig `mapstructure:"redis" yaml:"redis" json:"redis"`
}

// RedisConfig configures the shared redis backend.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr" yaml:"addr" json:"addr"`
	Password string        `mapstructure:"password" yaml:"password" json:"password"`
	DB       int           `mapstructure:"db" yaml:"db" json:"db"`
	Prefix   string        `mapstructure:"prefix" yaml:"prefix" json:"prefix"`
	LockTTL  time.Duration `mapstructure:"lock_ttl" yaml:"lock_ttl" json:"lock_ttl"`
}

// HTTPConfig configures the API server.
type HTTPConfig struct {
	Addr            string        `mapstructure:"addr" yaml:"addr" json:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	Path    string `mapstructure:"path" yaml:"path" json:"path"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		LogLevel: "info",
		Engine:   domain.DefaultHyperparameters(),
		Feedback: FeedbackConfig{Reward: domain.StubReward, SuccessRate: domain.StubSuccessRate},
		Store: StoreConfig{
			Backend: BackendMemory,
			Redis: RedisConfig{
				Addr:    "localhost:6379",
				Prefix:  "trustroute:",
				LockTTL: 5 * time.Second,
			},
		},
		HTTP:    HTTPConfig{Addr: ":8080", ShutdownTimeout: 10 * time.Second},
		Metrics: MetricsConfig{Enabled: true, Path: "/metrics"},
	}
}

// Load reads a YAML (default) or JSON file over Default. An empty path yields the
// defaults; a named file must exist.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	raw := map[string]any{}
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &raw); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	} else {
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}

	if err := Decode(raw, &cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Decode merges raw into cfg. Strings are accepted for numbers and durations.
func Decode(raw map[string]any, cfg *Config) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return fmt.Errorf("failed to build config decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}
	return nil
}

// Validate checks value ranges and names.
func (c Config) Validate() error {
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}
	if err := c.Engine.Validate(); err != nil {
		return err
	}
	if err := domain.ValidateFinite("feedback.reward", c.Feedback.Reward); err != nil {
		return err
	}
	if err := domain.ValidateUnit("feedback.success_rate", c.Feedback.SuccessRate); err != nil {
		return err
	}
	switch c.Store.Backend {
	case BackendMemory:
	case BackendRedis:
		if c.Store.Redis.Addr == "" {
			return fmt.Errorf("%w: store.redis.addr is required", domain.ErrInvalidArgument)
		}
		if c.Store.Redis.LockTTL <= 0 {
			return fmt.Errorf("%w: store.redis.lock_ttl must be positive", domain.ErrInvalidArgument)
		}
	default:
		return fmt.Errorf("%w: %q", domain.ErrUnknownBackend, c.Store.Backend)
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("%w: metrics.path must start with /", domain.ErrInvalidArgument)
	}
	return nil
}

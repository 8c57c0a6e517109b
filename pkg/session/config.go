package session

import (
	"time"

	"github.com/dmitrymomot/moodlog/pkg/kvstore"
)

// DefaultRefreshInterval is the period of the refresh scheduler.
const DefaultRefreshInterval = 15 * time.Minute

// Config holds session configuration
type Config struct {
	// RefreshInterval is the period between refresh checks (default: 15m)
	RefreshInterval time.Duration `env:"SESSION_REFRESH_INTERVAL" envDefault:"15m"`

	// NearExpiryThreshold is how long before expiry a token needs a refresh (default: 5m)
	NearExpiryThreshold time.Duration `env:"SESSION_NEAR_EXPIRY_THRESHOLD" envDefault:"5m"`

	// KeyPrefix namespaces every storage key, e.g. "admin_"
	KeyPrefix string `env:"SESSION_KEY_PREFIX"`

	// Scope names the session in logs (default: "user")
	Scope string `env:"SESSION_SCOPE" envDefault:"user"`
}

// DefaultConfig returns default session configuration
func DefaultConfig() Config {
	return Config{
		RefreshInterval:     DefaultRefreshInterval,
		NearExpiryThreshold: DefaultNearExpiryThreshold,
		Scope:               "user",
	}
}

func (c Config) normalized() Config {
	if c.RefreshInterval <= 0 {
		c.RefreshInterval = DefaultRefreshInterval
	}
	if c.NearExpiryThreshold <= 0 {
		c.NearExpiryThreshold = DefaultNearExpiryThreshold
	}
	if c.Scope == "" {
		c.Scope = "user"
	}
	return c
}

// NewFromConfig creates a new Manager from the provided Config.
func NewFromConfig(ephemeral, durable kvstore.Store, cfg Config, opts ...Option) *Manager {
	configOpts := []Option{
		WithConfig(cfg),
	}

	configOpts = append(configOpts, opts...)

	return New(ephemeral, durable, configOpts...)
}

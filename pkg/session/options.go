package session

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/moodlog/pkg/fingerprint"
)

// Option is a functional option for configuring the Manager
type Option func(*Manager)

// WithConfig sets custom configuration
func WithConfig(config Config) Option {
	return func(m *Manager) {
		m.config = config
	}
}

// WithClock replaces the wall clock, mostly for tests
func WithClock(clock Clock) Option {
	return func(m *Manager) {
		if clock != nil {
			m.clock = clock
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithKeyPrefix namespaces the storage keys
func WithKeyPrefix(prefix string) Option {
	return func(m *Manager) {
		m.config.KeyPrefix = prefix
	}
}

// WithScope sets the scope name used in logs
func WithScope(scope string) Option {
	return func(m *Manager) {
		m.config.Scope = scope
	}
}

// WithRefreshInterval sets the refresh scheduler period
func WithRefreshInterval(d time.Duration) Option {
	return func(m *Manager) {
		m.config.RefreshInterval = d
	}
}

// WithNearExpiryThreshold sets the near-expiry window
func WithNearExpiryThreshold(d time.Duration) Option {
	return func(m *Manager) {
		m.config.NearExpiryThreshold = d
	}
}

// WithFingerprintEnvironment sets the source of the device environment
func WithFingerprintEnvironment(fn func() fingerprint.Environment) Option {
	return func(m *Manager) {
		if fn != nil {
			m.environment = fn
		}
	}
}

// WithID sets the origin id the Manager tags its writes with
func WithID(id string) Option {
	return func(m *Manager) {
		if id != "" {
			m.id = id
		}
	}
}

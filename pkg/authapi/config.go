package authapi

import "time"

// Config holds auth API client configuration
type Config struct {
	// BaseURL of the auth API (default: "http://localhost:8080")
	BaseURL string `env:"AUTH_API_URL" envDefault:"http://localhost:8080"`

	// Timeout per HTTP request (default: 10s)
	Timeout time.Duration `env:"AUTH_API_TIMEOUT" envDefault:"10s"`

	// MaxRetries for temporary failures (default: 2)
	MaxRetries int `env:"AUTH_API_MAX_RETRIES" envDefault:"2"`

	// Admin selects the admin endpoints
	Admin bool `env:"AUTH_API_ADMIN" envDefault:"false"`
}

// DefaultConfig returns default client configuration
func DefaultConfig() Config {
	return Config{
		BaseURL:    "http://localhost:8080",
		Timeout:    10 * time.Second,
		MaxRetries: 2,
	}
}

// NewFromConfig creates a Client from the provided Config.
func NewFromConfig(cfg Config, opts ...Option) (*Client, error) {
	endpoints := UserEndpoints()
	if cfg.Admin {
		endpoints = AdminEndpoints()
	}

	configOpts := []Option{
		WithEndpoints(endpoints),
		WithTimeout(cfg.Timeout),
		WithMaxRetries(cfg.MaxRetries),
	}

	return NewClient(cfg.BaseURL, append(configOpts, opts...)...)
}

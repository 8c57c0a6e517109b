package redis

import "time"

type Config struct {
	ConnectionURL  string        `env:"REDIS_URL,required" envDefault:"redis://localhost:6379/0"` // ConnectionURL in the form "redis://:password@localhost:6379/0"
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`

	// KeyPrefix namespaces every key written by Storage.
	KeyPrefix string `env:"REDIS_KEY_PREFIX" envDefault:"moodlog:"`
	// ChangesChannel is the Pub/Sub channel Storage announces mutations on.
	ChangesChannel string `env:"REDIS_CHANGES_CHANNEL" envDefault:"moodlog:changes"`
}

// DefaultConfig returns the configuration used when no environment is present.
func DefaultConfig() Config {
	return Config{
		ConnectionURL:  "redis://localhost:6379/0",
		RetryAttempts:  3,
		RetryInterval:  5 * time.Second,
		ConnectTimeout: 30 * time.Second,
		KeyPrefix:      "moodlog:",
		ChangesChannel: "moodlog:changes",
	}
}

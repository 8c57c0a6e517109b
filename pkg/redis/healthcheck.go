package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultHealthcheckTimeout bounds a single probe when none is given.
const DefaultHealthcheckTimeout = 2 * time.Second

// Healthcheck returns a probe that pings client within timeout.
func Healthcheck(client redis.UniversalClient, timeout time.Duration) func(context.Context) error {
	if timeout <= 0 {
		timeout = DefaultHealthcheckTimeout
	}

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		if err := client.Ping(ctx).Err(); err != nil {
			return errors.Join(ErrUnhealthy, err)
		}
		return nil
	}
}

// Package redis connects to Redis and provides the shared durable session
// storage tier.
//
// The package wraps the go-redis client and adds:
//
//   - Connect, which pings the server with retries until ConnectTimeout.
//   - Storage, a kvstore.Store that namespaces keys with a prefix and
//     publishes a kvstore.Change on a Pub/Sub channel for every mutation.
//     Its Watch method subscribes to that channel, which is how session
//     managers in different processes learn about each other's logins and
//     logouts.
//   - Healthcheck, a probe for liveness checks.
//
// Configuration is described by Config, populated from environment variables
// via github.com/caarlos0/env.
//
// # Usage
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	durable := redis.NewStorageWithConfig(client, cfg)
//	manager := session.New(ephemeral, durable)
//
// # Errors
//
// Sentinel errors (ErrNotReady, ErrUnhealthy, ...) wrap the
// underlying go-redis errors with errors.Join and can be matched with errors.Is.
package redis

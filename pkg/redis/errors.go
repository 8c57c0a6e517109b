package redis

import "errors"

var (
	// ErrEmptyURL indicates Config.ConnectionURL is not set
	ErrEmptyURL = errors.New("redis.empty_url")

	// ErrInvalidURL indicates the connection URL could not be parsed
	ErrInvalidURL = errors.New("redis.invalid_url")

	// ErrNotReady indicates no ping succeeded before the retries ran out
	ErrNotReady = errors.New("redis.not_ready")

	// ErrUnhealthy is returned by the Healthcheck probe
	ErrUnhealthy = errors.New("redis.unhealthy")

	// ErrSubscribeFailed indicates the changes channel could not be subscribed
	ErrSubscribeFailed = errors.New("redis.subscribe_failed")
)

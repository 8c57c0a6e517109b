package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/moodlog/pkg/kvstore"
	"github.com/dmitrymomot/moodlog/pkg/logger"
)

// Storage implements kvstore.Store and kvstore.Watcher on Redis.
// Every mutation is published on a Pub/Sub channel so session managers in
// other processes sharing the same Redis learn about it.
type Storage struct {
	db      redis.UniversalClient
	prefix  string
	channel string
	logger  *slog.Logger
}

// StorageOption configures a Storage.
type StorageOption func(*Storage)

// WithKeyPrefix namespaces every key with prefix.
func WithKeyPrefix(prefix string) StorageOption {
	return func(s *Storage) {
		s.prefix = prefix
	}
}

// WithChangesChannel sets the Pub/Sub channel used for change notifications.
func WithChangesChannel(channel string) StorageOption {
	return func(s *Storage) {
		if channel != "" {
			s.channel = channel
		}
	}
}

// WithLogger sets the logger used to report undecodable notifications.
func WithLogger(l *slog.Logger) StorageOption {
	return func(s *Storage) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewStorage wraps redisClient as a durable session storage tier.
func NewStorage(redisClient redis.UniversalClient, opts ...StorageOption) *Storage {
	s := &Storage{
		db:      redisClient,
		prefix:  DefaultConfig().KeyPrefix,
		channel: DefaultConfig().ChangesChannel,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewStorageWithConfig wraps redisClient using the prefix and channel from cfg.
func NewStorageWithConfig(redisClient redis.UniversalClient, cfg Config, opts ...StorageOption) *Storage {
	base := []StorageOption{WithKeyPrefix(cfg.KeyPrefix), WithChangesChannel(cfg.ChangesChannel)}
	return NewStorage(redisClient, append(base, opts...)...)
}

// Get returns the value under key; redis.Nil is reported as absent.
func (s *Storage) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.db.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// Set stores value without expiration and publishes the change in the same transaction.
func (s *Storage) Set(ctx context.Context, key, value string) error {
	payload, err := s.changePayload(ctx, key)
	if err != nil {
		return err
	}

	_, err = s.db.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.prefix+key, value, 0)
		pipe.Publish(ctx, s.channel, payload)
		return nil
	})
	return err
}

// Remove deletes key and publishes a change when something was deleted.
func (s *Storage) Remove(ctx context.Context, key string) error {
	n, err := s.db.Del(ctx, s.prefix+key).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return nil
	}

	payload, err := s.changePayload(ctx, key)
	if err != nil {
		return err
	}
	return s.db.Publish(ctx, s.channel, payload).Err()
}

// Watch subscribes to the changes channel. The subscription is confirmed
// before Watch returns, so no change published afterwards is missed.
func (s *Storage) Watch(ctx context.Context) (<-chan kvstore.Change, error) {
	sub := s.db.Subscribe(ctx, s.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, errors.Join(ErrSubscribeFailed, err)
	}

	out := make(chan kvstore.Change)
	go func() {
		defer close(out)
		defer sub.Close()

		in := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-in:
				if !ok {
					return
				}
				var change kvstore.Change
				if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil || change.Key == "" {
					s.logger.WarnContext(ctx, "skipping malformed change notification",
						logger.Component("redis"),
						logger.Error(err),
						slog.String("channel", msg.Channel),
					)
					continue
				}
				select {
				case out <- change:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// Conn returns the underlying Redis client for advanced operations.
func (s *Storage) Conn() redis.UniversalClient {
	return s.db
}

func (s *Storage) changePayload(ctx context.Context, key string) (string, error) {
	raw, err := json.Marshal(kvstore.Change{Key: key, Origin: kvstore.OriginFromContext(ctx)})
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

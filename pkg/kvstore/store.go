package kvstore

import "context"

// Store is a string key-value store holding one storage tier.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the value stored under key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key.
	Set(ctx context.Context, key, value string) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
}

// Change describes a mutation of a single key.
type Change struct {
	Key string `json:"key"`
	// Origin identifies the writer, as set with WithOrigin. Empty when unknown.
	Origin string `json:"origin,omitempty"`
}

// Watcher is implemented by stores that can report mutations made through
// any handle sharing the same underlying storage (other processes included).
type Watcher interface {
	// Watch streams changes until ctx is done, then closes the channel.
	Watch(ctx context.Context) (<-chan Change, error)
}

type originKey struct{}

// WithOrigin tags every write made with the returned context with id.
func WithOrigin(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, originKey{}, id)
}

// OriginFromContext returns the writer id set with WithOrigin.
func OriginFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(originKey{}).(string)
	return id
}

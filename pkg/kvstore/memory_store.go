package kvstore

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/dmitrymomot/moodlog/pkg/broadcast"
)

// MemoryStore implements Store with an in-memory map.
// It serves as the ephemeral tier: contents live as long as the process.
type MemoryStore struct {
	mu      sync.RWMutex
	data    map[string]string
	changes *broadcast.MemoryBroadcaster[Change]
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithChangeNotifications makes the store implement Watcher.
// bufferSize is the per-watcher backlog; changes beyond it are dropped.
func WithChangeNotifications(bufferSize int) MemoryOption {
	return func(m *MemoryStore) {
		m.changes = broadcast.NewMemoryBroadcaster[Change](bufferSize)
	}
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	m := &MemoryStore{data: make(map[string]string)}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get retrieves the value stored under key
func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	return v, ok, nil
}

// Set stores value under key. Writing the current value again is not reported as a change.
func (m *MemoryStore) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	prev, existed := m.data[key]
	m.data[key] = value
	m.mu.Unlock()

	if !existed || prev != value {
		m.notify(ctx, key)
	}
	return nil
}

// Remove deletes key
func (m *MemoryStore) Remove(ctx context.Context, key string) error {
	m.mu.Lock()
	_, existed := m.data[key]
	delete(m.data, key)
	m.mu.Unlock()

	if existed {
		m.notify(ctx, key)
	}
	return nil
}

// Clear removes every key, reporting one change per removed key.
func (m *MemoryStore) Clear(ctx context.Context) {
	m.mu.Lock()
	keys := slices.Sorted(maps.Keys(m.data))
	clear(m.data)
	m.mu.Unlock()

	for _, key := range keys {
		m.notify(ctx, key)
	}
}

// Len returns the number of stored keys
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// Keys returns the stored keys in lexical order
func (m *MemoryStore) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Sorted(maps.Keys(m.data))
}

// Watch streams changes made through this store until ctx is done.
func (m *MemoryStore) Watch(ctx context.Context) (<-chan Change, error) {
	if m.changes == nil {
		return nil, ErrWatchUnsupported
	}

	sub := m.changes.Subscribe(ctx)
	out := make(chan Change)

	go func() {
		defer close(out)
		defer sub.Close()

		in := sub.Receive(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-in:
				if !ok {
					return
				}
				select {
				case out <- msg.Data:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// Close stops change notifications and closes every open watch channel.
func (m *MemoryStore) Close() error {
	if m.changes != nil {
		return m.changes.Close()
	}
	return nil
}

func (m *MemoryStore) notify(ctx context.Context, key string) {
	if m.changes == nil {
		return
	}
	_ = m.changes.Broadcast(ctx, broadcast.Message[Change]{
		Data: Change{Key: key, Origin: OriginFromContext(ctx)},
	})
}

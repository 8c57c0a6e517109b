package kvstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/moodlog/pkg/kvstore"
)

func TestMemoryStore_GetSetRemove(t *testing.T) {
	store := kvstore.NewMemoryStore()
	defer store.Close()

	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		v, ok, err := store.Get(ctx, "auth_token")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, v)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "auth_token", "tok-abc"))

		v, ok, err := store.Get(ctx, "auth_token")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "tok-abc", v)
	})

	t.Run("empty value is present", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "refresh_token", ""))

		_, ok, err := store.Get(ctx, "refresh_token")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("remove is idempotent", func(t *testing.T) {
		require.NoError(t, store.Remove(ctx, "auth_token"))
		require.NoError(t, store.Remove(ctx, "auth_token"))

		_, ok, err := store.Get(ctx, "auth_token")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("clear and keys", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "b", "2"))
		require.NoError(t, store.Set(ctx, "a", "1"))
		assert.Equal(t, []string{"a", "b", "refresh_token"}, store.Keys())

		store.Clear(ctx)
		assert.Equal(t, 0, store.Len())
	})
}

func TestMemoryStore_Watch(t *testing.T) {
	t.Run("unsupported without notifications", func(t *testing.T) {
		store := kvstore.NewMemoryStore()
		_, err := store.Watch(context.Background())
		assert.ErrorIs(t, err, kvstore.ErrWatchUnsupported)
	})

	t.Run("reports changes with origin", func(t *testing.T) {
		store := kvstore.NewMemoryStore(kvstore.WithChangeNotifications(8))
		defer store.Close()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		changes, err := store.Watch(ctx)
		require.NoError(t, err)

		writeCtx := kvstore.WithOrigin(context.Background(), "tab-2")
		require.NoError(t, store.Set(writeCtx, "auth_token", "tok"))
		require.NoError(t, store.Set(writeCtx, "auth_token", "tok")) // unchanged value
		require.NoError(t, store.Remove(writeCtx, "auth_token"))
		require.NoError(t, store.Remove(writeCtx, "auth_token")) // already gone

		assert.Equal(t, kvstore.Change{Key: "auth_token", Origin: "tab-2"}, receive(t, changes))
		assert.Equal(t, kvstore.Change{Key: "auth_token", Origin: "tab-2"}, receive(t, changes))

		select {
		case c := <-changes:
			t.Fatalf("unexpected change %+v", c)
		case <-time.After(50 * time.Millisecond):
		}
	})

	t.Run("channel closes on cancel", func(t *testing.T) {
		store := kvstore.NewMemoryStore(kvstore.WithChangeNotifications(8))
		defer store.Close()

		ctx, cancel := context.WithCancel(context.Background())
		changes, err := store.Watch(ctx)
		require.NoError(t, err)
		cancel()

		require.Eventually(t, func() bool {
			select {
			case _, ok := <-changes:
				return !ok
			default:
				return false
			}
		}, time.Second, 5*time.Millisecond)
	})

	t.Run("channel closes on store close", func(t *testing.T) {
		store := kvstore.NewMemoryStore(kvstore.WithChangeNotifications(8))

		changes, err := store.Watch(context.Background())
		require.NoError(t, err)
		require.NoError(t, store.Close())

		select {
		case _, ok := <-changes:
			assert.False(t, ok)
		case <-time.After(time.Second):
			t.Fatal("watch channel not closed")
		}
	})
}

func TestOriginFromContext(t *testing.T) {
	assert.Empty(t, kvstore.OriginFromContext(context.Background()))
	assert.Equal(t, "abc", kvstore.OriginFromContext(kvstore.WithOrigin(context.Background(), "abc")))
}

func receive(t *testing.T, ch <-chan kvstore.Change) kvstore.Change {
	t.Helper()
	select {
	case c, ok := <-ch:
		require.True(t, ok, "watch channel closed")
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change")
		return kvstore.Change{}
	}
}

package kvstore_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/moodlog/pkg/kvstore"
	"github.com/dmitrymomot/moodlog/pkg/logger"
)

func newFileStore(t *testing.T, path string) *kvstore.FileStore {
	t.Helper()
	store, err := kvstore.NewFileStore(path, kvstore.WithFileLogger(logger.Discard()))
	require.NoError(t, err)
	return store
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "moodlog", "session.yaml")
	store := newFileStore(t, path)

	t.Run("missing file reads as empty", func(t *testing.T) {
		_, ok, err := store.Get(ctx, "auth_token")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("values persist across handles", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "auth_token", "tok-abc"))
		require.NoError(t, store.Set(ctx, "user_data", `{"id":1,"name":"alice"}`))

		other := newFileStore(t, path)
		v, ok, err := other.Get(ctx, "user_data")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, `{"id":1,"name":"alice"}`, v)
	})

	t.Run("file is private", func(t *testing.T) {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	})

	t.Run("remove is idempotent", func(t *testing.T) {
		require.NoError(t, store.Remove(ctx, "auth_token"))
		require.NoError(t, store.Remove(ctx, "auth_token"))

		_, ok, err := store.Get(ctx, "auth_token")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("corrupt file is reported", func(t *testing.T) {
		broken := filepath.Join(t.TempDir(), "broken.yaml")
		require.NoError(t, os.WriteFile(broken, []byte("entries: [unterminated"), 0o600))

		_, _, err := newFileStore(t, broken).Get(ctx, "auth_token")
		assert.ErrorIs(t, err, kvstore.ErrCorruptFile)
	})
}

func TestFileStore_ConcurrentHandles(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.yaml")
	stores := []*kvstore.FileStore{newFileStore(t, path), newFileStore(t, path)}

	const perStore = 50
	var wg sync.WaitGroup
	errs := make(chan error, len(stores)*perStore)
	for i, store := range stores {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := range perStore {
				errs <- store.Set(ctx, fmt.Sprintf("tab%d_key%02d", i, n), "v")
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	reader := newFileStore(t, path)
	for i := range stores {
		for n := range perStore {
			_, ok, err := reader.Get(ctx, fmt.Sprintf("tab%d_key%02d", i, n))
			require.NoError(t, err)
			assert.True(t, ok, "tab%d_key%02d", i, n)
		}
	}
}

func TestFileStore_Locked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	store := newFileStore(t, path)

	held := flock.New(path + ".lock")
	require.NoError(t, held.Lock())
	defer held.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	err := store.Set(ctx, "auth_token", "tok")
	assert.ErrorIs(t, err, kvstore.ErrLocked)

	require.NoError(t, held.Unlock())
	assert.NoError(t, store.Set(context.Background(), "auth_token", "tok"))
}

func TestFileStore_Watch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	watched := newFileStore(t, path)
	writer := newFileStore(t, path)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	writeCtx := kvstore.WithOrigin(context.Background(), "proc-2")
	require.NoError(t, writer.Set(writeCtx, "remember_me", "true"))

	changes, err := watched.Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, writer.Set(writeCtx, "auth_token", "tok"))
	assert.Equal(t, kvstore.Change{Key: "auth_token", Origin: "proc-2"}, receive(t, changes))

	require.NoError(t, writer.Remove(writeCtx, "auth_token"))
	assert.Equal(t, kvstore.Change{Key: "auth_token", Origin: "proc-2"}, receive(t, changes))

	cancel()
	for range changes {
	}
}

package kvstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/moodlog/pkg/logger"
)

const (
	fileFormatVersion = 1
	lockRetryDelay    = 5 * time.Millisecond
)

// fileDocument is the on-disk layout of a FileStore.
type fileDocument struct {
	Version int               `yaml:"version"`
	Origin  string            `yaml:"origin,omitempty"`
	Entries map[string]string `yaml:"entries"`
}

// FileStore implements Store on top of a YAML file.
// It serves as the durable tier: contents survive process restarts and are
// shared by every process pointing at the same path.
// Each operation reads the file, so writes from other processes are visible immediately.
// Writes hold an advisory lock on a sibling ".lock" file for the whole
// read-modify-write, so concurrent writers never drop each other's keys.
type FileStore struct {
	path   string
	mu     sync.Mutex
	lock   *flock.Flock
	logger *slog.Logger
}

// FileOption configures a FileStore.
type FileOption func(*FileStore)

// WithFileLogger sets the logger used to report watch failures.
func WithFileLogger(l *slog.Logger) FileOption {
	return func(f *FileStore) {
		if l != nil {
			f.logger = l
		}
	}
}

// NewFileStore creates a store backed by the file at path.
// The parent directory is created with 0700 permissions when missing;
// the file itself is created on first write.
func NewFileStore(path string, opts ...FileOption) (*FileStore, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve store path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o700); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	f := &FileStore{path: abs, lock: flock.New(abs + ".lock"), logger: slog.Default()}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Path returns the absolute path of the backing file
func (f *FileStore) Path() string {
	return f.path
}

// Get retrieves the value stored under key
func (f *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if err != nil {
		return "", false, err
	}
	v, ok := doc.Entries[key]
	return v, ok, nil
}

// Set stores value under key
func (f *FileStore) Set(ctx context.Context, key, value string) error {
	return f.update(ctx, func(entries map[string]string) bool {
		if prev, ok := entries[key]; ok && prev == value {
			return false
		}
		entries[key] = value
		return true
	})
}

// Remove deletes key
func (f *FileStore) Remove(ctx context.Context, key string) error {
	return f.update(ctx, func(entries map[string]string) bool {
		if _, ok := entries[key]; !ok {
			return false
		}
		delete(entries, key)
		return true
	})
}

// update runs mutate on the current entries under the cross-process lock and
// saves the file when mutate reports a change.
func (f *FileStore) update(ctx context.Context, mutate func(entries map[string]string) bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	locked, err := f.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return errors.Join(ErrLocked, err)
	}
	if !locked {
		return ErrLocked
	}
	defer func() { _ = f.lock.Unlock() }()

	doc, err := f.load()
	if err != nil {
		return err
	}
	if !mutate(doc.Entries) {
		return nil
	}
	doc.Origin = OriginFromContext(ctx)
	return f.save(doc)
}

// Watch reports changes to the backing file made by any process.
// Each rewrite of the file is diffed against the previous contents and one
// Change is emitted per added, modified or removed key.
func (f *FileStore) Watch(ctx context.Context) (<-chan Change, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	// the directory is watched because writes replace the file by rename
	if err := w.Add(filepath.Dir(f.path)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch store directory: %w", err)
	}

	f.mu.Lock()
	snapshot, err := f.load()
	f.mu.Unlock()
	if err != nil {
		f.logger.WarnContext(ctx, "initial store snapshot failed",
			logger.Component("kvstore"),
			logger.Error(err),
		)
		snapshot = newFileDocument()
	}

	out := make(chan Change)
	go func() {
		defer close(out)
		defer w.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				f.logger.WarnContext(ctx, "store watch error",
					logger.Component("kvstore"),
					logger.Error(err),
				)
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != f.path || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}

				f.mu.Lock()
				current, err := f.load()
				f.mu.Unlock()
				if err != nil {
					// a partially written file is picked up on its next event
					continue
				}

				for _, key := range diffKeys(snapshot.Entries, current.Entries) {
					select {
					case out <- Change{Key: key, Origin: current.Origin}:
					case <-ctx.Done():
						return
					}
				}
				snapshot = current
			}
		}
	}()

	return out, nil
}

func newFileDocument() fileDocument {
	return fileDocument{Version: fileFormatVersion, Entries: make(map[string]string)}
}

// load reads the backing file; a missing file is an empty store.
func (f *FileStore) load() (fileDocument, error) {
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return newFileDocument(), nil
	}
	if err != nil {
		return fileDocument{}, fmt.Errorf("read store file: %w", err)
	}

	doc := newFileDocument()
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fileDocument{}, errors.Join(ErrCorruptFile, err)
	}
	if doc.Entries == nil {
		doc.Entries = make(map[string]string)
	}
	return doc, nil
}

// save writes doc to a temp file in the same directory and renames it into
// place so readers never observe a partial file.
func (f *FileStore) save(doc fileDocument) error {
	doc.Version = fileFormatVersion
	raw, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode store file: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".kvstore-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("replace store file: %w", err)
	}
	return nil
}

// diffKeys returns, in lexical order, every key whose presence or value differs.
func diffKeys(before, after map[string]string) []string {
	changed := make(map[string]struct{})
	for k, v := range after {
		if prev, ok := before[k]; !ok || prev != v {
			changed[k] = struct{}{}
		}
	}
	for k := range before {
		if _, ok := after[k]; !ok {
			changed[k] = struct{}{}
		}
	}
	return slices.Sorted(maps.Keys(changed))
}

package session_test

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/moodlog/pkg/fingerprint"
	"github.com/dmitrymomot/moodlog/pkg/kvstore"
	"github.com/dmitrymomot/moodlog/pkg/session"
)

const scenarioNow = 1_000_000_000_000

// fakeClock is a settable clock whose tickers fire only on demand.
type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*fakeTicker
}

func newFakeClock(ms int64) *fakeClock {
	return &fakeClock{now: time.UnixMilli(ms)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(ms int64) {
	c.mu.Lock()
	c.now = time.UnixMilli(ms)
	c.mu.Unlock()
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func (c *fakeClock) NewTicker(d time.Duration) session.Ticker {
	t := &fakeTicker{interval: d, ch: make(chan time.Time, 8)}
	c.mu.Lock()
	c.tickers = append(c.tickers, t)
	c.mu.Unlock()
	return t
}

// all returns every ticker created so far.
func (c *fakeClock) all() []*fakeTicker {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*fakeTicker(nil), c.tickers...)
}

// active returns the tickers that were not stopped.
func (c *fakeClock) active() []*fakeTicker {
	var out []*fakeTicker
	for _, t := range c.all() {
		if !t.isStopped() {
			out = append(out, t)
		}
	}
	return out
}

// fire delivers one tick to every active ticker.
func (c *fakeClock) fire() {
	now := c.Now()
	for _, t := range c.all() {
		select {
		case t.ch <- now:
		default:
		}
	}
}

type fakeTicker struct {
	interval time.Duration
	ch       chan time.Time
	mu       sync.Mutex
	stopped  bool
}

func (t *fakeTicker) C() <-chan time.Time { return t.ch }

func (t *fakeTicker) Stop() {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
}

func (t *fakeTicker) isStopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

// logBuffer collects JSON log lines from concurrent writers.
type logBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *logBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *logBuffer) count(level string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Count(b.buf.String(), `"level":"`+level+`"`)
}

func (b *logBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

var testEnvironment = fingerprint.Environment{
	ScreenWidth:  1920,
	ScreenHeight: 1080,
	Timezone:     "Europe/Berlin",
	Language:     "en-US",
	Platform:     "linux/amd64",
}

type fixture struct {
	ephemeral *kvstore.MemoryStore
	durable   *kvstore.MemoryStore
	clock     *fakeClock
	logs      *logBuffer
	manager   *session.Manager
}

func newFixture(t *testing.T, opts ...session.Option) *fixture {
	t.Helper()
	return newFixtureWithDurable(t, kvstore.NewMemoryStore(), opts...)
}

func newFixtureWithDurable(t *testing.T, durable *kvstore.MemoryStore, opts ...session.Option) *fixture {
	t.Helper()

	f := &fixture{
		ephemeral: kvstore.NewMemoryStore(),
		durable:   durable,
		clock:     newFakeClock(scenarioNow),
		logs:      &logBuffer{},
	}

	base := []session.Option{
		session.WithClock(f.clock),
		session.WithLogger(slog.New(slog.NewJSONHandler(f.logs, &slog.HandlerOptions{Level: slog.LevelDebug}))),
		session.WithFingerprintEnvironment(func() fingerprint.Environment { return testEnvironment }),
	}
	f.manager = session.New(f.ephemeral, f.durable, append(base, opts...)...)

	t.Cleanup(func() {
		require.NoError(t, f.manager.Close())
	})

	return f
}

func alice() map[string]any {
	return map[string]any{"id": 1, "name": "alice"}
}

// receive waits for one value or fails the test.
func receive[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		var zero T
		return zero
	}
}

// nothing asserts that ch stays silent for a short while.
func nothing[T any](t *testing.T, ch <-chan T) {
	t.Helper()
	select {
	case v := <-ch:
		t.Fatalf("unexpected event: %+v", v)
	case <-time.After(50 * time.Millisecond):
	}
}

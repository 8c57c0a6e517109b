package session

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/dmitrymomot/moodlog/pkg/logger"
)

// observers is an ordered subscriber list for one event kind.
type observers[T any] struct {
	mu   sync.Mutex
	next uint64
	subs []observer[T]
}

type observer[T any] struct {
	id uint64
	fn func(T)
}

func (o *observers[T]) add(fn func(T)) func() {
	if fn == nil {
		return func() {}
	}

	o.mu.Lock()
	o.next++
	id := o.next
	o.subs = append(o.subs, observer[T]{id: id, fn: fn})
	o.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { o.remove(id) })
	}
}

func (o *observers[T]) remove(id uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i, s := range o.subs {
		if s.id == id {
			o.subs = append(o.subs[:i:i], o.subs[i+1:]...)
			return
		}
	}
}

func (o *observers[T]) len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.subs)
}

// emit calls every subscriber in registration order outside the lock.
func (o *observers[T]) emit(log *slog.Logger, event T) {
	dispatch(log, o.snapshot(), event)
}

// snapshot returns the subscribers registered right now.
func (o *observers[T]) snapshot() []observer[T] {
	o.mu.Lock()
	defer o.mu.Unlock()
	return slices.Clone(o.subs)
}

func dispatch[T any](log *slog.Logger, subs []observer[T], event T) {
	for _, s := range subs {
		call(log, s.fn, event)
	}
}

func call[T any](log *slog.Logger, fn func(T), event T) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("session subscriber panicked",
				logger.Error(fmt.Errorf("panic: %v", r)),
				slog.String("event", fmt.Sprintf("%T", event)),
			)
		}
	}()
	fn(event)
}

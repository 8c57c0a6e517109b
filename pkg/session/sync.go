package session

import (
	"context"
	"errors"

	"github.com/dmitrymomot/moodlog/pkg/kvstore"
	"github.com/dmitrymomot/moodlog/pkg/logger"
)

// StartSync listens for changes other contexts make to the durable tier and
// publishes the resulting state to state-changed subscribers. It returns
// ErrSyncUnsupported when the durable store cannot report changes. Calling it
// while a listener is running is a no-op.
func (m *Manager) StartSync(ctx context.Context) error {
	watcher, ok := m.durable.(kvstore.Watcher)
	if !ok {
		return ErrSyncUnsupported
	}

	m.syncMu.Lock()
	defer m.syncMu.Unlock()
	if m.syncCancel != nil {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	changes, err := watcher.Watch(ctx)
	if err != nil {
		cancel()
		return errors.Join(ErrStorage, err)
	}

	m.syncGen++
	m.syncCancel = cancel
	go m.runSync(ctx, m.syncGen, changes)

	return nil
}

// StopSync stops the change listener started by StartSync.
func (m *Manager) StopSync() {
	m.syncMu.Lock()
	defer m.syncMu.Unlock()
	if m.syncCancel != nil {
		m.syncCancel()
		m.syncCancel = nil
	}
}

func (m *Manager) runSync(ctx context.Context, gen uint64, changes <-chan kvstore.Change) {
	defer func() {
		m.syncMu.Lock()
		if m.syncGen == gen && m.syncCancel != nil {
			m.syncCancel()
			m.syncCancel = nil
		}
		m.syncMu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.ctx.Done():
			return
		case change, ok := <-changes:
			if !ok {
				return
			}
			if change.Origin != "" && change.Origin == m.id {
				continue
			}
			if change.Key != m.keys.token && change.Key != m.keys.user {
				continue
			}
			m.applyExternalChange(ctx, change)
		}
	}
}

func (m *Manager) applyExternalChange(ctx context.Context, change kvstore.Change) {
	summary, err := m.GetAuthSummary(ctx)
	if err != nil {
		m.logger.ErrorContext(ctx, "failed to read session after external change",
			logger.Key(change.Key), logger.Error(err))
		return
	}

	m.logger.DebugContext(ctx, "session changed in another context",
		logger.Key(change.Key),
		logger.Origin(change.Origin),
	)

	if !summary.IsAuthenticated {
		m.StopAutoRefresh()
	} else if m.SchedulerState() == Stopped {
		m.StartAutoRefresh()
	}

	m.stateChanged.emit(m.logger, summary)
}

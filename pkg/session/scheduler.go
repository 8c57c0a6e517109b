package session

import (
	"context"

	"github.com/dmitrymomot/moodlog/pkg/logger"
)

// SchedulerState is the state of the refresh scheduler.
type SchedulerState int

const (
	Stopped SchedulerState = iota
	Running
)

func (s SchedulerState) String() string {
	if s == Running {
		return "running"
	}
	return "stopped"
}

// StartAutoRefresh (re)arms the recurring refresh check. Any previous timer
// is cancelled first, so at most one is active. It does nothing after Close.
func (m *Manager) StartAutoRefresh() {
	m.schedMu.Lock()
	if m.ctx.Err() != nil {
		m.schedMu.Unlock()
		return
	}
	m.stopTickerLocked()
	m.gen++
	gen := m.gen
	ticker := m.clock.NewTicker(m.config.RefreshInterval)
	stop := make(chan struct{})
	m.ticker, m.tickStop = ticker, stop
	m.schedMu.Unlock()

	m.logger.Debug("auto refresh started", logger.Duration(m.config.RefreshInterval))

	go m.runTicker(gen, ticker, stop)
}

// StopAutoRefresh cancels the refresh timer. Once it returns no tick begins
// delivering a refresh-needed event; a delivery already under way finishes.
// Stopping a stopped scheduler is a no-op.
func (m *Manager) StopAutoRefresh() {
	m.schedMu.Lock()
	defer m.schedMu.Unlock()
	if m.ticker == nil {
		return
	}
	m.stopTickerLocked()
	m.gen++
	m.logger.Debug("auto refresh stopped")
}

// SchedulerState reports whether the refresh timer is armed.
func (m *Manager) SchedulerState() SchedulerState {
	m.schedMu.Lock()
	defer m.schedMu.Unlock()
	if m.ticker == nil {
		return Stopped
	}
	return Running
}

// Hide stops the scheduler while the session owner is inactive.
func (m *Manager) Hide() {
	m.StopAutoRefresh()
}

// Show restarts the scheduler when a non-expired session is stored.
func (m *Manager) Show(ctx context.Context) error {
	data, err := m.GetAuthData(ctx)
	if err != nil {
		return err
	}
	if data.Token != "" && !data.IsExpired {
		m.StartAutoRefresh()
	}
	return nil
}

func (m *Manager) stopTickerLocked() {
	if m.ticker == nil {
		return
	}
	m.ticker.Stop()
	close(m.tickStop)
	m.ticker, m.tickStop = nil, nil
}

func (m *Manager) runTicker(gen uint64, ticker Ticker, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case <-m.ctx.Done():
			return
		case <-ticker.C():
			m.tick(gen)
		}
	}
}

func (m *Manager) current(gen uint64) bool {
	m.schedMu.Lock()
	defer m.schedMu.Unlock()
	return m.gen == gen && m.ticker != nil
}

// tick emits refresh-needed when a token is stored and close to expiry.
// Read failures are logged and never emit.
func (m *Manager) tick(gen uint64) {
	if !m.current(gen) {
		return
	}

	rec, err := m.readRecord(m.ctx)
	if err != nil {
		m.logger.Error("refresh check failed", logger.Error(err))
		return
	}

	if rec.Token == "" || !IsNearExpiry(rec.ExpiresAt, m.clock.Now(), m.config.NearExpiryThreshold) {
		return
	}

	m.logger.Info("token refresh needed", logger.Event("refresh_needed"), logger.ExpiresAt(rec.ExpiresAt))

	subs, ok := m.commitTick(gen)
	if !ok {
		return
	}
	dispatch(m.logger, subs, rec)
}

// commitTick is the point a tick fires: the generation check and the
// subscriber snapshot happen under the lock StopAutoRefresh takes, and no
// caller code runs between it and delivery.
func (m *Manager) commitTick(gen uint64) ([]observer[Record], bool) {
	m.schedMu.Lock()
	defer m.schedMu.Unlock()
	if m.gen != gen || m.ticker == nil {
		return nil, false
	}
	return m.refreshNeeded.snapshot(), true
}

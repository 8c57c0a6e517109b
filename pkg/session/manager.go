package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/moodlog/pkg/fingerprint"
	"github.com/dmitrymomot/moodlog/pkg/kvstore"
	"github.com/dmitrymomot/moodlog/pkg/logger"
)

// Manager owns one session scope: its two storage tiers, refresh scheduler,
// change listener and subscribers.
type Manager struct {
	ephemeral   kvstore.Store
	durable     kvstore.Store
	config      Config
	keys        keySet
	clock       Clock
	logger      *slog.Logger
	environment func() fingerprint.Environment
	id          string

	refreshNeeded observers[Record]
	stateChanged  observers[Summary]

	schedMu  sync.Mutex
	gen      uint64
	ticker   Ticker
	tickStop chan struct{}

	syncMu     sync.Mutex
	syncGen    uint64
	syncCancel context.CancelFunc

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a session manager over the given ephemeral and durable tiers.
func New(ephemeral, durable kvstore.Store, opts ...Option) *Manager {
	if ephemeral == nil || durable == nil {
		// Both tiers are required to honor tier selection
		panic("session: ephemeral and durable stores are required")
	}

	m := &Manager{
		ephemeral:   ephemeral,
		durable:     durable,
		config:      DefaultConfig(),
		clock:       realClock{},
		logger:      slog.Default(),
		environment: fingerprint.Detect,
		id:          uuid.NewString(),
	}

	for _, opt := range opts {
		opt(m)
	}

	m.config = m.config.normalized()
	m.keys = newKeySet(m.config.KeyPrefix)
	m.logger = m.logger.With(logger.Component("session"), logger.Scope(m.config.Scope))
	m.ctx, m.cancel = context.WithCancel(context.Background())

	return m
}

// ID returns the origin id the Manager tags its writes with.
func (m *Manager) ID() string {
	return m.id
}

// SaveAuthData persists a freshly issued session, starts the refresh
// scheduler and notifies state subscribers.
// With RememberMe false every durable key of this scope is removed, including
// a remembered session written there by another process.
func (m *Manager) SaveAuthData(ctx context.Context, p SaveParams) error {
	user, err := encodeUser(p.User)
	if err != nil {
		return err
	}

	ctx = m.tag(ctx)
	expiresAt := m.clock.Now().Add(p.ExpiresIn)

	values := []field{
		{m.keys.token, p.Token},
		{m.keys.expiry, encodeExpiry(expiresAt)},
		{m.keys.user, user},
		{m.keys.rememberMe, encodeBool(p.RememberMe)},
		{m.keys.fingerprint, m.GetDeviceFingerprint()},
	}
	if p.RefreshToken != "" {
		values = append(values, field{m.keys.refresh, p.RefreshToken})
	}

	for _, tier := range writeTiers(p.RememberMe) {
		if err := m.write(ctx, tier, values...); err != nil {
			return err
		}
		if p.RefreshToken == "" {
			if err := m.remove(ctx, tier, m.keys.refresh); err != nil {
				return err
			}
		}
	}

	if !p.RememberMe {
		// A session that is not remembered must not linger in durable storage
		if err := m.remove(ctx, Durable, m.keys.all()...); err != nil {
			return err
		}
	}

	m.logger.DebugContext(ctx, "session saved",
		slog.Bool("remember_me", p.RememberMe),
		logger.ExpiresAt(expiresAt),
	)

	m.StartAutoRefresh()
	m.publishState(ctx)

	return nil
}

// GetAuthData reads the stored session through the tier fallback rules.
func (m *Manager) GetAuthData(ctx context.Context) (AuthData, error) {
	rec, err := m.readRecord(ctx)
	if err != nil {
		return AuthData{}, err
	}

	return AuthData{
		Token:        rec.Token,
		RefreshToken: rec.RefreshToken,
		User:         rec.User,
		IsExpired:    IsExpired(rec.ExpiresAt, m.clock.Now()),
		RememberMe:   rec.RememberMe,
		ExpiresAt:    rec.ExpiresAt,
	}, nil
}

// GetToken returns the stored token, or an empty string when there is none
// or it has expired.
func (m *Manager) GetToken(ctx context.Context) (string, error) {
	data, err := m.GetAuthData(ctx)
	if err != nil {
		return "", err
	}
	if data.IsExpired {
		return "", nil
	}
	return data.Token, nil
}

// ClearAuthData removes every session key from both tiers and stops the
// refresh scheduler. Clearing an empty session is a no-op.
func (m *Manager) ClearAuthData(ctx context.Context) error {
	ctx = m.tag(ctx)

	errs := make([]error, 0, 2)
	for _, tier := range []Tier{Ephemeral, Durable} {
		if err := m.remove(ctx, tier, m.keys.all()...); err != nil {
			errs = append(errs, err)
		}
	}

	m.StopAutoRefresh()

	if err := errors.Join(errs...); err != nil {
		return err
	}

	m.logger.DebugContext(ctx, "session cleared")
	m.stateChanged.emit(m.logger, Summary{})

	return nil
}

// UpdateToken replaces the token and its expiry, keeping the refresh token
// and the principal.
func (m *Manager) UpdateToken(ctx context.Context, token string, expiresIn time.Duration) error {
	ctx = m.tag(ctx)

	remember, err := m.resolveRememberMe(ctx)
	if err != nil {
		return err
	}

	expiresAt := m.clock.Now().Add(expiresIn)
	for _, tier := range writeTiers(remember) {
		if err := m.write(ctx, tier,
			field{m.keys.token, token},
			field{m.keys.expiry, encodeExpiry(expiresAt)},
		); err != nil {
			return err
		}
	}

	m.logger.DebugContext(ctx, "token updated", logger.ExpiresAt(expiresAt))
	m.publishState(ctx)

	return nil
}

// UpdateRefreshToken replaces the stored refresh token, for APIs that rotate
// it on every refresh.
func (m *Manager) UpdateRefreshToken(ctx context.Context, refreshToken string) error {
	ctx = m.tag(ctx)

	remember, err := m.resolveRememberMe(ctx)
	if err != nil {
		return err
	}

	for _, tier := range writeTiers(remember) {
		if err := m.write(ctx, tier, field{m.keys.refresh, refreshToken}); err != nil {
			return err
		}
	}
	return nil
}

// IsTokenNearExpiry reports whether the stored expiry falls inside the
// configured near-expiry window.
func (m *Manager) IsTokenNearExpiry(ctx context.Context) (bool, error) {
	rec, err := m.readRecord(ctx)
	if err != nil {
		return false, err
	}
	return IsNearExpiry(rec.ExpiresAt, m.clock.Now(), m.config.NearExpiryThreshold), nil
}

// ValidateSession reports whether a token and a principal are stored.
// A device fingerprint mismatch is logged but does not invalidate the session.
func (m *Manager) ValidateSession(ctx context.Context) (bool, error) {
	rec, err := m.readRecord(ctx)
	if err != nil {
		return false, err
	}
	if rec.Token == "" || rec.User == nil {
		return false, nil
	}

	if rec.DeviceFingerprint != "" && !fingerprint.Validate(m.environment(), rec.DeviceFingerprint) {
		m.logger.WarnContext(ctx, "device fingerprint mismatch",
			slog.String("stored", rec.DeviceFingerprint),
			slog.String("current", m.GetDeviceFingerprint()),
		)
	}

	return true, nil
}

// GetDeviceFingerprint returns the fingerprint of the current environment.
func (m *Manager) GetDeviceFingerprint() string {
	return fingerprint.Generate(m.environment())
}

// SaveDeviceFingerprint stores the current fingerprint with the session.
func (m *Manager) SaveDeviceFingerprint(ctx context.Context) error {
	ctx = m.tag(ctx)

	remember, err := m.resolveRememberMe(ctx)
	if err != nil {
		return err
	}

	fp := m.GetDeviceFingerprint()
	for _, tier := range writeTiers(remember) {
		if err := m.write(ctx, tier, field{m.keys.fingerprint, fp}); err != nil {
			return err
		}
	}
	return nil
}

// GetAuthSummary returns the current authentication state.
func (m *Manager) GetAuthSummary(ctx context.Context) (Summary, error) {
	rec, err := m.readRecord(ctx)
	if err != nil {
		return Summary{}, err
	}
	return m.summarize(rec), nil
}

// OnRefreshNeeded registers fn for refresh-needed events. The returned func
// removes the subscription.
func (m *Manager) OnRefreshNeeded(fn func(Record)) func() {
	return m.refreshNeeded.add(fn)
}

// OnStateChanged registers fn for state-changed events. The returned func
// removes the subscription.
func (m *Manager) OnStateChanged(fn func(Summary)) func() {
	return m.stateChanged.add(fn)
}

// Close stops the refresh scheduler and the change listener.
// The scheduler cannot be restarted afterwards.
func (m *Manager) Close() error {
	m.cancel()
	m.StopAutoRefresh()
	m.StopSync()
	return nil
}

func (m *Manager) summarize(rec Record) Summary {
	now := m.clock.Now()
	authenticated := rec.Token != "" && rec.User != nil && !IsExpired(rec.ExpiresAt, now)

	return Summary{
		IsAuthenticated: authenticated,
		User:            rec.User,
		TokenExpiry:     rec.ExpiresAt,
		RememberMe:      rec.RememberMe,
		NeedsRefresh:    authenticated && IsNearExpiry(rec.ExpiresAt, now, m.config.NearExpiryThreshold),
	}
}

func (m *Manager) publishState(ctx context.Context) {
	if m.stateChanged.len() == 0 {
		return
	}
	summary, err := m.GetAuthSummary(ctx)
	if err != nil {
		m.logger.ErrorContext(ctx, "failed to read session state", logger.Error(err))
		return
	}
	m.stateChanged.emit(m.logger, summary)
}

func (m *Manager) tag(ctx context.Context) context.Context {
	return kvstore.WithOrigin(ctx, m.id)
}

package authstore

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrymomot/moodlog/pkg/authapi"
	"github.com/dmitrymomot/moodlog/pkg/logger"
	"github.com/dmitrymomot/moodlog/pkg/session"
)

// Client is the part of the auth API the store calls.
// *authapi.Client implements it.
type Client interface {
	Login(ctx context.Context, creds authapi.Credentials) (authapi.TokenResponse, error)
	Register(ctx context.Context, reg authapi.Registration) (authapi.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (authapi.TokenResponse, error)
	Logout(ctx context.Context) error
}

// Store ties a session.Manager to the auth API: it saves issued sessions,
// answers refresh-needed events and tracks the latest auth state.
type Store struct {
	manager        *session.Manager
	client         Client
	logger         *slog.Logger
	refreshTimeout time.Duration

	mu    sync.RWMutex
	state session.Summary

	refreshing  atomic.Bool
	unsubscribe []func()
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRefreshTimeout bounds a refresh triggered by the scheduler. Default is 30 seconds.
func WithRefreshTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.refreshTimeout = d
		}
	}
}

// New creates a store and subscribes it to the manager's events.
func New(manager *session.Manager, client Client, opts ...Option) *Store {
	if manager == nil || client == nil {
		panic("authstore: manager and client are required")
	}

	s := &Store{
		manager:        manager,
		client:         client,
		logger:         slog.Default(),
		refreshTimeout: 30 * time.Second,
	}

	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logger.Component("authstore"))

	s.unsubscribe = []func(){
		manager.OnStateChanged(s.setState),
		manager.OnRefreshNeeded(s.handleRefreshNeeded),
	}

	return s
}

// Login authenticates and persists the issued session.
func (s *Store) Login(ctx context.Context, creds authapi.Credentials, rememberMe bool) (session.Summary, error) {
	resp, err := s.client.Login(ctx, creds)
	if err != nil {
		return session.Summary{}, err
	}
	return s.save(ctx, resp, rememberMe)
}

// Register creates an account and persists its session.
func (s *Store) Register(ctx context.Context, reg authapi.Registration, rememberMe bool) (session.Summary, error) {
	resp, err := s.client.Register(ctx, reg)
	if err != nil {
		return session.Summary{}, err
	}
	return s.save(ctx, resp, rememberMe)
}

// Logout notifies the server when possible and always clears the local session.
func (s *Store) Logout(ctx context.Context) error {
	if err := s.client.Logout(ctx); err != nil {
		s.logger.WarnContext(ctx, "server logout failed", logger.Error(err))
	}
	return s.manager.ClearAuthData(ctx)
}

// Restore resumes a stored session on startup. An expired session with a
// refresh token is refreshed first. A valid session gets its scheduler and
// change listener started.
func (s *Store) Restore(ctx context.Context) (session.Summary, error) {
	data, err := s.manager.GetAuthData(ctx)
	if err != nil {
		return session.Summary{}, err
	}

	if data.Token != "" && data.IsExpired && data.RefreshToken != "" {
		if err := s.Refresh(ctx); err != nil && !errors.Is(err, authapi.ErrUnauthorized) {
			return session.Summary{}, err
		}
	}

	valid, err := s.manager.ValidateSession(ctx)
	if err != nil {
		return session.Summary{}, err
	}

	if valid {
		if err := s.manager.Show(ctx); err != nil {
			return session.Summary{}, err
		}
		if err := s.manager.StartSync(ctx); err != nil && !errors.Is(err, session.ErrSyncUnsupported) {
			s.logger.WarnContext(ctx, "session sync unavailable", logger.Error(err))
		}
	}

	summary, err := s.manager.GetAuthSummary(ctx)
	if err != nil {
		return session.Summary{}, err
	}
	s.setState(summary)

	return summary, nil
}

// Refresh exchanges the stored refresh token for a new access token.
// A rejected refresh token clears the session.
func (s *Store) Refresh(ctx context.Context) error {
	data, err := s.manager.GetAuthData(ctx)
	if err != nil {
		return err
	}
	return s.refresh(ctx, data.RefreshToken)
}

// State returns the latest known auth state.
func (s *Store) State() session.Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Close unsubscribes the store from the manager.
func (s *Store) Close() error {
	for _, fn := range s.unsubscribe {
		fn()
	}
	return nil
}

func (s *Store) save(ctx context.Context, resp authapi.TokenResponse, rememberMe bool) (session.Summary, error) {
	if err := s.manager.SaveAuthData(ctx, session.SaveParams{
		Token:        resp.Token,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    resp.Lifetime(),
		User:         resp.User,
		RememberMe:   rememberMe,
	}); err != nil {
		return session.Summary{}, err
	}

	summary, err := s.manager.GetAuthSummary(ctx)
	if err != nil {
		return session.Summary{}, err
	}
	s.setState(summary)

	return summary, nil
}

func (s *Store) refresh(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return ErrNoRefreshToken
	}
	if !s.refreshing.CompareAndSwap(false, true) {
		return ErrRefreshInProgress
	}
	defer s.refreshing.Store(false)

	resp, err := s.client.Refresh(ctx, refreshToken)
	if err != nil {
		if authapi.IsUnauthorized(err) {
			s.logger.InfoContext(ctx, "refresh token rejected, clearing session", logger.Error(err))
			return errors.Join(err, s.manager.ClearAuthData(ctx))
		}
		return err
	}

	if err := s.manager.UpdateToken(ctx, resp.Token, resp.Lifetime()); err != nil {
		return err
	}
	if resp.RefreshToken != "" && resp.RefreshToken != refreshToken {
		if err := s.manager.UpdateRefreshToken(ctx, resp.RefreshToken); err != nil {
			return err
		}
	}

	s.logger.DebugContext(ctx, "token refreshed", logger.ExpiresAt(time.Now().Add(resp.Lifetime())))
	return nil
}

func (s *Store) handleRefreshNeeded(rec session.Record) {
	if rec.RefreshToken == "" {
		s.logger.Info("token near expiry without refresh token")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.refreshTimeout)
	defer cancel()

	if err := s.refresh(ctx, rec.RefreshToken); err != nil && !errors.Is(err, ErrRefreshInProgress) {
		s.logger.Error("scheduled token refresh failed", logger.Error(err))
	}
}

func (s *Store) setState(summary session.Summary) {
	s.mu.Lock()
	s.state = summary
	s.mu.Unlock()
}

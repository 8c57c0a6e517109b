package session

import (
	"context"
	"errors"

	"github.com/dmitrymomot/moodlog/pkg/kvstore"
	"github.com/dmitrymomot/moodlog/pkg/logger"
)

type field struct {
	key   string
	value string
}

func (m *Manager) store(t Tier) kvstore.Store {
	if t == Durable {
		return m.durable
	}
	return m.ephemeral
}

func (m *Manager) write(ctx context.Context, t Tier, fields ...field) error {
	s := m.store(t)
	for _, f := range fields {
		if err := s.Set(ctx, f.key, f.value); err != nil {
			m.logger.ErrorContext(ctx, "failed to write session key",
				logger.Tier(t.String()), logger.Key(f.key), logger.Error(err))
			return errors.Join(ErrStorage, err)
		}
	}
	return nil
}

// remove deletes every key and reports all failures.
func (m *Manager) remove(ctx context.Context, t Tier, keys ...string) error {
	s := m.store(t)
	var errs []error
	for _, key := range keys {
		if err := s.Remove(ctx, key); err != nil {
			m.logger.ErrorContext(ctx, "failed to remove session key",
				logger.Tier(t.String()), logger.Key(key), logger.Error(err))
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(append([]error{ErrStorage}, errs...)...)
	}
	return nil
}

// resolveRememberMe reads the flag from whichever tier has it, ephemeral first.
func (m *Manager) resolveRememberMe(ctx context.Context) (bool, error) {
	for _, t := range []Tier{Ephemeral, Durable} {
		v, ok, err := m.store(t).Get(ctx, m.keys.rememberMe)
		if err != nil {
			return false, errors.Join(ErrStorage, err)
		}
		if ok {
			return decodeBool(v), nil
		}
	}
	return false, nil
}

// readField reads key from tier t, falling back to Durable when t lacks it.
func (m *Manager) readField(ctx context.Context, t Tier, key string) (string, bool, error) {
	v, ok, err := m.store(t).Get(ctx, key)
	if err != nil {
		return "", false, errors.Join(ErrStorage, err)
	}
	if ok || t == Durable {
		return v, ok, nil
	}

	v, ok, err = m.durable.Get(ctx, key)
	if err != nil {
		return "", false, errors.Join(ErrStorage, err)
	}
	return v, ok, nil
}

// readRecord loads the session. Unreadable expiry or principal values are
// logged and treated as absent.
func (m *Manager) readRecord(ctx context.Context) (Record, error) {
	remember, err := m.resolveRememberMe(ctx)
	if err != nil {
		return Record{}, err
	}

	tier := ChooseTier(remember)
	rec := Record{RememberMe: remember}

	raw := make(map[string]string, 4)
	for _, key := range []string{m.keys.token, m.keys.refresh, m.keys.expiry, m.keys.user, m.keys.fingerprint} {
		v, ok, err := m.readField(ctx, tier, key)
		if err != nil {
			return Record{}, err
		}
		if ok {
			raw[key] = v
		}
	}

	rec.Token = raw[m.keys.token]
	rec.RefreshToken = raw[m.keys.refresh]
	rec.DeviceFingerprint = raw[m.keys.fingerprint]

	if v, ok := raw[m.keys.expiry]; ok {
		expiresAt, err := decodeExpiry(v)
		if err != nil {
			m.logger.ErrorContext(ctx, "failed to parse token expiry",
				logger.Key(m.keys.expiry), logger.Error(err))
		} else {
			rec.ExpiresAt = expiresAt
		}
	}

	if v, ok := raw[m.keys.user]; ok {
		user, err := decodeUser(v)
		if err != nil {
			m.logger.ErrorContext(ctx, "failed to parse user data",
				logger.Key(m.keys.user), logger.Error(err))
		} else {
			rec.User = user
		}
	}

	return rec, nil
}

package session_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/moodlog/pkg/session"
)

func TestIsExpired(t *testing.T) {
	expiry := time.UnixMilli(scenarioNow)

	assert.False(t, session.IsExpired(time.Time{}, expiry), "missing expiry")
	assert.False(t, session.IsExpired(expiry, expiry.Add(-time.Millisecond)))
	assert.False(t, session.IsExpired(expiry, expiry))
	assert.True(t, session.IsExpired(expiry, expiry.Add(time.Millisecond)))
}

func TestIsNearExpiry(t *testing.T) {
	expiry := time.UnixMilli(scenarioNow)
	threshold := session.DefaultNearExpiryThreshold

	tests := []struct {
		name      string
		remaining time.Duration
		want      bool
	}{
		{"far from expiry", time.Hour, false},
		{"exactly at threshold", threshold, false},
		{"just inside threshold", threshold - time.Millisecond, true},
		{"at expiry", 0, true},
		{"already expired", -time.Millisecond, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := expiry.Add(-tt.remaining)
			assert.Equal(t, tt.want, session.IsNearExpiry(expiry, now, threshold))
		})
	}

	t.Run("missing expiry", func(t *testing.T) {
		assert.False(t, session.IsNearExpiry(time.Time{}, expiry, threshold))
	})
}

func TestChooseTier(t *testing.T) {
	assert.Equal(t, session.Durable, session.ChooseTier(true))
	assert.Equal(t, session.Ephemeral, session.ChooseTier(false))
	assert.Equal(t, "durable", session.Durable.String())
	assert.Equal(t, "ephemeral", session.Ephemeral.String())
}

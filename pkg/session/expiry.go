package session

import "time"

// DefaultNearExpiryThreshold is the lookahead window of IsNearExpiry.
const DefaultNearExpiryThreshold = 5 * time.Minute

// IsExpired reports whether now is past expiresAt. A zero expiresAt (no
// stored expiry) is never expired.
func IsExpired(expiresAt, now time.Time) bool {
	if expiresAt.IsZero() {
		return false
	}
	return now.After(expiresAt)
}

// IsNearExpiry reports whether a token that has not yet expired will expire
// within threshold, i.e. 0 <= expiresAt-now < threshold.
// A zero expiresAt is never near expiry, so missing metadata cannot trigger refreshes.
func IsNearExpiry(expiresAt, now time.Time, threshold time.Duration) bool {
	if expiresAt.IsZero() {
		return false
	}
	remaining := expiresAt.Sub(now)
	return remaining >= 0 && remaining < threshold
}

package session

// Storage keys of a session record. Every key may be present or absent in
// each tier independently.
const (
	KeyToken        = "auth_token"
	KeyRefreshToken = "refresh_token"
	KeyExpiry       = "token_expiry"
	KeyUser         = "user_data"
	KeyRememberMe   = "remember_me"
	KeyFingerprint  = "device_fingerprint"
)

// keySet holds the record keys with the manager's prefix applied.
type keySet struct {
	token       string
	refresh     string
	expiry      string
	user        string
	rememberMe  string
	fingerprint string
}

func newKeySet(prefix string) keySet {
	return keySet{
		token:       prefix + KeyToken,
		refresh:     prefix + KeyRefreshToken,
		expiry:      prefix + KeyExpiry,
		user:        prefix + KeyUser,
		rememberMe:  prefix + KeyRememberMe,
		fingerprint: prefix + KeyFingerprint,
	}
}

func (k keySet) all() []string {
	return []string{k.token, k.refresh, k.expiry, k.user, k.rememberMe, k.fingerprint}
}

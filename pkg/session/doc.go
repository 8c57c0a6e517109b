// Package session persists a client's authentication session across two
// storage tiers and keeps it fresh.
//
// A Manager owns one session scope (for example "user" or "admin") on top of
// two kvstore.Store values: an ephemeral tier that lives as long as the
// process and a durable tier that survives restarts and may be shared with
// other processes. The remember-me flag picks the tier a session is stored
// in. Remembered sessions live in both tiers; the others only in the
// ephemeral one.
//
// # Stored keys
//
// A session is kept as six independent keys: auth_token, refresh_token,
// token_expiry (decimal Unix milliseconds), user_data (JSON), remember_me
// ("true" or "false") and device_fingerprint. WithKeyPrefix namespaces them
// so several managers can share one backend.
//
// Reads resolve remember_me from whichever tier has it, read every other key
// from the selected tier and fall back to the durable tier when a key is
// missing there. Unreadable user_data or token_expiry values are logged and
// treated as absent; they never fail a read.
//
// # Usage
//
//	mgr := session.New(kvstore.NewMemoryStore(), durable,
//		session.WithLogger(log),
//		session.WithKeyPrefix("admin_"),
//	)
//	defer mgr.Close()
//
//	err := mgr.SaveAuthData(ctx, session.SaveParams{
//		Token:        resp.Token,
//		RefreshToken: resp.RefreshToken,
//		ExpiresIn:    time.Hour,
//		User:         resp.User,
//		RememberMe:   true,
//	})
//
//	token, err := mgr.GetToken(ctx) // "" when missing or expired
//
// # Refresh scheduler
//
// SaveAuthData starts a recurring check (every 15 minutes by default). When
// a stored token expires within the near-expiry threshold (5 minutes by
// default) the Manager emits a refresh-needed event carrying the Record.
// The Manager never calls the network; a subscriber such as
// authstore.Store performs the refresh and calls UpdateToken.
//
//	unsubscribe := mgr.OnRefreshNeeded(func(rec session.Record) {
//		// exchange rec.RefreshToken for a new token
//	})
//	defer unsubscribe()
//
// ClearAuthData and Hide stop the scheduler; Show restarts it when a
// non-expired session is stored.
//
// # Cross-context sync
//
// When the durable tier implements kvstore.Watcher, StartSync listens for
// changes made by other processes. A change to the token or user key makes
// the Manager publish a fresh Summary to OnStateChanged subscribers. Changes
// tagged with the Manager's own ID are ignored.
//
// # Device fingerprint
//
// The fingerprint of the current environment is stored on login.
// ValidateSession logs a mismatch as a warning and still reports the session
// as valid: it is a soft signal, not a security boundary.
package session

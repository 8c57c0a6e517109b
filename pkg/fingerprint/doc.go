// Package fingerprint derives a deterministic device fingerprint from the
// client environment: screen size, IANA timezone, language tag and platform.
//
// The fingerprint is a soft consistency signal for sessions, not an
// authentication factor: every component is readable and forgeable by the
// client. It is the first 8 bytes of a SHA-256 hash over the joined
// components, hex encoded to 16 characters.
//
// # Usage
//
//	env := fingerprint.Detect()
//	fp := fingerprint.Generate(env)
//
//	if !fingerprint.Validate(env, storedFP) {
//	    log.Warn("device changed since login")
//	}
//
// Detect reads COLUMNS / LINES for the screen, TZ or the /etc/localtime link
// for the timezone and LC_ALL / LC_MESSAGES / LANG for the language, which is
// canonicalised to BCP 47 with golang.org/x/text/language. DetectFrom takes a
// lookup function so tests can supply their own variables.
package fingerprint

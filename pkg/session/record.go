package session

import (
	"encoding/json"
	"errors"
	"strconv"
	"time"
)

// Record is the persisted unit of a session.
type Record struct {
	Token        string
	RefreshToken string
	// ExpiresAt is zero when no expiry is stored.
	ExpiresAt time.Time
	// User is the principal as JSON, nil when absent or unreadable.
	User              json.RawMessage
	RememberMe        bool
	DeviceFingerprint string
}

// AuthData is what GetAuthData reports about the stored session.
type AuthData struct {
	Token        string
	RefreshToken string
	User         json.RawMessage
	IsExpired    bool
	RememberMe   bool
	ExpiresAt    time.Time
}

// Summary is the authentication state published to observers.
type Summary struct {
	IsAuthenticated bool
	User            json.RawMessage
	TokenExpiry     time.Time
	RememberMe      bool
	NeedsRefresh    bool
}

// SaveParams carries a successful login, registration or refresh response.
type SaveParams struct {
	Token        string
	RefreshToken string
	ExpiresIn    time.Duration
	// User is encoded with encoding/json; json.RawMessage is stored as is.
	User       any
	RememberMe bool
}

var errMalformedExpiry = errors.New("malformed token expiry")

// expiry is stored as decimal milliseconds since the Unix epoch.
func encodeExpiry(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

func decodeExpiry(raw string) (time.Time, error) {
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, errors.Join(errMalformedExpiry, err)
	}
	return time.UnixMilli(ms), nil
}

func encodeBool(b bool) string {
	return strconv.FormatBool(b)
}

// decodeBool treats anything but "true" as false.
func decodeBool(raw string) bool {
	return raw == "true"
}

func encodeUser(user any) (string, error) {
	if raw, ok := user.(json.RawMessage); ok {
		if !json.Valid(raw) {
			return "", ErrInvalidPrincipal
		}
		return string(raw), nil
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return "", errors.Join(ErrInvalidPrincipal, err)
	}
	return string(raw), nil
}

// decodeUser validates the stored principal. JSON null is treated as absent.
func decodeUser(raw string) (json.RawMessage, error) {
	var probe any
	if err := json.Unmarshal([]byte(raw), &probe); err != nil {
		return nil, err
	}
	if probe == nil {
		return nil, nil
	}
	return json.RawMessage(raw), nil
}

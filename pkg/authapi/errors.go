package authapi

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrInvalidURL       = errors.New("authapi.invalid_url")
	ErrInvalidRequest   = errors.New("authapi.invalid_request")
	ErrInvalidResponse  = errors.New("authapi.invalid_response")
	ErrRequestFailed    = errors.New("authapi.request_failed")
	ErrTimeout          = errors.New("authapi.timeout")
	ErrUnauthorized     = errors.New("authapi.unauthorized")
	ErrNoTokenSource    = errors.New("authapi.no_token_source")
	ErrRetriesExhausted = errors.New("authapi.retries_exhausted")
)

// APIError is returned for every non-2xx response.
// errors.Is(err, ErrUnauthorized) holds for 401 responses.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("auth api returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("auth api returned status %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// IsUnauthorized reports whether err means the credentials were rejected
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// temporary reports whether a request that failed with status may succeed on retry.
func temporary(status int) bool {
	switch status {
	case http.StatusRequestTimeout, http.StatusTooEarly, http.StatusTooManyRequests:
		return true
	}
	return status >= 500
}

package requestid

import (
	"net/http"
	"regexp"

	"github.com/google/uuid"
)

const (
	Header      = "X-Request-ID"
	maxIDLength = 128
	idPattern   = "^[a-zA-Z0-9_-]+$"
)

var validIDRegex = regexp.MustCompile(idPattern)

// New generates a request id.
func New() string {
	return uuid.New().String()
}

// Transport sets the X-Request-ID header on outgoing requests. The id comes
// from the request context; a fresh one is generated when it is missing or invalid.
type Transport struct {
	// Base is the underlying transport, http.DefaultTransport when nil.
	Base http.RoundTripper
}

// RoundTrip implements http.RoundTripper
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	_, id := Ensure(req.Context())

	// RoundTrippers must not modify the caller's request
	r := req.Clone(req.Context())
	r.Header.Set(Header, id)

	return t.base().RoundTrip(r)
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

// Wrap returns a copy of client whose transport sets request ids.
func Wrap(client *http.Client) *http.Client {
	if client == nil {
		client = &http.Client{}
	}
	wrapped := *client
	if _, ok := wrapped.Transport.(*Transport); !ok {
		wrapped.Transport = &Transport{Base: wrapped.Transport}
	}
	return &wrapped
}

func isValidRequestID(id string) bool {
	if len(id) == 0 || len(id) > maxIDLength {
		return false
	}
	return validIDRegex.MatchString(id)
}

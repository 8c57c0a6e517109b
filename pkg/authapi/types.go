package authapi

import (
	"encoding/json"
	"time"

	"github.com/dmitrymomot/moodlog/pkg/validator"
)

const (
	maxEmailLength    = 254
	maxPasswordLength = 256
	maxNameLength     = 100
)

// Credentials authenticate an existing account.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks the credentials before they are sent.
func (c Credentials) Validate() error {
	return validator.Apply(
		validator.Required("email", c.Email),
		validator.MaxLen("email", c.Email, maxEmailLength),
		validator.ValidEmail("email", c.Email),
		validator.Required("password", c.Password),
		validator.MaxLen("password", c.Password, maxPasswordLength),
	)
}

// Registration creates a new account.
type Registration struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

func (r Registration) Validate() error {
	return validator.Apply(
		validator.Required("email", r.Email),
		validator.MaxLen("email", r.Email, maxEmailLength),
		validator.ValidEmail("email", r.Email),
		validator.Required("password", r.Password),
		validator.MaxLen("password", r.Password, maxPasswordLength),
		validator.MaxLen("name", r.Name, maxNameLength),
	)
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// TokenResponse is the body of a successful login, registration or refresh.
type TokenResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken,omitempty"`
	// ExpiresIn is the token lifetime in seconds.
	ExpiresIn int64           `json:"expiresIn"`
	User      json.RawMessage `json:"user,omitempty"`
}

// Lifetime returns ExpiresIn as a duration.
func (r TokenResponse) Lifetime() time.Duration {
	return time.Duration(r.ExpiresIn) * time.Second
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

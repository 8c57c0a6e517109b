package session

import "errors"

var (
	// ErrStorage wraps failures reported by a storage tier
	ErrStorage = errors.New("session.storage")

	// ErrNoSession indicates there is no usable token
	ErrNoSession = errors.New("session.no_session")

	// ErrInvalidPrincipal indicates the principal could not be encoded as JSON
	ErrInvalidPrincipal = errors.New("session.invalid_principal")

	// ErrSyncUnsupported indicates the durable tier cannot report changes
	ErrSyncUnsupported = errors.New("session.sync_unsupported")
)

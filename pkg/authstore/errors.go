package authstore

import "errors"

var (
	// ErrRefreshInProgress is returned when a refresh is already running
	ErrRefreshInProgress = errors.New("authstore.refresh_in_progress")

	// ErrNoRefreshToken indicates the session cannot be refreshed
	ErrNoRefreshToken = errors.New("authstore.no_refresh_token")
)

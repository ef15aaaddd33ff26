package session

import "errors"

// Authentication errors surfaced across the public boundary.
var (
	// ErrInvalidCredentials means the server rejected the email/password pair.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNoStoredCredentials means auto-login was requested but no
	// email/password pair is persisted.
	ErrNoStoredCredentials = errors.New("no stored credentials")

	// ErrNoRefreshToken means a refresh was requested while no refresh token
	// is held.
	ErrNoRefreshToken = errors.New("no refresh token")

	// ErrRefreshFailed means the refresh token was rejected and the silent
	// re-login fallback failed too.
	ErrRefreshFailed = errors.New("token refresh failed")

	// ErrNotAuthenticated means an authorized operation was attempted with
	// no access token held.
	ErrNotAuthenticated = errors.New("not authenticated")
)

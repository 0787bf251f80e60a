package session

import "errors"

var (
	// ErrStorageUnavailable: the credential store failed feature detection.
	ErrStorageUnavailable = errors.New("session storage unavailable")

	// ErrCorrupt: a user was found without the credential that proves it.
	ErrCorrupt = errors.New("session state is corrupt")

	// ErrStaleSession: the session was logged out or reset while the
	// operation was in flight; its result was discarded.
	ErrStaleSession = errors.New("session changed during operation")

	// ErrProfileUnavailable: a token was stored but the profile could not
	// be fetched.
	ErrProfileUnavailable = errors.New("profile unavailable")
)

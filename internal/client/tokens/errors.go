package tokens

import "errors"

var (
	// ErrTokenRecoveryFailed: the service accepted the request but no usable
	// token could be obtained, neither directly nor through the handle.
	ErrTokenRecoveryFailed = errors.New("token not received")

	// ErrStorageWriteFailed: the token could not be read back after writing.
	ErrStorageWriteFailed = errors.New("token could not be saved to local storage")

	// ErrMalformedToken is returned by ValidateFormat.
	ErrMalformedToken = errors.New("malformed token")
)

package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnavailable: the request never completed (network, DNS, gateway).
	ErrUnavailable = errors.New("server unavailable")

	// ErrRejected: the service answered and refused the request.
	ErrRejected = errors.New("request rejected")

	// ErrUnauthorized matches rejections with HTTP 401/403.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrMalformedResponse: a success response that could not be decoded.
	ErrMalformedResponse = errors.New("malformed response")
)

// RejectedError is returned when the service responds with success:false or
// a non-2xx status. Message is the service's own text, fit for display.
type RejectedError struct {
	StatusCode int
	Message    string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("rejected (%d): %s", e.StatusCode, e.Message)
}

func (e *RejectedError) Is(target error) bool {
	switch target {
	case ErrRejected:
		return true
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	default:
		return false
	}
}

func rejected(status int, msg string) *RejectedError {
	if msg == "" {
		msg = "request rejected"
		if status >= 400 {
			msg = http.StatusText(status)
		}
	}
	return &RejectedError{StatusCode: status, Message: msg}
}

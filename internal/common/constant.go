// Package common contains constants, sentinel errors and small helpers shared
// by the session client and the development auth stub.
package common

const (
	// AuthorizationHeaderName carries "Bearer <token>" on authenticated calls.
	AuthorizationHeaderName = "Authorization"

	// BearerPrefix is the scheme prefix of the Authorization header value.
	BearerPrefix = "Bearer "

	// RequestIDHeaderName carries a per-request correlation id.
	RequestIDHeaderName = "X-Request-ID"
)

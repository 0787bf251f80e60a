// Package client is the transport to the remote Authentication Service.
//
// # Overview
//
// Client is the transport-agnostic contract used by the session manager:
// Login/Register, Profile, ExchangeToken, the email verification and
// password reset calls, and Ping. HTTPClient implements it over HTTP/JSON.
// Every request carries an X-Request-ID and runs inside an OpenTelemetry
// client span; the bearer token is only attached to Profile.
//
// # Response envelope
//
//	{"success": true|false, "message": "...", "data": {...}}
//
// # Error Handling
//
// Failures fall into three groups that callers match with errors.Is:
//   - ErrUnavailable: transport errors and 502/503/504.
//   - ErrRejected (*RejectedError): success:false or another non-2xx status;
//     401/403 additionally match ErrUnauthorized.
//   - ErrMalformedResponse: a successful status whose body cannot be decoded.
package client

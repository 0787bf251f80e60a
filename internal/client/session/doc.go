// Package session is the client-side session manager: it owns the single
// in-memory session, runs the login, register, logout and email
// verification flows against the Authentication Service, and keeps the
// credential store consistent with memory.
//
// The manager never navigates. A corrupt or unusable store shows up as
// StatusSessionError and the presentation layer decides what to render.
//
// Every operation records the session epoch when it starts. Logout,
// ResetSession and consistency repairs bump the epoch, and results of
// operations that started under an older epoch are dropped with
// ErrStaleSession instead of being persisted.
package session

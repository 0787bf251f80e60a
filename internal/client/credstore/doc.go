// Package credstore is the Credential Store: durable local storage for the
// bearer token and the cached user profile.
//
// # Keys
//
//	auth.token          primary token
//	auth.token.backup   copy of the token, diagnostics only
//	auth.token.length   decimal length of the token, diagnostics only
//	auth.user           JSON-encoded models.UserProfile
//
// The primary key is the only source of truth; the backup and length keys are
// cross-checked by Diagnose and never read on the login path.
//
// # Failure semantics
//
// Storage errors (closed database, full disk, read-only file) are logged and
// swallowed: writes become no-ops and reads report absence. Callers detect
// failed writes by reading back, which is what the token strategy does.
package credstore

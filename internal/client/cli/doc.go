// Package cli provides the interactive siteauth command-line client.
//
// It wires configuration, the local credential store, the Authentication
// Service client and the session manager, then runs a REPL on top of them.
// A background connectivity watcher re-validates the session whenever the
// server becomes reachable again.
//
// Key features:
//   - Register / Login / Logout
//   - Email verification and password reset
//   - Profile inspection and local profile edits
//   - Status and storage diagnostics, session reset after storage errors
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli

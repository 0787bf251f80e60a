// Package guard is the Consistency Guard. It classifies (token, user)
// presence pairs and wipes storage when a user exists without the credential
// that proves it.
//
// The check is deliberately asymmetric: a token without a profile is a normal
// transient state (the profile fetch is pending), a profile without a token
// is never trusted.
package guard

import (
	"context"

	"github.com/dmitrijs2005/siteauth/internal/logging"
)

// Verdict is the outcome of a consistency check.
type Verdict int

const (
	Consistent Verdict = iota
	CredentialOnly
	Corrupt
)

func (v Verdict) String() string {
	switch v {
	case Consistent:
		return "consistent"
	case CredentialOnly:
		return "credential_only"
	case Corrupt:
		return "corrupt"
	default:
		return "unknown"
	}
}

// Clearer is the part of the credential store the guard needs.
type Clearer interface {
	Clear(ctx context.Context)
}

// Guard checks and repairs session state.
type Guard struct {
	store    Clearer
	logger   logging.Logger
	onRepair func()
}

// New builds a Guard. onRepair, when non-nil, is called after every repair
// (the session manager counts repairs in metrics through it).
func New(store Clearer, logger logging.Logger, onRepair func()) *Guard {
	return &Guard{store: store, logger: logger.With("component", "guard"), onRepair: onRepair}
}

// Check classifies a (token, user) presence pair.
func Check(tokenPresent, userPresent bool) Verdict {
	switch {
	case tokenPresent && !userPresent:
		return CredentialOnly
	case !tokenPresent && userPresent:
		return Corrupt
	default:
		return Consistent
	}
}

// CheckStartup is Check for startup reconciliation, where a user held in
// memory also counts: without a token, any user is corrupt.
func CheckStartup(tokenPresent, storedUserPresent, memoryUserPresent bool) Verdict {
	return Check(tokenPresent, storedUserPresent || memoryUserPresent)
}

// Check classifies the pair and logs corrupt states.
func (g *Guard) Check(ctx context.Context, tokenPresent, userPresent bool) Verdict {
	v := Check(tokenPresent, userPresent)
	if v == Corrupt {
		g.logger.Warn(ctx, "user present without credential", "verdict", v.String())
	}
	return v
}

// Repair wipes the credential store (token, backups and cached user).
// Navigation back to the login surface is left to the caller.
func (g *Guard) Repair(ctx context.Context) {
	g.store.Clear(ctx)
	g.logger.Warn(ctx, "session storage wiped")
	if g.onRepair != nil {
		g.onRepair()
	}
}

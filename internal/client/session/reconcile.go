package session

import (
	"context"
	"time"

	"github.com/dmitrijs2005/siteauth/internal/client/client"
	"github.com/dmitrijs2005/siteauth/internal/client/config"
	"github.com/dmitrijs2005/siteauth/internal/client/guard"
	"github.com/dmitrijs2005/siteauth/internal/client/models"
)

// Reconciliation outcomes, used as metric labels.
const (
	outcomeStorageUnavailable = "storage_unavailable"
	outcomeRepaired           = "repaired"
	outcomeUnauthenticated    = "unauthenticated"
	outcomeVerified           = "verified"
	outcomeKept               = "kept"
	outcomeLoggedOut          = "logged_out"
	outcomeStale              = "stale"
)

// Init restores the stored session at startup. See Reconcile.
func (m *Manager) Init(ctx context.Context) {
	m.Reconcile(ctx)
}

// Reconcile validates stored session state against the service:
//
//   - an unusable store puts the session into StatusSessionError;
//   - a user without a token is wiped;
//   - with a token, the cached user is shown at once while the profile is
//     fetched, and the server's answer replaces it.
//
// When the profile fetch is rejected, the verification policy decides
// between keeping the session and logging out. An unreachable server keeps
// the session unless WithOfflineLogout is set together with ForceLogout;
// the next connectivity-restored trigger retries.
//
// A result is discarded when the session it verified was replaced while the
// fetch ran, either by Logout/ResetSession or by a new sign-in.
//
// Only one reconciliation runs at a time. Reconcile returns false when it
// was coalesced into a run already in flight.
func (m *Manager) Reconcile(ctx context.Context) bool {
	if !m.reconciling.CompareAndSwap(false, true) {
		m.logger.Debug(ctx, "reconciliation already running, coalesced")
		return false
	}
	defer m.reconciling.Store(false)

	started := time.Now()
	epoch := m.begin()

	outcome, res := m.reconcile(ctx, epoch)

	if m.metrics != nil {
		m.metrics.Reconciliations.WithLabelValues(outcome).Inc()
	}
	m.logger.Debug(ctx, "reconciliation finished", "outcome", outcome)
	m.end(ctx, "reconcile", started, res)
	return true
}

func (m *Manager) reconcile(ctx context.Context, epoch uint64) (string, models.Result) {
	m.commitMu.Lock()

	if !m.store.IsAvailable(ctx) {
		m.mu.Lock()
		m.sessionErr = true
		m.user = nil
		m.mu.Unlock()
		m.commitMu.Unlock()
		m.logger.Error(ctx, "credential store unavailable")
		return outcomeStorageUnavailable, models.Fail(ErrStorageUnavailable,
			"session storage is unavailable; check that the session database is writable")
	}

	token := m.store.Token(ctx)
	storedUser := m.store.User(ctx)
	memoryUser := m.currentUser()

	switch guard.CheckStartup(token != "", storedUser != nil, memoryUser != nil) {
	case guard.Corrupt:
		m.logger.Warn(ctx, "stored user without token, wiping")
		m.wipeLocked(ctx, true)
		m.commitMu.Unlock()
		return outcomeRepaired, models.OK("")
	case guard.Consistent:
		if token == "" {
			m.commitMu.Unlock()
			return outcomeUnauthenticated, models.OK("")
		}
	}

	// Optimistically show the cached user while the server is asked.
	if memoryUser == nil && storedUser != nil {
		m.setUser(storedUser)
	}
	m.commitMu.Unlock()
	m.publish()

	profile, err := m.client.Profile(ctx, token)

	m.commitMu.Lock()
	defer m.commitMu.Unlock()

	if m.staleLocked(epoch) {
		return outcomeStale, models.Fail(ErrStaleSession, "")
	}
	if current := m.store.Token(ctx); current != token {
		m.logger.Info(ctx, "discarding verification of a replaced session")
		return outcomeStale, models.Fail(ErrStaleSession, "")
	}

	if err == nil {
		m.store.SetUser(ctx, profile)
		m.setUser(profile)
		m.enforceLocked(ctx)
		m.logger.Info(ctx, "session verified", "user_id", profile.ID)
		return outcomeVerified, models.OK("")
	}

	if client.IsUnavailable(err) && !m.offline {
		m.logger.Warn(ctx, "server unreachable, keeping stored session", "error", err)
		return outcomeKept, models.OK("")
	}

	if m.policy == config.KeepSession {
		m.logger.Warn(ctx, "session verification failed, keeping session", "error", err)
		return outcomeKept, models.OK("")
	}

	m.logger.Warn(ctx, "session verification failed, signing out", "error", err)
	m.wipeLocked(ctx, false)
	if client.IsUnavailable(err) {
		return outcomeLoggedOut, models.Fail(err, "the server could not be reached to verify your session; please sign in again")
	}
	return outcomeLoggedOut, models.Fail(err, "your session has expired, please sign in again")
}

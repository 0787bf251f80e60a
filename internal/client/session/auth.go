package session

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/siteauth/internal/client/client"
	"github.com/dmitrijs2005/siteauth/internal/client/guard"
	"github.com/dmitrijs2005/siteauth/internal/client/models"
)

// Login authenticates with credentials and establishes the session.
func (m *Manager) Login(ctx context.Context, creds models.Credentials) (res models.Result) {
	started := time.Now()
	epoch := m.begin()
	defer func() { m.end(ctx, "login", started, res) }()

	if err := creds.Validate(); err != nil {
		return models.Fail(err, "")
	}

	env, err := m.client.Login(ctx, creds)
	if err != nil {
		return serviceFailure(err)
	}
	return m.establish(ctx, epoch, env, "signed in")
}

// Register creates the account and establishes the session. The new account
// usually starts with an unverified email; the server sends the
// verification mail itself.
func (m *Manager) Register(ctx context.Context, data models.RegisterData) (res models.Result) {
	started := time.Now()
	epoch := m.begin()
	defer func() { m.end(ctx, "register", started, res) }()

	if err := data.Validate(); err != nil {
		return models.Fail(err, "")
	}

	env, err := m.client.Register(ctx, data)
	if err != nil {
		return serviceFailure(err)
	}
	return m.establish(ctx, epoch, env, "account created, check your inbox to verify your email")
}

// establish turns a successful login or register response into a session:
// resolve the token, fetch the profile when the response has none, then
// persist both under commitMu.
func (m *Manager) establish(ctx context.Context, epoch uint64, env *models.Envelope[models.AuthData], okMsg string) models.Result {
	token, err := m.strategy.Resolve(ctx, env.Data)
	if err != nil {
		return models.Fail(err, err.Error())
	}

	user := env.Data.User.Clone()
	var profileErr error
	if user == nil || user.ID == "" {
		user, profileErr = m.client.Profile(ctx, token)
	}

	m.commitMu.Lock()
	defer m.commitMu.Unlock()

	if m.staleLocked(epoch) {
		m.logger.Info(ctx, "discarding sign-in result of a previous session")
		return models.Fail(ErrStaleSession, "")
	}

	if err := m.strategy.Persist(ctx, m.store, token); err != nil {
		if m.enforceLocked(ctx) == guard.Corrupt {
			return models.Fail(err, msgRepaired)
		}
		m.store.SetUser(ctx, nil)
		m.setUser(nil)
		return models.Fail(err, err.Error())
	}

	if profileErr != nil {
		// Token without profile is a valid transient pair; the next
		// reconciliation fetches the profile.
		m.store.SetUser(ctx, nil)
		m.setUser(nil)
		m.logger.Warn(ctx, "signed in without profile", "error", profileErr)
		return models.Fail(errors.Join(ErrProfileUnavailable, profileErr),
			"signed in, but the profile could not be loaded; try again shortly")
	}

	m.store.SetUser(ctx, user)
	m.setUser(user)

	if m.enforceLocked(ctx) == guard.Corrupt {
		return models.Fail(ErrCorrupt, msgRepaired)
	}

	m.logger.Info(ctx, "session established", "user_id", user.ID, "role", string(user.Role))
	if env.Message != "" {
		okMsg = env.Message
	}
	return models.OK(okMsg)
}

// Logout clears storage and memory. It is idempotent and takes precedence
// over operations in flight, whose results are discarded.
func (m *Manager) Logout(ctx context.Context) {
	m.commitMu.Lock()
	m.wipeLocked(ctx, false)
	m.mu.Lock()
	m.errMsg = ""
	m.mu.Unlock()
	m.commitMu.Unlock()

	if m.metrics != nil {
		m.metrics.RecordOperation("logout", true, 0)
	}
	m.logger.Info(ctx, "signed out")
	m.publish()
}

// ResetSession is the manual way out of StatusSessionError: everything is
// cleared and the session becomes unauthenticated.
func (m *Manager) ResetSession(ctx context.Context) {
	m.commitMu.Lock()
	m.wipeLocked(ctx, false)
	m.mu.Lock()
	m.sessionErr = false
	m.errMsg = ""
	m.mu.Unlock()
	m.commitMu.Unlock()

	if m.metrics != nil {
		m.metrics.RecordOperation("reset_session", true, 0)
	}
	m.logger.Warn(ctx, "session reset")
	m.publish()
}

// UpdateProfile merges patch into the cached profile and persists it. It
// does not contact the service and does nothing without a session user.
func (m *Manager) UpdateProfile(ctx context.Context, patch models.ProfilePatch) error {
	m.commitMu.Lock()
	u := m.currentUser()
	if u == nil {
		m.commitMu.Unlock()
		return nil
	}

	merged, err := u.Merge(patch)
	if err != nil {
		m.commitMu.Unlock()
		return err
	}
	m.store.SetUser(ctx, merged)
	m.setUser(merged)
	m.commitMu.Unlock()

	m.publish()
	return nil
}

func serviceFailure(err error) models.Result {
	var rej *client.RejectedError
	switch {
	case errors.As(err, &rej):
		return models.Fail(err, rej.Message)
	case client.IsUnavailable(err):
		return models.Fail(err, "cannot reach the server, check your connection")
	case errors.Is(err, client.ErrMalformedResponse):
		return models.Fail(err, "unexpected response from the server")
	default:
		return models.Fail(err, "")
	}
}

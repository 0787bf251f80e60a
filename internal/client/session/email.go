package session

import (
	"context"
	"time"

	"github.com/dmitrijs2005/siteauth/internal/client/models"
)

// VerifyEmail confirms an email address. When the session user is the
// verified user, emailVerified is set locally and persisted.
func (m *Manager) VerifyEmail(ctx context.Context, token, userID string) (res models.Result) {
	started := time.Now()
	epoch := m.begin()
	defer func() { m.end(ctx, "verify_email", started, res) }()

	req := models.VerifyEmailRequest{Token: token, UserID: userID}
	if err := req.Validate(); err != nil {
		return models.Fail(err, "")
	}

	msg, err := m.client.VerifyEmail(ctx, token, userID)
	if err != nil {
		return serviceFailure(err)
	}

	m.commitMu.Lock()
	defer m.commitMu.Unlock()

	if m.staleLocked(epoch) {
		return models.OK(msg)
	}
	u := m.currentUser()
	if u != nil && u.ID == userID && !u.EmailVerified {
		u.EmailVerified = true
		m.store.SetUser(ctx, u)
		m.setUser(u)
		m.logger.Info(ctx, "email verified", "user_id", userID)
	}
	return models.OK(msg)
}

// ResendVerificationEmail asks the service to send a new verification mail.
func (m *Manager) ResendVerificationEmail(ctx context.Context, email string) (res models.Result) {
	started := time.Now()
	m.begin()
	defer func() { m.end(ctx, "resend_verification", started, res) }()

	if err := (models.EmailRequest{Email: email}).Validate(); err != nil {
		return models.Fail(err, "")
	}
	msg, err := m.client.ResendVerification(ctx, email)
	if err != nil {
		return serviceFailure(err)
	}
	return models.OK(msg)
}

// RequestPasswordReset asks the service to mail a password reset link.
func (m *Manager) RequestPasswordReset(ctx context.Context, email string) (res models.Result) {
	started := time.Now()
	m.begin()
	defer func() { m.end(ctx, "request_password_reset", started, res) }()

	if err := (models.EmailRequest{Email: email}).Validate(); err != nil {
		return models.Fail(err, "")
	}
	msg, err := m.client.RequestPasswordReset(ctx, email)
	if err != nil {
		return serviceFailure(err)
	}
	return models.OK(msg)
}

// ResetPassword sets a new password using the token from the reset mail.
// The current session is left alone.
func (m *Manager) ResetPassword(ctx context.Context, token, userID, password string) (res models.Result) {
	started := time.Now()
	m.begin()
	defer func() { m.end(ctx, "reset_password", started, res) }()

	req := models.ResetPasswordRequest{Token: token, UserID: userID, Password: password}
	if err := req.Validate(); err != nil {
		return models.Fail(err, "")
	}
	msg, err := m.client.ResetPassword(ctx, token, userID, password)
	if err != nil {
		return serviceFailure(err)
	}
	return models.OK(msg)
}

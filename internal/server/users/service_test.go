package users

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/siteauth/internal/common"
	"github.com/dmitrijs2005/siteauth/internal/logging"
	"github.com/dmitrijs2005/siteauth/internal/server/auth"
	"github.com/dmitrijs2005/siteauth/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, mutate func(*config.Config)) *Service {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = "k"
	cfg.AccessTokenValidityDuration = time.Hour
	if mutate != nil {
		mutate(cfg)
	}
	return NewService(NewMemoryRepository(), cfg, logging.Discard())
}

func register(t *testing.T, s *Service, email string) *AuthResult {
	t.Helper()
	res, err := s.Register(context.Background(), RegisterInput{Email: email, Password: "secret1", UserName: "u"})
	require.NoError(t, err)
	return res
}

func TestService_RegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, nil)

	res := register(t, s, "a@x.io")
	require.NotEmpty(t, res.Token)
	require.Empty(t, res.TokenID)
	assert.Equal(t, RoleUser, res.User.Role)
	assert.NotEqual(t, "secret1", string(res.User.PasswordHash))

	userID, err := auth.GetUserIDFromToken(res.Token, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, userID)

	login, err := s.Login(ctx, "A@x.io", "secret1")
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, login.User.ID)

	_, err = s.Login(ctx, "a@x.io", "wrong")
	require.ErrorIs(t, err, common.ErrorUnauthorized)
	_, err = s.Login(ctx, "ghost@x.io", "secret1")
	require.ErrorIs(t, err, common.ErrorUnauthorized)

	_, err = s.Register(ctx, RegisterInput{Email: "a@x.io", Password: "p"})
	require.ErrorIs(t, err, ErrUserExists)
}

func TestService_AdminEmails(t *testing.T) {
	s := newTestService(t, func(c *config.Config) { c.AdminEmails = []string{"Root@x.io"} })
	assert.Equal(t, RoleAdmin, register(t, s, "root@x.io").User.Role)
	assert.Equal(t, RoleUser, register(t, s, "other@x.io").User.Role)
}

func TestService_Profile(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, nil)
	res := register(t, s, "a@x.io")

	u, err := s.Profile(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, "a@x.io", u.Email)

	_, err = s.Profile(ctx, "garbage")
	require.ErrorIs(t, err, common.ErrInvalidToken)

	other, err := auth.GenerateToken("no-such-user", []byte("k"), time.Hour)
	require.NoError(t, err)
	_, err = s.Profile(ctx, other)
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestService_HandleLogins(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, func(c *config.Config) {
		c.HandleLogins = true
		c.HandleValidityDuration = time.Minute
	})

	res := register(t, s, "a@x.io")
	require.Empty(t, res.Token)
	require.NotEmpty(t, res.TokenID)

	token, err := s.ExchangeHandle(ctx, res.TokenID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	_, err = s.ExchangeHandle(ctx, res.TokenID)
	require.ErrorIs(t, err, common.ErrorNotFound)

	login, err := s.Login(ctx, "a@x.io", "secret1")
	require.NoError(t, err)
	s.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = s.ExchangeHandle(ctx, login.TokenID)
	require.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestService_VerifyEmail(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, nil)
	res := register(t, s, "a@x.io")
	id := res.User.ID

	first := s.PendingVerification(id)
	require.NotEmpty(t, first)

	require.NoError(t, s.ResendVerification(ctx, "a@x.io"))
	second := s.PendingVerification(id)
	require.NotEqual(t, first, second, "resend replaces the pending token")

	require.ErrorIs(t, s.VerifyEmail(ctx, first, id), common.ErrInvalidToken)
	require.ErrorIs(t, s.VerifyEmail(ctx, second, "someone-else"), common.ErrInvalidToken)

	// a failed redeem for the wrong user must not burn the token
	require.NoError(t, s.VerifyEmail(ctx, second, id))
	u, err := s.Profile(ctx, res.Token)
	require.NoError(t, err)
	assert.True(t, u.EmailVerified)

	require.ErrorIs(t, s.VerifyEmail(ctx, second, id), common.ErrInvalidToken)

	// verified and unknown addresses succeed silently
	require.NoError(t, s.ResendVerification(ctx, "a@x.io"))
	require.Empty(t, s.PendingVerification(id))
	require.NoError(t, s.ResendVerification(ctx, "ghost@x.io"))
}

func TestService_VerifyEmail_Expired(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, nil)
	res := register(t, s, "a@x.io")
	token := s.PendingVerification(res.User.ID)

	s.now = func() time.Time { return time.Now().Add(25 * time.Hour) }
	require.ErrorIs(t, s.VerifyEmail(ctx, token, res.User.ID), common.ErrInvalidToken)
}

func TestService_PasswordReset(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, nil)
	res := register(t, s, "a@x.io")
	id := res.User.ID

	require.NoError(t, s.RequestPasswordReset(ctx, "ghost@x.io"))
	require.NoError(t, s.RequestPasswordReset(ctx, "a@x.io"))
	token := s.PendingReset(id)
	require.NotEmpty(t, token)

	require.ErrorIs(t, s.ResetPassword(ctx, "nope", id, "newpass"), common.ErrInvalidToken)
	require.NoError(t, s.ResetPassword(ctx, token, id, "newpass"))

	_, err := s.Login(ctx, "a@x.io", "secret1")
	require.ErrorIs(t, err, common.ErrorUnauthorized)
	_, err = s.Login(ctx, "a@x.io", "newpass")
	require.NoError(t, err)

	require.ErrorIs(t, s.ResetPassword(ctx, token, id, "again1"), common.ErrInvalidToken)
}

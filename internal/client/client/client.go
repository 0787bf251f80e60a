package client

import (
	"context"

	"github.com/dmitrijs2005/siteauth/internal/client/models"
)

// Endpoint paths of the Authentication Service.
const (
	PathLogin                = "/auth/login"
	PathRegister             = "/auth/register"
	PathProfile              = "/auth/profile"
	PathToken                = "/auth/token/" // + {tokenId}
	PathVerifyEmail          = "/auth/verify-email"
	PathResendVerification   = "/auth/resend-verification"
	PathRequestPasswordReset = "/auth/request-password-reset"
	PathResetPassword        = "/auth/reset-password"
)

// Client is the contract with the remote Authentication Service.
//
// Methods returning a string return the service's message on success.
// Failures are ErrUnavailable, a *RejectedError, or ErrMalformedResponse.
type Client interface {
	Login(ctx context.Context, creds models.Credentials) (*models.Envelope[models.AuthData], error)
	Register(ctx context.Context, data models.RegisterData) (*models.Envelope[models.AuthData], error)
	Profile(ctx context.Context, token string) (*models.UserProfile, error)
	ExchangeToken(ctx context.Context, tokenID string) (string, error)
	VerifyEmail(ctx context.Context, token, userID string) (string, error)
	ResendVerification(ctx context.Context, email string) (string, error)
	RequestPasswordReset(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, userID, password string) (string, error)
	Ping(ctx context.Context) error
}

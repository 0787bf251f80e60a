// Package tokens resolves the bearer token out of login and register
// responses and persists it with read-back verification.
//
// The service may answer with the token itself or with a short-lived handle
// (tokenId) that is exchanged once, without authentication, for the token.
// The rest of the client only sees "a token" or a definitive error.
package tokens

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/siteauth/internal/client/models"
	"github.com/dmitrijs2005/siteauth/internal/logging"
)

// Exchanger trades a token handle for the token.
type Exchanger interface {
	ExchangeToken(ctx context.Context, tokenID string) (string, error)
}

// TokenStore is the part of the credential store used to persist tokens.
type TokenStore interface {
	Token(ctx context.Context) string
	SetToken(ctx context.Context, token string)
	ClearToken(ctx context.Context)
}

// Strategy implements token resolution.
type Strategy struct {
	exchanger Exchanger
	strict    bool
	logger    logging.Logger

	// onExchange is called with the outcome of every handle exchange.
	onExchange func(ok bool)
}

type Option func(*Strategy)

// WithStrictFormat rejects tokens that are not three dot-separated parts.
func WithStrictFormat(strict bool) Option {
	return func(s *Strategy) { s.strict = strict }
}

// WithExchangeObserver registers a callback for handle exchange outcomes.
func WithExchangeObserver(fn func(ok bool)) Option {
	return func(s *Strategy) { s.onExchange = fn }
}

func NewStrategy(exchanger Exchanger, logger logging.Logger, opts ...Option) *Strategy {
	s := &Strategy{exchanger: exchanger, logger: logger.With("component", "tokens")}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ValidateFormat checks the structure of a JWT-like token: non-empty and
// exactly two '.' separators. Claims are never decoded.
func ValidateFormat(token string) error {
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("%w: empty", ErrMalformedToken)
	}
	if n := strings.Count(token, "."); n != 2 {
		return fmt.Errorf("%w: %d separators", ErrMalformedToken, n)
	}
	return nil
}

// Resolve returns the token carried by data, exchanging the handle when no
// usable direct token is present.
func (s *Strategy) Resolve(ctx context.Context, data models.AuthData) (string, error) {
	direct := strings.TrimSpace(data.Token)

	if direct != "" {
		err := ValidateFormat(direct)
		switch {
		case err == nil:
			return direct, nil
		case !s.strict:
			s.logger.Warn(ctx, "direct token has unexpected shape", "error", err, "token_len", len(direct))
			return direct, nil
		case data.TokenID == "":
			return "", fmt.Errorf("%w: %v", ErrTokenRecoveryFailed, err)
		default:
			s.logger.Warn(ctx, "direct token rejected, falling back to handle", "error", err)
		}
	}

	if data.TokenID == "" {
		return "", ErrTokenRecoveryFailed
	}
	return s.exchange(ctx, data.TokenID)
}

func (s *Strategy) exchange(ctx context.Context, tokenID string) (string, error) {
	if s.exchanger == nil {
		return "", fmt.Errorf("%w: no exchanger configured", ErrTokenRecoveryFailed)
	}

	token, err := s.exchanger.ExchangeToken(ctx, tokenID)
	token = strings.TrimSpace(token)
	if err == nil && token == "" {
		err = errors.New("empty token in exchange response")
	}
	if err == nil && s.strict {
		err = ValidateFormat(token)
	}

	if s.onExchange != nil {
		s.onExchange(err == nil)
	}
	if err != nil {
		s.logger.Warn(ctx, "token handle exchange failed", "error", err)
		return "", fmt.Errorf("%w: %w", ErrTokenRecoveryFailed, err)
	}

	s.logger.Debug(ctx, "token handle exchanged", "token_len", len(token))
	return token, nil
}

// Persist writes token and verifies it reads back identically. On mismatch
// the partial write is cleared and ErrStorageWriteFailed is returned.
func (s *Strategy) Persist(ctx context.Context, store TokenStore, token string) error {
	store.SetToken(ctx, token)

	got := store.Token(ctx)
	if got == token {
		return nil
	}

	s.logger.Error(ctx, "token read-back mismatch",
		"written_len", len(token), "read_len", len(got))
	store.ClearToken(ctx)
	return ErrStorageWriteFailed
}

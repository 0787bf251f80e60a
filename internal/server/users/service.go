package users

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/siteauth/internal/common"
	"github.com/dmitrijs2005/siteauth/internal/logging"
	"github.com/dmitrijs2005/siteauth/internal/server/auth"
	"github.com/dmitrijs2005/siteauth/internal/server/config"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AuthResult is what login and register hand back: either Token or, when
// the server is configured for handle logins, a one-time TokenID.
type AuthResult struct {
	Token   string
	TokenID string
	User    *User
}

type RegisterInput struct {
	Email    string
	Password string
	UserName string
	Name     string
	Lastname string
}

type handle struct {
	token     string
	expiresAt time.Time
}

// oneTimeToken is a pending email verification or password reset.
type oneTimeToken struct {
	userID    string
	expiresAt time.Time
}

type Service struct {
	repo   Repository
	logger logging.Logger

	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
	handleValidityDuration      time.Duration
	handleLogins                bool
	admins                      map[string]struct{}

	now func() time.Time

	mu           sync.Mutex
	handles      map[string]handle
	verification map[string]oneTimeToken
	resets       map[string]oneTimeToken
}

const oneTimeTokenValidity = 24 * time.Hour

func NewService(repo Repository, cfg *config.Config, logger logging.Logger) *Service {
	admins := make(map[string]struct{}, len(cfg.AdminEmails))
	for _, e := range cfg.AdminEmails {
		admins[emailKey(e)] = struct{}{}
	}
	return &Service{
		repo:                        repo,
		logger:                      logger.With("module", "users"),
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
		handleValidityDuration:      cfg.HandleValidityDuration,
		handleLogins:                cfg.HandleLogins,
		admins:                      admins,
		now:                         time.Now,
		handles:                     map[string]handle{},
		verification:                map[string]oneTimeToken{},
		resets:                      map[string]oneTimeToken{},
	}
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	role := RoleUser
	if _, ok := s.admins[emailKey(in.Email)]; ok {
		role = RoleAdmin
	}

	user, err := s.repo.Create(ctx, &User{
		Email:        in.Email,
		UserName:     in.UserName,
		Name:         in.Name,
		Lastname:     in.Lastname,
		Role:         role,
		PasswordHash: hash,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	if err := s.issueVerification(ctx, user); err != nil {
		return nil, err
	}

	return s.authResult(ctx, user)
}

func (s *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.repo.GetUserByLogin(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return nil, common.ErrorUnauthorized
	}

	return s.authResult(ctx, user)
}

func (s *Service) authResult(ctx context.Context, user *User) (*AuthResult, error) {
	token, err := auth.GenerateToken(user.ID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}

	if !s.handleLogins {
		return &AuthResult{Token: token, User: user}, nil
	}

	id := uuid.NewString()
	s.mu.Lock()
	s.handles[id] = handle{token: token, expiresAt: s.now().Add(s.handleValidityDuration)}
	s.mu.Unlock()

	s.logger.Debug(ctx, "issued token handle", "user_id", user.ID)
	return &AuthResult{TokenID: id, User: user}, nil
}

// ExchangeHandle redeems a token handle. Handles work once.
func (s *Service) ExchangeHandle(ctx context.Context, id string) (string, error) {
	s.mu.Lock()
	h, ok := s.handles[id]
	delete(s.handles, id)
	s.mu.Unlock()

	if !ok {
		return "", common.ErrorNotFound
	}
	if s.now().After(h.expiresAt) {
		return "", common.ErrTokenExpired
	}
	return h.token, nil
}

// Profile returns the user the bearer token was issued to.
func (s *Service) Profile(ctx context.Context, token string) (*User, error) {
	userID, err := auth.GetUserIDFromToken(token, s.jwtSecret)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, common.ErrorInternal
	}
	return user, nil
}

func (s *Service) VerifyEmail(ctx context.Context, token, userID string) error {
	if !s.redeem(s.verification, token, userID) {
		return common.ErrInvalidToken
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	user.EmailVerified = true
	if err := s.repo.Update(ctx, user); err != nil {
		return err
	}
	s.logger.Info(ctx, "email verified", "user_id", userID)
	return nil
}

// ResendVerification issues a new verification token. Unknown or already
// verified addresses succeed silently so the endpoint does not reveal which
// emails are registered.
func (s *Service) ResendVerification(ctx context.Context, email string) error {
	user, err := s.repo.GetUserByLogin(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return err
	}
	if user.EmailVerified {
		return nil
	}
	return s.issueVerification(ctx, user)
}

// RequestPasswordReset issues a reset token; unknown emails succeed silently.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.repo.GetUserByLogin(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return err
	}

	token, err := s.issue(s.resets, user.ID)
	if err != nil {
		return err
	}
	s.logger.Info(ctx, "password reset requested", "user_id", user.ID, "reset_token", token)
	return nil
}

func (s *Service) ResetPassword(ctx context.Context, token, userID, password string) error {
	if !s.redeem(s.resets, token, userID) {
		return common.ErrInvalidToken
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = hash
	return s.repo.Update(ctx, user)
}

// PendingVerification returns the latest unredeemed verification token of
// userID. There is no mail transport; this and the log line stand in for it.
func (s *Service) PendingVerification(userID string) string {
	return s.pending(s.verification, userID)
}

// PendingReset is PendingVerification for password resets.
func (s *Service) PendingReset(userID string) string {
	return s.pending(s.resets, userID)
}

func (s *Service) issueVerification(ctx context.Context, user *User) error {
	token, err := s.issue(s.verification, user.ID)
	if err != nil {
		return err
	}
	s.logger.Info(ctx, "verification email", "user_id", user.ID, "email", user.Email, "verification_token", token)
	return nil
}

func (s *Service) issue(set map[string]oneTimeToken, userID string) (string, error) {
	token, err := common.MakeRandHexString(16)
	if err != nil {
		return "", common.ErrorInternal
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range set {
		if v.userID == userID {
			delete(set, k)
		}
	}
	set[token] = oneTimeToken{userID: userID, expiresAt: s.now().Add(oneTimeTokenValidity)}
	return token, nil
}

func (s *Service) redeem(set map[string]oneTimeToken, token, userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := set[token]
	if !ok || t.userID != userID {
		return false
	}
	delete(set, token)
	return !s.now().After(t.expiresAt)
}

func (s *Service) pending(set map[string]oneTimeToken, userID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range set {
		if v.userID == userID {
			return k
		}
	}
	return ""
}

package models

import (
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// ErrInvalidInput marks payloads rejected locally before any network call.
var ErrInvalidInput = errors.New("invalid input")

// Credentials is the login payload.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c Credentials) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Email, validation.Required, is.Email),
		validation.Field(&c.Password, validation.Required),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

// RegisterData is the registration payload.
type RegisterData struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Lastname string `json:"lastname"`
}

func (r RegisterData) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 128)),
		validation.Field(&r.Username, validation.Required, validation.Length(2, 64)),
		validation.Field(&r.Name, validation.Length(0, 100)),
		validation.Field(&r.Lastname, validation.Length(0, 100)),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

// VerifyEmailRequest is sent to /auth/verify-email.
type VerifyEmailRequest struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}

func (r VerifyEmailRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required),
		validation.Field(&r.UserID, validation.Required),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

// EmailRequest is sent to /auth/resend-verification and
// /auth/request-password-reset.
type EmailRequest struct {
	Email string `json:"email"`
}

func (r EmailRequest) Validate() error {
	if err := validation.Validate(r.Email, validation.Required, is.Email); err != nil {
		return fmt.Errorf("%w: email: %v", ErrInvalidInput, err)
	}
	return nil
}

// ResetPasswordRequest is sent to /auth/reset-password.
type ResetPasswordRequest struct {
	Token    string `json:"token"`
	UserID   string `json:"userId"`
	Password string `json:"password"`
}

func (r ResetPasswordRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required),
		validation.Field(&r.UserID, validation.Required),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 128)),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

// AuthData is the data member of login and register responses. The server
// sends either Token or, for oversized or one-time credentials, a TokenID
// handle that must be exchanged.
type AuthData struct {
	Token   string       `json:"token,omitempty"`
	TokenID string       `json:"tokenId,omitempty"`
	User    *UserProfile `json:"user,omitempty"`
}

// TokenData is the data member of the token exchange response.
type TokenData struct {
	Token string `json:"token"`
}

// Envelope is the common response wrapper of the Authentication Service.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    T      `json:"data,omitempty"`
}

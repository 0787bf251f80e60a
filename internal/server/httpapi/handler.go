package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/siteauth/internal/common"
	"github.com/dmitrijs2005/siteauth/internal/server/users"
)

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /auth/login", s.handleLogin)
	mux.HandleFunc("POST /auth/register", s.handleRegister)
	mux.HandleFunc("GET /auth/profile", s.handleProfile)
	mux.HandleFunc("GET /auth/token/{tokenId}", s.handleToken)
	mux.HandleFunc("POST /auth/verify-email", s.handleVerifyEmail)
	mux.HandleFunc("POST /auth/resend-verification", s.handleResendVerification)
	mux.HandleFunc("POST /auth/request-password-reset", s.handleRequestPasswordReset)
	mux.HandleFunc("POST /auth/reset-password", s.handleResetPassword)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeOK(w, "ok", nil)
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	result, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			writeError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		s.logger.Error(r.Context(), "login failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.logger.Info(r.Context(), "Logged in", "user_id", result.User.ID)
	writeOK(w, "login successful", toAuthResponse(result))
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" || req.Username == "" {
		writeError(w, http.StatusBadRequest, "email, password and username are required")
		return
	}

	result, err := s.users.Register(r.Context(), users.RegisterInput{
		Email:    strings.TrimSpace(req.Email),
		Password: req.Password,
		UserName: req.Username,
		Name:     req.Name,
		Lastname: req.Lastname,
	})
	if err != nil {
		if errors.Is(err, users.ErrUserExists) {
			writeError(w, http.StatusConflict, "email already registered")
			return
		}
		s.logger.Error(r.Context(), "registration failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.logger.Info(r.Context(), "Registered", "user_id", result.User.ID)
	writeOK(w, "registration successful, verification email sent", toAuthResponse(result))
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "missing token")
		return
	}

	user, err := s.users.Profile(r.Context(), token)
	switch {
	case errors.Is(err, common.ErrTokenExpired):
		writeError(w, http.StatusUnauthorized, "token expired")
		return
	case errors.Is(err, common.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if s.flatProfile {
		writeOK(w, "", toUserResponse(user))
		return
	}
	writeOK(w, "", profileResponse{User: toUserResponse(user)})
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	token, err := s.users.ExchangeHandle(r.Context(), r.PathValue("tokenId"))
	switch {
	case errors.Is(err, common.ErrorNotFound):
		writeError(w, http.StatusNotFound, "unknown token handle")
		return
	case errors.Is(err, common.ErrTokenExpired):
		writeError(w, http.StatusGone, "token handle expired")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeOK(w, "", tokenResponse{Token: token})
}

func (s *Server) handleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req verifyEmailRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.users.VerifyEmail(r.Context(), req.Token, req.UserID); err != nil {
		if errors.Is(err, common.ErrInvalidToken) || errors.Is(err, common.ErrorNotFound) {
			writeError(w, http.StatusBadRequest, "invalid or expired verification token")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeOK(w, "email verified", nil)
}

func (s *Server) handleResendVerification(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decodeJSON(w, r, &req); err != nil || req.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}
	if err := s.users.ResendVerification(r.Context(), req.Email); err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeOK(w, "if the address is registered, a verification email was sent", nil)
}

func (s *Server) handleRequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decodeJSON(w, r, &req); err != nil || req.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}
	if err := s.users.RequestPasswordReset(r.Context(), req.Email); err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeOK(w, "if the address is registered, a reset link was sent", nil)
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Password == "" {
		writeError(w, http.StatusBadRequest, "password is required")
		return
	}
	if err := s.users.ResetPassword(r.Context(), req.Token, req.UserID, req.Password); err != nil {
		if errors.Is(err, common.ErrInvalidToken) || errors.Is(err, common.ErrorNotFound) {
			writeError(w, http.StatusBadRequest, "invalid or expired reset token")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeOK(w, "password changed", nil)
}

func toAuthResponse(r *users.AuthResult) authResponse {
	return authResponse{Token: r.Token, TokenID: r.TokenID, User: toUserResponse(r.User)}
}

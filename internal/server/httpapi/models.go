package httpapi

import "github.com/dmitrijs2005/siteauth/internal/server/users"

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Lastname string `json:"lastname"`
}

type verifyEmailRequest struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	UserID   string `json:"userId"`
	Password string `json:"password"`
}

type userResponse struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Username      string `json:"username"`
	Name          string `json:"name,omitempty"`
	Lastname      string `json:"lastname,omitempty"`
	Role          string `json:"role"`
	EmailVerified bool   `json:"emailVerified"`
}

type authResponse struct {
	Token   string        `json:"token,omitempty"`
	TokenID string        `json:"tokenId,omitempty"`
	User    *userResponse `json:"user"`
}

type profileResponse struct {
	User *userResponse `json:"user"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

func toUserResponse(u *users.User) *userResponse {
	return &userResponse{
		ID:            u.ID,
		Email:         u.Email,
		Username:      u.UserName,
		Name:          u.Name,
		Lastname:      u.Lastname,
		Role:          string(u.Role),
		EmailVerified: u.EmailVerified,
	}
}

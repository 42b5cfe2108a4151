package service

import (
	"context"
	"net/http"

	"github.com/easyloft/easyloft-client/internal/domain"
)

// AuthService covers account endpoints.
type AuthService struct {
	t Transport
}

// NewAuthService returns an AuthService using t.
func NewAuthService(t Transport) *AuthService {
	return &AuthService{t: t}
}

// Register creates an account and returns its session token.
func (s *AuthService) Register(ctx context.Context, in domain.RegisterInput) (domain.LoginResponse, error) {
	var resp domain.LoginResponse
	if err := s.t.Request(ctx, http.MethodPost, "/auth/register", in, false, &resp); err != nil {
		return domain.LoginResponse{}, err
	}
	return resp, nil
}

// Login exchanges credentials for a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.LoginResponse, error) {
	var resp domain.LoginResponse
	in := domain.LoginInput{Email: email, Password: password}
	if err := s.t.Request(ctx, http.MethodPost, "/auth/login", in, false, &resp); err != nil {
		return domain.LoginResponse{}, err
	}
	return resp, nil
}

// ForgotPassword asks the backend to email a reset link.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (domain.MessageResponse, error) {
	var resp domain.MessageResponse
	in := domain.ForgotPasswordInput{Email: email}
	if err := s.t.Request(ctx, http.MethodPost, "/auth/forgot-password", in, false, &resp); err != nil {
		return domain.MessageResponse{}, err
	}
	return resp, nil
}

// ResetPassword sets a new password using a reset token.
func (s *AuthService) ResetPassword(ctx context.Context, token, password string) (domain.MessageResponse, error) {
	var resp domain.MessageResponse
	in := domain.ResetPasswordInput{Token: token, Password: password}
	if err := s.t.Request(ctx, http.MethodPost, "/auth/reset-password", in, false, &resp); err != nil {
		return domain.MessageResponse{}, err
	}
	return resp, nil
}

// GetProfile returns the signed-in user.
func (s *AuthService) GetProfile(ctx context.Context) (domain.User, error) {
	var user domain.User
	if err := s.t.Request(ctx, http.MethodGet, "/users/me", nil, true, &user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// UpdateProfile changes name and/or phone of the signed-in user.
func (s *AuthService) UpdateProfile(ctx context.Context, updates domain.ProfileUpdate) (domain.User, error) {
	var user domain.User
	if err := s.t.Request(ctx, http.MethodPut, "/users/me", updates, true, &user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

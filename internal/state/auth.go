package state

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/easyloft/easyloft-client/internal/domain"
)

// AuthAPI is the account service the auth store calls.
type AuthAPI interface {
	Register(ctx context.Context, in domain.RegisterInput) (domain.LoginResponse, error)
	Login(ctx context.Context, email, password string) (domain.LoginResponse, error)
	ForgotPassword(ctx context.Context, email string) (domain.MessageResponse, error)
	ResetPassword(ctx context.Context, token, password string) (domain.MessageResponse, error)
	GetProfile(ctx context.Context) (domain.User, error)
	UpdateProfile(ctx context.Context, updates domain.ProfileUpdate) (domain.User, error)
}

// TokenStore persists the bearer token.
type TokenStore interface {
	Token() string
	Save(token string) error
	Clear() error
}

// AuthSnapshot is a copy of the session state.
type AuthSnapshot struct {
	User            *domain.User
	IsAuthenticated bool
	IsLoading       bool
	Error           string
}

// AuthStore holds the single session of the process.
type AuthStore struct {
	api    AuthAPI
	tokens TokenStore
	logger *zap.Logger

	mu              sync.RWMutex
	user            *domain.User
	isAuthenticated bool
	loading         bool
	err             string
}

// NewAuthStore builds an AuthStore. logger may be nil.
func NewAuthStore(api AuthAPI, tokens TokenStore, logger *zap.Logger) *AuthStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthStore{api: api, tokens: tokens, logger: logger}
}

// Register creates an account and signs in with it.
func (s *AuthStore) Register(ctx context.Context, in domain.RegisterInput) error {
	s.begin()
	resp, err := s.api.Register(ctx, in)
	if err != nil {
		return s.fail(ctx, "register", err, "registration failed")
	}
	return s.signIn(ctx, "register", resp, "registration failed")
}

// Login signs in with email and password.
func (s *AuthStore) Login(ctx context.Context, email, password string) error {
	s.begin()
	resp, err := s.api.Login(ctx, email, password)
	if err != nil {
		return s.fail(ctx, "login", err, "invalid credentials")
	}
	return s.signIn(ctx, "login", resp, "invalid credentials")
}

// ForgotPassword requests a reset email.
func (s *AuthStore) ForgotPassword(ctx context.Context, email string) error {
	s.begin()
	if _, err := s.api.ForgotPassword(ctx, email); err != nil {
		return s.fail(ctx, "forgot_password", err, "failed to send reset email")
	}
	s.done()
	return nil
}

// ResetPassword sets a new password. It does not sign in.
func (s *AuthStore) ResetPassword(ctx context.Context, token, password string) error {
	s.begin()
	if _, err := s.api.ResetPassword(ctx, token, password); err != nil {
		return s.fail(ctx, "reset_password", err, "failed to reset password")
	}
	s.done()
	return nil
}

// UpdateProfile changes the profile and keeps the server's copy of the user.
func (s *AuthStore) UpdateProfile(ctx context.Context, updates domain.ProfileUpdate) error {
	s.begin()
	user, err := s.api.UpdateProfile(ctx, updates)
	if err != nil {
		return s.fail(ctx, "update_profile", err, "failed to update profile")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err := ctx.Err(); err != nil {
		return err
	}
	s.user = &user
	return nil
}

// CheckAuth validates a persisted token against the server. It never fails:
// a missing or rejected token leaves the session signed out, and a rejected
// token is cleared.
func (s *AuthStore) CheckAuth(ctx context.Context) {
	if s.tokens.Token() == "" {
		s.setSession(nil, false)
		return
	}
	user, err := s.api.GetProfile(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Info("stored session rejected", zap.Error(err))
		if clearErr := s.tokens.Clear(); clearErr != nil {
			s.logger.Warn("clear token", zap.Error(clearErr))
		}
		s.setSession(nil, false)
		return
	}
	if ctx.Err() != nil {
		return
	}
	s.setSession(&user, true)
}

// Logout ends the session locally: the token is cleared and the state reset.
func (s *AuthStore) Logout() {
	if err := s.tokens.Clear(); err != nil {
		s.logger.Warn("clear token", zap.Error(err))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.isAuthenticated = false
	s.err = ""
}

// ClearError resets the error field.
func (s *AuthStore) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = ""
}

// IsAuthenticated reports whether a session is active.
func (s *AuthStore) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isAuthenticated
}

// Snapshot returns a copy of the current state.
func (s *AuthStore) Snapshot() AuthSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := AuthSnapshot{
		IsAuthenticated: s.isAuthenticated,
		IsLoading:       s.loading,
		Error:           s.err,
	}
	if s.user != nil {
		dup := *s.user
		snap.User = &dup
	}
	return snap
}

func (s *AuthStore) signIn(ctx context.Context, action string, resp domain.LoginResponse, fallback string) error {
	if ctx.Err() != nil {
		s.done()
		return ctx.Err()
	}
	if err := s.tokens.Save(resp.AccessToken); err != nil {
		return s.fail(ctx, action, fmt.Errorf("save token: %w", err), fallback)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	user := resp.User
	s.user = &user
	s.isAuthenticated = true
	return nil
}

func (s *AuthStore) setSession(user *domain.User, authenticated bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
	s.isAuthenticated = authenticated
}

func (s *AuthStore) begin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = true
	s.err = ""
}

func (s *AuthStore) done() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
}

func (s *AuthStore) fail(ctx context.Context, action string, err error, fallback string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if ctx.Err() != nil {
		return err
	}
	s.err = messageFor(err, fallback)
	s.logger.Warn("auth action failed", zap.String("action", action), zap.Error(err))
	return &ActionError{Action: action, Message: s.err, Err: err}
}

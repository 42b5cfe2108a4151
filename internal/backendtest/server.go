// Package backendtest runs an in-memory EasyLoft backend on httptest for
// service, store and round-trip tests.
package backendtest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/easyloft/easyloft-client/internal/domain"
)

// Request is a recorded incoming call.
type Request struct {
	Method        string
	Path          string
	Authorization string
	ContentType   string
}

type account struct {
	user     domain.User
	password string
}

// Server is a fake backend. All state is guarded by mu.
type Server struct {
	*httptest.Server

	mu          sync.Mutex
	accounts    map[string]*account // by email
	sessions    map[string]string   // token -> user id
	resetTokens map[string]string   // reset token -> email
	lofts       []domain.Loft
	pigeons     []domain.Pigeon
	uploads     map[string][]byte
	requests    []Request
}

// New starts a backend and closes it when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		accounts:    make(map[string]*account),
		sessions:    make(map[string]string),
		resetTokens: make(map[string]string),
		uploads:     make(map[string][]byte),
	}
	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.record)

	r.Post("/auth/register", s.handleRegister)
	r.Post("/auth/login", s.handleLogin)
	r.Post("/auth/forgot-password", s.handleForgotPassword)
	r.Post("/auth/reset-password", s.handleResetPassword)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)

		r.Get("/users/me", s.handleGetProfile)
		r.Put("/users/me", s.handleUpdateProfile)

		r.Route("/lofts", func(r chi.Router) {
			r.Get("/", s.handleListLofts)
			r.Post("/", s.handleCreateLoft)
			r.Get("/{id}", s.handleGetLoft)
			r.Put("/{id}", s.handleUpdateLoft)
			r.Delete("/{id}", s.handleDeleteLoft)
		})

		r.Route("/pigeons", func(r chi.Router) {
			r.Get("/", s.handleListPigeons)
			r.Post("/", s.handleCreatePigeon)
			r.Post("/upload", s.handleUpload)
			r.Get("/loft/{loftId}", s.handleListPigeonsByLoft)
			r.Get("/{id}", s.handleGetPigeon)
			r.Put("/{id}", s.handleUpdatePigeon)
			r.Delete("/{id}", s.handleDeletePigeon)
		})
	})

	r.Get("/uploads/{name}", s.handleGetUpload)
	return r
}

// AddUser registers an account directly and returns a valid session token.
func (s *Server) AddUser(email, password, name string) (domain.User, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user := s.createAccountLocked(email, password, name, "")
	return user, s.issueTokenLocked(user.ID)
}

// ResetToken issues a password reset token for email, as the email link would.
func (s *Server) ResetToken(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	token := uuid.NewString()
	s.resetTokens[token] = strings.ToLower(email)
	return token
}

// Requests returns a copy of the recorded calls.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// Upload returns the bytes stored under url, if any.
func (s *Server) Upload(url string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.uploads[path.Base(url)]
	return data, ok
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:        r.Method,
			Path:          r.URL.Path,
			Authorization: r.Header.Get("Authorization"),
			ContentType:   r.Header.Get("Content-Type"),
		})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

type ctxKey struct{}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		s.mu.Lock()
		userID, known := s.sessions[token]
		s.mu.Unlock()
		if !ok || !known {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r.WithContext(contextWithUser(r, userID)))
	})
}

func (s *Server) createAccountLocked(email, password, name, phone string) domain.User {
	now := timestamp()
	user := domain.User{
		ID:        uuid.NewString(),
		Email:     strings.ToLower(email),
		Name:      name,
		Phone:     phone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.accounts[user.Email] = &account{user: user, password: password}
	return user
}

func (s *Server) issueTokenLocked(userID string) string {
	token := uuid.NewString()
	s.sessions[token] = userID
	return token
}

func (s *Server) accountByIDLocked(id string) *account {
	for _, acc := range s.accounts {
		if acc.user.ID == id {
			return acc
		}
	}
	return nil
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func decode(w http.ResponseWriter, r *http.Request, dest any) bool {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable body")
		return false
	}
	if err := json.Unmarshal(body, dest); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message any) {
	writeJSON(w, status, map[string]any{
		"statusCode": status,
		"message":    message,
		"error":      http.StatusText(status),
	})
}

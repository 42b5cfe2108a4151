package domain

import (
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Entity is implemented by every server-owned resource the stores cache.
type Entity interface {
	EntityID() string
}

// User mirrors the account payload returned by /users/me and the auth endpoints.
type User struct {
	ID        string `json:"_id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Phone     string `json:"phone,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// LoginResponse is returned by /auth/login and /auth/register.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	User        User   `json:"user"`
}

// MessageResponse is the generic acknowledgement payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// UploadResponse carries the stored-file URL returned by the image upload endpoint.
type UploadResponse struct {
	URL string `json:"url"`
}

// Loft is a pigeon loft owned by the signed-in user.
type Loft struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	Location    string `json:"location,omitempty"`
	Description string `json:"description,omitempty"`
	OwnerID     string `json:"ownerId,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}

// EntityID implements Entity.
func (l Loft) EntityID() string { return l.ID }

// ParsedCreatedAt returns the parsed CreatedAt timestamp.
func (l Loft) ParsedCreatedAt() time.Time {
	return parseTime(l.CreatedAt)
}

// RegisterInput is the /auth/register payload.
type RegisterInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"required"`
	Phone    string `json:"phone,omitempty"`
}

// LoginInput is the /auth/login payload.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ForgotPasswordInput is the /auth/forgot-password payload.
type ForgotPasswordInput struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordInput is the /auth/reset-password payload. ConfirmPassword is
// only checked locally and never sent.
type ResetPasswordInput struct {
	Token           string `json:"token" validate:"required"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"-" validate:"eqfield=Password"`
}

// ProfileUpdate is the partial /users/me payload.
type ProfileUpdate struct {
	Name  *string `json:"name,omitempty"`
	Phone *string `json:"phone,omitempty"`
}

// LoftInput is the loft creation payload.
type LoftInput struct {
	Name        string `json:"name" validate:"required"`
	Location    string `json:"location,omitempty"`
	Description string `json:"description,omitempty"`
}

// LoftUpdate is a partial loft; nil fields are left untouched by the server.
type LoftUpdate struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1"`
	Location    *string `json:"location,omitempty"`
	Description *string `json:"description,omitempty"`
}

// DashboardStats summarises the cached lofts and pigeons.
type DashboardStats struct {
	TotalLofts    int
	TotalPigeons  int
	MaleCount     int
	FemaleCount   int
	UnknownCount  int
	RecentPigeons []Pigeon
}

// String returns a pointer to s, for building partial updates.
func String(s string) *string { return &s }

func parseTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	if t, err := time.ParseInLocation(dateLayout, value, time.Local); err == nil {
		return t
	}
	return time.Time{}
}

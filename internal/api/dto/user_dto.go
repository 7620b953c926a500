package dto

import (
	"time"

	"github.com/khushboocodes/QuickDesk/internal/access"
	"github.com/khushboocodes/QuickDesk/internal/domain"
)

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	FullName string `json:"full_name" validate:"max=120"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID          string      `json:"id"`
	Email       string      `json:"email"`
	FullName    string      `json:"full_name"`
	DisplayName string      `json:"display_name"`
	Role        domain.Role `json:"role"`
	AccessLevel string      `json:"access_level"`
	AvatarURL   string      `json:"avatar_url"`
	Department  string      `json:"department"`
	Phone       string      `json:"phone"`
	CreatedDate time.Time   `json:"created_date"`
}

// ProfileRequest edits the caller's own profile. Absent fields are kept.
type ProfileRequest struct {
	FullName   *string `json:"full_name" validate:"omitempty,max=120"`
	Department *string `json:"department" validate:"omitempty,max=120"`
	Phone      *string `json:"phone" validate:"omitempty,max=32"`
}

// NavigationResponse is the sidebar for the caller.
type NavigationResponse struct {
	Authenticated bool             `json:"authenticated"`
	AccessLevel   string           `json:"access_level,omitempty"`
	User          *UserResponse    `json:"user,omitempty"`
	Items         []access.NavItem `json:"items"`
}

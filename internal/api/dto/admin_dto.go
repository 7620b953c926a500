package dto

import (
	"time"

	"github.com/khushboocodes/QuickDesk/internal/domain"
)

// CategoryRequest creates or edits a category. On update absent fields are kept.
type CategoryRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=80"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	Color       *string `json:"color"`
	Icon        *string `json:"icon" validate:"omitempty,max=40"`
}

// CategoryResponse is a ticket category.
type CategoryResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
	Icon        string    `json:"icon"`
	CreatedDate time.Time `json:"created_date"`
}

// RoleChangeRequest sets a user's role.
type RoleChangeRequest struct {
	Role string `json:"role" validate:"required,oneof=end_user support_agent admin"`
}

// UpgradeRequestBody files a role upgrade request.
type UpgradeRequestBody struct {
	RequestedRole string `json:"requested_role" validate:"required"`
	Reason        string `json:"reason" validate:"required,max=1000"`
}

// UpgradeRequestResponse is a role upgrade request and its decision state.
type UpgradeRequestResponse struct {
	ID            string               `json:"id"`
	UserID        string               `json:"user_id"`
	UserEmail     string               `json:"user_email"`
	UserName      string               `json:"user_name"`
	CurrentRole   domain.Role          `json:"current_role"`
	RequestedRole domain.Role          `json:"requested_role"`
	Reason        string               `json:"reason"`
	Status        domain.UpgradeStatus `json:"status"`
	CreatedDate   time.Time            `json:"created_date"`
	UpdatedDate   time.Time            `json:"updated_date"`
}

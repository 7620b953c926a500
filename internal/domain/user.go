package domain

import "time"

// Role enumerates the three fixed access roles.
type Role string

const (
	RoleEndUser      Role = "end_user"
	RoleSupportAgent Role = "support_agent"
	RoleAdmin        Role = "admin"
)

// Roles lists every valid role from least to most privileged.
var Roles = []Role{RoleEndUser, RoleSupportAgent, RoleAdmin}

// Valid reports whether r is one of the fixed roles.
func (r Role) Valid() bool {
	switch r {
	case RoleEndUser, RoleSupportAgent, RoleAdmin:
		return true
	}
	return false
}

// User is an account that can report tickets and, depending on role, triage them.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	Role         Role      `json:"role"`
	AvatarURL    string    `json:"avatar_url"`
	Department   string    `json:"department"`
	Phone        string    `json:"phone"`
	PasswordHash string    `json:"-"`
	CreatedDate  time.Time `json:"created_date"`
	UpdatedDate  time.Time `json:"updated_date"`
}

// DisplayName returns the full name, or the local part of the email when unset.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.FullName != "" {
		return u.FullName
	}
	return EmailLocalPart(u.Email)
}

// EmailLocalPart returns everything before the first '@'.
func EmailLocalPart(email string) string {
	for i := 0; i < len(email); i++ {
		if email[i] == '@' {
			return email[:i]
		}
	}
	return email
}

// UserPatch carries partial user updates. Nil fields are left untouched.
type UserPatch struct {
	FullName   *string
	Role       *Role
	AvatarURL  *string
	Department *string
	Phone      *string
}

package domain

import "time"

// UpgradeStatus is the decision state of an upgrade request.
type UpgradeStatus string

const (
	UpgradeStatusPending  UpgradeStatus = "pending"
	UpgradeStatusApproved UpgradeStatus = "approved"
	UpgradeStatusRejected UpgradeStatus = "rejected"
)

// CanTransition reports whether a request may move from s to next.
// Only pending requests can be decided, and only once.
func (s UpgradeStatus) CanTransition(next UpgradeStatus) bool {
	return s == UpgradeStatusPending && (next == UpgradeStatusApproved || next == UpgradeStatusRejected)
}

// UpgradeRequest asks an admin to promote a user to a higher role.
type UpgradeRequest struct {
	ID            string        `json:"id"`
	UserID        string        `json:"user_id"`
	UserEmail     string        `json:"user_email"`
	UserName      string        `json:"user_name"`
	CurrentRole   Role          `json:"current_role"`
	RequestedRole Role          `json:"requested_role"`
	Reason        string        `json:"reason"`
	Status        UpgradeStatus `json:"status"`
	CreatedDate   time.Time     `json:"created_date"`
	UpdatedDate   time.Time     `json:"updated_date"`
}

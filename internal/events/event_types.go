package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/khushboocodes/QuickDesk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated         EventType = "ticket_created"
	EventTicketStatusChanged   EventType = "ticket_status_changed"
	EventTicketPriorityChanged EventType = "ticket_priority_changed"
	EventCommentAdded          EventType = "comment_added"
	EventUpgradeRequested      EventType = "upgrade_requested"
	EventUpgradeDecided        EventType = "upgrade_decided"
	EventUserRoleChanged       EventType = "user_role_changed"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	UserID string      `json:"user_id"`
	Email  string      `json:"email"`
	Role   domain.Role `json:"role"`
}

// ActorFromUser builds the actor for user.
func ActorFromUser(user domain.User) Actor {
	return Actor{UserID: user.ID, Email: user.Email, Role: user.Role}
}

// Event represents a domain event emitted by services. SubjectID is the id
// of the ticket, upgrade request or user the event is about.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SubjectID string      `json:"subject_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// New stamps an event with a fresh id and the current time.
func New(eventType EventType, subjectID string, actor Actor, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SubjectID: subjectID,
		Actor:     actor,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	CategoryID    string                `json:"category_id,omitempty"`
	Priority      domain.TicketPriority `json:"priority"`
	Title         string                `json:"title"`
	ReporterEmail string                `json:"reporter_email"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus     domain.TicketStatus `json:"old_status"`
	NewStatus     domain.TicketStatus `json:"new_status"`
	ReporterEmail string              `json:"reporter_email"`
}

// TicketPriorityChangedPayload payload.
type TicketPriorityChangedPayload struct {
	OldPriority domain.TicketPriority `json:"old_priority"`
	NewPriority domain.TicketPriority `json:"new_priority"`
}

// CommentAddedPayload payload.
type CommentAddedPayload struct {
	CommentID     string `json:"comment_id"`
	IsInternal    bool   `json:"is_internal"`
	ReporterEmail string `json:"reporter_email"`
	BodyPreview   string `json:"body_preview"`
}

// UpgradeRequestedPayload payload.
type UpgradeRequestedPayload struct {
	UserEmail     string      `json:"user_email"`
	RequestedRole domain.Role `json:"requested_role"`
}

// UpgradeDecidedPayload payload.
type UpgradeDecidedPayload struct {
	UserEmail     string               `json:"user_email"`
	RequestedRole domain.Role          `json:"requested_role"`
	Status        domain.UpgradeStatus `json:"status"`
}

// UserRoleChangedPayload payload.
type UserRoleChangedPayload struct {
	OldRole domain.Role `json:"old_role"`
	NewRole domain.Role `json:"new_role"`
}

// Preview truncates body to at most limit runes for payloads.
func Preview(body string, limit int) string {
	runes := []rune(body)
	if len(runes) <= limit {
		return body
	}
	return string(runes[:limit]) + "…"
}

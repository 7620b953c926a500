package dto

import (
	"time"

	"github.com/khushboocodes/QuickDesk/internal/domain"
	"github.com/khushboocodes/QuickDesk/internal/listing"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title          string   `json:"title" validate:"required,max=200"`
	Description    string   `json:"description" validate:"required"`
	CategoryID     string   `json:"category_id"`
	Priority       string   `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	Tags           []string `json:"tags" validate:"max=20,dive,max=40"`
	AttachmentURLs []string `json:"attachment_urls" validate:"max=10"`
}

// UpdateTicketRequest changes status and/or priority.
type UpdateTicketRequest struct {
	Status   *string `json:"status"`
	Priority *string `json:"priority"`
}

// VoteRequest moves the upvote counter.
type VoteRequest struct {
	Direction string `json:"direction" validate:"required,oneof=up down"`
}

// TicketResponse is a list row or a freshly written ticket.
type TicketResponse struct {
	ID             string                `json:"id"`
	Title          string                `json:"title"`
	Description    string                `json:"description"`
	Status         domain.TicketStatus   `json:"status"`
	Priority       domain.TicketPriority `json:"priority"`
	CategoryID     string                `json:"category_id"`
	ReporterEmail  string                `json:"reporter_email"`
	Upvotes        int                   `json:"upvotes"`
	CommentCount   int                   `json:"comment_count"`
	Tags           []string              `json:"tags"`
	AttachmentURLs []string              `json:"attachment_urls"`
	CreatedDate    time.Time             `json:"created_date"`
	UpdatedDate    time.Time             `json:"updated_date"`
}

// TicketListMeta describes the page returned with a ticket list.
type TicketListMeta struct {
	Page         int               `json:"page"`
	PageSize     int               `json:"page_size"`
	TotalPages   int               `json:"total_pages"`
	Total        int               `json:"total"`
	State        listing.ViewState `json:"state"`
	RequestToken uint64            `json:"request_token,omitempty"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	Ticket             TicketResponse    `json:"ticket"`
	Category           *CategoryResponse `json:"category"`
	Comments           []CommentResponse `json:"comments"`
	CanManage          bool              `json:"can_manage"`
	CanCommentInternal bool              `json:"can_comment_internal"`
}

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Content    string `json:"content" validate:"required"`
	IsInternal bool   `json:"is_internal"`
}

// CommentResponse represents a thread reply.
type CommentResponse struct {
	ID          string    `json:"id"`
	TicketID    string    `json:"ticket_id"`
	Content     string    `json:"content"`
	AuthorEmail string    `json:"author_email"`
	AuthorName  string    `json:"author_name"`
	IsInternal  bool      `json:"is_internal"`
	CreatedDate time.Time `json:"created_date"`
}

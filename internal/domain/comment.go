package domain

import "time"

// Comment is a reply in a ticket thread. Internal comments are agent-only notes.
type Comment struct {
	ID          string    `json:"id"`
	TicketID    string    `json:"ticket_id"`
	Content     string    `json:"content"`
	AuthorEmail string    `json:"author_email"`
	AuthorName  string    `json:"author_name"`
	IsInternal  bool      `json:"is_internal"`
	CreatedDate time.Time `json:"created_date"`
}

package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khushboocodes/QuickDesk/internal/domain"
)

// CommentRepository manages ticket thread comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	// ListByTicket returns the thread newest first.
	ListByTicket(ctx context.Context, ticketID string) ([]domain.Comment, error)
	// CountByTickets returns the number of comments per ticket id, leaving
	// out internal notes unless includeInternal is set. Tickets without
	// comments are absent from the map.
	CountByTickets(ctx context.Context, ticketIDs []string, includeInternal bool) (map[string]int, error)
}

const (
	commentColumns       = `id, ticket_id, content, author_email, author_name, is_internal, created_date`
	commentInsertColumns = `id, ticket_id, content, author_email, author_name, is_internal`
)

type commentRepository struct {
	pool *pgxpool.Pool
}

// NewCommentRepository builds repository.
func NewCommentRepository(pool *pgxpool.Pool) CommentRepository {
	return &commentRepository{pool: pool}
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	if !validID(comment.TicketID) {
		return ErrNotFound
	}
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	const query = `
        INSERT INTO comments (` + commentInsertColumns + `)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING created_date`
	return translate(r.pool.QueryRow(ctx, query,
		comment.ID,
		comment.TicketID,
		comment.Content,
		comment.AuthorEmail,
		comment.AuthorName,
		comment.IsInternal,
	).Scan(&comment.CreatedDate))
}

func (r *commentRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Comment, error) {
	result := []domain.Comment{}
	if !validID(ticketID) {
		return result, nil
	}
	const query = `
        SELECT ` + commentColumns + `
        FROM comments WHERE ticket_id=$1 ORDER BY created_date DESC, id`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var comment domain.Comment
		if err := rows.Scan(
			&comment.ID,
			&comment.TicketID,
			&comment.Content,
			&comment.AuthorEmail,
			&comment.AuthorName,
			&comment.IsInternal,
			&comment.CreatedDate,
		); err != nil {
			return nil, err
		}
		result = append(result, comment)
	}
	return result, rows.Err()
}

func (r *commentRepository) CountByTickets(ctx context.Context, ticketIDs []string, includeInternal bool) (map[string]int, error) {
	counts := make(map[string]int, len(ticketIDs))
	ids := make([]string, 0, len(ticketIDs))
	for _, id := range ticketIDs {
		if validID(id) {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return counts, nil
	}

	const query = `
        SELECT ticket_id::text, COUNT(*) FROM comments
        WHERE ticket_id = ANY($1::uuid[]) AND ($2 OR NOT is_internal)
        GROUP BY ticket_id`
	rows, err := r.pool.Query(ctx, query, ids, includeInternal)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var count int
		if err := rows.Scan(&id, &count); err != nil {
			return nil, err
		}
		counts[id] = count
	}
	return counts, rows.Err()
}

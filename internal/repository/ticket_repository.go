package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khushboocodes/QuickDesk/internal/domain"
)

// TicketQuery narrows a ticket listing. Empty fields are ignored.
type TicketQuery struct {
	ReporterEmail string
	Status        domain.TicketStatus
	CategoryID    string
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	List(ctx context.Context, sort string) ([]domain.Ticket, error)
	Filter(ctx context.Context, query TicketQuery, sort string) ([]domain.Ticket, error)
	Get(ctx context.Context, id string) (*domain.Ticket, error)
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, id string, patch domain.TicketPatch) (*domain.Ticket, error)
	// Vote adds delta to the upvote counter without letting it drop below zero.
	Vote(ctx context.Context, id string, delta int) (*domain.Ticket, error)
}

var ticketSortColumns = map[string]bool{"created_date": true, "updated_date": true, "upvotes": true, "priority": true, "status": true, "title": true}

const ticketInsertColumns = `id, title, description, status, priority, category_id, reporter_email, upvotes, tags, attachment_urls`

const ticketColumns = `id, title, description, status, priority, COALESCE(category_id::text, ''), reporter_email,
               upvotes, tags, attachment_urls, created_date, updated_date`

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) List(ctx context.Context, sort string) ([]domain.Ticket, error) {
	return r.Filter(ctx, TicketQuery{}, sort)
}

func (r *ticketRepository) Filter(ctx context.Context, query TicketQuery, sort string) ([]domain.Ticket, error) {
	var where whereClause
	if query.ReporterEmail != "" {
		where.add("reporter_email=$%d", query.ReporterEmail)
	}
	if query.Status != "" {
		where.add("status=$%d", query.Status)
	}
	if query.CategoryID != "" {
		if !validID(query.CategoryID) {
			return []domain.Ticket{}, nil
		}
		where.add("category_id=$%d", query.CategoryID)
	}

	sql := `SELECT ` + ticketColumns + ` FROM tickets ` + where.String() + ` ` +
		orderBy(sort, ticketSortColumns, "created_date DESC, id")
	rows, err := r.pool.Query(ctx, sql, where.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) Get(ctx context.Context, id string) (*domain.Ticket, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	const query = `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translate(err)
	}
	return ticket, nil
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	if ticket.ID == "" {
		ticket.ID = uuid.NewString()
	}
	const query = `
        INSERT INTO tickets (` + ticketInsertColumns + `)
        VALUES ($1,$2,$3,$4,$5,NULLIF($6,'')::uuid,$7,$8,$9,$10)
        RETURNING created_date, updated_date`
	return translate(r.pool.QueryRow(ctx, query,
		ticket.ID,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.CategoryID,
		ticket.ReporterEmail,
		ticket.Upvotes,
		nonNil(ticket.Tags),
		nonNil(ticket.AttachmentURLs),
	).Scan(&ticket.CreatedDate, &ticket.UpdatedDate))
}

func (r *ticketRepository) Update(ctx context.Context, id string, patch domain.TicketPatch) (*domain.Ticket, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	const query = `
        UPDATE tickets SET
            status=COALESCE($1, status),
            priority=COALESCE($2, priority),
            upvotes=COALESCE($3, upvotes),
            updated_date=NOW()
        WHERE id=$4
        RETURNING ` + ticketColumns
	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, patch.Status, patch.Priority, patch.Upvotes, id))
	if err != nil {
		return nil, translate(err)
	}
	return ticket, nil
}

func (r *ticketRepository) Vote(ctx context.Context, id string, delta int) (*domain.Ticket, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	const query = `
        UPDATE tickets SET upvotes=GREATEST(upvotes + $1, 0), updated_date=NOW()
        WHERE id=$2
        RETURNING ` + ticketColumns
	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, delta, id))
	if err != nil {
		return nil, translate(err)
	}
	return ticket, nil
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var ticket domain.Ticket
	var created, updated time.Time
	if err := row.Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&ticket.CategoryID,
		&ticket.ReporterEmail,
		&ticket.Upvotes,
		&ticket.Tags,
		&ticket.AttachmentURLs,
		&created,
		&updated,
	); err != nil {
		return nil, err
	}
	ticket.CreatedDate = created.UTC()
	ticket.UpdatedDate = updated.UTC()
	ticket.Tags = nonNil(ticket.Tags)
	ticket.AttachmentURLs = nonNil(ticket.AttachmentURLs)
	return &ticket, nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	result := []domain.Ticket{}
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

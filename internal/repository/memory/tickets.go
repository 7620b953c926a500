package memory

import (
	"cmp"
	"context"
	"slices"

	"github.com/khushboocodes/QuickDesk/internal/domain"
	"github.com/khushboocodes/QuickDesk/internal/repository"
)

type ticketRecord struct {
	ticket domain.Ticket
	seq    int64
}

var ticketFields = map[string]field[*ticketRecord]{
	"created_date": func(a, b *ticketRecord) int { return compareTime(a.ticket.CreatedDate, b.ticket.CreatedDate) },
	"updated_date": func(a, b *ticketRecord) int { return compareTime(a.ticket.UpdatedDate, b.ticket.UpdatedDate) },
	"upvotes":      func(a, b *ticketRecord) int { return cmp.Compare(a.ticket.Upvotes, b.ticket.Upvotes) },
	"priority":     func(a, b *ticketRecord) int { return cmp.Compare(a.ticket.Priority, b.ticket.Priority) },
	"status":       func(a, b *ticketRecord) int { return cmp.Compare(a.ticket.Status, b.ticket.Status) },
	"title":        func(a, b *ticketRecord) int { return cmp.Compare(a.ticket.Title, b.ticket.Title) },
}

// newest first, insertion order breaking ties
func ticketFallback(a, b *ticketRecord) int {
	if c := compareTime(b.ticket.CreatedDate, a.ticket.CreatedDate); c != 0 {
		return c
	}
	return compareSeq(b.seq, a.seq)
}

// TicketRepository is the in-memory ticket collection.
type TicketRepository struct {
	store *Store
}

var _ repository.TicketRepository = (*TicketRepository)(nil)

// Tickets returns the ticket collection of the store.
func (s *Store) Tickets() *TicketRepository {
	return &TicketRepository{store: s}
}

func (r *TicketRepository) List(ctx context.Context, sort string) ([]domain.Ticket, error) {
	return r.Filter(ctx, repository.TicketQuery{}, sort)
}

func (r *TicketRepository) Filter(_ context.Context, query repository.TicketQuery, sort string) ([]domain.Ticket, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	records := make([]*ticketRecord, 0, len(r.store.tickets))
	for _, rec := range r.store.tickets {
		if query.ReporterEmail != "" && rec.ticket.ReporterEmail != query.ReporterEmail {
			continue
		}
		if query.Status != "" && rec.ticket.Status != query.Status {
			continue
		}
		if query.CategoryID != "" && rec.ticket.CategoryID != query.CategoryID {
			continue
		}
		records = append(records, rec)
	}
	sortRecords(records, sort, ticketFields, ticketFallback)

	out := make([]domain.Ticket, 0, len(records))
	for _, rec := range records {
		out = append(out, cloneTicket(rec.ticket))
	}
	return out, nil
}

func (r *TicketRepository) Get(_ context.Context, id string) (*domain.Ticket, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	rec, ok := r.store.tickets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	t := cloneTicket(rec.ticket)
	return &t, nil
}

func (r *TicketRepository) Create(_ context.Context, ticket *domain.Ticket) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	ticket.ID = newID(ticket.ID)
	if _, exists := r.store.tickets[ticket.ID]; exists {
		return repository.ErrDuplicate
	}
	now := r.store.timestamp()
	if ticket.CreatedDate.IsZero() {
		ticket.CreatedDate = now
	}
	ticket.UpdatedDate = ticket.CreatedDate
	ticket.Tags = nonNil(ticket.Tags)
	ticket.AttachmentURLs = nonNil(ticket.AttachmentURLs)
	r.store.tickets[ticket.ID] = &ticketRecord{ticket: cloneTicket(*ticket), seq: r.store.nextSeq()}
	return nil
}

func (r *TicketRepository) Update(_ context.Context, id string, patch domain.TicketPatch) (*domain.Ticket, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	rec, ok := r.store.tickets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if patch.Status != nil {
		rec.ticket.Status = *patch.Status
	}
	if patch.Priority != nil {
		rec.ticket.Priority = *patch.Priority
	}
	if patch.Upvotes != nil {
		rec.ticket.Upvotes = max(*patch.Upvotes, 0)
	}
	rec.ticket.UpdatedDate = r.store.touch(rec.ticket.CreatedDate)
	t := cloneTicket(rec.ticket)
	return &t, nil
}

func (r *TicketRepository) Vote(_ context.Context, id string, delta int) (*domain.Ticket, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	rec, ok := r.store.tickets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	rec.ticket.Upvotes = max(rec.ticket.Upvotes+delta, 0)
	rec.ticket.UpdatedDate = r.store.touch(rec.ticket.CreatedDate)
	t := cloneTicket(rec.ticket)
	return &t, nil
}

func cloneTicket(t domain.Ticket) domain.Ticket {
	t.Tags = nonNil(slices.Clone(t.Tags))
	t.AttachmentURLs = nonNil(slices.Clone(t.AttachmentURLs))
	return t
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

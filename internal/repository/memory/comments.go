package memory

import (
	"context"
	"slices"

	"github.com/khushboocodes/QuickDesk/internal/domain"
	"github.com/khushboocodes/QuickDesk/internal/repository"
)

type commentRecord struct {
	comment domain.Comment
	seq     int64
}

// CommentRepository is the in-memory comment collection.
type CommentRepository struct {
	store *Store
}

var _ repository.CommentRepository = (*CommentRepository)(nil)

// Comments returns the comment collection of the store.
func (s *Store) Comments() *CommentRepository {
	return &CommentRepository{store: s}
}

func (r *CommentRepository) Create(_ context.Context, comment *domain.Comment) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.tickets[comment.TicketID]; !ok {
		return repository.ErrNotFound
	}
	comment.ID = newID(comment.ID)
	if comment.CreatedDate.IsZero() {
		comment.CreatedDate = r.store.timestamp()
	}
	r.store.comments[comment.ID] = &commentRecord{comment: *comment, seq: r.store.nextSeq()}
	return nil
}

func (r *CommentRepository) ListByTicket(_ context.Context, ticketID string) ([]domain.Comment, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	records := make([]*commentRecord, 0)
	for _, rec := range r.store.comments {
		if rec.comment.TicketID == ticketID {
			records = append(records, rec)
		}
	}
	slices.SortFunc(records, func(a, b *commentRecord) int {
		if c := compareTime(b.comment.CreatedDate, a.comment.CreatedDate); c != 0 {
			return c
		}
		return compareSeq(b.seq, a.seq)
	})

	out := make([]domain.Comment, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.comment)
	}
	return out, nil
}

func (r *CommentRepository) CountByTickets(_ context.Context, ticketIDs []string, includeInternal bool) (map[string]int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	wanted := make(map[string]bool, len(ticketIDs))
	for _, id := range ticketIDs {
		wanted[id] = true
	}
	counts := make(map[string]int)
	for _, rec := range r.store.comments {
		if rec.comment.IsInternal && !includeInternal {
			continue
		}
		if wanted[rec.comment.TicketID] {
			counts[rec.comment.TicketID]++
		}
	}
	return counts, nil
}

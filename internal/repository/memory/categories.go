package memory

import (
	"cmp"
	"context"

	"github.com/khushboocodes/QuickDesk/internal/domain"
	"github.com/khushboocodes/QuickDesk/internal/repository"
)

type categoryRecord struct {
	category domain.Category
	seq      int64
}

var categoryFields = map[string]field[*categoryRecord]{
	"name":         func(a, b *categoryRecord) int { return cmp.Compare(a.category.Name, b.category.Name) },
	"created_date": func(a, b *categoryRecord) int { return compareTime(a.category.CreatedDate, b.category.CreatedDate) },
}

func categoryFallback(a, b *categoryRecord) int {
	if c := cmp.Compare(a.category.Name, b.category.Name); c != 0 {
		return c
	}
	return compareSeq(a.seq, b.seq)
}

// CategoryRepository is the in-memory category collection.
type CategoryRepository struct {
	store *Store
}

var _ repository.CategoryRepository = (*CategoryRepository)(nil)

// Categories returns the category collection of the store.
func (s *Store) Categories() *CategoryRepository {
	return &CategoryRepository{store: s}
}

func (r *CategoryRepository) List(_ context.Context, sort string) ([]domain.Category, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	records := make([]*categoryRecord, 0, len(r.store.categories))
	for _, rec := range r.store.categories {
		records = append(records, rec)
	}
	sortRecords(records, sort, categoryFields, categoryFallback)

	out := make([]domain.Category, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.category)
	}
	return out, nil
}

func (r *CategoryRepository) Get(_ context.Context, id string) (*domain.Category, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	rec, ok := r.store.categories[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := rec.category
	return &c, nil
}

func (r *CategoryRepository) Create(_ context.Context, category *domain.Category) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	category.ID = newID(category.ID)
	if _, exists := r.store.categories[category.ID]; exists {
		return repository.ErrDuplicate
	}
	now := r.store.timestamp()
	category.CreatedDate = now
	category.UpdatedDate = now
	r.store.categories[category.ID] = &categoryRecord{category: *category, seq: r.store.nextSeq()}
	return nil
}

func (r *CategoryRepository) Update(_ context.Context, id string, patch domain.CategoryPatch) (*domain.Category, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	rec, ok := r.store.categories[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if patch.Name != nil {
		rec.category.Name = *patch.Name
	}
	if patch.Description != nil {
		rec.category.Description = *patch.Description
	}
	if patch.Color != nil {
		rec.category.Color = *patch.Color
	}
	if patch.Icon != nil {
		rec.category.Icon = *patch.Icon
	}
	rec.category.UpdatedDate = r.store.touch(rec.category.CreatedDate)
	c := rec.category
	return &c, nil
}

// Delete removes the category and detaches its tickets, matching the
// ON DELETE SET NULL foreign key.
func (r *CategoryRepository) Delete(_ context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.categories[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.store.categories, id)
	for _, rec := range r.store.tickets {
		if rec.ticket.CategoryID == id {
			rec.ticket.CategoryID = ""
		}
	}
	return nil
}

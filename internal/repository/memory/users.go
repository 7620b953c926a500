package memory

import (
	"cmp"
	"context"
	"strings"

	"github.com/khushboocodes/QuickDesk/internal/domain"
	"github.com/khushboocodes/QuickDesk/internal/repository"
)

type userRecord struct {
	user domain.User
	seq  int64
}

var userFields = map[string]field[*userRecord]{
	"created_date": func(a, b *userRecord) int { return compareTime(a.user.CreatedDate, b.user.CreatedDate) },
	"email":        func(a, b *userRecord) int { return cmp.Compare(a.user.Email, b.user.Email) },
	"full_name":    func(a, b *userRecord) int { return cmp.Compare(a.user.FullName, b.user.FullName) },
	"role":         func(a, b *userRecord) int { return cmp.Compare(a.user.Role, b.user.Role) },
}

func userFallback(a, b *userRecord) int {
	if c := compareTime(b.user.CreatedDate, a.user.CreatedDate); c != 0 {
		return c
	}
	return compareSeq(b.seq, a.seq)
}

// UserRepository is the in-memory user collection.
type UserRepository struct {
	store *Store
}

var _ repository.UserRepository = (*UserRepository)(nil)

// Users returns the user collection of the store.
func (s *Store) Users() *UserRepository {
	return &UserRepository{store: s}
}

func (r *UserRepository) List(_ context.Context, sort string) ([]domain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	records := make([]*userRecord, 0, len(r.store.users))
	for _, rec := range r.store.users {
		records = append(records, rec)
	}
	sortRecords(records, sort, userFields, userFallback)

	out := make([]domain.User, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.user)
	}
	return out, nil
}

func (r *UserRepository) Get(_ context.Context, id string) (*domain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	rec, ok := r.store.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u := rec.user
	return &u, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	email = strings.ToLower(email)
	for _, rec := range r.store.users {
		if rec.user.Email == email {
			u := rec.user
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	user.Email = strings.ToLower(user.Email)
	for _, rec := range r.store.users {
		if rec.user.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	user.ID = newID(user.ID)
	now := r.store.timestamp()
	user.CreatedDate = now
	user.UpdatedDate = now
	r.store.users[user.ID] = &userRecord{user: *user, seq: r.store.nextSeq()}
	return nil
}

func (r *UserRepository) Update(_ context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	rec, ok := r.store.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if patch.FullName != nil {
		rec.user.FullName = *patch.FullName
	}
	if patch.Role != nil {
		rec.user.Role = *patch.Role
	}
	if patch.AvatarURL != nil {
		rec.user.AvatarURL = *patch.AvatarURL
	}
	if patch.Department != nil {
		rec.user.Department = *patch.Department
	}
	if patch.Phone != nil {
		rec.user.Phone = *patch.Phone
	}
	rec.user.UpdatedDate = r.store.touch(rec.user.CreatedDate)
	u := rec.user
	return &u, nil
}

package memory

import (
	"cmp"
	"context"

	"github.com/khushboocodes/QuickDesk/internal/domain"
	"github.com/khushboocodes/QuickDesk/internal/repository"
)

type upgradeRecord struct {
	request domain.UpgradeRequest
	seq     int64
}

var upgradeFields = map[string]field[*upgradeRecord]{
	"created_date": func(a, b *upgradeRecord) int { return compareTime(a.request.CreatedDate, b.request.CreatedDate) },
	"updated_date": func(a, b *upgradeRecord) int { return compareTime(a.request.UpdatedDate, b.request.UpdatedDate) },
	"status":       func(a, b *upgradeRecord) int { return cmp.Compare(a.request.Status, b.request.Status) },
}

func upgradeFallback(a, b *upgradeRecord) int {
	if c := compareTime(b.request.CreatedDate, a.request.CreatedDate); c != 0 {
		return c
	}
	return compareSeq(b.seq, a.seq)
}

// UpgradeRequestRepository is the in-memory upgrade request collection.
type UpgradeRequestRepository struct {
	store *Store
}

var _ repository.UpgradeRequestRepository = (*UpgradeRequestRepository)(nil)

// UpgradeRequests returns the upgrade request collection of the store.
func (s *Store) UpgradeRequests() *UpgradeRequestRepository {
	return &UpgradeRequestRepository{store: s}
}

func (r *UpgradeRequestRepository) Filter(_ context.Context, query repository.UpgradeQuery, sort string) ([]domain.UpgradeRequest, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	records := make([]*upgradeRecord, 0)
	for _, rec := range r.store.upgrades {
		if query.UserID != "" && rec.request.UserID != query.UserID {
			continue
		}
		if query.Status != "" && rec.request.Status != query.Status {
			continue
		}
		records = append(records, rec)
	}
	sortRecords(records, sort, upgradeFields, upgradeFallback)

	out := make([]domain.UpgradeRequest, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.request)
	}
	return out, nil
}

func (r *UpgradeRequestRepository) Get(_ context.Context, id string) (*domain.UpgradeRequest, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	rec, ok := r.store.upgrades[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	req := rec.request
	return &req, nil
}

func (r *UpgradeRequestRepository) Create(_ context.Context, request *domain.UpgradeRequest) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if request.Status == domain.UpgradeStatusPending {
		for _, rec := range r.store.upgrades {
			if rec.request.UserID == request.UserID && rec.request.Status == domain.UpgradeStatusPending {
				return repository.ErrDuplicate
			}
		}
	}
	request.ID = newID(request.ID)
	now := r.store.timestamp()
	request.CreatedDate = now
	request.UpdatedDate = now
	r.store.upgrades[request.ID] = &upgradeRecord{request: *request, seq: r.store.nextSeq()}
	return nil
}

// Approve updates the request and its user under the store lock.
func (r *UpgradeRequestRepository) Approve(_ context.Context, id string) (*domain.UpgradeRequest, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	rec, ok := r.store.upgrades[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if rec.request.Status != domain.UpgradeStatusPending {
		return nil, repository.ErrConflict
	}
	user, ok := r.store.users[rec.request.UserID]
	if !ok {
		return nil, repository.ErrNotFound
	}

	user.user.Role = rec.request.RequestedRole
	user.user.UpdatedDate = r.store.touch(user.user.CreatedDate)
	rec.request.Status = domain.UpgradeStatusApproved
	rec.request.UpdatedDate = r.store.touch(rec.request.CreatedDate)
	req := rec.request
	return &req, nil
}

func (r *UpgradeRequestRepository) Transition(_ context.Context, id string, from, to domain.UpgradeStatus) (*domain.UpgradeRequest, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	rec, ok := r.store.upgrades[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if rec.request.Status != from {
		return nil, repository.ErrConflict
	}
	rec.request.Status = to
	rec.request.UpdatedDate = r.store.touch(rec.request.CreatedDate)
	req := rec.request
	return &req, nil
}

package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khushboocodes/QuickDesk/internal/domain"
)

// UpgradeQuery narrows an upgrade request listing. Empty fields are ignored.
type UpgradeQuery struct {
	UserID string
	Status domain.UpgradeStatus
}

// UpgradeRequestRepository persists role upgrade requests.
type UpgradeRequestRepository interface {
	Filter(ctx context.Context, query UpgradeQuery, sort string) ([]domain.UpgradeRequest, error)
	Get(ctx context.Context, id string) (*domain.UpgradeRequest, error)
	// Create returns ErrDuplicate when the user already has a pending request.
	Create(ctx context.Context, request *domain.UpgradeRequest) error
	// Transition moves a request from one status to another, returning
	// ErrConflict when the stored status is no longer from.
	Transition(ctx context.Context, id string, from, to domain.UpgradeStatus) (*domain.UpgradeRequest, error)
	// Approve marks a pending request approved and grants the requested role
	// to its user in one step. Nothing changes unless both succeed:
	// ErrConflict when the request is no longer pending, ErrNotFound when the
	// request or its user is gone.
	Approve(ctx context.Context, id string) (*domain.UpgradeRequest, error)
}

var upgradeSortColumns = map[string]bool{"created_date": true, "updated_date": true, "status": true}

// The requester's role at filing time lives in previous_role: current_role
// is a reserved word in PostgreSQL.
const (
	upgradeColumns       = `id, user_id, user_email, user_name, previous_role, requested_role, reason, status, created_date, updated_date`
	upgradeInsertColumns = `id, user_id, user_email, user_name, previous_role, requested_role, reason, status`
)

type upgradeRequestRepository struct {
	pool *pgxpool.Pool
}

// NewUpgradeRequestRepository constructs repository.
func NewUpgradeRequestRepository(pool *pgxpool.Pool) UpgradeRequestRepository {
	return &upgradeRequestRepository{pool: pool}
}

func (r *upgradeRequestRepository) Filter(ctx context.Context, query UpgradeQuery, sort string) ([]domain.UpgradeRequest, error) {
	var where whereClause
	if query.UserID != "" {
		if !validID(query.UserID) {
			return []domain.UpgradeRequest{}, nil
		}
		where.add("user_id=$%d", query.UserID)
	}
	if query.Status != "" {
		where.add("status=$%d", query.Status)
	}

	sql := `SELECT ` + upgradeColumns + ` FROM upgrade_requests ` + where.String() + ` ` +
		orderBy(sort, upgradeSortColumns, "created_date DESC, id")
	rows, err := r.pool.Query(ctx, sql, where.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.UpgradeRequest{}
	for rows.Next() {
		request, err := scanUpgradeRequest(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *request)
	}
	return result, rows.Err()
}

func (r *upgradeRequestRepository) Get(ctx context.Context, id string) (*domain.UpgradeRequest, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	const query = `SELECT ` + upgradeColumns + ` FROM upgrade_requests WHERE id=$1`
	request, err := scanUpgradeRequest(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translate(err)
	}
	return request, nil
}

func (r *upgradeRequestRepository) Create(ctx context.Context, request *domain.UpgradeRequest) error {
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	const query = `
        INSERT INTO upgrade_requests (` + upgradeInsertColumns + `)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING created_date, updated_date`
	return translate(r.pool.QueryRow(ctx, query,
		request.ID,
		request.UserID,
		request.UserEmail,
		request.UserName,
		request.CurrentRole,
		request.RequestedRole,
		request.Reason,
		request.Status,
	).Scan(&request.CreatedDate, &request.UpdatedDate))
}

func (r *upgradeRequestRepository) Transition(ctx context.Context, id string, from, to domain.UpgradeStatus) (*domain.UpgradeRequest, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	const query = `
        UPDATE upgrade_requests SET status=$1, updated_date=NOW()
        WHERE id=$2 AND status=$3
        RETURNING ` + upgradeColumns
	request, err := scanUpgradeRequest(r.pool.QueryRow(ctx, query, to, id, from))
	if err == nil {
		return request, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if _, getErr := r.Get(ctx, id); getErr != nil {
		return nil, getErr
	}
	return nil, ErrConflict
}

func (r *upgradeRequestRepository) Approve(ctx context.Context, id string) (*domain.UpgradeRequest, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	const approve = `
        UPDATE upgrade_requests SET status=$1, updated_date=NOW()
        WHERE id=$2 AND status=$3
        RETURNING ` + upgradeColumns
	const grant = `UPDATE users SET role=$1, updated_date=NOW() WHERE id=$2`

	var approved *domain.UpgradeRequest
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		request, err := scanUpgradeRequest(tx.QueryRow(ctx, approve, domain.UpgradeStatusApproved, id, domain.UpgradeStatusPending))
		if errors.Is(err, pgx.ErrNoRows) {
			var exists bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM upgrade_requests WHERE id=$1)`, id).Scan(&exists); err != nil {
				return err
			}
			if !exists {
				return ErrNotFound
			}
			return ErrConflict
		}
		if err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, grant, request.RequestedRole, request.UserID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		approved = request
		return nil
	})
	if err != nil {
		return nil, err
	}
	return approved, nil
}

func scanUpgradeRequest(row pgx.Row) (*domain.UpgradeRequest, error) {
	var request domain.UpgradeRequest
	if err := row.Scan(
		&request.ID,
		&request.UserID,
		&request.UserEmail,
		&request.UserName,
		&request.CurrentRole,
		&request.RequestedRole,
		&request.Reason,
		&request.Status,
		&request.CreatedDate,
		&request.UpdatedDate,
	); err != nil {
		return nil, err
	}
	return &request, nil
}

package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khushboocodes/QuickDesk/internal/domain"
)

// UserRepository defines persistence access for accounts.
type UserRepository interface {
	List(ctx context.Context, sort string) ([]domain.User, error)
	Get(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error)
}

var userSortColumns = map[string]bool{"created_date": true, "email": true, "full_name": true, "role": true}

const (
	userColumns       = `id, email, full_name, role, avatar_url, department, phone, password_hash, created_date, updated_date`
	userInsertColumns = `id, email, full_name, role, avatar_url, department, phone, password_hash`
)

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) List(ctx context.Context, sort string) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ` + orderBy(sort, userSortColumns, "created_date DESC, id")
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *user)
	}
	return result, rows.Err()
}

func (r *userRepository) Get(ctx context.Context, id string) (*domain.User, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	const query = `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	user, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translate(err)
	}
	return user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email=$1`
	user, err := scanUser(r.pool.QueryRow(ctx, query, strings.ToLower(email)))
	if err != nil {
		return nil, translate(err)
	}
	return user, nil
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.Email = strings.ToLower(user.Email)
	const query = `
        INSERT INTO users (` + userInsertColumns + `)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING created_date, updated_date`
	return translate(r.pool.QueryRow(ctx, query,
		user.ID,
		user.Email,
		user.FullName,
		user.Role,
		user.AvatarURL,
		user.Department,
		user.Phone,
		user.PasswordHash,
	).Scan(&user.CreatedDate, &user.UpdatedDate))
}

func (r *userRepository) Update(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	const query = `
        UPDATE users SET
            full_name=COALESCE($1, full_name),
            role=COALESCE($2, role),
            avatar_url=COALESCE($3, avatar_url),
            department=COALESCE($4, department),
            phone=COALESCE($5, phone),
            updated_date=NOW()
        WHERE id=$6
        RETURNING ` + userColumns
	user, err := scanUser(r.pool.QueryRow(ctx, query,
		patch.FullName,
		patch.Role,
		patch.AvatarURL,
		patch.Department,
		patch.Phone,
		id,
	))
	if err != nil {
		return nil, translate(err)
	}
	return user, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.FullName,
		&user.Role,
		&user.AvatarURL,
		&user.Department,
		&user.Phone,
		&user.PasswordHash,
		&user.CreatedDate,
		&user.UpdatedDate,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

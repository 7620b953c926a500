package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khushboocodes/QuickDesk/internal/domain"
)

// CategoryRepository persists ticket categories.
type CategoryRepository interface {
	List(ctx context.Context, sort string) ([]domain.Category, error)
	Get(ctx context.Context, id string) (*domain.Category, error)
	Create(ctx context.Context, category *domain.Category) error
	Update(ctx context.Context, id string, patch domain.CategoryPatch) (*domain.Category, error)
	Delete(ctx context.Context, id string) error
}

var categorySortColumns = map[string]bool{"name": true, "created_date": true}

const (
	categoryColumns       = `id, name, description, color, icon, created_date, updated_date`
	categoryInsertColumns = `id, name, description, color, icon`
)

type categoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository constructs repository.
func NewCategoryRepository(pool *pgxpool.Pool) CategoryRepository {
	return &categoryRepository{pool: pool}
}

func (r *categoryRepository) List(ctx context.Context, sort string) ([]domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories ` + orderBy(sort, categorySortColumns, "name ASC, id")
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Category{}
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *category)
	}
	return result, rows.Err()
}

func (r *categoryRepository) Get(ctx context.Context, id string) (*domain.Category, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	const query = `SELECT ` + categoryColumns + ` FROM categories WHERE id=$1`
	category, err := scanCategory(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translate(err)
	}
	return category, nil
}

func (r *categoryRepository) Create(ctx context.Context, category *domain.Category) error {
	if category.ID == "" {
		category.ID = uuid.NewString()
	}
	const query = `
        INSERT INTO categories (` + categoryInsertColumns + `)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING created_date, updated_date`
	return translate(r.pool.QueryRow(ctx, query,
		category.ID,
		category.Name,
		category.Description,
		category.Color,
		category.Icon,
	).Scan(&category.CreatedDate, &category.UpdatedDate))
}

func (r *categoryRepository) Update(ctx context.Context, id string, patch domain.CategoryPatch) (*domain.Category, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	const query = `
        UPDATE categories SET
            name=COALESCE($1, name),
            description=COALESCE($2, description),
            color=COALESCE($3, color),
            icon=COALESCE($4, icon),
            updated_date=NOW()
        WHERE id=$5
        RETURNING ` + categoryColumns
	category, err := scanCategory(r.pool.QueryRow(ctx, query, patch.Name, patch.Description, patch.Color, patch.Icon, id))
	if err != nil {
		return nil, translate(err)
	}
	return category, nil
}

func (r *categoryRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrNotFound
	}
	cmd, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanCategory(row pgx.Row) (*domain.Category, error) {
	var category domain.Category
	if err := row.Scan(
		&category.ID,
		&category.Name,
		&category.Description,
		&category.Color,
		&category.Icon,
		&category.CreatedDate,
		&category.UpdatedDate,
	); err != nil {
		return nil, err
	}
	return &category, nil
}

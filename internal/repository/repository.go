// Package repository defines the entity-client contract for every
// collection and its PostgreSQL implementation.
package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("record already exists")
	// ErrConflict is returned when a conditional update lost to a concurrent one.
	ErrConflict = errors.New("record changed concurrently")
)

const uniqueViolation = "23505"

// translate maps driver errors onto the repository sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
	}
	return err
}

// validID reports whether id can address a UUID primary key. Malformed ids
// can never match a row, so callers short-circuit to ErrNotFound.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// orderBy turns a sort expression like "-created_date" into an ORDER BY
// clause, accepting only whitelisted columns. Unknown columns fall back to
// fallback.
func orderBy(sort string, allowed map[string]bool, fallback string) string {
	desc := strings.HasPrefix(sort, "-")
	column := strings.TrimPrefix(sort, "-")
	if !allowed[column] {
		return "ORDER BY " + fallback
	}
	if desc {
		return "ORDER BY " + column + " DESC, id"
	}
	return "ORDER BY " + column + " ASC, id"
}

// whereClause accumulates positional arguments and AND-ed conditions.
type whereClause struct {
	clauses []string
	args    []any
}

func (w *whereClause) add(format string, arg any) {
	w.args = append(w.args, arg)
	w.clauses = append(w.clauses, fmt.Sprintf(format, len(w.args)))
}

func (w *whereClause) String() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(w.clauses, " AND ")
}

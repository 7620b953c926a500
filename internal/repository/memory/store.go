// Package memory provides in-process implementations of the repository
// interfaces. It backs the test suites and the demo mode used when no
// database is configured.
package memory

import (
	"cmp"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store holds every collection behind one lock so cross-collection
// invariants stay consistent.
type Store struct {
	mu         sync.RWMutex
	now        func() time.Time
	users      map[string]*userRecord
	tickets    map[string]*ticketRecord
	categories map[string]*categoryRecord
	comments   map[string]*commentRecord
	upgrades   map[string]*upgradeRecord
	seq        int64
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		now:        time.Now,
		users:      make(map[string]*userRecord),
		tickets:    make(map[string]*ticketRecord),
		categories: make(map[string]*categoryRecord),
		comments:   make(map[string]*commentRecord),
		upgrades:   make(map[string]*upgradeRecord),
	}
}

// WithClock replaces the time source. Intended for tests.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC()
}

// touch returns an update timestamp that never precedes created.
func (s *Store) touch(created time.Time) time.Time {
	now := s.timestamp()
	if now.Before(created) {
		return created
	}
	return now
}

// nextSeq orders records created within the same clock tick.
func (s *Store) nextSeq() int64 {
	s.seq++
	return s.seq
}

func newID(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}

type field[T any] func(a, b T) int

// sortRecords orders items by a "-field" / "field" expression. Unknown
// fields use fallback.
func sortRecords[T any](items []T, sort string, fields map[string]field[T], fallback field[T]) {
	desc := strings.HasPrefix(sort, "-")
	compare, ok := fields[strings.TrimPrefix(sort, "-")]
	if !ok {
		slices.SortStableFunc(items, fallback)
		return
	}
	slices.SortStableFunc(items, func(a, b T) int {
		if c := compare(a, b); c != 0 {
			if desc {
				return -c
			}
			return c
		}
		return fallback(a, b)
	})
}

func compareTime(a, b time.Time) int { return a.Compare(b) }

func compareSeq(a, b int64) int { return cmp.Compare(a, b) }

package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/khushboocodes/QuickDesk/internal/cache"
	"github.com/khushboocodes/QuickDesk/internal/domain"
	"github.com/khushboocodes/QuickDesk/internal/events"
	"github.com/khushboocodes/QuickDesk/internal/repository"
	"github.com/khushboocodes/QuickDesk/internal/repository/memory"
	"github.com/khushboocodes/QuickDesk/internal/service"
	apperrors "github.com/khushboocodes/QuickDesk/pkg/util/errorutil"
)

// recorder is a synchronous dispatcher that remembers every event.
type recorder struct {
	events.Dispatcher
	mu   sync.Mutex
	seen []events.Event
}

func newRecorder() *recorder {
	return &recorder{Dispatcher: events.NewInMemoryDispatcher()}
}

func (r *recorder) Publish(ctx context.Context, event events.Event) error {
	r.mu.Lock()
	r.seen = append(r.seen, event)
	r.mu.Unlock()
	return r.Dispatcher.Publish(ctx, event)
}

func (r *recorder) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, 0, len(r.seen))
	for _, e := range r.seen {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	store      *memory.Store
	events     *recorder
	categories *service.CategoryService
	tickets    *service.TicketService
	users      *service.UserService
	upgrades   *service.UpgradeService
}

func newFixture() *fixture {
	store := memory.NewStore()
	rec := newRecorder()
	categories := service.NewCategoryService(store.Categories(), cache.New(nil, "", nil), 0, nil)
	return &fixture{
		store:      store,
		events:     rec,
		categories: categories,
		tickets: service.NewTicketService(service.TicketDependencies{
			TicketRepo:  store.Tickets(),
			CommentRepo: store.Comments(),
			Categories:  categories,
			Dispatcher:  rec,
		}),
		users:    service.NewUserService(store.Users(), rec, nil),
		upgrades: service.NewUpgradeService(store.UpgradeRequests(), rec, nil),
	}
}

func (f *fixture) user(t *testing.T, email string, role domain.Role) domain.User {
	t.Helper()
	u := &domain.User{Email: email, FullName: email, Role: role}
	require.NoError(t, f.store.Users().Create(context.Background(), u))
	return *u
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, code), "want %s, got %v", code, err)
}

// failingCategories is a category collection whose reads always fail.
type failingCategories struct {
	repository.CategoryRepository
}

var errBackend = errors.New("backend down")

func (failingCategories) List(context.Context, string) ([]domain.Category, error) {
	return nil, errBackend
}

func (failingCategories) Get(context.Context, string) (*domain.Category, error) {
	return nil, errBackend
}

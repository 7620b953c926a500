package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khushboocodes/QuickDesk/internal/domain"
	"github.com/khushboocodes/QuickDesk/internal/repository"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Minute)
	return c.now
}

func newStore() *Store {
	clock := &fakeClock{now: time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC)}
	return NewStore().WithClock(clock.Now)
}

func TestTicketsFilterAndSort(t *testing.T) {
	ctx := context.Background()
	tickets := newStore().Tickets()

	for i, tc := range []struct {
		reporter string
		status   domain.TicketStatus
		upvotes  int
	}{
		{"ana@example.com", domain.TicketStatusOpen, 3},
		{"bo@example.com", domain.TicketStatusResolved, 9},
		{"ana@example.com", domain.TicketStatusResolved, 1},
	} {
		tk := &domain.Ticket{Title: string(rune('a' + i)), ReporterEmail: tc.reporter, Status: tc.status, Upvotes: tc.upvotes}
		require.NoError(t, tickets.Create(ctx, tk))
		assert.NotEmpty(t, tk.ID)
		assert.NotNil(t, tk.Tags)
	}

	all, err := tickets.List(ctx, "-created_date")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].Title)

	byVotes, err := tickets.List(ctx, "-upvotes")
	require.NoError(t, err)
	assert.Equal(t, []int{9, 3, 1}, []int{byVotes[0].Upvotes, byVotes[1].Upvotes, byVotes[2].Upvotes})

	mine, err := tickets.Filter(ctx, repository.TicketQuery{ReporterEmail: "ana@example.com", Status: domain.TicketStatusResolved}, "")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "c", mine[0].Title)
}

func TestTicketsUpdateAndVote(t *testing.T) {
	ctx := context.Background()
	tickets := newStore().Tickets()
	tk := &domain.Ticket{Title: "VPN", Status: domain.TicketStatusOpen, Priority: domain.TicketPriorityLow}
	require.NoError(t, tickets.Create(ctx, tk))

	status := domain.TicketStatusInProgress
	updated, err := tickets.Update(ctx, tk.ID, domain.TicketPatch{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, updated.Status)
	assert.Equal(t, domain.TicketPriorityLow, updated.Priority)
	assert.True(t, updated.UpdatedDate.After(updated.CreatedDate))

	voted, err := tickets.Vote(ctx, tk.ID, -1)
	require.NoError(t, err)
	assert.Zero(t, voted.Upvotes)

	voted, err = tickets.Vote(ctx, tk.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, voted.Upvotes)

	_, err = tickets.Vote(ctx, "missing", 1)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestReturnedTicketsAreCopies(t *testing.T) {
	ctx := context.Background()
	tickets := newStore().Tickets()
	tk := &domain.Ticket{Title: "x", Tags: []string{"a"}}
	require.NoError(t, tickets.Create(ctx, tk))

	got, err := tickets.Get(ctx, tk.ID)
	require.NoError(t, err)
	got.Tags[0] = "mutated"

	again, err := tickets.Get(ctx, tk.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, again.Tags)
}

func TestUsersUniqueEmail(t *testing.T) {
	ctx := context.Background()
	users := newStore().Users()

	require.NoError(t, users.Create(ctx, &domain.User{Email: "Ana@Example.com", Role: domain.RoleEndUser}))
	err := users.Create(ctx, &domain.User{Email: "ana@example.com"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	u, err := users.GetByEmail(ctx, "ANA@example.com")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", u.Email)

	role := domain.RoleAdmin
	updated, err := users.Update(ctx, u.ID, domain.UserPatch{Role: &role})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, updated.Role)
}

func TestCategoryDeleteDetachesTickets(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	cat := &domain.Category{Name: "Network"}
	require.NoError(t, store.Categories().Create(ctx, cat))
	tk := &domain.Ticket{Title: "x", CategoryID: cat.ID}
	require.NoError(t, store.Tickets().Create(ctx, tk))

	require.NoError(t, store.Categories().Delete(ctx, cat.ID))
	assert.ErrorIs(t, store.Categories().Delete(ctx, cat.ID), repository.ErrNotFound)

	got, err := store.Tickets().Get(ctx, tk.ID)
	require.NoError(t, err)
	assert.Empty(t, got.CategoryID)
}

func TestCommentsNewestFirstAndCounts(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	a := &domain.Ticket{Title: "a"}
	b := &domain.Ticket{Title: "b"}
	require.NoError(t, store.Tickets().Create(ctx, a))
	require.NoError(t, store.Tickets().Create(ctx, b))

	for _, content := range []string{"first", "second", "third"} {
		require.NoError(t, store.Comments().Create(ctx, &domain.Comment{TicketID: a.ID, Content: content}))
	}
	require.NoError(t, store.Comments().Create(ctx, &domain.Comment{TicketID: b.ID, Content: "only"}))
	require.NoError(t, store.Comments().Create(ctx, &domain.Comment{TicketID: b.ID, Content: "note", IsInternal: true}))
	assert.ErrorIs(t, store.Comments().Create(ctx, &domain.Comment{TicketID: "missing"}), repository.ErrNotFound)

	thread, err := store.Comments().ListByTicket(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, thread, 3)
	assert.Equal(t, "third", thread[0].Content)

	counts, err := store.Comments().CountByTickets(ctx, []string{a.ID, b.ID, "none"}, true)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{a.ID: 3, b.ID: 2}, counts)

	counts, err = store.Comments().CountByTickets(ctx, []string{a.ID, b.ID}, false)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{a.ID: 3, b.ID: 1}, counts)
}

func TestUpgradeRequestsOnePendingAndOneWay(t *testing.T) {
	ctx := context.Background()
	upgrades := newStore().UpgradeRequests()

	req := &domain.UpgradeRequest{UserID: "u1", Status: domain.UpgradeStatusPending, RequestedRole: domain.RoleSupportAgent}
	require.NoError(t, upgrades.Create(ctx, req))
	err := upgrades.Create(ctx, &domain.UpgradeRequest{UserID: "u1", Status: domain.UpgradeStatusPending})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	decided, err := upgrades.Transition(ctx, req.ID, domain.UpgradeStatusPending, domain.UpgradeStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, domain.UpgradeStatusApproved, decided.Status)

	_, err = upgrades.Transition(ctx, req.ID, domain.UpgradeStatusPending, domain.UpgradeStatusRejected)
	assert.ErrorIs(t, err, repository.ErrConflict)

	require.NoError(t, upgrades.Create(ctx, &domain.UpgradeRequest{UserID: "u1", Status: domain.UpgradeStatusPending}))
	pending, err := upgrades.Filter(ctx, repository.UpgradeQuery{Status: domain.UpgradeStatusPending}, "")
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestUpgradeApproveGrantsRoleAtomically(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	user := &domain.User{Email: "ana@example.com", Role: domain.RoleEndUser}
	require.NoError(t, store.Users().Create(ctx, user))
	upgrades := store.UpgradeRequests()

	req := &domain.UpgradeRequest{UserID: user.ID, Status: domain.UpgradeStatusPending, RequestedRole: domain.RoleAdmin}
	require.NoError(t, upgrades.Create(ctx, req))
	approved, err := upgrades.Approve(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.UpgradeStatusApproved, approved.Status)
	stored, err := store.Users().Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, stored.Role)

	_, err = upgrades.Approve(ctx, req.ID)
	assert.ErrorIs(t, err, repository.ErrConflict)
	_, err = upgrades.Approve(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	orphan := &domain.UpgradeRequest{UserID: "gone", Status: domain.UpgradeStatusPending, RequestedRole: domain.RoleAdmin}
	require.NoError(t, upgrades.Create(ctx, orphan))
	_, err = upgrades.Approve(ctx, orphan.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	left, err := upgrades.Get(ctx, orphan.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.UpgradeStatusPending, left.Status, "nothing changes when the user is missing")
}

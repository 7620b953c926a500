package access

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khushboocodes/QuickDesk/internal/domain"
	apperrors "github.com/khushboocodes/QuickDesk/pkg/util/errorutil"
)

func pages(items []NavItem) []Page {
	out := make([]Page, 0, len(items))
	for _, item := range items {
		out = append(out, item.Page)
	}
	return out
}

func TestAllowedNavigation(t *testing.T) {
	tests := []struct {
		role domain.Role
		want []Page
	}{
		{domain.RoleEndUser, []Page{PageDashboard, PageTickets, PageCreateTicket}},
		{domain.RoleSupportAgent, []Page{PageDashboard, PageTickets, PageCreateTicket, PageAllTickets}},
		{domain.RoleAdmin, []Page{PageDashboard, PageTickets, PageCreateTicket, PageAllTickets, PageAdmin}},
		{"", []Page{}},
		{"superuser", []Page{}},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.want, pages(AllowedNavigation(tt.role)))
		})
	}
}

func TestAllowedNavigationURLs(t *testing.T) {
	items := AllowedNavigation(domain.RoleAdmin)
	require.Len(t, items, 5)
	assert.Equal(t, "/Dashboard", items[0].URL)
	assert.Equal(t, "My Tickets", items[1].Title)
	assert.Equal(t, "/Admin", items[4].URL)
}

func TestCanAccessPage(t *testing.T) {
	assert.True(t, CanAccessPage(domain.RoleEndUser, PageProfile))
	assert.True(t, CanAccessPage(domain.RoleEndUser, PageTicketDetail))
	assert.False(t, CanAccessPage(domain.RoleEndUser, PageAllTickets))
	assert.False(t, CanAccessPage(domain.RoleSupportAgent, PageAdmin))
	assert.True(t, CanAccessPage(domain.RoleAdmin, PageAdmin))
	assert.False(t, CanAccessPage("", PageProfile))
	assert.False(t, CanAccessPage("", PageDashboard))
	assert.False(t, CanAccessPage(domain.RoleAdmin, Page("Unknown")))
}

func TestCanManageTicket(t *testing.T) {
	assert.False(t, CanManageTicket(domain.RoleEndUser))
	assert.True(t, CanManageTicket(domain.RoleSupportAgent))
	assert.True(t, CanManageTicket(domain.RoleAdmin))
	assert.False(t, CanManageTicket(""))
}

func TestCanViewInternalComment(t *testing.T) {
	internal := domain.Comment{IsInternal: true}
	public := domain.Comment{}

	assert.False(t, CanViewInternalComment(domain.RoleEndUser, internal))
	assert.True(t, CanViewInternalComment(domain.RoleSupportAgent, internal))
	assert.True(t, CanViewInternalComment(domain.RoleAdmin, internal))
	assert.False(t, CanViewInternalComment("", internal))

	for _, role := range append([]domain.Role{""}, domain.Roles...) {
		assert.True(t, CanViewInternalComment(role, public), "role %q", role)
	}
}

func TestVisibleComments(t *testing.T) {
	comments := []domain.Comment{
		{ID: "a"},
		{ID: "b", IsInternal: true},
		{ID: "c"},
	}
	got := VisibleComments(domain.RoleEndUser, comments)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "c", got[1].ID)
	assert.Len(t, VisibleComments(domain.RoleAdmin, comments), 3)
}

func TestCanAdministerAndAccessLevel(t *testing.T) {
	assert.True(t, CanAdminister(domain.RoleAdmin))
	assert.False(t, CanAdminister(domain.RoleSupportAgent))
	assert.Equal(t, "Full Access", AccessLevel(domain.RoleAdmin))
	assert.Equal(t, "Agent Access", AccessLevel(domain.RoleSupportAgent))
	assert.Equal(t, "User Access", AccessLevel(domain.RoleEndUser))
	assert.Equal(t, "No Access", AccessLevel(""))
}

func TestPageURL(t *testing.T) {
	assert.Equal(t, "/CreateTicket", PageURL(PageCreateTicket, nil))
	assert.Equal(t, "/TicketDetail?id=t-42", TicketDetailURL("t-42"))
}

func TestRequirePage(t *testing.T) {
	role := domain.RoleEndUser
	app := fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
		return c.SendStatus(apperrors.ToDomainError(err).HTTPStatus)
	}})
	resolve := func(*fiber.Ctx) domain.Role { return role }
	app.Get("/all", RequirePage(resolve, PageAllTickets), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/admin", RequireAdmin(resolve), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/all", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	role = domain.RoleSupportAgent
	resp, err = app.Test(httptest.NewRequest("GET", "/all", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/admin", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

// Package access holds the single authorization policy for QuickDesk:
// which pages each role may open and which mutations it may perform.
// Handlers and services consult it instead of comparing role strings.
package access

import "github.com/khushboocodes/QuickDesk/internal/domain"

// Page identifies a routable view.
type Page string

const (
	PageDashboard    Page = "Dashboard"
	PageTickets      Page = "Tickets"
	PageCreateTicket Page = "CreateTicket"
	PageAllTickets   Page = "AllTickets"
	PageAdmin        Page = "Admin"
	PageProfile      Page = "Profile"
	PageTicketDetail Page = "TicketDetail"
)

// NavItem is a sidebar entry.
type NavItem struct {
	Page  Page          `json:"page"`
	Title string        `json:"title"`
	URL   string        `json:"url"`
	Roles []domain.Role `json:"-"`
}

var everyone = []domain.Role{domain.RoleEndUser, domain.RoleSupportAgent, domain.RoleAdmin}

var staff = []domain.Role{domain.RoleSupportAgent, domain.RoleAdmin}

// navigation is the static per-page allow-list, in sidebar order.
var navigation = []NavItem{
	{Page: PageDashboard, Title: "Dashboard", Roles: everyone},
	{Page: PageTickets, Title: "My Tickets", Roles: everyone},
	{Page: PageCreateTicket, Title: "Create Ticket", Roles: everyone},
	{Page: PageAllTickets, Title: "All Tickets", Roles: staff},
	{Page: PageAdmin, Title: "Admin Panel", Roles: []domain.Role{domain.RoleAdmin}},
}

// AllowedNavigation returns the sidebar entries visible to role. An empty
// or unknown role gets nothing.
func AllowedNavigation(role domain.Role) []NavItem {
	items := make([]NavItem, 0, len(navigation))
	for _, item := range navigation {
		if hasRole(item.Roles, role) {
			item.URL = PageURL(item.Page, nil)
			items = append(items, item)
		}
	}
	return items
}

// CanAccessPage reports whether role may open page. Profile and
// TicketDetail are reachable by any authenticated role without a sidebar entry.
func CanAccessPage(role domain.Role, page Page) bool {
	switch page {
	case PageProfile, PageTicketDetail:
		return role.Valid()
	}
	for _, item := range navigation {
		if item.Page == page {
			return hasRole(item.Roles, role)
		}
	}
	return false
}

// CanManageTicket reports whether role may edit status/priority and author
// internal comments.
func CanManageTicket(role domain.Role) bool {
	return hasRole(staff, role)
}

// SeesInternalComments reports whether role may read internal notes, and
// so whether they count towards the comment totals it is shown.
func SeesInternalComments(role domain.Role) bool {
	return CanManageTicket(role)
}

// CanViewInternalComment reports whether role may see comment.
func CanViewInternalComment(role domain.Role, comment domain.Comment) bool {
	return !comment.IsInternal || SeesInternalComments(role)
}

// CanAdminister reports whether role may manage users, categories and
// upgrade requests.
func CanAdminister(role domain.Role) bool {
	return role == domain.RoleAdmin
}

// AccessLevel is the human label shown next to the signed-in user.
func AccessLevel(role domain.Role) string {
	switch role {
	case domain.RoleAdmin:
		return "Full Access"
	case domain.RoleSupportAgent:
		return "Agent Access"
	case domain.RoleEndUser:
		return "User Access"
	}
	return "No Access"
}

// VisibleComments drops the comments role may not see, preserving order.
func VisibleComments(role domain.Role, comments []domain.Comment) []domain.Comment {
	out := make([]domain.Comment, 0, len(comments))
	for _, c := range comments {
		if CanViewInternalComment(role, c) {
			out = append(out, c)
		}
	}
	return out
}

func hasRole(allowed []domain.Role, role domain.Role) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

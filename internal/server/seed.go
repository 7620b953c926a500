package server

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/khushboocodes/QuickDesk/internal/auth"
	"github.com/khushboocodes/QuickDesk/internal/domain"
	"github.com/khushboocodes/QuickDesk/internal/repository"
)

// DemoPassword is the password of every seeded account.
const DemoPassword = "quickdesk123"

// SeedReport counts what SeedDemo created.
type SeedReport struct {
	Users      int
	Categories int
	Tickets    int
	Comments   int
}

var demoUsers = []domain.User{
	{Email: "admin@quickdesk.local", FullName: "Avery Admin", Role: domain.RoleAdmin, Department: "IT"},
	{Email: "agent@quickdesk.local", FullName: "Sam Support", Role: domain.RoleSupportAgent, Department: "Support"},
	{Email: "user@quickdesk.local", FullName: "Jordan User", Role: domain.RoleEndUser, Department: "Finance"},
}

var demoCategories = []domain.Category{
	{Name: "Technical", Description: "Software and hardware problems", Color: "#3b82f6", Icon: "Wrench"},
	{Name: "Billing", Description: "Invoices, refunds and payments", Color: "#f59e0b", Icon: "CreditCard"},
	{Name: "Account", Description: "Login and access issues", Color: "#8b5cf6", Icon: "User"},
	{Name: "General", Description: "Everything else", Color: domain.DefaultCategoryColor, Icon: domain.DefaultCategoryIcon},
}

type demoTicket struct {
	title, description, category string
	status                       domain.TicketStatus
	priority                     domain.TicketPriority
	reporter                     string
	upvotes                      int
	comments                     []domain.Comment
}

var demoTickets = []demoTicket{
	{
		title: "Cannot connect to VPN", description: "The VPN client times out since this morning.",
		category: "Technical", status: domain.TicketStatusInProgress, priority: domain.TicketPriorityHigh,
		reporter: "user@quickdesk.local", upvotes: 3,
		comments: []domain.Comment{
			{Content: "Looking into it, can you share the client version?", AuthorEmail: "agent@quickdesk.local", AuthorName: "Sam Support"},
			{Content: "Gateway certificate expired, renewal requested.", AuthorEmail: "agent@quickdesk.local", AuthorName: "Sam Support", IsInternal: true},
		},
	},
	{
		title: "Charged twice for March", description: "My card shows two identical charges.",
		category: "Billing", status: domain.TicketStatusOpen, priority: domain.TicketPriorityMedium,
		reporter: "user@quickdesk.local",
	},
	{
		title: "Password reset email never arrives", description: "Tried three times, nothing in spam either.",
		category: "Account", status: domain.TicketStatusResolved, priority: domain.TicketPriorityLow,
		reporter: "agent@quickdesk.local", upvotes: 1,
		comments: []domain.Comment{
			{Content: "Mail relay was fixed, please try again.", AuthorEmail: "admin@quickdesk.local", AuthorName: "Avery Admin"},
		},
	},
}

// SeedDemo creates demo accounts, categories and tickets. Existing accounts
// and categories are kept; tickets are only created into an empty store.
func SeedDemo(ctx context.Context, repos Repositories, bcryptCost int, logger *zap.Logger) (SeedReport, error) {
	var report SeedReport
	if logger == nil {
		logger = zap.NewNop()
	}

	hash, err := auth.HashPassword(DemoPassword, bcryptCost)
	if err != nil {
		return report, err
	}
	for _, u := range demoUsers {
		if _, err := repos.Users.GetByEmail(ctx, u.Email); err == nil {
			continue
		} else if !errors.Is(err, repository.ErrNotFound) {
			return report, fmt.Errorf("lookup %s: %w", u.Email, err)
		}
		user := u
		user.PasswordHash = hash
		if err := repos.Users.Create(ctx, &user); err != nil {
			return report, fmt.Errorf("seed user %s: %w", u.Email, err)
		}
		report.Users++
	}

	existing, err := repos.Categories.List(ctx, "name")
	if err != nil {
		return report, err
	}
	categoryIDs := make(map[string]string, len(existing))
	for _, c := range existing {
		categoryIDs[c.Name] = c.ID
	}
	for _, c := range demoCategories {
		if _, ok := categoryIDs[c.Name]; ok {
			continue
		}
		category := c
		if err := repos.Categories.Create(ctx, &category); err != nil {
			return report, fmt.Errorf("seed category %s: %w", c.Name, err)
		}
		categoryIDs[c.Name] = category.ID
		report.Categories++
	}

	tickets, err := repos.Tickets.List(ctx, "-created_date")
	if err != nil {
		return report, err
	}
	if len(tickets) > 0 {
		logger.Info("tickets already present; skipping demo tickets", zap.Int("count", len(tickets)))
		return report, nil
	}
	for _, t := range demoTickets {
		ticket := domain.Ticket{
			Title:         t.title,
			Description:   t.description,
			Status:        t.status,
			Priority:      t.priority,
			CategoryID:    categoryIDs[t.category],
			ReporterEmail: t.reporter,
			Upvotes:       t.upvotes,
		}
		if err := repos.Tickets.Create(ctx, &ticket); err != nil {
			return report, fmt.Errorf("seed ticket %q: %w", t.title, err)
		}
		report.Tickets++
		for _, c := range t.comments {
			comment := c
			comment.TicketID = ticket.ID
			if err := repos.Comments.Create(ctx, &comment); err != nil {
				return report, fmt.Errorf("seed comment: %w", err)
			}
			report.Comments++
		}
	}

	logger.Info("demo data seeded",
		zap.Int("users", report.Users),
		zap.Int("categories", report.Categories),
		zap.Int("tickets", report.Tickets),
		zap.Int("comments", report.Comments))
	return report, nil
}

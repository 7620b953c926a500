package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/khushboocodes/QuickDesk/internal/access"
	"github.com/khushboocodes/QuickDesk/internal/domain"
	"github.com/khushboocodes/QuickDesk/internal/repository"
	"github.com/khushboocodes/QuickDesk/internal/stats"
)

// DashboardService computes the dashboard aggregates.
type DashboardService struct {
	tickets    repository.TicketRepository
	categories *CategoryService
	logger     *zap.Logger
	now        func() time.Time
}

// NewDashboardService constructs the service.
func NewDashboardService(tickets repository.TicketRepository, categories *CategoryService, logger *zap.Logger) *DashboardService {
	return &DashboardService{tickets: tickets, categories: categories, logger: orNop(logger), now: time.Now}
}

// Dashboard returns aggregates over the caller's own tickets, or over all
// tickets for agents and admins. Without categories the breakdown still
// renders with every ticket uncategorized.
func (s *DashboardService) Dashboard(ctx context.Context, actor domain.User) (*stats.Dashboard, error) {
	query := repository.TicketQuery{}
	if !access.CanManageTicket(actor.Role) {
		query.ReporterEmail = actor.Email
	}
	tickets, err := s.tickets.Filter(ctx, query, "-created_date")
	if err != nil {
		return nil, err
	}

	categories, err := s.categories.List(ctx)
	if err != nil {
		s.logger.Warn("dashboard categories unavailable", zap.Error(err))
		categories = nil
	}

	dashboard := stats.Build(tickets, categories, s.now())
	return &dashboard, nil
}

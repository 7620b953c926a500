package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/khushboocodes/QuickDesk/internal/domain"
	"github.com/khushboocodes/QuickDesk/internal/events"
	"github.com/khushboocodes/QuickDesk/internal/repository"
	apperrors "github.com/khushboocodes/QuickDesk/pkg/util/errorutil"
)

// UpgradeService handles role upgrade requests and their review.
type UpgradeService struct {
	requests repository.UpgradeRequestRepository
	events   publisher
	logger   *zap.Logger
}

// NewUpgradeService constructs the service.
func NewUpgradeService(requests repository.UpgradeRequestRepository, dispatcher events.Dispatcher, logger *zap.Logger) *UpgradeService {
	logger = orNop(logger)
	return &UpgradeService{requests: requests, events: publisher{dispatcher: dispatcher, logger: logger}, logger: logger}
}

// UpgradeInput is a request for a different role.
type UpgradeInput struct {
	RequestedRole string
	Reason        string
}

// RequestUpgrade files a pending request for actor. A user may have at
// most one pending request.
func (s *UpgradeService) RequestUpgrade(ctx context.Context, actor domain.User, input UpgradeInput) (*domain.UpgradeRequest, error) {
	requested := domain.Role(strings.TrimSpace(input.RequestedRole))
	reason := strings.TrimSpace(input.Reason)
	switch {
	case !requested.Valid():
		return nil, apperrors.NewValidationError("unknown role", map[string]any{"field": "requested_role", "value": input.RequestedRole})
	case requested == actor.Role:
		return nil, apperrors.NewValidationError("requested role equals current role", map[string]any{"field": "requested_role", "value": input.RequestedRole})
	case reason == "":
		return nil, apperrors.NewFieldError("reason", "reason is required")
	}

	pending, err := s.requests.Filter(ctx, repository.UpgradeQuery{UserID: actor.ID, Status: domain.UpgradeStatusPending}, "")
	if err != nil {
		return nil, err
	}
	if len(pending) > 0 {
		return nil, apperrors.NewConflict("an upgrade request is already pending", map[string]any{"request_id": pending[0].ID})
	}

	request := &domain.UpgradeRequest{
		UserID:        actor.ID,
		UserEmail:     actor.Email,
		UserName:      actor.DisplayName(),
		CurrentRole:   actor.Role,
		RequestedRole: requested,
		Reason:        reason,
		Status:        domain.UpgradeStatusPending,
	}
	if err := s.requests.Create(ctx, request); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("an upgrade request is already pending", nil)
		}
		return nil, err
	}
	s.events.publish(ctx, events.New(events.EventUpgradeRequested, request.ID, events.ActorFromUser(actor), events.UpgradeRequestedPayload{
		UserEmail:     request.UserEmail,
		RequestedRole: request.RequestedRole,
	}))
	return request, nil
}

// ListMine returns the caller's requests, newest first.
func (s *UpgradeService) ListMine(ctx context.Context, actor domain.User) ([]domain.UpgradeRequest, error) {
	return s.requests.Filter(ctx, repository.UpgradeQuery{UserID: actor.ID}, "-created_date")
}

// List returns requests with the given status, or all when status is empty.
func (s *UpgradeService) List(ctx context.Context, status string) ([]domain.UpgradeRequest, error) {
	st := domain.UpgradeStatus(status)
	switch st {
	case "", domain.UpgradeStatusPending, domain.UpgradeStatusApproved, domain.UpgradeStatusRejected:
	default:
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"field": "status", "value": status})
	}
	return s.requests.Filter(ctx, repository.UpgradeQuery{Status: st}, "-created_date")
}

// Approve grants the requested role and marks the request approved. Both
// happen in one repository call so a concurrent decision can never leave
// the role granted on a rejected request.
func (s *UpgradeService) Approve(ctx context.Context, actor domain.User, id string) (*domain.UpgradeRequest, error) {
	if _, err := s.pending(ctx, id, domain.UpgradeStatusApproved); err != nil {
		return nil, err
	}
	approved, err := s.requests.Approve(ctx, id)
	if err != nil {
		return nil, s.decisionError(err, id)
	}
	s.publishDecision(ctx, actor, approved)
	return approved, nil
}

// Reject marks the request rejected without touching the user.
func (s *UpgradeService) Reject(ctx context.Context, actor domain.User, id string) (*domain.UpgradeRequest, error) {
	if _, err := s.pending(ctx, id, domain.UpgradeStatusRejected); err != nil {
		return nil, err
	}
	rejected, err := s.requests.Transition(ctx, id, domain.UpgradeStatusPending, domain.UpgradeStatusRejected)
	if err != nil {
		return nil, s.decisionError(err, id)
	}
	s.publishDecision(ctx, actor, rejected)
	return rejected, nil
}

func (s *UpgradeService) pending(ctx context.Context, id string, next domain.UpgradeStatus) (*domain.UpgradeRequest, error) {
	request, err := s.requests.Get(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "upgrade request")
	}
	if !request.Status.CanTransition(next) {
		return nil, apperrors.NewConflict("upgrade request already decided", map[string]any{"status": request.Status})
	}
	return request, nil
}

func (s *UpgradeService) decisionError(err error, id string) error {
	if errors.Is(err, repository.ErrConflict) {
		s.logger.Warn("upgrade request decided concurrently", zap.String("request_id", id))
		return apperrors.NewConflict("upgrade request already decided", nil)
	}
	return mapRepoError(err, "upgrade request")
}

func (s *UpgradeService) publishDecision(ctx context.Context, actor domain.User, decided *domain.UpgradeRequest) {
	s.events.publish(ctx, events.New(events.EventUpgradeDecided, decided.ID, events.ActorFromUser(actor), events.UpgradeDecidedPayload{
		UserEmail:     decided.UserEmail,
		RequestedRole: decided.RequestedRole,
		Status:        decided.Status,
	}))
}

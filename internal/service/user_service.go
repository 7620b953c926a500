package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/khushboocodes/QuickDesk/internal/domain"
	"github.com/khushboocodes/QuickDesk/internal/events"
	"github.com/khushboocodes/QuickDesk/internal/repository"
	apperrors "github.com/khushboocodes/QuickDesk/pkg/util/errorutil"
)

// UserService handles profiles and admin user management.
type UserService struct {
	users  repository.UserRepository
	events publisher
}

// NewUserService constructs the service.
func NewUserService(users repository.UserRepository, dispatcher events.Dispatcher, logger *zap.Logger) *UserService {
	return &UserService{users: users, events: publisher{dispatcher: dispatcher, logger: orNop(logger)}}
}

// ProfileInput carries the self-editable profile fields.
type ProfileInput struct {
	FullName   *string
	Department *string
	Phone      *string
}

// UpdateProfile edits the caller's own profile.
func (s *UserService) UpdateProfile(ctx context.Context, actor domain.User, input ProfileInput) (*domain.User, error) {
	patch := domain.UserPatch{
		FullName:   trimmedPtr(input.FullName),
		Department: trimmedPtr(input.Department),
		Phone:      trimmedPtr(input.Phone),
	}
	if patch.FullName == nil && patch.Department == nil && patch.Phone == nil {
		return nil, apperrors.NewValidationError("nothing to update", map[string]any{"fields": []string{"full_name", "department", "phone"}})
	}
	user, err := s.users.Update(ctx, actor.ID, patch)
	if err != nil {
		return nil, mapRepoError(err, "user")
	}
	return user, nil
}

// SetAvatar stores the uploaded avatar url on the caller's profile.
func (s *UserService) SetAvatar(ctx context.Context, actor domain.User, url string) (*domain.User, error) {
	if isBlank(url) {
		return nil, apperrors.NewFieldError("avatar_url", "avatar url is required")
	}
	user, err := s.users.Update(ctx, actor.ID, domain.UserPatch{AvatarURL: &url})
	if err != nil {
		return nil, mapRepoError(err, "user")
	}
	return user, nil
}

// ListUsers returns every account, newest first.
func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx, "-created_date")
}

// ChangeRole sets a user's role. Callers are gated to admins.
func (s *UserService) ChangeRole(ctx context.Context, actor domain.User, userID string, role string) (*domain.User, error) {
	next := domain.Role(role)
	if !next.Valid() {
		return nil, apperrors.NewValidationError("unknown role", map[string]any{"field": "role", "value": role})
	}
	before, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, mapRepoError(err, "user")
	}
	if before.Role == next {
		return before, nil
	}
	user, err := s.users.Update(ctx, userID, domain.UserPatch{Role: &next})
	if err != nil {
		return nil, mapRepoError(err, "user")
	}
	s.events.publish(ctx, events.New(events.EventUserRoleChanged, user.ID, events.ActorFromUser(actor), events.UserRoleChangedPayload{
		OldRole: before.Role,
		NewRole: user.Role,
	}))
	return user, nil
}

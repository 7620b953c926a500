package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/khushboocodes/QuickDesk/internal/events"
	"github.com/khushboocodes/QuickDesk/internal/repository"
	apperrors "github.com/khushboocodes/QuickDesk/pkg/util/errorutil"
)

// mapRepoError turns repository sentinels into domain errors for resource.
// Other errors pass through and surface as internal errors.
func mapRepoError(err error, resource string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NewNotFound(resource, nil)
	case errors.Is(err, repository.ErrDuplicate):
		return apperrors.NewConflict(resource+" already exists", nil)
	case errors.Is(err, repository.ErrConflict):
		return apperrors.NewConflict(resource+" was modified concurrently", nil)
	}
	return err
}

// publisher publishes events without letting notification failures leak
// into the request outcome.
type publisher struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

func (p publisher) publish(ctx context.Context, event events.Event) {
	if p.dispatcher == nil {
		return
	}
	if err := p.dispatcher.Publish(ctx, event); err != nil {
		p.logger.Warn("event handlers failed", zap.String("event_type", string(event.Type)), zap.String("subject_id", event.SubjectID), zap.Error(err))
	}
}

func trimmedPtr(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	return &t
}

func orNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/khushboocodes/QuickDesk/internal/access"
	"github.com/khushboocodes/QuickDesk/internal/domain"
	"github.com/khushboocodes/QuickDesk/internal/events"
	"github.com/khushboocodes/QuickDesk/internal/listing"
	"github.com/khushboocodes/QuickDesk/internal/repository"
	apperrors "github.com/khushboocodes/QuickDesk/pkg/util/errorutil"
)

const (
	maxTitleLength   = 200
	maxTags          = 20
	bodyPreviewRunes = 140
)

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets    repository.TicketRepository
	comments   repository.CommentRepository
	categories *CategoryService
	events     publisher
	logger     *zap.Logger
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	CommentRepo repository.CommentRepository
	Categories  *CategoryService
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := orNop(deps.Logger)
	return &TicketService{
		tickets:    deps.TicketRepo,
		comments:   deps.CommentRepo,
		categories: deps.Categories,
		events:     publisher{dispatcher: deps.Dispatcher, logger: logger},
		logger:     logger,
	}
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title          string
	Description    string
	CategoryID     string
	Priority       string
	Tags           []string
	AttachmentURLs []string
}

// CreateTicket creates a ticket reported by actor.
func (s *TicketService) CreateTicket(ctx context.Context, actor domain.User, input TicketCreateInput) (*domain.Ticket, error) {
	ticket := &domain.Ticket{
		Title:          strings.TrimSpace(input.Title),
		Description:    strings.TrimSpace(input.Description),
		Status:         domain.TicketStatusOpen,
		Priority:       domain.TicketPriorityMedium,
		CategoryID:     strings.TrimSpace(input.CategoryID),
		ReporterEmail:  actor.Email,
		Tags:           cleanList(input.Tags),
		AttachmentURLs: cleanList(input.AttachmentURLs),
	}

	switch {
	case ticket.Title == "":
		return nil, apperrors.NewFieldError("title", "title is required")
	case len([]rune(ticket.Title)) > maxTitleLength:
		return nil, apperrors.NewValidationError("title is too long", map[string]any{"field": "title", "max_length": maxTitleLength})
	case ticket.Description == "":
		return nil, apperrors.NewFieldError("description", "description is required")
	case len(ticket.Tags) > maxTags:
		return nil, apperrors.NewValidationError("too many tags", map[string]any{"field": "tags", "max": maxTags})
	}
	if p := strings.TrimSpace(input.Priority); p != "" {
		ticket.Priority = domain.TicketPriority(p)
		if !ticket.Priority.Valid() {
			return nil, apperrors.NewValidationError("unknown priority", map[string]any{"field": "priority", "value": p})
		}
	}
	if ticket.CategoryID != "" {
		if _, err := s.categories.Get(ctx, ticket.CategoryID); err != nil {
			if apperrors.IsCode(err, "NOT_FOUND") {
				return nil, apperrors.NewValidationError("unknown category", map[string]any{"field": "category_id", "value": ticket.CategoryID})
			}
			return nil, err
		}
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, mapRepoError(err, "ticket")
	}
	s.events.publish(ctx, events.New(events.EventTicketCreated, ticket.ID, events.ActorFromUser(actor), events.TicketCreatedPayload{
		CategoryID:    ticket.CategoryID,
		Priority:      ticket.Priority,
		Title:         ticket.Title,
		ReporterEmail: ticket.ReporterEmail,
	}))
	return ticket, nil
}

// TicketList is one derived page of a ticket list view.
type TicketList struct {
	listing.Result
	State         listing.ViewState
	CommentCounts listing.CommentCounts
}

// ListTickets loads every ticket and derives the requested page. An
// out-of-range page is reset to the first one.
func (s *TicketService) ListTickets(ctx context.Context, actor domain.User, state listing.ViewState) (*TicketList, error) {
	tickets, err := s.tickets.List(ctx, string(listing.SortNewest))
	if err != nil {
		return nil, err
	}
	counts, err := s.commentCounts(ctx, actor, tickets)
	if err != nil {
		return nil, err
	}
	result, rendered := listing.View(tickets, state, actor.Email, counts)
	return &TicketList{Result: result, State: rendered, CommentCounts: counts}, nil
}

func (s *TicketService) commentCounts(ctx context.Context, actor domain.User, tickets []domain.Ticket) (listing.CommentCounts, error) {
	ids := make([]string, 0, len(tickets))
	for _, t := range tickets {
		ids = append(ids, t.ID)
	}
	counts, err := s.comments.CountByTickets(ctx, ids, access.SeesInternalComments(actor.Role))
	if err != nil {
		return nil, err
	}
	return listing.CommentCounts(counts), nil
}

// CommentCount returns how many comments of a ticket actor can see.
func (s *TicketService) CommentCount(ctx context.Context, actor domain.User, ticketID string) (int, error) {
	counts, err := s.comments.CountByTickets(ctx, []string{ticketID}, access.SeesInternalComments(actor.Role))
	if err != nil {
		return 0, err
	}
	return counts[ticketID], nil
}

// TicketDetail is everything the detail view renders.
type TicketDetail struct {
	Ticket             domain.Ticket
	Category           *domain.Category
	Comments           []domain.Comment
	CanManage          bool
	CanCommentInternal bool
}

// GetTicketDetail loads a ticket with its category and the comments actor
// may see. A failing category lookup degrades to no category.
func (s *TicketService) GetTicketDetail(ctx context.Context, actor domain.User, id string) (*TicketDetail, error) {
	ticket, err := s.tickets.Get(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "ticket")
	}
	comments, err := s.comments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, err
	}

	detail := &TicketDetail{
		Ticket:             *ticket,
		Comments:           access.VisibleComments(actor.Role, comments),
		CanManage:          access.CanManageTicket(actor.Role),
		CanCommentInternal: access.CanManageTicket(actor.Role),
	}
	if ticket.CategoryID != "" {
		category, err := s.categories.Get(ctx, ticket.CategoryID)
		switch {
		case err == nil:
			detail.Category = category
		case !apperrors.IsCode(err, "NOT_FOUND"):
			s.logger.Warn("category lookup failed", zap.String("ticket_id", ticket.ID), zap.Error(err))
		}
	}
	return detail, nil
}

// TicketUpdateInput carries status and priority edits.
type TicketUpdateInput struct {
	Status   *string
	Priority *string
}

// UpdateTicket changes status and/or priority. Only agents and admins may
// call it.
func (s *TicketService) UpdateTicket(ctx context.Context, actor domain.User, id string, input TicketUpdateInput) (*domain.Ticket, error) {
	if !access.CanManageTicket(actor.Role) {
		return nil, apperrors.NewForbidden("support agent or admin role required")
	}

	var patch domain.TicketPatch
	if input.Status != nil {
		status := domain.TicketStatus(strings.TrimSpace(*input.Status))
		if !status.Valid() {
			return nil, apperrors.NewValidationError("unknown status", map[string]any{"field": "status", "value": *input.Status})
		}
		patch.Status = &status
	}
	if input.Priority != nil {
		priority := domain.TicketPriority(strings.TrimSpace(*input.Priority))
		if !priority.Valid() {
			return nil, apperrors.NewValidationError("unknown priority", map[string]any{"field": "priority", "value": *input.Priority})
		}
		patch.Priority = &priority
	}
	if patch.Status == nil && patch.Priority == nil {
		return nil, apperrors.NewValidationError("nothing to update", map[string]any{"fields": []string{"status", "priority"}})
	}

	before, err := s.tickets.Get(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "ticket")
	}
	after, err := s.tickets.Update(ctx, id, patch)
	if err != nil {
		return nil, mapRepoError(err, "ticket")
	}

	actorInfo := events.ActorFromUser(actor)
	if before.Status != after.Status {
		s.events.publish(ctx, events.New(events.EventTicketStatusChanged, after.ID, actorInfo, events.TicketStatusChangedPayload{
			OldStatus:     before.Status,
			NewStatus:     after.Status,
			ReporterEmail: after.ReporterEmail,
		}))
	}
	if before.Priority != after.Priority {
		s.events.publish(ctx, events.New(events.EventTicketPriorityChanged, after.ID, actorInfo, events.TicketPriorityChangedPayload{
			OldPriority: before.Priority,
			NewPriority: after.Priority,
		}))
	}
	return after, nil
}

// Vote directions.
const (
	VoteUp   = "up"
	VoteDown = "down"
)

// Vote moves the upvote counter by one. It never drops below zero.
func (s *TicketService) Vote(ctx context.Context, id, direction string) (*domain.Ticket, error) {
	var delta int
	switch direction {
	case VoteUp:
		delta = 1
	case VoteDown:
		delta = -1
	default:
		return nil, apperrors.NewValidationError("direction must be up or down", map[string]any{"field": "direction", "value": direction})
	}
	ticket, err := s.tickets.Vote(ctx, id, delta)
	if err != nil {
		return nil, mapRepoError(err, "ticket")
	}
	return ticket, nil
}

// ListComments returns the thread of a ticket newest first, without the
// internal notes actor may not see.
func (s *TicketService) ListComments(ctx context.Context, actor domain.User, ticketID string) ([]domain.Comment, error) {
	if _, err := s.tickets.Get(ctx, ticketID); err != nil {
		return nil, mapRepoError(err, "ticket")
	}
	comments, err := s.comments.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	return access.VisibleComments(actor.Role, comments), nil
}

// CommentInput is a new reply.
type CommentInput struct {
	Content    string
	IsInternal bool
}

// AddComment appends a reply authored by actor.
func (s *TicketService) AddComment(ctx context.Context, actor domain.User, ticketID string, input CommentInput) (*domain.Comment, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, apperrors.NewFieldError("content", "content is required")
	}
	if input.IsInternal && !access.CanManageTicket(actor.Role) {
		return nil, apperrors.NewForbidden("only support agents and admins can post internal notes")
	}

	ticket, err := s.tickets.Get(ctx, ticketID)
	if err != nil {
		return nil, mapRepoError(err, "ticket")
	}

	comment := &domain.Comment{
		TicketID:    ticket.ID,
		Content:     content,
		AuthorEmail: actor.Email,
		AuthorName:  actor.DisplayName(),
		IsInternal:  input.IsInternal,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("ticket", nil)
		}
		return nil, err
	}

	s.events.publish(ctx, events.New(events.EventCommentAdded, ticket.ID, events.ActorFromUser(actor), events.CommentAddedPayload{
		CommentID:     comment.ID,
		IsInternal:    comment.IsInternal,
		ReporterEmail: ticket.ReporterEmail,
		BodyPreview:   events.Preview(comment.Content, bodyPreviewRunes),
	}))
	return comment, nil
}

// cleanList trims entries, drops blanks and duplicates, keeping order.
func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if isBlank(v) || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

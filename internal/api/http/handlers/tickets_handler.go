package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/khushboocodes/QuickDesk/internal/api/dto"
	"github.com/khushboocodes/QuickDesk/internal/domain"
	"github.com/khushboocodes/QuickDesk/internal/listing"
	"github.com/khushboocodes/QuickDesk/internal/service"
	apperrors "github.com/khushboocodes/QuickDesk/pkg/util/errorutil"
)

// RequestTokenHeader carries the per-view request sequence number of list calls.
const RequestTokenHeader = "X-Request-Token"

// List views that take request tokens.
const (
	viewMyTickets  = "tickets"
	viewAllTickets = "all_tickets"
)

func sequenceKey(userID, view string) string {
	return userID + ":" + view
}

// forgetListViews drops the request tokens seen for every list view of a user.
func forgetListViews(sequencer *listing.Sequencer, userID string) {
	if sequencer == nil {
		return
	}
	for _, view := range []string{viewMyTickets, viewAllTickets} {
		sequencer.Forget(sequenceKey(userID, view))
	}
}

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	service   *service.TicketService
	sequencer *listing.Sequencer
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService, sequencer *listing.Sequencer) *TicketsHandler {
	if sequencer == nil {
		sequencer = listing.NewSequencer()
	}
	return &TicketsHandler{service: ticketService, sequencer: sequencer}
}

// ListMine handles GET /tickets, the "My Tickets" view. Own-only is on by default.
func (h *TicketsHandler) ListMine(c *fiber.Ctx) error {
	return h.list(c, viewMyTickets, listing.DefaultViewState(true))
}

// ListAll handles GET /tickets/all.
func (h *TicketsHandler) ListAll(c *fiber.Ctx) error {
	return h.list(c, viewAllTickets, listing.DefaultViewState(false))
}

func (h *TicketsHandler) list(c *fiber.Ctx, view string, defaults listing.ViewState) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	token, err := h.observe(c, sequenceKey(user.ID, view))
	if err != nil {
		return err
	}

	state := listing.ParseViewState(c.Query, defaults)
	list, err := h.service.ListTickets(c.UserContext(), user, state)
	if err != nil {
		return err
	}

	items := make([]dto.TicketResponse, 0, len(list.Items))
	for i := range list.Items {
		items = append(items, ticketResponse(&list.Items[i], list.CommentCounts[list.Items[i].ID]))
	}
	return c.JSON(fiber.Map{
		"data": items,
		"meta": dto.TicketListMeta{
			Page:         list.Page,
			PageSize:     list.PageSize,
			TotalPages:   list.TotalPages,
			Total:        list.Total,
			State:        list.State,
			RequestToken: token,
		},
	})
}

// observe applies the optional request token. Older tokens than the
// latest seen for the view are refused; the token is echoed either way.
func (h *TicketsHandler) observe(c *fiber.Ctx, key string) (uint64, error) {
	raw := c.Get(RequestTokenHeader)
	if raw == "" {
		return 0, nil
	}
	token, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, apperrors.NewFieldError(RequestTokenHeader, "must be a non-negative integer")
	}
	c.Set(RequestTokenHeader, raw)
	if latest, ok := h.sequencer.Observe(key, token); !ok {
		return 0, apperrors.NewStaleRequest(token, latest)
	}
	return token, nil
}

// CreateTicket handles POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ticket, err := h.service.CreateTicket(c.UserContext(), user, service.TicketCreateInput{
		Title:          req.Title,
		Description:    req.Description,
		CategoryID:     req.CategoryID,
		Priority:       req.Priority,
		Tags:           req.Tags,
		AttachmentURLs: req.AttachmentURLs,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketResponse(ticket, 0)})
}

// GetTicket handles GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	detail, err := h.service.GetTicketDetail(c.UserContext(), user, c.Params("id"))
	if err != nil {
		return err
	}
	count, err := h.service.CommentCount(c.UserContext(), user, detail.Ticket.ID)
	if err != nil {
		return err
	}
	resp := dto.TicketDetailResponse{
		Ticket:             ticketResponse(&detail.Ticket, count),
		Comments:           commentResponses(detail.Comments),
		CanManage:          detail.CanManage,
		CanCommentInternal: detail.CanCommentInternal,
	}
	if detail.Category != nil {
		category := categoryResponse(detail.Category)
		resp.Category = &category
	}
	return c.JSON(fiber.Map{"data": resp})
}

// UpdateTicket handles PATCH /tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.UpdateTicketRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ticket, err := h.service.UpdateTicket(c.UserContext(), user, c.Params("id"), service.TicketUpdateInput{
		Status:   req.Status,
		Priority: req.Priority,
	})
	if err != nil {
		return err
	}
	return h.respondTicket(c, ticket)
}

// Vote handles POST /tickets/:id/vote.
func (h *TicketsHandler) Vote(c *fiber.Ctx) error {
	if _, err := currentUser(c); err != nil {
		return err
	}
	var req dto.VoteRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ticket, err := h.service.Vote(c.UserContext(), c.Params("id"), req.Direction)
	if err != nil {
		return err
	}
	return h.respondTicket(c, ticket)
}

func (h *TicketsHandler) respondTicket(c *fiber.Ctx, ticket *domain.Ticket) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	count, err := h.service.CommentCount(c.UserContext(), user, ticket.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket, count)})
}

// ListComments handles GET /tickets/:id/comments.
func (h *TicketsHandler) ListComments(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	comments, err := h.service.ListComments(c.UserContext(), user, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": commentResponses(comments)})
}

// AddComment handles POST /tickets/:id/comments.
func (h *TicketsHandler) AddComment(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.CreateCommentRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	comment, err := h.service.AddComment(c.UserContext(), user, c.Params("id"), service.CommentInput{
		Content:    req.Content,
		IsInternal: req.IsInternal,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": commentResponse(comment)})
}

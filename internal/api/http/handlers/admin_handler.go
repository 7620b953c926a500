package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/khushboocodes/QuickDesk/internal/api/dto"
	"github.com/khushboocodes/QuickDesk/internal/domain"
	"github.com/khushboocodes/QuickDesk/internal/service"
)

// AdminHandler exposes user management and upgrade decisions.
type AdminHandler struct {
	users    *service.UserService
	upgrades *service.UpgradeService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(users *service.UserService, upgrades *service.UpgradeService) *AdminHandler {
	return &AdminHandler{users: users, upgrades: upgrades}
}

// ListUsers handles GET /admin/users.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.users.ListUsers(c.UserContext())
	if err != nil {
		return err
	}
	resp := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		resp = append(resp, userResponse(&users[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// ChangeRole handles PATCH /admin/users/:id/role.
func (h *AdminHandler) ChangeRole(c *fiber.Ctx) error {
	admin, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.RoleChangeRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	user, err := h.users.ChangeRole(c.UserContext(), admin, c.Params("id"), req.Role)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(user)})
}

// ListUpgradeRequests handles GET /admin/upgrade-requests. It defaults to
// pending requests; status=all lists every request.
func (h *AdminHandler) ListUpgradeRequests(c *fiber.Ctx) error {
	status := c.Query("status", string(domain.UpgradeStatusPending))
	if status == "all" {
		status = ""
	}
	requests, err := h.upgrades.List(c.UserContext(), status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": upgradeResponses(requests)})
}

// ApproveUpgrade handles POST /admin/upgrade-requests/:id/approve.
func (h *AdminHandler) ApproveUpgrade(c *fiber.Ctx) error {
	admin, err := currentUser(c)
	if err != nil {
		return err
	}
	request, err := h.upgrades.Approve(c.UserContext(), admin, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": upgradeResponse(request)})
}

// RejectUpgrade handles POST /admin/upgrade-requests/:id/reject.
func (h *AdminHandler) RejectUpgrade(c *fiber.Ctx) error {
	admin, err := currentUser(c)
	if err != nil {
		return err
	}
	request, err := h.upgrades.Reject(c.UserContext(), admin, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": upgradeResponse(request)})
}

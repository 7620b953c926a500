package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/khushboocodes/QuickDesk/internal/access"
	"github.com/khushboocodes/QuickDesk/internal/api/dto"
	"github.com/khushboocodes/QuickDesk/internal/auth"
	"github.com/khushboocodes/QuickDesk/internal/service"
	"github.com/khushboocodes/QuickDesk/internal/storage"
)

// ProfileHandler serves the caller's own account: navigation, profile,
// avatar and role upgrade requests.
type ProfileHandler struct {
	users    *service.UserService
	upgrades *service.UpgradeService
	avatars  storage.Uploader
}

// NewProfileHandler constructs handler.
func NewProfileHandler(users *service.UserService, upgrades *service.UpgradeService, avatars storage.Uploader) *ProfileHandler {
	return &ProfileHandler{users: users, upgrades: upgrades, avatars: avatars}
}

// Navigation handles GET /navigation. Anonymous callers get an empty
// sidebar instead of an error.
func (h *ProfileHandler) Navigation(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return c.JSON(fiber.Map{"data": dto.NavigationResponse{Items: []access.NavItem{}}})
	}
	user := userResponse(&principal.User)
	return c.JSON(fiber.Map{"data": dto.NavigationResponse{
		Authenticated: true,
		AccessLevel:   access.AccessLevel(principal.Role()),
		User:          &user,
		Items:         access.AllowedNavigation(principal.Role()),
	}})
}

// Me handles GET /me.
func (h *ProfileHandler) Me(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(&user)})
}

// UpdateMe handles PUT /me.
func (h *ProfileHandler) UpdateMe(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.ProfileRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	updated, err := h.users.UpdateProfile(c.UserContext(), user, service.ProfileInput{
		FullName:   req.FullName,
		Department: req.Department,
		Phone:      req.Phone,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(updated)})
}

// UploadAvatar handles POST /me/avatar with a multipart "file" field.
func (h *ProfileHandler) UploadAvatar(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	uploaded, err := receiveFile(c, h.avatars)
	if err != nil {
		return err
	}
	updated, err := h.users.SetAvatar(c.UserContext(), user, uploaded.FileURL)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(updated)})
}

// RequestUpgrade handles POST /me/upgrade-requests.
func (h *ProfileHandler) RequestUpgrade(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.UpgradeRequestBody
	if err := bind(c, &req); err != nil {
		return err
	}
	request, err := h.upgrades.RequestUpgrade(c.UserContext(), user, service.UpgradeInput{
		RequestedRole: req.RequestedRole,
		Reason:        req.Reason,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": upgradeResponse(request)})
}

// ListUpgradeRequests handles GET /me/upgrade-requests.
func (h *ProfileHandler) ListUpgradeRequests(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	requests, err := h.upgrades.ListMine(c.UserContext(), user)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": upgradeResponses(requests)})
}

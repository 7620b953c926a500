package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/khushboocodes/QuickDesk/internal/api/dto"
	"github.com/khushboocodes/QuickDesk/internal/auth"
	"github.com/khushboocodes/QuickDesk/internal/listing"
	"github.com/khushboocodes/QuickDesk/internal/service"
	apperrors "github.com/khushboocodes/QuickDesk/pkg/util/errorutil"
)

// AuthHandler exposes the session endpoints.
type AuthHandler struct {
	auth      *service.AuthService
	sequencer *listing.Sequencer
}

// NewAuthHandler constructs handler. sequencer is the one the ticket lists
// use; logout clears the user's request tokens from it. It may be nil.
func NewAuthHandler(authService *service.AuthService, sequencer *listing.Sequencer) *AuthHandler {
	return &AuthHandler{auth: authService, sequencer: sequencer}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	result, err := h.auth.Register(c.UserContext(), service.RegisterInput{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": authResponse(result)})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	result, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": authResponse(result)})
}

// Logout handles POST /auth/logout. The presented token stops working
// immediately when Redis is available, and the next session starts its
// list request tokens from scratch.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.auth.Logout(c.UserContext(), principal.Session); err != nil {
		return err
	}
	forgetListViews(h.sequencer, principal.Session.UserID)
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "logged_out"}})
}

func authResponse(result *service.AuthResult) dto.AuthResponse {
	return dto.AuthResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		User:      userResponse(result.User),
	}
}

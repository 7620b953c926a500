package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/khushboocodes/QuickDesk/internal/access"
	"github.com/khushboocodes/QuickDesk/internal/api/http/handlers"
	"github.com/khushboocodes/QuickDesk/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Profile        *handlers.ProfileHandler
	Dashboard      *handlers.DashboardHandler
	Tickets        *handlers.TicketsHandler
	Categories     *handlers.CategoriesHandler
	Admin          *handlers.AdminHandler
	Uploads        *handlers.UploadsHandler
	AuthMiddleware *auth.AuthMiddleware

	// FilesPrefix and FilesDir serve stored uploads. Empty FilesDir disables it.
	FilesPrefix string
	FilesDir    string
}

// RegisterRoutes wires HTTP routes. Every role decision goes through the
// access package.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	requireAuth := cfg.AuthMiddleware.Handle
	page := func(p access.Page) fiber.Handler {
		return access.RequirePage(auth.RoleOf, p)
	}

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/logout", requireAuth, cfg.Auth.Logout)

	app.Get("/navigation", cfg.AuthMiddleware.Optional, cfg.Profile.Navigation)

	me := app.Group("/me", requireAuth, page(access.PageProfile))
	me.Get("", cfg.Profile.Me)
	me.Put("", cfg.Profile.UpdateMe)
	me.Post("/avatar", cfg.Profile.UploadAvatar)
	me.Get("/upgrade-requests", cfg.Profile.ListUpgradeRequests)
	me.Post("/upgrade-requests", cfg.Profile.RequestUpgrade)

	app.Get("/dashboard", requireAuth, page(access.PageDashboard), cfg.Dashboard.Get)

	tickets := app.Group("/tickets", requireAuth)
	tickets.Get("", page(access.PageTickets), cfg.Tickets.ListMine)
	tickets.Post("", page(access.PageCreateTicket), cfg.Tickets.CreateTicket)
	tickets.Get("/all", page(access.PageAllTickets), cfg.Tickets.ListAll)
	tickets.Get("/:id", page(access.PageTicketDetail), cfg.Tickets.GetTicket)
	tickets.Patch("/:id", access.RequireManage(auth.RoleOf), cfg.Tickets.UpdateTicket)
	tickets.Post("/:id/vote", cfg.Tickets.Vote)
	tickets.Get("/:id/comments", page(access.PageTicketDetail), cfg.Tickets.ListComments)
	tickets.Post("/:id/comments", page(access.PageTicketDetail), cfg.Tickets.AddComment)

	app.Get("/categories", requireAuth, cfg.Categories.List)
	app.Post("/uploads", requireAuth, cfg.Uploads.Upload)

	admin := app.Group("/admin", requireAuth, access.RequireAdmin(auth.RoleOf))
	admin.Get("/categories", cfg.Categories.List)
	admin.Post("/categories", cfg.Categories.Create)
	admin.Put("/categories/:id", cfg.Categories.Update)
	admin.Delete("/categories/:id", cfg.Categories.Delete)
	admin.Get("/users", cfg.Admin.ListUsers)
	admin.Patch("/users/:id/role", cfg.Admin.ChangeRole)
	admin.Get("/upgrade-requests", cfg.Admin.ListUpgradeRequests)
	admin.Post("/upgrade-requests/:id/approve", cfg.Admin.ApproveUpgrade)
	admin.Post("/upgrade-requests/:id/reject", cfg.Admin.RejectUpgrade)

	if cfg.FilesDir != "" {
		app.Static(cfg.FilesPrefix, cfg.FilesDir)
	}
}

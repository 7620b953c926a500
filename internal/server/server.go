// Package server assembles the QuickDesk HTTP application from its
// configuration and storage backends.
package server

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	httptransport "github.com/khushboocodes/QuickDesk/internal/api/http"
	"github.com/khushboocodes/QuickDesk/internal/api/http/handlers"
	"github.com/khushboocodes/QuickDesk/internal/auth"
	"github.com/khushboocodes/QuickDesk/internal/cache"
	"github.com/khushboocodes/QuickDesk/internal/config"
	"github.com/khushboocodes/QuickDesk/internal/events"
	"github.com/khushboocodes/QuickDesk/internal/listing"
	"github.com/khushboocodes/QuickDesk/internal/observability"
	"github.com/khushboocodes/QuickDesk/internal/persistence"
	"github.com/khushboocodes/QuickDesk/internal/repository"
	"github.com/khushboocodes/QuickDesk/internal/repository/memory"
	"github.com/khushboocodes/QuickDesk/internal/service"
	"github.com/khushboocodes/QuickDesk/internal/storage"
	"github.com/khushboocodes/QuickDesk/internal/worker"
)

// Repositories is one implementation of every entity collection.
type Repositories struct {
	Users      repository.UserRepository
	Tickets    repository.TicketRepository
	Categories repository.CategoryRepository
	Comments   repository.CommentRepository
	Upgrades   repository.UpgradeRequestRepository
}

// PostgresRepositories returns the pgx-backed collections.
func PostgresRepositories(pool *pgxpool.Pool) Repositories {
	return Repositories{
		Users:      repository.NewUserRepository(pool),
		Tickets:    repository.NewTicketRepository(pool),
		Categories: repository.NewCategoryRepository(pool),
		Comments:   repository.NewCommentRepository(pool),
		Upgrades:   repository.NewUpgradeRequestRepository(pool),
	}
}

// MemoryRepositories returns collections kept in store.
func MemoryRepositories(store *memory.Store) Repositories {
	return Repositories{
		Users:      store.Users(),
		Tickets:    store.Tickets(),
		Categories: store.Categories(),
		Comments:   store.Comments(),
		Upgrades:   store.UpgradeRequests(),
	}
}

// Dependencies are the collaborators New wires together. Postgres and Redis
// are only consulted by the readiness probe and may be nil. Denylist
// defaults to the Redis token store behind Cache.
type Dependencies struct {
	Config   *config.Config
	Logger   *zap.Logger
	Repos    Repositories
	Cache    *cache.Client
	Denylist auth.Denylist
	Files    *storage.LocalStore
	Postgres *persistence.Postgres
	Redis    *persistence.Redis
}

// Server is the assembled application.
type Server struct {
	App     *fiber.App
	Worker  *worker.NotificationWorker
	Metrics *observability.Metrics
	Auth    *service.AuthService
}

// New builds the fiber application with every route registered and starts
// the notification worker. Call Shutdown to stop both.
func New(deps Dependencies) *Server {
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := observability.NewMetrics()

	notifications := worker.NewNotificationWorker(events.NewInMemoryDispatcher(), worker.DefaultQueueSize, logger)
	worker.StartNotificationWorker(notifications, service.NewNotificationService(notifications, logger, cfg.Notification))

	denylist := deps.Denylist
	if denylist == nil {
		denylist = auth.NewTokenStore(deps.Cache)
	}
	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo: deps.Repos.Users,
		Denylist: denylist,
		Logger:   logger,
	})
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), deps.Repos.Users, denylist)

	categoryService := service.NewCategoryService(deps.Repos.Categories, deps.Cache, cfg.Cache.CategoryTTL(), logger)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:  deps.Repos.Tickets,
		CommentRepo: deps.Repos.Comments,
		Categories:  categoryService,
		Dispatcher:  notifications,
		Logger:      logger,
	})
	userService := service.NewUserService(deps.Repos.Users, notifications, logger)
	upgradeService := service.NewUpgradeService(deps.Repos.Upgrades, notifications, logger)
	dashboardService := service.NewDashboardService(deps.Repos.Tickets, categoryService, logger)
	sequencer := listing.NewSequencer()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: httptransport.ErrorHandler(logger),
		// leave room for multipart framing around the largest accepted file
		BodyLimit:    int(cfg.Upload.MaxBytes) + 1<<20,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	routes := httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, deps.Postgres, deps.Redis, metrics),
		Auth:           handlers.NewAuthHandler(authService, sequencer),
		Profile:        handlers.NewProfileHandler(userService, upgradeService, deps.Files.ImagesOnly()),
		Dashboard:      handlers.NewDashboardHandler(dashboardService),
		Tickets:        handlers.NewTicketsHandler(ticketService, sequencer),
		Categories:     handlers.NewCategoriesHandler(categoryService),
		Admin:          handlers.NewAdminHandler(userService, upgradeService),
		Uploads:        handlers.NewUploadsHandler(deps.Files),
		AuthMiddleware: authMiddleware,
		FilesPrefix:    cfg.Upload.PublicBaseURL,
		FilesDir:       cfg.Upload.Dir,
	}
	httptransport.RegisterRoutes(app, routes)

	return &Server{App: app, Worker: notifications, Metrics: metrics, Auth: authService}
}

// Shutdown stops accepting requests and drains pending notifications.
func (s *Server) Shutdown() error {
	err := s.App.Shutdown()
	s.Worker.Stop()
	return err
}

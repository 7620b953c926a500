package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/khushboocodes/QuickDesk/internal/cache"
	"github.com/khushboocodes/QuickDesk/internal/persistence"
	"github.com/khushboocodes/QuickDesk/internal/repository/memory"
	"github.com/khushboocodes/QuickDesk/internal/server"
	"github.com/khushboocodes/QuickDesk/internal/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP server",
	Long:  `Start the HTTP API. Without POSTGRES_DSN the service runs on a seeded in-memory store.`,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Error("failed to connect postgres", zap.Error(err))
		return err
	}
	defer pg.Close()

	var repos server.Repositories
	if pool := pg.PoolHandle(); pool != nil {
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pool, logger); err != nil {
				logger.Error("failed to run migrations", zap.Error(err))
				return err
			}
		}
		repos = server.PostgresRepositories(pool)
	} else {
		logger.Warn("running on the in-memory store; data is lost on restart")
		repos = server.MemoryRepositories(memory.NewStore())
		if _, err := server.SeedDemo(ctx, repos, cfg.Auth.BcryptCost, logger); err != nil {
			return err
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	files, err := storage.NewLocalStore(cfg.Upload)
	if err != nil {
		return err
	}

	srv := server.New(server.Dependencies{
		Config:   cfg,
		Logger:   logger,
		Repos:    repos,
		Cache:    cache.New(redis.Handle(), cfg.Redis.KeyPrefix, logger),
		Files:    files,
		Postgres: pg,
		Redis:    redis,
	})

	listenErr := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.App.Addr()))
		listenErr <- srv.App.Listen(cfg.App.Addr())
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-listenErr:
		logger.Error("fiber listen", zap.Error(err))
		srv.Worker.Stop()
		return err
	}
	return srv.Shutdown()
}

package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/khushboocodes/QuickDesk/internal/persistence"
)

var (
	migrateCmd = &cobra.Command{
		RunE:  runMigration,
		Use:   "migrate",
		Short: "Apply the embedded SQL migrations",
	}
	migrateRollback bool
)

func init() {
	migrateCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "roll back the latest migration instead")
}

func runMigration(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx := cmd.Context()
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return err
	}
	defer pg.Close()
	if pg.PoolHandle() == nil {
		logger.Warn("POSTGRES_DSN not set; nothing to migrate")
		return nil
	}

	if migrateRollback {
		err = persistence.RollbackMigration(ctx, pg.PoolHandle(), logger)
	} else {
		err = persistence.RunMigrations(ctx, pg.PoolHandle(), logger)
	}
	if err != nil {
		logger.Error("migration failed", zap.Bool("rollback", migrateRollback), zap.Error(err))
	}
	return err
}

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/khushboocodes/QuickDesk/internal/persistence"
	"github.com/khushboocodes/QuickDesk/internal/server"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with demo data",
	Long:  `Create demo accounts, categories and tickets. Every demo account uses the same password.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
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
			return errors.New("POSTGRES_DSN is required to seed")
		}

		report, err := server.SeedDemo(ctx, server.PostgresRepositories(pg.PoolHandle()), cfg.Auth.BcryptCost, logger)
		if err != nil {
			return err
		}
		fmt.Printf("seeded %d users, %d categories, %d tickets, %d comments (password %q)\n",
			report.Users, report.Categories, report.Tickets, report.Comments, server.DemoPassword)
		return nil
	},
}

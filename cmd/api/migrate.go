package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eventdesk/event-ticketing/internal/clock"
	"github.com/eventdesk/event-ticketing/internal/config"
	"github.com/eventdesk/event-ticketing/internal/observability"
	"github.com/eventdesk/event-ticketing/internal/persistence"
	"github.com/eventdesk/event-ticketing/internal/repository/mongostore"
	"github.com/eventdesk/event-ticketing/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the storage schema (Postgres migrations or Mongo indexes)",
	RunE:  runMigrate,
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx := cmd.Context()
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return err
		}
		defer pg.Close()
		applied, err := persistence.RunMigrations(ctx, pg.PoolHandle(), migrations.FS, logger)
		if err != nil {
			return err
		}
		logger.Info("migrations complete", zap.Int("applied", applied))

	case config.StorageMongo:
		m, err := persistence.NewMongo(ctx, cfg.Mongo, logger)
		if err != nil {
			return err
		}
		defer m.Close(context.Background())
		clk := clock.NewSystem()
		if err := mongostore.EnsureAll(ctx, mongostore.NewUserStore(m.DB, clk), mongostore.NewEventStore(m.DB, clk)); err != nil {
			return err
		}
		logger.Info("mongo indexes ensured")

	default:
		logger.Info("nothing to migrate", zap.String("driver", cfg.Storage.Driver))
	}
	return nil
}

package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/eventdesk/event-ticketing/internal/api/http/handlers"
	"github.com/eventdesk/event-ticketing/internal/clock"
	"github.com/eventdesk/event-ticketing/internal/config"
	"github.com/eventdesk/event-ticketing/internal/persistence"
	"github.com/eventdesk/event-ticketing/internal/repository"
	"github.com/eventdesk/event-ticketing/internal/repository/memory"
	"github.com/eventdesk/event-ticketing/internal/repository/mongostore"
	"github.com/eventdesk/event-ticketing/migrations"
)

const disconnectTimeout = 5 * time.Second

// backend is the repository set for the configured storage driver.
type backend struct {
	name   string
	users  repository.UserRepository
	events repository.EventRepository
	pinger handlers.Pinger
	close  func()
}

func openBackend(ctx context.Context, cfg *config.Config, clk clock.Clock, logger *zap.Logger) (*backend, error) {
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, err
		}
		if cfg.Postgres.RunMigrations {
			if _, err := persistence.RunMigrations(ctx, pg.PoolHandle(), migrations.FS, logger); err != nil {
				pg.Close()
				return nil, fmt.Errorf("run migrations: %w", err)
			}
		}
		pool := pg.PoolHandle()
		return &backend{
			name:   config.StoragePostgres,
			users:  repository.NewUserRepository(pool),
			events: repository.NewEventRepository(pool),
			pinger: pg,
			close:  pg.Close,
		}, nil

	case config.StorageMongo:
		m, err := persistence.NewMongo(ctx, cfg.Mongo, logger)
		if err != nil {
			return nil, err
		}
		users := mongostore.NewUserStore(m.DB, clk)
		events := mongostore.NewEventStore(m.DB, clk)
		if err := mongostore.EnsureAll(ctx, users, events); err != nil {
			m.Close(context.Background())
			return nil, fmt.Errorf("ensure mongo indexes: %w", err)
		}
		return &backend{
			name:   config.StorageMongo,
			users:  users,
			events: events,
			pinger: m,
			close: func() {
				ctx, cancel := context.WithTimeout(context.Background(), disconnectTimeout)
				defer cancel()
				m.Close(ctx)
			},
		}, nil

	case config.StorageMemory:
		logger.Warn("using in-memory storage; data is lost on restart")
		return &backend{
			name:   config.StorageMemory,
			users:  memory.NewUserStore(clk),
			events: memory.NewEventStore(clk),
			close:  func() {},
		}, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}

// dependencies lists what the readiness probe should ping.
func (b *backend) dependencies(redis *persistence.Redis) map[string]handlers.Pinger {
	deps := map[string]handlers.Pinger{}
	if b.pinger != nil {
		deps[b.name] = b.pinger
	}
	if redis != nil {
		deps["redis"] = redis
	}
	return deps
}

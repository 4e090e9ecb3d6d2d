package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	httptransport "github.com/eventdesk/event-ticketing/internal/api/http"
	"github.com/eventdesk/event-ticketing/internal/api/http/handlers"
	"github.com/eventdesk/event-ticketing/internal/auth"
	"github.com/eventdesk/event-ticketing/internal/clock"
	"github.com/eventdesk/event-ticketing/internal/config"
	"github.com/eventdesk/event-ticketing/internal/events"
	"github.com/eventdesk/event-ticketing/internal/mail"
	"github.com/eventdesk/event-ticketing/internal/observability"
	"github.com/eventdesk/event-ticketing/internal/persistence"
	"github.com/eventdesk/event-ticketing/internal/service"
	"github.com/eventdesk/event-ticketing/internal/worker"
)

const (
	memoryQueueSize = 256
	shutdownTimeout = 10 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the mail delivery workers",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clk := clock.NewSystem()
	store, err := openBackend(ctx, cfg, clk, logger)
	if err != nil {
		return fmt.Errorf("open %s storage: %w", cfg.Storage.Driver, err)
	}
	defer store.close()

	var redis *persistence.Redis
	if cfg.Redis.Enabled {
		redis, err = persistence.NewRedis(ctx, cfg.Redis, logger)
		if err != nil {
			return err
		}
		defer redis.Close()
	}

	queue := mail.NewMemoryQueue(memoryQueueSize)
	if cfg.Mail.Queue == config.MailQueueRedis {
		queue = mail.NewRedisQueue(redis.Client, cfg.Mail.QueueKey)
	}
	mailer, err := mail.NewMailer(cfg.Mail, logger)
	if err != nil {
		return fmt.Errorf("init mailer: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)

	tokens, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL(), cfg.Auth.RefreshTokenTTL(), clk)
	if err != nil {
		return err
	}

	dispatcher := events.NewInMemoryDispatcher()
	validator := service.NewRequestValidator()
	worker.StartNotificationWorker(service.NewNotificationService(dispatcher, queue, clk, logger))

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		Users:      store.users,
		Tokens:     tokens,
		Validator:  validator,
		Dispatcher: dispatcher,
		Clock:      clk,
		Logger:     logger,
	})
	userService := service.NewUserService(service.UserDependencies{
		Users:      store.users,
		Dispatcher: dispatcher,
		Clock:      clk,
		Logger:     logger,
	})
	eventService := service.NewEventService(service.EventDependencies{
		Events:     store.events,
		Validator:  validator,
		Dispatcher: dispatcher,
		Clock:      clk,
		Logger:     logger,
	})

	app := httptransport.NewServer(httptransport.ServerConfig{
		AppName:        cfg.App.Name,
		RequestTimeout: cfg.App.RequestTimeout(),
		Logger:         logger,
		Metrics:        metrics,
	}, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, store.dependencies(redis)),
		Users:          handlers.NewUsersHandler(authService, userService),
		Events:         handlers.NewEventsHandler(eventService),
		AuthMiddleware: auth.NewMiddleware(authService.TokenManager()),
		Gatherer:       registry,
	})

	mailWorker := worker.NewMailWorker(queue, mailer, mail.NewRenderer(), metrics, logger, worker.MailWorkerConfig{
		Workers:       cfg.Mail.Workers,
		MaxAttempts:   cfg.Mail.MaxAttempts,
		Backoff:       cfg.Mail.RetryBackoff(),
		SendTimeout:   cfg.Mail.SendTimeout(),
		RatePerSecond: cfg.Mail.RatePerSecond,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return mailWorker.Run(gctx)
	})
	g.Go(func() error {
		logger.Info("http server listening",
			zap.String("addr", cfg.App.Addr()),
			zap.String("storage", cfg.Storage.Driver),
			zap.String("mail_provider", cfg.Mail.Provider))
		return app.Listen(cfg.App.Addr())
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		return app.ShutdownWithTimeout(shutdownTimeout)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

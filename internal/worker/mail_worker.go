package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/eventdesk/event-ticketing/internal/mail"
	"github.com/eventdesk/event-ticketing/internal/observability"
)

// Mail delivery outcomes recorded in metrics.
const (
	OutcomeSent   = "sent"
	OutcomeRetry  = "retry"
	OutcomeFailed = "failed"
)

// MailWorkerConfig tunes the delivery pool.
type MailWorkerConfig struct {
	Workers       int
	MaxAttempts   int
	Backoff       time.Duration
	SendTimeout   time.Duration
	RatePerSecond float64
}

// MailWorker drains the mail queue, rendering and sending each job with retries.
type MailWorker struct {
	queue    mail.Queue
	mailer   mail.Mailer
	renderer *mail.Renderer
	limiter  *rate.Limiter
	metrics  *observability.Metrics
	logger   *zap.Logger
	cfg      MailWorkerConfig
}

// NewMailWorker builds a worker pool.
func NewMailWorker(queue mail.Queue, mailer mail.Mailer, renderer *mail.Renderer, metrics *observability.Metrics, logger *zap.Logger, cfg MailWorkerConfig) *MailWorker {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	return &MailWorker{
		queue:    queue,
		mailer:   mailer,
		renderer: renderer,
		limiter:  rate.NewLimiter(limit, 1),
		metrics:  metrics,
		logger:   logger,
		cfg:      cfg,
	}
}

// Run processes jobs until ctx is cancelled.
func (w *MailWorker) Run(ctx context.Context) error {
	w.logger.Info("mail worker started", zap.Int("workers", w.cfg.Workers))
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < w.cfg.Workers; i++ {
		id := i
		g.Go(func() error { return w.loop(gctx, id) })
	}
	err := g.Wait()
	w.logger.Info("mail worker stopped")
	if errors.Is(err, context.Canceled) || errors.Is(err, mail.ErrQueueClosed) {
		return nil
	}
	return err
}

func (w *MailWorker) loop(ctx context.Context, id int) error {
	for {
		job, err := w.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, mail.ErrQueueClosed) {
				return err
			}
			w.logger.Warn("dequeue mail job", zap.Int("worker", id), zap.Error(err))
			if !sleep(ctx, time.Second) {
				return ctx.Err()
			}
			continue
		}
		_ = w.Process(ctx, job)
	}
}

// Process delivers one job, retrying transient failures up to MaxAttempts.
func (w *MailWorker) Process(ctx context.Context, job mail.Job) error {
	msg, err := w.renderer.Render(job.Template, job.To, job.Data)
	if err != nil {
		w.metrics.RecordMail(job.Template, OutcomeFailed)
		w.logger.Error("render mail job", zap.String("job_id", job.ID), zap.String("template", job.Template), zap.Error(err))
		return err
	}

	for attempt := 1; ; attempt++ {
		job.Attempt = attempt
		err = w.send(ctx, msg)
		if err == nil {
			w.metrics.RecordMail(job.Template, OutcomeSent)
			w.logger.Info("mail delivered",
				zap.String("job_id", job.ID),
				zap.String("template", job.Template),
				zap.Int("attempt", attempt))
			return nil
		}
		if attempt >= w.cfg.MaxAttempts || ctx.Err() != nil {
			break
		}
		w.metrics.RecordMail(job.Template, OutcomeRetry)
		w.logger.Warn("mail delivery failed, retrying",
			zap.String("job_id", job.ID),
			zap.Int("attempt", attempt),
			zap.Error(err))
		if !sleep(ctx, w.cfg.Backoff*time.Duration(attempt)) {
			break
		}
	}

	w.metrics.RecordMail(job.Template, OutcomeFailed)
	w.logger.Error("mail delivery failed",
		zap.String("job_id", job.ID),
		zap.String("template", job.Template),
		zap.Int("attempts", job.Attempt),
		zap.Error(err))
	return fmt.Errorf("deliver mail job %s: %w", job.ID, err)
}

func (w *MailWorker) send(ctx context.Context, msg mail.Message) error {
	if err := w.limiter.Wait(ctx); err != nil {
		return err
	}
	sendCtx := ctx
	if w.cfg.SendTimeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, w.cfg.SendTimeout)
		defer cancel()
	}
	return w.mailer.Send(sendCtx, msg)
}

// sleep waits for d and reports false if ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

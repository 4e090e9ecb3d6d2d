package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eventdesk/event-ticketing/internal/clock"
	"github.com/eventdesk/event-ticketing/internal/events"
	"github.com/eventdesk/event-ticketing/internal/mail"
)

// resetExpiryLayout formats the reset deadline shown in the email.
const resetExpiryLayout = "Jan 2, 2006 15:04 MST"

// NotificationService turns domain events into outbound mail jobs.
type NotificationService struct {
	dispatcher events.Dispatcher
	queue      mail.Queue
	clock      clock.Clock
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, queue mail.Queue, clk clock.Clock, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		queue:      queue,
		clock:      clk,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventPasswordResetRequested, n.handlePasswordResetRequested)
	n.dispatcher.Subscribe(events.EventUserRegistered, n.logEvent)
	n.dispatcher.Subscribe(events.EventUserStatusChanged, n.logEvent)
	n.dispatcher.Subscribe(events.EventPasswordChanged, n.logEvent)
	n.dispatcher.Subscribe(events.EventEventCreated, n.logEvent)
}

func (n *NotificationService) handlePasswordResetRequested(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.PasswordResetRequestedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", event.Payload)
	}

	job := mail.Job{
		ID:       uuid.NewString(),
		Template: mail.TemplatePasswordReset,
		To:       payload.Email,
		Data: map[string]string{
			"Name":      payload.Name,
			"Code":      payload.Code,
			"ExpiresAt": payload.ExpiresAt.UTC().Format(resetExpiryLayout),
		},
		EnqueuedAt: n.clock.Now(),
	}
	if err := n.queue.Enqueue(ctx, job); err != nil {
		return fmt.Errorf("enqueue password reset mail: %w", err)
	}
	n.logger.Info("PasswordResetRequested",
		zap.String("user_id", event.SubjectID),
		zap.String("job_id", job.ID),
		zap.Time("expires_at", payload.ExpiresAt))
	return nil
}

func (n *NotificationService) logEvent(_ context.Context, event events.Event) error {
	n.logger.Info(string(event.Type),
		zap.String("subject_id", event.SubjectID),
		zap.String("actor_id", event.Actor.UserID),
		zap.Time("at", event.Timestamp.Truncate(time.Millisecond)),
		zap.Any("payload", event.Payload))
	return nil
}

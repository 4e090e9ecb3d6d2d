package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eventdesk/event-ticketing/internal/clock"
	"github.com/eventdesk/event-ticketing/internal/events"
	"github.com/eventdesk/event-ticketing/internal/mail"
	"github.com/eventdesk/event-ticketing/internal/service"
)

func TestStartNotificationWorker_EnqueuesResetMail(t *testing.T) {
	clk := clock.NewFixed(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	dispatcher := events.NewInMemoryDispatcher()
	queue := mail.NewMemoryQueue(1)

	StartNotificationWorker(service.NewNotificationService(dispatcher, queue, clk, zap.NewNop()))

	payload := events.PasswordResetRequestedPayload{
		Email:     "jane@example.com",
		Name:      "Jane",
		Code:      "48213",
		ExpiresAt: clk.Now().Add(time.Hour),
	}
	require.NoError(t, dispatcher.Publish(context.Background(),
		events.New(events.EventPasswordResetRequested, "user-1", events.Actor{}, clk.Now(), payload)))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	job, err := queue.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, mail.TemplatePasswordReset, job.Template)
	assert.Equal(t, "jane@example.com", job.To)
	assert.Equal(t, "48213", job.Data["Code"])
	assert.Equal(t, "Mar 1, 2025 13:00 UTC", job.Data["ExpiresAt"])
}

func TestStartNotificationWorker_Nil(t *testing.T) {
	assert.NotPanics(t, func() { StartNotificationWorker(nil) })
}

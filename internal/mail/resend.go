package mail

import (
	"context"
	"errors"
	"fmt"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"

	"github.com/eventdesk/event-ticketing/internal/config"
)

type resendMailer struct {
	client   *resend.Client
	from     string
	fromName string
	logger   *zap.Logger
}

func newResendMailer(cfg config.MailConfig, logger *zap.Logger) *resendMailer {
	return &resendMailer{
		client:   resend.NewClient(cfg.ResendAPIKey),
		from:     cfg.From,
		fromName: cfg.FromName,
		logger:   logger,
	}
}

func (r *resendMailer) Send(ctx context.Context, msg Message) error {
	params := &resend.SendEmailRequest{
		From:    fromHeader(r.from, r.fromName),
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	}

	sent, err := r.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		var rateLimitErr *resend.RateLimitError
		if errors.As(err, &rateLimitErr) {
			return fmt.Errorf("resend rate limit exceeded (limit %s, resets in %ss): %w",
				rateLimitErr.Limit, rateLimitErr.Reset, err)
		}
		return fmt.Errorf("resend API error: %w", err)
	}

	r.logger.Debug("email accepted by resend", zap.String("email_id", sent.Id))
	return nil
}

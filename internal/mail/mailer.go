// Package mail renders transactional email and delivers it through a configured provider.
package mail

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/eventdesk/event-ticketing/internal/config"
)

// Message is a rendered email ready to send.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Mailer delivers a single message.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// NewMailer builds the transport selected by cfg.Provider.
func NewMailer(cfg config.MailConfig, logger *zap.Logger) (Mailer, error) {
	switch cfg.Provider {
	case config.MailProviderSMTP:
		if cfg.Host == "" {
			return nil, fmt.Errorf("EMAIL_HOST is required for the smtp provider")
		}
		return newSMTPMailer(cfg), nil
	case config.MailProviderSES:
		return newSESMailer(context.Background(), cfg)
	case config.MailProviderResend:
		if cfg.ResendAPIKey == "" {
			return nil, fmt.Errorf("MAIL_RESEND_API_KEY is required for the resend provider")
		}
		return newResendMailer(cfg, logger), nil
	case config.MailProviderNoop, "":
		return NewNoopMailer(logger), nil
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.Provider)
	}
}

// fromHeader formats the sender with an optional display name.
func fromHeader(address, name string) string {
	if name == "" {
		return address
	}
	return fmt.Sprintf("%s <%s>", name, address)
}

type noopMailer struct {
	logger *zap.Logger
}

// NewNoopMailer returns a mailer that only logs what it would send.
func NewNoopMailer(logger *zap.Logger) Mailer {
	return &noopMailer{logger: logger}
}

func (n *noopMailer) Send(_ context.Context, msg Message) error {
	n.logger.Info("email would be sent (noop)", zap.String("to", msg.To), zap.String("subject", msg.Subject))
	return nil
}

package services

import (
	"context"
	"errors"
	"fmt"

	"eventify/internal/models"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
)

// ResendMailer sends mail through the Resend API
type ResendMailer struct {
	client *resend.Client
	from   string
	logger zerolog.Logger
}

func NewResendMailer(apiKey string, config EmailConfig, logger zerolog.Logger) *ResendMailer {
	return newResendMailer(resend.NewClient(apiKey), config, logger)
}

func newResendMailer(client *resend.Client, config EmailConfig, logger zerolog.Logger) *ResendMailer {
	return &ResendMailer{
		client: client,
		from:   config.from(),
		logger: logger.With().Str("component", "resend_mailer").Logger(),
	}
}

// Send does not retry. Rate limit responses are reported with their reset
// window.
func (m *ResendMailer) Send(ctx context.Context, msg *Message) error {
	params := &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	}

	sent, err := m.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		var rateLimitErr *resend.RateLimitError
		if errors.As(err, &rateLimitErr) {
			m.logger.Warn().
				Str("limit", rateLimitErr.Limit).
				Str("remaining", rateLimitErr.Remaining).
				Str("reset", rateLimitErr.Reset).
				Msg("resend rate limit exceeded")
			return fmt.Errorf("%w: rate limit exceeded (resets in %s seconds): %v", models.ErrMailDelivery, rateLimitErr.Reset, err)
		}
		return fmt.Errorf("%w: resend: %v", models.ErrMailDelivery, err)
	}

	m.logger.Debug().Str("email_id", sent.Id).Str("to", msg.To).Msg("email sent via Resend")
	return nil
}

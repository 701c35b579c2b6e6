package services

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// LogMailer writes messages to the log instead of sending them. It is the
// development default and keeps the last messages for inspection.
type LogMailer struct {
	logger zerolog.Logger

	mu   sync.Mutex
	sent []*Message
}

const logMailerKeep = 50

func NewLogMailer(logger zerolog.Logger) *LogMailer {
	return &LogMailer{logger: logger.With().Str("component", "log_mailer").Logger()}
}

func (m *LogMailer) Send(ctx context.Context, msg *Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	m.sent = append(m.sent, msg)
	if len(m.sent) > logMailerKeep {
		m.sent = m.sent[len(m.sent)-logMailerKeep:]
	}
	m.mu.Unlock()

	m.logger.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Int("html_bytes", len(msg.HTML)).
		Msg("mock email sent")
	return nil
}

// Sent returns a copy of the retained messages, oldest first
func (m *LogMailer) Sent() []*Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*Message(nil), m.sent...)
}

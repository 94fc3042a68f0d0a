package mailer

import (
	"context"
	"log/slog"

	"github.com/layer-3/sentinel/core"
)

// LogSender writes messages to the log instead of delivering them. For local development only.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a log-only sender
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send logs the message
func (s *LogSender) Send(ctx context.Context, to core.Email, subject, body string) error {
	s.logger.InfoContext(ctx, "message not delivered, log mailer in use",
		slog.String("to", to.String()),
		slog.String("subject", subject),
		slog.String("body", body),
	)
	return nil
}

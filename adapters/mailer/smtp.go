// Package mailer delivers 2FA codes to users.
package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"

	"github.com/go-mail/mail"

	"github.com/layer-3/sentinel/core"
)

// SMTPConfig holds the SMTP relay settings
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// SSL enables implicit TLS; otherwise STARTTLS is negotiated when offered
	SSL bool
}

type dialer interface {
	DialAndSend(m ...*mail.Message) error
}

// SMTPSender sends messages through an SMTP relay using go-mail
type SMTPSender struct {
	from   string
	dialer dialer
	logger *slog.Logger
}

// NewSMTPSender creates a sender for cfg
func NewSMTPSender(cfg SMTPConfig, logger *slog.Logger) *SMTPSender {
	d := mail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.TLSConfig = &tls.Config{ServerName: cfg.Host}
	d.SSL = cfg.SSL

	return &SMTPSender{
		from:   cfg.From,
		dialer: d,
		logger: logger,
	}
}

// Send delivers a plain text message to one recipient
func (s *SMTPSender) Send(ctx context.Context, to core.Email, subject, body string) error {
	m := mail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to.String())
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		s.logger.ErrorContext(ctx, "smtp send failed", slog.String("to", to.String()), slog.Any("error", err))
		return fmt.Errorf("smtp send: %w", err)
	}

	s.logger.DebugContext(ctx, "smtp send ok", slog.String("to", to.String()))
	return nil
}

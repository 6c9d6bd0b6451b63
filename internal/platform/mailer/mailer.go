// Package mailer renders notifications into transactional emails and
// submits them over SMTP. Rendering is pure; only the submission round-trip
// can fail, and that failure is surfaced to the dispatcher for logging only.
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/smtp"

	"github.com/emersion/go-message"
	"github.com/taskflow/notify/internal/domain"
)

// Config holds the SMTP provider settings.
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// SMTPMailer submits rendered notification emails to an SMTP provider.
type SMTPMailer struct {
	cfg    Config
	logger *slog.Logger

	// sendMail is swappable in tests; defaults to smtp.SendMail.
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPMailer creates a mailer for the given provider settings.
func NewSMTPMailer(cfg Config, logger *slog.Logger) *SMTPMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &SMTPMailer{
		cfg:      cfg,
		logger:   logger.With(slog.String("component", "mailer")),
		sendMail: smtp.SendMail,
	}
}

// Send renders the notification and submits it to the provider.
func (m *SMTPMailer) Send(ctx context.Context, to string, n *domain.Notification) error {
	subject, body, err := Render(n)
	if err != nil {
		return fmt.Errorf("failed to render email: %w", err)
	}

	msg, err := buildMessage(m.cfg.From, to, subject, body)
	if err != nil {
		return fmt.Errorf("failed to build email message: %w", err)
	}

	addr := net.JoinHostPort(m.cfg.Host, m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	if err := m.sendMail(addr, auth, m.cfg.From, []string{to}, msg); err != nil {
		return fmt.Errorf("smtp submission failed: %w", err)
	}

	m.logger.Debug("email submitted",
		slog.String("to", to),
		slog.String("notification_id", n.ID.String()))
	return nil
}

// buildMessage assembles a single-part HTML MIME message.
func buildMessage(from, to, subject, htmlBody string) ([]byte, error) {
	var h message.Header
	h.Set("From", from)
	h.Set("To", to)
	h.Set("Subject", subject)
	h.Set("MIME-Version", "1.0")
	h.SetContentType("text/html", map[string]string{"charset": "utf-8"})

	var buf bytes.Buffer
	w, err := message.CreateWriter(&buf, h)
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(w, htmlBody); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// LogSender is an EmailSender that only logs, used when no SMTP provider is
// configured (local development).
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a log-only email sender.
func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger.With(slog.String("component", "mailer"))}
}

// Send logs the would-be email and reports success.
func (s *LogSender) Send(ctx context.Context, to string, n *domain.Notification) error {
	s.logger.Info("email delivery disabled, logging instead",
		slog.String("to", to),
		slog.String("title", n.Title),
		slog.String("notification_id", n.ID.String()))
	return nil
}

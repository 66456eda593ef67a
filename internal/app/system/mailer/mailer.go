// Package mailer delivers invitation and password-reset emails.
package mailer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dalemusser/waffle/pantry/email"
	"go.uber.org/zap"
)

// Email is a message with text and HTML alternatives.
type Email struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Mailer delivers email.
type Mailer interface {
	Send(ctx context.Context, e Email) error
}

// Config configures SMTP delivery. Port 465 uses implicit TLS; any other
// port requires STARTTLS.
type Config struct {
	Host     string
	Port     int
	User     string
	Pass     string
	From     string
	FromName string
	Timeout  time.Duration
}

// transport is satisfied by *email.Sender.
type transport interface {
	Send(ctx context.Context, msg email.Message) error
}

// SMTP sends mail through an SMTP relay (SES or similar in production).
type SMTP struct {
	log    *zap.Logger
	sender transport
}

// NewSMTP returns an SMTP sender.
func NewSMTP(cfg Config, logger *zap.Logger) *SMTP {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SMTP{log: logger, sender: email.NewSender(senderConfig(cfg))}
}

func senderConfig(cfg Config) email.Config {
	return email.Config{
		Host:        cfg.Host,
		Port:        cfg.Port,
		Username:    cfg.User,
		Password:    cfg.Pass,
		FromAddress: cfg.From,
		FromName:    cfg.FromName,
		UseSSL:      cfg.Port == 465,
		Timeout:     cfg.Timeout,
	}
}

// Send hands a multipart/alternative message to the relay.
func (s *SMTP) Send(ctx context.Context, e Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.sender.Send(ctx, email.Message{
		To:       []string{e.To},
		Subject:  e.Subject,
		TextBody: e.TextBody,
		HTMLBody: e.HTMLBody,
	})
	if err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	s.log.Debug("email sent", zap.String("to", e.To), zap.String("subject", e.Subject))
	return nil
}

// Log writes emails to the logger instead of sending them. It is selected
// when no SMTP host is configured and keeps the last messages for tests.
type Log struct {
	log  *zap.Logger
	mu   sync.Mutex
	sent []Email
}

// NewLog returns a logging sender.
func NewLog(logger *zap.Logger) *Log {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Log{log: logger}
}

func (l *Log) Send(_ context.Context, e Email) error {
	l.mu.Lock()
	l.sent = append(l.sent, e)
	if len(l.sent) > 100 {
		l.sent = l.sent[len(l.sent)-100:]
	}
	l.mu.Unlock()
	l.log.Info("email (not sent; no smtp host configured)",
		zap.String("to", e.To),
		zap.String("subject", e.Subject),
		zap.String("body", e.TextBody))
	return nil
}

// Sent returns a copy of the recorded messages.
func (l *Log) Sent() []Email {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Email(nil), l.sent...)
}

// Package mailer delivers card notification emails over SMTP.
package mailer

import (
	"context"
	"fmt"
	"net/smtp"

	"go.uber.org/zap"

	"github.com/burakzaferozcan/Vaultify/internal/core/port"
	"github.com/burakzaferozcan/Vaultify/internal/infra/config"
	"github.com/burakzaferozcan/Vaultify/internal/infra/logger"
)

// SMTPMailer implements port.Mailer using plain SMTP with AUTH PLAIN.
type SMTPMailer struct {
	cfg    config.SMTPSettings
	logger *zap.Logger
	send   func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// New constructs an SMTPMailer from the supplied settings.
func New(cfg config.SMTPSettings, log *zap.Logger) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, logger: log, send: smtp.SendMail}
}

// SendExpiryNotification emails the owner that a card expires soon.
func (m *SMTPMailer) SendExpiryNotification(ctx context.Context, recipient, cardName string, daysUntilExpiry int) error {
	subject := fmt.Sprintf("Card Expiry Alert - %s", cardName)
	body := fmt.Sprintf(
		"<html><body>"+
			"<h2>Card Expiry Notification</h2>"+
			"<p>Your card <strong>%s</strong> will expire in %d days.</p>"+
			"<p>Please take necessary action to ensure uninterrupted service.</p>"+
			"<p>This is an automated notification from Vaultify.</p>"+
			"</body></html>",
		cardName, daysUntilExpiry,
	)

	return m.deliver(ctx, recipient, subject, body)
}

// SendSpendingNotification emails the owner that a card is near its
// spending limit.
func (m *SMTPMailer) SendSpendingNotification(ctx context.Context, recipient, cardName string, percentage int, limit float64) error {
	subject := fmt.Sprintf("Spending Limit Alert - %s", cardName)
	body := fmt.Sprintf(
		"<html><body>"+
			"<h2>Spending Limit Notification</h2>"+
			"<p>Your card <strong>%s</strong> has reached %d%% of its %.2f spending limit.</p>"+
			"<p>This is an automated notification from Vaultify.</p>"+
			"</body></html>",
		cardName, percentage, limit,
	)

	return m.deliver(ctx, recipient, subject, body)
}

func (m *SMTPMailer) deliver(ctx context.Context, recipient, subject, body string) error {
	if recipient == "" {
		return fmt.Errorf("mailer: recipient is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := []byte(fmt.Sprintf(
		"To: %s\r\nFrom: %s\r\nSubject: %s\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s\r\n",
		recipient, m.cfg.From, subject, body,
	))

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	if err := m.send(addr, auth, m.cfg.From, []string{recipient}, msg); err != nil {
		return fmt.Errorf("mailer: send to %s: %w", logger.MaskEmail(recipient), err)
	}

	m.logger.Info("notification email sent",
		zap.String("recipient", logger.MaskEmail(recipient)),
		zap.String("subject", subject),
	)

	return nil
}

var _ port.Mailer = (*SMTPMailer)(nil)

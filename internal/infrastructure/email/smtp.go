package email

import (
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/lmasson/course-management/internal/application/port"
)

// Config holds SMTP transport settings.
type Config struct {
	Host           string
	Port           int
	Username       string
	Password       string
	FromAddress    string
	FromName       string
	DirectionEmail string
}

// SMTPNotifier delivers notifications over SMTP using gomail. Sends are
// synchronous and best effort; the returned error exists only for
// degraded-delivery accounting and is never treated as a workflow
// failure by callers.
type SMTPNotifier struct {
	dialer *gomail.Dialer
	cfg    Config
	logger *zap.Logger
}

var _ port.Notifier = (*SMTPNotifier)(nil)

// NewSMTPNotifier creates a notifier backed by an SMTP server.
func NewSMTPNotifier(cfg Config, logger *zap.Logger) *SMTPNotifier {
	return &SMTPNotifier{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		cfg:    cfg,
		logger: logger,
	}
}

// Send delivers one plain-text message to the given address.
func (n *SMTPNotifier) Send(recipient, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", n.cfg.FromAddress, n.cfg.FromName)
	msg.SetHeader("To", recipient)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := n.dialer.DialAndSend(msg); err != nil {
		n.logger.Error("Failed to send email",
			zap.String("recipient", recipient),
			zap.String("subject", subject),
			zap.Error(err))
		return fmt.Errorf("send email to %s: %w", recipient, err)
	}

	n.logger.Info("Email sent",
		zap.String("recipient", recipient),
		zap.String("subject", subject))
	return nil
}

// SendToDirection delivers one message to the configured Direction
// oversight address.
func (n *SMTPNotifier) SendToDirection(subject, body string) error {
	return n.Send(n.cfg.DirectionEmail, subject, body)
}

package email

import (
	"go.uber.org/zap"

	"github.com/lmasson/course-management/internal/application/port"
)

// ConsoleNotifier logs messages instead of delivering them. Used for
// local development and anywhere a real SMTP server is unavailable.
type ConsoleNotifier struct {
	directionEmail string
	logger         *zap.Logger
}

var _ port.Notifier = (*ConsoleNotifier)(nil)

// NewConsoleNotifier creates a log-only notifier.
func NewConsoleNotifier(directionEmail string, logger *zap.Logger) *ConsoleNotifier {
	return &ConsoleNotifier{directionEmail: directionEmail, logger: logger}
}

// Send logs the message that would have been delivered.
func (n *ConsoleNotifier) Send(recipient, subject, body string) error {
	n.logger.Info("Email (console backend)",
		zap.String("recipient", recipient),
		zap.String("subject", subject),
		zap.String("body", body))
	return nil
}

// SendToDirection logs the message addressed to Direction.
func (n *ConsoleNotifier) SendToDirection(subject, body string) error {
	return n.Send(n.directionEmail, subject, body)
}

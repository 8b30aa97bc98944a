// Package email defines the outbound mail contract. Actual delivery is owned
// by an external service; the auth service only hands it addresses and
// tokenized links.
package email

import (
	"context"

	"go.uber.org/zap"
)

// Sender delivers account emails. Implementations must be safe for
// concurrent use.
type Sender interface {
	SendConfirmation(ctx context.Context, to, username, link string) error
	SendPasswordReset(ctx context.Context, to, username, link string) error
}

// LogSender is the development implementation: it logs the link instead of
// delivering mail.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) SendConfirmation(ctx context.Context, to, username, link string) error {
	s.logger.Info("confirmation email",
		zap.String("to", to),
		zap.String("username", username),
		zap.String("link", link),
	)
	return nil
}

func (s *LogSender) SendPasswordReset(ctx context.Context, to, username, link string) error {
	s.logger.Info("password reset email",
		zap.String("to", to),
		zap.String("username", username),
		zap.String("link", link),
	)
	return nil
}

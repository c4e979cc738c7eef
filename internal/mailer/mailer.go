// Package mailer delivers confirmation codes. Delivery is best-effort and
// synchronous: a failure surfaces as a request error and is never retried.
package mailer

import (
	"context"

	"github.com/critics-hub/yamdb/pkg/logger"
	"go.uber.org/zap"
)

// Sender delivers a confirmation code to an address.
type Sender interface {
	Send(ctx context.Context, email, username, code string) error
}

// LogSender writes codes to the log instead of sending mail. Used in
// development when no SMTP host is configured.
type LogSender struct{}

func NewLogSender() *LogSender {
	return &LogSender{}
}

func (s *LogSender) Send(_ context.Context, email, username, code string) error {
	logger.Log.Info("Confirmation code issued (log delivery)",
		zap.String("email", email),
		zap.String("username", username),
		zap.String("code", code),
	)
	return nil
}

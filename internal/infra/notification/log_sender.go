// Package notification delivers login codes to account owners.
package notification

import (
	"context"
	"log/slog"

	"greenpoints/internal/domain/service"
)

// logSender prints codes to the service log. Development only.
type logSender struct {
	logger *slog.Logger
}

// NewLogSender creates a sender that writes each code to logger.
func NewLogSender(logger *slog.Logger) service.OTPSender {
	return &logSender{logger: logger}
}

func (s *logSender) Send(ctx context.Context, msg service.OTPMessage) error {
	s.logger.InfoContext(ctx, "[DevOTP] Login code issued",
		slog.String("request_id", msg.RequestID),
		slog.String("email", msg.Email),
		slog.String("otp", msg.Code),
		slog.Time("expires_at", msg.ExpiresAt),
	)

	return nil
}

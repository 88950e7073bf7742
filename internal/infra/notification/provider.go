package notification

import (
	"context"
	"log/slog"

	"greenpoints/config"
	"greenpoints/internal/domain/service"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// SenderParams holds dependencies for OTPSender, injected by Fx
type SenderParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

// NewOTPSender selects the sender named by delivery.provider.
func NewOTPSender(params SenderParams) (service.OTPSender, error) {
	cfg := params.Config.Delivery
	logger := params.Logger

	switch cfg.Provider {
	case config.DeliveryProviderLog, "":
		logger.Warn("OTP delivery uses the log provider; codes are written to the service log")

		return NewLogSender(logger), nil

	case config.DeliveryProviderResend:
		logger.Info("Using Resend provider for OTP delivery",
			slog.String("base_url", cfg.Resend.BaseURL),
		)

		return NewResendSender(cfg.Resend, logger)

	default:
		return nil, errors.Errorf("unknown delivery provider: %s", cfg.Provider)
	}
}

// DispatcherParams holds dependencies for the OTP dispatcher, injected by Fx
type DispatcherParams struct {
	fx.In

	Lc     fx.Lifecycle
	Config *config.Config
	Logger *slog.Logger
	Sender service.OTPSender
}

// NewOTPDispatcher builds the worker pool and binds it to the application lifecycle.
func NewOTPDispatcher(params DispatcherParams) service.OTPDispatcher {
	cfg := params.Config.Delivery

	dispatcher := NewDispatcher(params.Sender, params.Logger, DispatcherOptions{
		Workers:        cfg.Workers,
		QueueSize:      cfg.QueueSize,
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
	})

	params.Lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			dispatcher.Start()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			params.Logger.Info("Stopping OTP dispatcher")

			return dispatcher.Stop(ctx)
		},
	})

	return dispatcher
}

// Module provides the OTP delivery FX module
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(NewOTPSender, NewOTPDispatcher),
)

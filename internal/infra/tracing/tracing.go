// Package tracing installs the OpenTelemetry tracer provider.
package tracing

import (
	"context"
	"log/slog"

	"greenpoints/config"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/fx"
)

// InstrumentationName is the tracer name used by the ledger's own spans.
const InstrumentationName = "greenpoints"

// Params defines the parameters required for the tracer provider
type Params struct {
	fx.In

	Lc     fx.Lifecycle
	Config *config.Config
	Logger *slog.Logger
}

// New registers the global tracer provider. Without tracing.enabled the global
// provider stays a no-op and spans cost nothing.
func New(params Params) (trace.TracerProvider, error) {
	cfg := params.Config.Tracing
	if cfg == nil || !cfg.Enabled {
		params.Logger.Debug("Tracing disabled")

		return noop.NewTracerProvider(), nil
	}

	tp, err := newSDKProvider(params.Config)
	if err != nil {
		return nil, err
	}

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	params.Logger.Info("Tracing enabled", slog.String("endpoint", cfg.Endpoint))

	params.Lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return errors.Wrap(tp.Shutdown(ctx), "failed to flush traces")
		},
	})

	return tp, nil
}

func newSDKProvider(cfg *config.Config) (*tracesdk.TracerProvider, error) {
	if cfg.Tracing.Endpoint == "" {
		return nil, errors.New("tracing endpoint is required when tracing is enabled")
	}

	exp, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(cfg.Tracing.Endpoint)))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Jaeger exporter")
	}

	serviceName := cfg.Env.ServiceName
	if serviceName == "" {
		serviceName = InstrumentationName
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			attribute.String("service.name", serviceName),
			attribute.String("deployment.environment", cfg.Env.Env),
		),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create resource")
	}

	return tracesdk.NewTracerProvider(
		tracesdk.WithBatcher(exp),
		tracesdk.WithResource(res),
	), nil
}

// Tracer returns the ledger tracer from the global provider.
func Tracer() trace.Tracer {
	return otel.Tracer(InstrumentationName)
}

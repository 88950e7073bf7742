package middleware

import (
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// TracingMiddleware opens a server span per request and propagates W3C trace headers.
type TracingMiddleware struct {
	tracer trace.Tracer
}

// NewTracingMiddleware uses the global tracer provider; it is a no-op until tracing is enabled.
func NewTracingMiddleware(instrumentationName string) *TracingMiddleware {
	return &TracingMiddleware{tracer: otel.Tracer(instrumentationName)}
}

func (m *TracingMiddleware) Handle(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		propagator := otel.GetTextMapPropagator()

		ctx := propagator.Extract(req.Context(), propagation.HeaderCarrier(req.Header))
		ctx, span := m.tracer.Start(ctx, req.Method+" "+c.Path(),
			trace.WithSpanKind(trace.SpanKindServer),
		)
		defer span.End()

		span.SetAttributes(
			attribute.String("http.method", req.Method),
			attribute.String("http.route", c.Path()),
			attribute.String("http.target", req.URL.Path),
			attribute.String("http.user_agent", req.UserAgent()),
			attribute.String("net.peer.ip", c.RealIP()),
		)

		propagator.Inject(ctx, propagation.HeaderCarrier(c.Response().Header()))
		c.SetRequest(req.WithContext(ctx))

		err := next(c)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}

		status := c.Response().Status
		span.SetAttributes(attribute.Int("http.status_code", status))
		if status >= 500 {
			span.SetStatus(codes.Error, "server error")
		}

		return err
	}
}

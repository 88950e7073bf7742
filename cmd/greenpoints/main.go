package main

import (
	"context"
	"log/slog"
	"os"

	"greenpoints/config"
	"greenpoints/internal/delivery"
	"greenpoints/internal/delivery/api"
	"greenpoints/internal/delivery/api/middleware"
	"greenpoints/internal/delivery/api/router/handler"
	"greenpoints/internal/infra/auth"
	"greenpoints/internal/infra/codegen"
	logs "greenpoints/internal/infra/log"
	"greenpoints/internal/infra/notification"
	"greenpoints/internal/infra/persistence/sqlstore"
	"greenpoints/internal/infra/qrcode"
	"greenpoints/internal/infra/tracing"
	"greenpoints/internal/usecase/impl"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		fx.Invoke(
			// Installs the global tracer provider before any span is opened.
			func(trace.TracerProvider) {},
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		tracing.New,
		sqlstore.New,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			sqlstore.NewTransactionManager,
			sqlstore.NewRepositoryFactory,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			auth.NewJWTService,
			auth.NewOTPHasher,
			codegen.NewGenerator,
			qrcode.NewFromConfig,
		),
		notification.Module,
	)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewLedgerStore,
			impl.NewRedemptionService,
			impl.NewAuthService,
			impl.NewAdminService,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			middleware.NewAuthMiddleware,
			middleware.NewErrorMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewAuthHandler,
			handler.NewLedgerHandler,
			handler.NewAdminHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				api.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

// startServer launches every delivery once the store is migrated and the dispatcher runs.
func startServer(ctx context.Context, params startServerParams) {
	params.Append(fx.Hook{
		OnStart: func(context.Context) error {
			for _, delivery := range params.Deliveries {
				go func() {
					if err := delivery.Serve(ctx); err != nil {
						slog.Error("Failed to start server", slog.Any("error", err))
						os.Exit(1)
					}
				}()
			}

			return nil
		},
	})
}

package impl

import (
	"context"
	"log/slog"

	"greenpoints/config"
	deliverycontext "greenpoints/internal/delivery/context"
	"greenpoints/internal/domain/entity"
	domainerrors "greenpoints/internal/domain/errors"
	"greenpoints/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

type adminService struct {
	store  usecase.LedgerStore
	cfg    *config.Config
	logger *slog.Logger
}

// AdminServiceParams holds dependencies for AdminService, injected by Fx.
type AdminServiceParams struct {
	fx.In

	Store  usecase.LedgerStore
	Config *config.Config
	Logger *slog.Logger
}

func NewAdminService(params AdminServiceParams) usecase.AdminUsecase {
	return &adminService{
		store:  params.Store,
		cfg:    params.Config,
		logger: params.Logger,
	}
}

func (srv *adminService) Export(ctx context.Context, actor entity.Actor) (*usecase.Snapshot, error) {
	if err := srv.requireAdministrator(ctx, actor); err != nil {
		return nil, err
	}

	snapshot, err := srv.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	deliverycontext.GetLoggerOrDefault(ctx, srv.logger).Info("Ledger exported",
		slog.String("admin_id", actor.AccountID.String()),
		slog.Int("accounts", len(snapshot.Accounts)),
		slog.Int("codes", len(snapshot.Codes)),
		slog.Int("point_logs", len(snapshot.PointLogs)),
	)

	return snapshot, nil
}

func (srv *adminService) Promote(ctx context.Context, actor entity.Actor, email string) (*entity.Account, error) {
	if err := srv.requireAdministrator(ctx, actor); err != nil {
		return nil, err
	}

	return srv.store.PromoteToAdministrator(ctx, email)
}

// requireAdministrator trusts the stored account over the session claims.
func (srv *adminService) requireAdministrator(ctx context.Context, actor entity.Actor) error {
	if !actor.Is(entity.RoleAdministrator) {
		return domainerrors.ErrForbidden
	}

	account, err := srv.store.FindAccountByID(ctx, actor.AccountID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrAccountNotFound) {
			return domainerrors.ErrForbidden
		}

		return err
	}

	if account.Role != entity.RoleAdministrator || !entity.IsAdminAllowed(account.Email, srv.cfg.AdminAllowlist()) {
		return domainerrors.ErrForbidden
	}

	return nil
}

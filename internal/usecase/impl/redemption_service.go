package impl

import (
	"context"
	"log/slog"
	"strings"

	"greenpoints/config"
	deliverycontext "greenpoints/internal/delivery/context"
	"greenpoints/internal/domain/entity"
	domainerrors "greenpoints/internal/domain/errors"
	"greenpoints/internal/domain/service"
	"greenpoints/internal/usecase"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
)

const instrumentationName = "greenpoints/usecase"

// redemptionService implements the RedemptionUsecase interface.
type redemptionService struct {
	store       usecase.LedgerStore
	generator   service.CodeGenerator
	qrService   service.QRCodeService
	style       service.CodeStyle
	maxAttempts int
	minPoints   int64
	maxPoints   int64
	logger      *slog.Logger
	tracer      trace.Tracer
}

// RedemptionServiceParams holds dependencies for RedemptionService, injected by Fx.
type RedemptionServiceParams struct {
	fx.In

	Store     usecase.LedgerStore
	Generator service.CodeGenerator
	QRService service.QRCodeService
	Config    *config.Config
	Logger    *slog.Logger
}

// NewRedemptionService is the constructor for redemptionService.
func NewRedemptionService(params RedemptionServiceParams) usecase.RedemptionUsecase {
	maxAttempts := params.Config.Code.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 10
	}

	return &redemptionService{
		store:       params.Store,
		generator:   params.Generator,
		qrService:   params.QRService,
		style:       service.CodeStyle(params.Config.Code.Style),
		maxAttempts: maxAttempts,
		minPoints:   params.Config.Points.Min,
		maxPoints:   params.Config.Points.Max,
		logger:      params.Logger,
		tracer:      otel.Tracer(instrumentationName),
	}
}

func (srv *redemptionService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// IssueCode re-rolls on collision until the store accepts a code or attempts run out.
func (srv *redemptionService) IssueCode(ctx context.Context, actor entity.Actor, points int64) (*entity.TransactionCode, error) {
	ctx, span := srv.tracer.Start(ctx, "RedemptionService.IssueCode")
	defer span.End()
	span.SetAttributes(attribute.Int64("points", points))

	if !actor.Is(entity.RoleMerchant) {
		return nil, domainerrors.ErrForbidden.WrapMessage("only merchants issue codes")
	}
	if points < srv.minPoints || points > srv.maxPoints {
		return nil, domainerrors.ErrInvalidPoints.WithDetails("points must be within the configured range")
	}

	for attempt := 1; attempt <= srv.maxAttempts; attempt++ {
		code, err := srv.generator.Generate(srv.style, points)
		if err != nil {
			return nil, errors.Wrap(err, "failed to generate code")
		}

		issued, err := srv.store.IssueCode(ctx, actor.AccountID, code, points)
		if errors.Is(err, domainerrors.ErrCodeCollision) {
			srv.log(ctx).Debug("Code collision, re-rolling", slog.Int("attempt", attempt))

			continue
		}
		if err != nil {
			recordSpanError(span, err)

			return nil, err
		}

		span.SetAttributes(attribute.Int("attempts", attempt))
		srv.log(ctx).Info("Code issued",
			slog.String("merchant_id", actor.AccountID.String()),
			slog.Int64("points", points),
		)

		return issued, nil
	}

	srv.log(ctx).Error("Code issuance exhausted", slog.Int("attempts", srv.maxAttempts))
	recordSpanError(span, domainerrors.ErrIssuanceExhausted)

	return nil, domainerrors.ErrIssuanceExhausted
}

func (srv *redemptionService) RedeemCode(ctx context.Context, actor entity.Actor, rawCode string) (*usecase.Redemption, error) {
	ctx, span := srv.tracer.Start(ctx, "RedemptionService.RedeemCode")
	defer span.End()

	if !actor.Is(entity.RoleStandard) {
		return nil, domainerrors.ErrForbidden.WrapMessage("only standard accounts redeem codes")
	}

	code, err := srv.qrService.ParseCodeQR(rawCode)
	if err != nil {
		return nil, domainerrors.ErrInvalidCodeFormat.WrapMessage(err.Error())
	}
	code = normalizeCode(code)
	if !srv.generator.Matches(srv.style, code) {
		return nil, domainerrors.ErrInvalidCodeFormat
	}

	redemption, err := srv.store.RedeemCode(ctx, code, actor.AccountID)
	if err != nil {
		recordSpanError(span, err)
		srv.log(ctx).Warn("Redemption rejected",
			slog.String("account_id", actor.AccountID.String()),
			slog.Any("error", err),
		)

		return nil, err
	}

	span.SetAttributes(attribute.Int64("points", redemption.Log.Points))
	srv.log(ctx).Info("Code redeemed",
		slog.String("account_id", actor.AccountID.String()),
		slog.String("merchant_id", redemption.Log.MerchantID.String()),
		slog.Int64("points", redemption.Log.Points),
	)

	return redemption, nil
}

func (srv *redemptionService) MerchantCodes(ctx context.Context, actor entity.Actor) ([]*entity.TransactionCode, error) {
	if !actor.Is(entity.RoleMerchant) {
		return nil, domainerrors.ErrForbidden
	}

	return srv.store.ListCodesByMerchant(ctx, actor.AccountID)
}

func (srv *redemptionService) AccountHistory(ctx context.Context, actor entity.Actor) (*usecase.AccountOverview, error) {
	account, err := srv.store.FindAccountByID(ctx, actor.AccountID)
	if err != nil {
		return nil, err
	}

	history, err := srv.store.ListPointLogsByAccount(ctx, actor.AccountID)
	if err != nil {
		return nil, err
	}

	return &usecase.AccountOverview{Account: account, History: history}, nil
}

// CodeQR hides other merchants' codes behind ErrCodeNotFound.
func (srv *redemptionService) CodeQR(ctx context.Context, actor entity.Actor, code string) ([]byte, error) {
	if !actor.Is(entity.RoleMerchant) {
		return nil, domainerrors.ErrForbidden
	}

	found, err := srv.store.FindCode(ctx, normalizeCode(code))
	if err != nil {
		return nil, err
	}
	if found.MerchantID != actor.AccountID {
		return nil, domainerrors.ErrCodeNotFound
	}
	if found.Used {
		return nil, domainerrors.ErrCodeAlreadyUsed
	}

	png, err := srv.qrService.GenerateCodeQR(found.Code)
	if err != nil {
		return nil, errors.Wrap(err, "failed to render code QR")
	}

	return png, nil
}

func normalizeCode(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

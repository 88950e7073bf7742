package impl

import (
	"context"
	"log/slog"
	"net/mail"
	"time"

	"greenpoints/config"
	deliverycontext "greenpoints/internal/delivery/context"
	"greenpoints/internal/domain/entity"
	domainerrors "greenpoints/internal/domain/errors"
	"greenpoints/internal/domain/service"
	"greenpoints/internal/usecase"
	"greenpoints/internal/util"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
)

// authService implements the AuthUsecase interface.
type authService struct {
	store        usecase.LedgerStore
	hasher       service.OTPHasher
	dispatcher   service.OTPDispatcher
	tokenService service.TokenService
	cfg          *config.Config
	logger       *slog.Logger
	tracer       trace.Tracer
	now          func() time.Time
}

// AuthServiceParams holds dependencies for AuthService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	Store        usecase.LedgerStore
	Hasher       service.OTPHasher
	Dispatcher   service.OTPDispatcher
	TokenService service.TokenService
	Config       *config.Config
	Logger       *slog.Logger
}

// NewAuthService is the constructor for authService.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	return &authService{
		store:        params.Store,
		hasher:       params.Hasher,
		dispatcher:   params.Dispatcher,
		tokenService: params.TokenService,
		cfg:          params.Config,
		logger:       params.Logger,
		tracer:       otel.Tracer(instrumentationName),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// RequestLogin records a fresh challenge, then hands delivery to the dispatcher.
// The challenge is kept even when delivery cannot be queued.
func (srv *authService) RequestLogin(ctx context.Context, input usecase.RequestLoginInput) (*usecase.RequestLoginOutput, error) {
	ctx, span := srv.tracer.Start(ctx, "AuthService.RequestLogin")
	defer span.End()

	email, err := normalizeLoginEmail(input.Email)
	if err != nil {
		return nil, err
	}

	role := entity.RoleStandard
	if input.Role != "" {
		parsed, ok := entity.ParseRole(input.Role)
		if !ok {
			return nil, domainerrors.ErrInvalidRole.WrapMessage(input.Role)
		}
		role = parsed
	}

	if _, err := srv.fetchOrCreateAccount(ctx, email, role); err != nil {
		recordSpanError(span, err)

		return nil, err
	}

	otp, err := srv.hasher.GenerateOTP()
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate otp")
	}
	salt, err := srv.hasher.NewSalt()
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate otp salt")
	}

	expiresAt := srv.now().Add(srv.cfg.OTP.TTL)
	if _, err := srv.store.RecordOTPChallenge(ctx, email, srv.hasher.Hash(otp, salt), expiresAt); err != nil {
		recordSpanError(span, err)

		return nil, err
	}

	msg := service.OTPMessage{
		RequestID: deliverycontext.GetRequestIDFromContext(ctx),
		Email:     email,
		Code:      otp,
		ExpiresAt: expiresAt,
	}
	if err := srv.dispatcher.Dispatch(ctx, msg); err != nil {
		srv.log(ctx).Warn("OTP delivery could not be queued", slog.String("email", util.MaskEmail(email)), slog.Any("error", err))
		recordSpanError(span, err)

		return nil, domainerrors.ErrOTPDeliveryUnavailable
	}

	srv.log(ctx).Info("Login code requested", slog.String("email", util.MaskEmail(email)))

	return &usecase.RequestLoginOutput{ExpiresAt: expiresAt}, nil
}

// fetchOrCreateAccount pins the role on first sight; later requests never change it.
func (srv *authService) fetchOrCreateAccount(ctx context.Context, email string, role entity.Role) (*entity.Account, error) {
	account, err := srv.store.FindAccountByEmail(ctx, email)
	if err == nil {
		if account.Role != role {
			srv.log(ctx).Debug("Requested role ignored for existing account",
				slog.String("account_id", account.ID.String()),
				slog.String("requested", role.String()),
			)
		}

		return account, nil
	}
	if !errors.Is(err, domainerrors.ErrAccountNotFound) {
		return nil, err
	}

	account, err = srv.store.CreateAccount(ctx, email, role)
	if errors.Is(err, domainerrors.ErrAccountExists) {
		// Lost a race with a concurrent first login.
		return srv.store.FindAccountByEmail(ctx, email)
	}

	return account, err
}

func (srv *authService) VerifyLogin(ctx context.Context, input usecase.VerifyLoginInput) (*usecase.VerifyLoginOutput, error) {
	ctx, span := srv.tracer.Start(ctx, "AuthService.VerifyLogin")
	defer span.End()

	email, err := normalizeLoginEmail(input.Email)
	if err != nil {
		return nil, err
	}

	account, err := srv.store.VerifyAndConsumeOTP(ctx, email, input.OTP, srv.now())
	if err != nil {
		recordSpanError(span, err)
		srv.log(ctx).Warn("Login verification failed", slog.String("email", util.MaskEmail(email)), slog.Any("error", err))

		return nil, err
	}

	if account.Role == entity.RoleAdministrator && !entity.IsAdminAllowed(account.Email, srv.cfg.AdminAllowlist()) {
		srv.log(ctx).Warn("Administrator no longer allowlisted", slog.String("account_id", account.ID.String()))

		return nil, domainerrors.ErrRoleNotAllowed
	}

	token, expiresAt, err := srv.tokenService.Issue(account.Actor())
	if err != nil {
		return nil, errors.Wrap(err, "failed to issue session token")
	}

	srv.log(ctx).Info("Login verified", slog.String("account_id", account.ID.String()), slog.String("role", account.Role.String()))

	return &usecase.VerifyLoginOutput{Token: token, ExpiresAt: expiresAt, Account: account}, nil
}

func normalizeLoginEmail(raw string) (string, error) {
	email := entity.NormalizeEmail(raw)
	if email == "" {
		return "", domainerrors.ErrValidationFailed.WrapMessage("email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", domainerrors.ErrValidationFailed.WrapMessage("email is malformed")
	}

	return email, nil
}

// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"time"

	"greenpoints/config"
	deliverycontext "greenpoints/internal/delivery/context"
	"greenpoints/internal/domain/entity"
	domainerrors "greenpoints/internal/domain/errors"
	"greenpoints/internal/domain/repository"
	"greenpoints/internal/domain/service"
	"greenpoints/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

type ledgerStore struct {
	txManager repository.TransactionManager
	repos     repository.RepositoryFactory
	hasher    service.OTPHasher
	cfg       *config.Config
	logger    *slog.Logger
	now       func() time.Time
}

// LedgerStoreParams holds dependencies for the ledger store, injected by Fx.
type LedgerStoreParams struct {
	fx.In

	TxManager repository.TransactionManager
	Repos     repository.RepositoryFactory
	Hasher    service.OTPHasher
	Config    *config.Config
	Logger    *slog.Logger
}

// NewLedgerStore is the constructor for ledgerStore.
func NewLedgerStore(params LedgerStoreParams) usecase.LedgerStore {
	return &ledgerStore{
		txManager: params.TxManager,
		repos:     params.Repos,
		hasher:    params.Hasher,
		cfg:       params.Config,
		logger:    params.Logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *ledgerStore) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, s.logger)
}

func (s *ledgerStore) CreateAccount(ctx context.Context, email string, role entity.Role) (*entity.Account, error) {
	email = entity.NormalizeEmail(email)
	if email == "" {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("email is required")
	}
	if !role.IsValid() {
		return nil, domainerrors.ErrInvalidRole.WrapMessage(string(role))
	}
	if role == entity.RoleAdministrator && !entity.IsAdminAllowed(email, s.cfg.AdminAllowlist()) {
		return nil, domainerrors.ErrRoleNotAllowed
	}

	account := &entity.Account{Email: email, Role: role}
	err := s.txManager.Execute(ctx, func(f repository.RepositoryFactory) error {
		return f.AccountRepo().Create(ctx, account)
	})
	if err != nil {
		if errors.Is(err, repository.ErrAccountEmailTaken) {
			return nil, domainerrors.ErrAccountExists
		}

		return nil, errors.Wrap(err, "failed to create account")
	}

	s.log(ctx).Info("Account created", slog.String("account_id", account.ID.String()), slog.String("role", role.String()))

	return account, nil
}

func (s *ledgerStore) FindAccountByEmail(ctx context.Context, email string) (*entity.Account, error) {
	account, err := s.repos.AccountRepo().FindByEmail(ctx, entity.NormalizeEmail(email))

	return account, mapAccountErr(err)
}

func (s *ledgerStore) FindAccountByID(ctx context.Context, id uuid.UUID) (*entity.Account, error) {
	account, err := s.repos.AccountRepo().FindByID(ctx, id)

	return account, mapAccountErr(err)
}

func (s *ledgerStore) PromoteToAdministrator(ctx context.Context, email string) (*entity.Account, error) {
	email = entity.NormalizeEmail(email)
	if !entity.IsAdminAllowed(email, s.cfg.AdminAllowlist()) {
		return nil, domainerrors.ErrRoleNotAllowed
	}

	var promoted *entity.Account
	err := s.txManager.Execute(ctx, func(f repository.RepositoryFactory) error {
		account, err := f.AccountRepo().FindByEmail(ctx, email)
		if err != nil {
			return mapAccountErr(err)
		}

		if account.Role != entity.RoleAdministrator {
			if err := f.AccountRepo().UpdateRole(ctx, account.ID, entity.RoleAdministrator); err != nil {
				return mapAccountErr(err)
			}
			account.Role = entity.RoleAdministrator
		}
		promoted = account

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log(ctx).Info("Account promoted to administrator", slog.String("account_id", promoted.ID.String()))

	return promoted, nil
}

func (s *ledgerStore) IssueCode(ctx context.Context, merchantID uuid.UUID, code string, points int64) (*entity.TransactionCode, error) {
	if points < s.cfg.Points.Min || points > s.cfg.Points.Max {
		return nil, domainerrors.ErrInvalidPoints.WrapMessage("points out of range")
	}

	issued := &entity.TransactionCode{Code: code, MerchantID: merchantID, Points: points}
	err := s.txManager.Execute(ctx, func(f repository.RepositoryFactory) error {
		merchant, err := f.AccountRepo().FindByID(ctx, merchantID)
		if err != nil {
			return mapAccountErr(err)
		}
		if merchant.Role != entity.RoleMerchant {
			return domainerrors.ErrForbidden.WrapMessage("only merchants issue codes")
		}

		if err := f.CodeRepo().Create(ctx, issued); err != nil {
			if errors.Is(err, repository.ErrCodeExists) {
				return domainerrors.ErrCodeCollision
			}

			return err
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return issued, nil
}

func (s *ledgerStore) FindCode(ctx context.Context, code string) (*entity.TransactionCode, error) {
	found, err := s.repos.CodeRepo().FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrCodeNotFound) {
			return nil, domainerrors.ErrCodeNotFound
		}

		return nil, err
	}

	return found, nil
}

// RedeemCode flips the code with a conditional update first, so a losing
// concurrent caller touches neither the balance nor the log.
func (s *ledgerStore) RedeemCode(ctx context.Context, code string, accountID uuid.UUID) (*usecase.Redemption, error) {
	var redemption *usecase.Redemption

	err := s.txManager.Execute(ctx, func(f repository.RepositoryFactory) error {
		codes := f.CodeRepo()

		won, err := codes.MarkUsed(ctx, code, accountID, s.now())
		if err != nil {
			return err
		}
		if !won {
			if _, err := codes.FindByCode(ctx, code); err != nil {
				if errors.Is(err, repository.ErrCodeNotFound) {
					return domainerrors.ErrCodeNotFound
				}

				return err
			}

			return domainerrors.ErrCodeAlreadyUsed
		}

		redeemed, err := codes.FindByCode(ctx, code)
		if err != nil {
			return errors.Wrap(err, "failed to reload redeemed code")
		}

		if err := f.AccountRepo().IncrementBalance(ctx, accountID, redeemed.Points); err != nil {
			return mapAccountErr(err)
		}

		pointLog := &entity.PointLog{
			AccountID:  accountID,
			MerchantID: redeemed.MerchantID,
			Points:     redeemed.Points,
			Code:       redeemed.Code,
		}
		if err := f.PointLogRepo().Append(ctx, pointLog); err != nil {
			return err
		}

		account, err := f.AccountRepo().FindByID(ctx, accountID)
		if err != nil {
			return mapAccountErr(err)
		}

		redemption = &usecase.Redemption{Log: pointLog, Balance: account.Balance}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return redemption, nil
}

func (s *ledgerStore) RecordOTPChallenge(ctx context.Context, email, secretHash string, expiresAt time.Time) (*entity.OTPChallenge, error) {
	challenge := &entity.OTPChallenge{
		Email:      entity.NormalizeEmail(email),
		SecretHash: secretHash,
		ExpiresAt:  expiresAt.UTC(),
	}

	err := s.txManager.Execute(ctx, func(f repository.RepositoryFactory) error {
		return f.OTPChallengeRepo().Create(ctx, challenge)
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to record otp challenge")
	}

	return challenge, nil
}

func (s *ledgerStore) VerifyAndConsumeOTP(ctx context.Context, email, candidate string, now time.Time) (*entity.Account, error) {
	email = entity.NormalizeEmail(email)

	var (
		account  *entity.Account
		mismatch bool
	)

	err := s.txManager.Execute(ctx, func(f repository.RepositoryFactory) error {
		challenges := f.OTPChallengeRepo()

		challenge, err := challenges.FindLatestUnused(ctx, email)
		if err != nil {
			if errors.Is(err, repository.ErrChallengeNotFound) {
				return domainerrors.ErrNoChallenge
			}

			return err
		}

		if challenge.Expired(now) {
			return domainerrors.ErrChallengeExpired
		}
		if challenge.Exhausted(s.cfg.OTP.MaxAttempts) {
			return domainerrors.ErrTooManyAttempts
		}

		// The attempt is taken before comparing so the cap holds across concurrent verifiers.
		reserved, err := challenges.ReserveAttempt(ctx, challenge.ID, s.cfg.OTP.MaxAttempts)
		if err != nil {
			return err
		}
		if !reserved {
			return domainerrors.ErrTooManyAttempts
		}

		if !s.hasher.Verify(candidate, challenge.SecretHash) {
			// Committed: the failed attempt must count.
			mismatch = true

			return nil
		}

		consumed, err := challenges.Consume(ctx, challenge.ID)
		if err != nil {
			return err
		}
		if !consumed {
			return domainerrors.ErrNoChallenge
		}

		account, err = f.AccountRepo().FindByEmail(ctx, email)

		return mapAccountErr(err)
	})
	if err != nil {
		return nil, err
	}
	if mismatch {
		return nil, domainerrors.ErrInvalidOTP
	}

	return account, nil
}

func (s *ledgerStore) ListCodesByMerchant(ctx context.Context, merchantID uuid.UUID) ([]*entity.TransactionCode, error) {
	return s.repos.CodeRepo().ListByMerchant(ctx, merchantID)
}

func (s *ledgerStore) ListPointLogsByAccount(ctx context.Context, accountID uuid.UUID) ([]*entity.PointLog, error) {
	return s.repos.PointLogRepo().ListByAccount(ctx, accountID)
}

// Snapshot reads all three tables in one transaction so the export is consistent.
func (s *ledgerStore) Snapshot(ctx context.Context) (*usecase.Snapshot, error) {
	snapshot := &usecase.Snapshot{GeneratedAt: s.now()}

	err := s.txManager.Execute(ctx, func(f repository.RepositoryFactory) error {
		var err error
		if snapshot.Accounts, err = f.AccountRepo().List(ctx); err != nil {
			return err
		}
		if snapshot.Codes, err = f.CodeRepo().List(ctx); err != nil {
			return err
		}
		snapshot.PointLogs, err = f.PointLogRepo().List(ctx)

		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to read ledger snapshot")
	}

	return snapshot, nil
}

func mapAccountErr(err error) error {
	if errors.Is(err, repository.ErrAccountNotFound) {
		return domainerrors.ErrAccountNotFound
	}

	return err
}

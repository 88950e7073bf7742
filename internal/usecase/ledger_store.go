// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"
	"time"

	"greenpoints/internal/domain/entity"

	"github.com/google/uuid"
)

// Redemption is the outcome of one successful redemption.
type Redemption struct {
	Log     *entity.PointLog
	Balance int64 // Account balance right after the credit, read in the same transaction.
}

// Snapshot is a read-only copy of the whole ledger, newest rows first.
type Snapshot struct {
	GeneratedAt time.Time
	Accounts    []*entity.Account
	Codes       []*entity.TransactionCode
	PointLogs   []*entity.PointLog
}

// LedgerStore is the only writer of balances, code usage and point logs.
// Every mutation runs in one transaction and either fully applies or not at all.
type LedgerStore interface {
	// CreateAccount fails with ErrAccountExists for a known email, ErrInvalidRole for an
	// unknown role and ErrRoleNotAllowed for an administrator outside the allowlist.
	CreateAccount(ctx context.Context, email string, role entity.Role) (*entity.Account, error)
	FindAccountByEmail(ctx context.Context, email string) (*entity.Account, error)
	FindAccountByID(ctx context.Context, id uuid.UUID) (*entity.Account, error)

	// PromoteToAdministrator is the only path that changes a stored role.
	PromoteToAdministrator(ctx context.Context, email string) (*entity.Account, error)

	// IssueCode stores a new unused code. ErrCodeCollision means the caller should re-roll.
	IssueCode(ctx context.Context, merchantID uuid.UUID, code string, points int64) (*entity.TransactionCode, error)
	FindCode(ctx context.Context, code string) (*entity.TransactionCode, error)

	// RedeemCode marks the code used, credits the account and appends the point log.
	// Under any interleaving at most one caller succeeds per code.
	RedeemCode(ctx context.Context, code string, accountID uuid.UUID) (*Redemption, error)

	RecordOTPChallenge(ctx context.Context, email, secretHash string, expiresAt time.Time) (*entity.OTPChallenge, error)

	// VerifyAndConsumeOTP checks candidate against the latest unused challenge for email.
	// A mismatch is recorded as an attempt even though ErrInvalidOTP is returned.
	VerifyAndConsumeOTP(ctx context.Context, email, candidate string, now time.Time) (*entity.Account, error)

	ListCodesByMerchant(ctx context.Context, merchantID uuid.UUID) ([]*entity.TransactionCode, error)
	ListPointLogsByAccount(ctx context.Context, accountID uuid.UUID) ([]*entity.PointLog, error)
	Snapshot(ctx context.Context) (*Snapshot, error)
}

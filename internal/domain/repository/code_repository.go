package repository

import (
	"context"
	"time"

	"greenpoints/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var (
	// ErrCodeNotFound is returned when a transaction code does not exist.
	ErrCodeNotFound = errors.New("transaction code not found")
	// ErrCodeExists is returned when inserting a code that is already stored.
	ErrCodeExists = errors.New("transaction code already exists")
)

// CodeRepository persists transaction codes.
type CodeRepository interface {
	Create(ctx context.Context, code *entity.TransactionCode) error
	FindByCode(ctx context.Context, code string) (*entity.TransactionCode, error)

	// MarkUsed flips an unused code to used in a single conditional update.
	// It reports false when the code is missing or was already used.
	MarkUsed(ctx context.Context, code string, accountID uuid.UUID, at time.Time) (bool, error)

	// ListByMerchant returns the merchant's codes, newest first.
	ListByMerchant(ctx context.Context, merchantID uuid.UUID) ([]*entity.TransactionCode, error)

	// List returns every code, newest first.
	List(ctx context.Context) ([]*entity.TransactionCode, error)
}

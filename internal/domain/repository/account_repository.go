// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"

	"greenpoints/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var (
	// ErrAccountNotFound is returned when no account matches the lookup.
	ErrAccountNotFound = errors.New("account not found")
	// ErrAccountEmailTaken is returned when an account with the same email already exists.
	ErrAccountEmailTaken = errors.New("account email already taken")
)

// AccountRepository persists accounts.
type AccountRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Account, error)

	// FindByEmail expects an already normalized email.
	FindByEmail(ctx context.Context, email string) (*entity.Account, error)

	// Create inserts account, filling ID and timestamps when empty.
	Create(ctx context.Context, account *entity.Account) error

	// UpdateRole is only used by administrator promotion.
	UpdateRole(ctx context.Context, id uuid.UUID, role entity.Role) error

	// IncrementBalance adds delta to the stored balance in place.
	// ErrAccountNotFound is returned when no row was touched.
	IncrementBalance(ctx context.Context, id uuid.UUID, delta int64) error

	// List returns every account, newest first.
	List(ctx context.Context) ([]*entity.Account, error)
}

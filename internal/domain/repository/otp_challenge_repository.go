package repository

import (
	"context"

	"greenpoints/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrChallengeNotFound is returned when an email has no unused challenge.
var ErrChallengeNotFound = errors.New("otp challenge not found")

// OTPChallengeRepository persists login challenges.
type OTPChallengeRepository interface {
	Create(ctx context.Context, challenge *entity.OTPChallenge) error

	// FindLatestUnused returns the most recently created unused challenge for email.
	FindLatestUnused(ctx context.Context, email string) (*entity.OTPChallenge, error)

	// ReserveAttempt counts one verification attempt against an unused challenge whose
	// attempts are still below maxAttempts, and reports whether the attempt was granted.
	ReserveAttempt(ctx context.Context, id uuid.UUID, maxAttempts int) (bool, error)

	// Consume marks the challenge used if it was still unused and reports whether it did.
	Consume(ctx context.Context, id uuid.UUID) (bool, error)
}

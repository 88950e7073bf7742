package entity

import (
	"time"

	"github.com/google/uuid"
)

// OTPChallenge is one login code request for an email.
type OTPChallenge struct {
	ID         uuid.UUID
	Email      string
	SecretHash string // Salt and keyed digest, self-contained.
	ExpiresAt  time.Time
	Used       bool
	Attempts   int
	CreatedAt  time.Time
}

// Expired reports whether the challenge is past its expiry at now.
func (c *OTPChallenge) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// Exhausted reports whether the attempt budget is spent.
func (c *OTPChallenge) Exhausted(maxAttempts int) bool {
	return c.Attempts >= maxAttempts
}

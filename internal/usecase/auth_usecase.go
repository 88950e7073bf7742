package usecase

import (
	"context"
	"time"

	"greenpoints/internal/domain/entity"
)

// --- Input DTOs ---

// RequestLoginInput asks for a login code. Role only matters for a first login.
type RequestLoginInput struct {
	Email string
	Role  string
}

// VerifyLoginInput exchanges a login code for a session.
type VerifyLoginInput struct {
	Email string
	OTP   string
}

// --- Output DTOs ---

// RequestLoginOutput tells the client how long the code stays valid.
type RequestLoginOutput struct {
	ExpiresAt time.Time
}

// VerifyLoginOutput carries the session token.
type VerifyLoginOutput struct {
	Token     string
	ExpiresAt time.Time
	Account   *entity.Account
}

// AuthUsecase implements passwordless login by one-time code.
type AuthUsecase interface {
	RequestLogin(ctx context.Context, input RequestLoginInput) (*RequestLoginOutput, error)
	VerifyLogin(ctx context.Context, input VerifyLoginInput) (*VerifyLoginOutput, error)
}

package service

import (
	"time"

	"greenpoints/internal/domain/entity"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims binds a session to the account id and role seen at login.
type Claims struct {
	AccountID uuid.UUID `json:"aid"`
	Role      string    `json:"role"`
	jwt.RegisteredClaims
}

// Actor converts the claims back into the caller identity.
func (c *Claims) Actor() entity.Actor {
	return entity.Actor{AccountID: c.AccountID, Role: entity.Role(c.Role)}
}

// TokenService issues and validates session tokens.
type TokenService interface {
	Issue(actor entity.Actor) (token string, expiresAt time.Time, err error)
	Validate(tokenString string) (*Claims, error)
}

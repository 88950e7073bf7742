package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Account is a person on the ledger: a standard user, a merchant or an administrator.
type Account struct {
	ID        uuid.UUID // Opaque unique identifier.
	Email     string    // Unique, stored normalized (trimmed, lower-cased).
	Role      Role      // Pinned at creation; only promotion may change it.
	Balance   int64     // Accumulated points. Mutated only by redemption.
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Actor returns the identity snapshot carried by a session.
func (a *Account) Actor() Actor {
	return Actor{AccountID: a.ID, Role: a.Role}
}

// NormalizeEmail trims and lower-cases an email so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Actor is the already-authenticated caller of a protected operation.
type Actor struct {
	AccountID uuid.UUID
	Role      Role
}

// Is reports whether the actor holds role.
func (a Actor) Is(role Role) bool {
	return a.Role == role
}

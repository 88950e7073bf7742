package entity

import (
	"time"

	"github.com/google/uuid"
)

// CodeState is the lifecycle state of a TransactionCode.
type CodeState string

const (
	// CodeStatePending means the code can still be redeemed.
	CodeStatePending CodeState = "pending"
	// CodeStateRedeemed is terminal.
	CodeStateRedeemed CodeState = "redeemed"
)

// TransactionCode is a single-use code minted by a merchant.
// Once Used is true, Points, UsedBy and UsedAt never change again.
type TransactionCode struct {
	Code       string
	MerchantID uuid.UUID
	Points     int64
	Used       bool
	CreatedAt  time.Time
	UsedAt     *time.Time
	UsedBy     *uuid.UUID
}

// State derives the state machine position from the used flag.
func (c *TransactionCode) State() CodeState {
	if c.Used {
		return CodeStateRedeemed
	}

	return CodeStatePending
}

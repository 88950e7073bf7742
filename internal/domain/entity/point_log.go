package entity

import (
	"time"

	"github.com/google/uuid"
)

// PointLog is the append-only audit record of one successful redemption.
type PointLog struct {
	ID         uint64
	AccountID  uuid.UUID // The redeeming account.
	MerchantID uuid.UUID // The issuing merchant.
	Points     int64     // Equals the code's points at redemption time.
	Code       string
	CreatedAt  time.Time
}

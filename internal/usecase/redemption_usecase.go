package usecase

import (
	"context"

	"greenpoints/internal/domain/entity"
)

// AccountOverview is what an account sees about itself.
type AccountOverview struct {
	Account *entity.Account
	History []*entity.PointLog
}

// RedemptionUsecase covers the merchant and end-user halves of the code protocol.
type RedemptionUsecase interface {
	// IssueCode mints a unique code worth points. Merchants only.
	IssueCode(ctx context.Context, actor entity.Actor, points int64) (*entity.TransactionCode, error)

	// RedeemCode credits the caller with the code's points. Standard accounts only.
	// rawCode may be typed by hand or be a scanned QR payload.
	RedeemCode(ctx context.Context, actor entity.Actor, rawCode string) (*Redemption, error)

	MerchantCodes(ctx context.Context, actor entity.Actor) ([]*entity.TransactionCode, error)
	AccountHistory(ctx context.Context, actor entity.Actor) (*AccountOverview, error)

	// CodeQR renders one of the merchant's own unused codes as a PNG.
	CodeQR(ctx context.Context, actor entity.Actor, code string) ([]byte, error)
}

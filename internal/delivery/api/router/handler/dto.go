package handler

import (
	"time"

	"greenpoints/internal/domain/entity"
	"greenpoints/internal/usecase"

	"github.com/google/uuid"
)

// AccountView is the public shape of an account.
type AccountView struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Balance   int64     `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
}

// CodeView is the public shape of a transaction code.
type CodeView struct {
	Code       string     `json:"code"`
	MerchantID uuid.UUID  `json:"merchant_id"`
	Points     int64      `json:"points"`
	State      string     `json:"state"`
	CreatedAt  time.Time  `json:"created_at"`
	UsedAt     *time.Time `json:"used_at,omitempty"`
	UsedBy     *uuid.UUID `json:"used_by,omitempty"`
}

// PointLogView is one ledger entry.
type PointLogView struct {
	ID         uint64    `json:"id"`
	AccountID  uuid.UUID `json:"account_id"`
	MerchantID uuid.UUID `json:"merchant_id"`
	Points     int64     `json:"points"`
	Code       string    `json:"code"`
	CreatedAt  time.Time `json:"created_at"`
}

// SnapshotView is the administrator export.
type SnapshotView struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Accounts    []AccountView  `json:"accounts"`
	Codes       []CodeView     `json:"codes"`
	PointLogs   []PointLogView `json:"point_logs"`
}

func toAccountView(a *entity.Account) AccountView {
	return AccountView{
		ID:        a.ID,
		Email:     a.Email,
		Role:      a.Role.String(),
		Balance:   a.Balance,
		CreatedAt: a.CreatedAt,
	}
}

func toCodeView(c *entity.TransactionCode) CodeView {
	return CodeView{
		Code:       c.Code,
		MerchantID: c.MerchantID,
		Points:     c.Points,
		State:      string(c.State()),
		CreatedAt:  c.CreatedAt,
		UsedAt:     c.UsedAt,
		UsedBy:     c.UsedBy,
	}
}

func toPointLogView(l *entity.PointLog) PointLogView {
	return PointLogView{
		ID:         l.ID,
		AccountID:  l.AccountID,
		MerchantID: l.MerchantID,
		Points:     l.Points,
		Code:       l.Code,
		CreatedAt:  l.CreatedAt,
	}
}

func mapSlice[T, V any](items []T, fn func(T) V) []V {
	out := make([]V, 0, len(items))
	for _, item := range items {
		out = append(out, fn(item))
	}

	return out
}

func toSnapshotView(s *usecase.Snapshot) SnapshotView {
	return SnapshotView{
		GeneratedAt: s.GeneratedAt,
		Accounts:    mapSlice(s.Accounts, toAccountView),
		Codes:       mapSlice(s.Codes, toCodeView),
		PointLogs:   mapSlice(s.PointLogs, toPointLogView),
	}
}

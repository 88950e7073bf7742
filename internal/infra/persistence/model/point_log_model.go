package model

import (
	"time"

	"greenpoints/internal/domain/entity"

	"github.com/google/uuid"
)

// PointLogModel mirrors the append-only 'point_logs' table.
// The unique index on code guarantees at most one log per redeemed code.
type PointLogModel struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement"`
	AccountID  uuid.UUID `gorm:"type:varchar(36);not null;index"`
	MerchantID uuid.UUID `gorm:"type:varchar(36);not null;index"`
	Points     int64     `gorm:"not null"`
	Code       string    `gorm:"type:varchar(16);not null;uniqueIndex"`
	CreatedAt  time.Time
}

// TableName explicitly sets the table name for GORM.
func (PointLogModel) TableName() string {
	return "point_logs"
}

func (m *PointLogModel) ToEntity() *entity.PointLog {
	return &entity.PointLog{
		ID:         m.ID,
		AccountID:  m.AccountID,
		MerchantID: m.MerchantID,
		Points:     m.Points,
		Code:       m.Code,
		CreatedAt:  m.CreatedAt,
	}
}

func FromPointLog(l *entity.PointLog) *PointLogModel {
	return &PointLogModel{
		ID:         l.ID,
		AccountID:  l.AccountID,
		MerchantID: l.MerchantID,
		Points:     l.Points,
		Code:       l.Code,
		CreatedAt:  l.CreatedAt,
	}
}

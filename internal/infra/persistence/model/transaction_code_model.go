package model

import (
	"time"

	"greenpoints/internal/domain/entity"

	"github.com/google/uuid"
)

// TransactionCodeModel mirrors the 'transaction_codes' table. The code itself is the key.
type TransactionCodeModel struct {
	Code       string     `gorm:"type:varchar(16);primaryKey"`
	MerchantID uuid.UUID  `gorm:"type:varchar(36);not null;index"`
	Points     int64      `gorm:"not null"`
	Used       bool       `gorm:"not null;default:false"`
	CreatedAt  time.Time  `gorm:"index"`
	UsedAt     *time.Time
	UsedBy     *uuid.UUID `gorm:"type:varchar(36)"`
}

// TableName explicitly sets the table name for GORM.
func (TransactionCodeModel) TableName() string {
	return "transaction_codes"
}

func (m *TransactionCodeModel) ToEntity() *entity.TransactionCode {
	return &entity.TransactionCode{
		Code:       m.Code,
		MerchantID: m.MerchantID,
		Points:     m.Points,
		Used:       m.Used,
		CreatedAt:  m.CreatedAt,
		UsedAt:     m.UsedAt,
		UsedBy:     m.UsedBy,
	}
}

func FromTransactionCode(c *entity.TransactionCode) *TransactionCodeModel {
	return &TransactionCodeModel{
		Code:       c.Code,
		MerchantID: c.MerchantID,
		Points:     c.Points,
		Used:       c.Used,
		CreatedAt:  c.CreatedAt,
		UsedAt:     c.UsedAt,
		UsedBy:     c.UsedBy,
	}
}

package model

import (
	"time"

	"greenpoints/internal/domain/entity"

	"github.com/google/uuid"
)

// OTPChallengeModel mirrors the 'otp_challenges' table.
type OTPChallengeModel struct {
	ID         uuid.UUID `gorm:"type:varchar(36);primaryKey"`
	Email      string    `gorm:"type:varchar(255);not null;index:idx_otp_challenges_email_used,priority:1"`
	SecretHash string    `gorm:"type:varchar(200);not null"`
	ExpiresAt  time.Time `gorm:"not null"`
	Used       bool      `gorm:"not null;default:false;index:idx_otp_challenges_email_used,priority:2"`
	Attempts   int       `gorm:"not null;default:0"`
	CreatedAt  time.Time
}

// TableName explicitly sets the table name for GORM.
func (OTPChallengeModel) TableName() string {
	return "otp_challenges"
}

func (m *OTPChallengeModel) ToEntity() *entity.OTPChallenge {
	return &entity.OTPChallenge{
		ID:         m.ID,
		Email:      m.Email,
		SecretHash: m.SecretHash,
		ExpiresAt:  m.ExpiresAt,
		Used:       m.Used,
		Attempts:   m.Attempts,
		CreatedAt:  m.CreatedAt,
	}
}

func FromOTPChallenge(c *entity.OTPChallenge) *OTPChallengeModel {
	return &OTPChallengeModel{
		ID:         c.ID,
		Email:      c.Email,
		SecretHash: c.SecretHash,
		ExpiresAt:  c.ExpiresAt,
		Used:       c.Used,
		Attempts:   c.Attempts,
		CreatedAt:  c.CreatedAt,
	}
}

// All lists every model for AutoMigrate.
func All() []any {
	return []any{
		&AccountModel{},
		&TransactionCodeModel{},
		&PointLogModel{},
		&OTPChallengeModel{},
	}
}

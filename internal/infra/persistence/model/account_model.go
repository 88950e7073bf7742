// Package model holds the gorm persistence models and their entity mappers.
package model

import (
	"time"

	"greenpoints/internal/domain/entity"

	"github.com/google/uuid"
)

// AccountModel mirrors the 'accounts' table. IDs are UUIDv7 assigned by the application,
// stored as text so the schema is identical on SQLite and PostgreSQL.
type AccountModel struct {
	ID        uuid.UUID `gorm:"type:varchar(36);primaryKey"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Role      string    `gorm:"type:varchar(20);not null"`
	Balance   int64     `gorm:"not null;default:0;check:chk_accounts_balance,balance >= 0"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (AccountModel) TableName() string {
	return "accounts"
}

// ToEntity maps the row to a domain account.
func (m *AccountModel) ToEntity() *entity.Account {
	return &entity.Account{
		ID:        m.ID,
		Email:     m.Email,
		Role:      entity.Role(m.Role),
		Balance:   m.Balance,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromAccount maps a domain account to a row.
func FromAccount(a *entity.Account) *AccountModel {
	return &AccountModel{
		ID:        a.ID,
		Email:     a.Email,
		Role:      a.Role.String(),
		Balance:   a.Balance,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

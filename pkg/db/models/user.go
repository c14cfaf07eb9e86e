package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmarceau/cartline-backend/pkg/enums"
)

// User represents the canonical identity entity. WalletBalance is a cached
// aggregate of the wallet_transactions ledger and is only written through
// conditional updates inside a transaction.
type User struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email         string          `gorm:"column:email;type:text;not null;uniqueIndex"`
	PasswordHash  string          `gorm:"column:password_hash;not null"`
	FirstName     string          `gorm:"column:first_name;not null"`
	LastName      string          `gorm:"column:last_name;not null"`
	Phone         *string         `gorm:"column:phone"`
	Role          enums.UserRole  `gorm:"column:role;type:user_role;not null;default:'buyer'"`
	WalletBalance decimal.Decimal `gorm:"column:wallet_balance;type:numeric(10,2);not null;default:0"`
	IsActive      bool            `gorm:"column:is_active;not null;default:true"`
	LastLoginAt   *time.Time      `gorm:"column:last_login_at"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

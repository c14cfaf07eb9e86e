package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmarceau/cartline-backend/pkg/enums"
)

// WalletTransaction is one entry in the append-only wallet ledger. Amount is
// signed; BalanceAfter snapshots the cached user balance after the entry.
type WalletTransaction struct {
	ID           uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID       uuid.UUID            `gorm:"column:user_id;type:uuid;not null;index"`
	EntryType    enums.WalletEntryType `gorm:"column:entry_type;type:wallet_entry_type;not null"`
	Amount       decimal.Decimal      `gorm:"column:amount;type:numeric(10,2);not null"`
	BalanceAfter decimal.Decimal      `gorm:"column:balance_after;type:numeric(10,2);not null"`
	OrderID      *uuid.UUID           `gorm:"column:order_id;type:uuid"`
	RefundID     *uuid.UUID           `gorm:"column:refund_id;type:uuid"`
	Note         *string              `gorm:"column:note"`
	CreatedAt    time.Time            `gorm:"column:created_at;autoCreateTime"`
}

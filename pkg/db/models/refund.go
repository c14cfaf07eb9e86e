package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmarceau/cartline-backend/pkg/enums"
)

// Refund records one seller-scoped refund against an order. The amount is the
// sum of the seller's refunded item lines and is credited to the buyer wallet
// in the same transaction that creates the row.
type Refund struct {
	ID          uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID     uuid.UUID          `gorm:"column:order_id;type:uuid;not null;index"`
	SellerID    uuid.UUID          `gorm:"column:seller_id;type:uuid;not null;index"`
	BuyerID     uuid.UUID          `gorm:"column:buyer_id;type:uuid;not null;index"`
	Amount      decimal.Decimal    `gorm:"column:amount;type:numeric(10,2);not null"`
	Reason      *string            `gorm:"column:reason"`
	Notes       *string            `gorm:"column:notes"`
	Status      enums.RefundStatus `gorm:"column:status;type:refund_status;not null;default:'processed'"`
	ProcessedAt *time.Time         `gorm:"column:processed_at"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

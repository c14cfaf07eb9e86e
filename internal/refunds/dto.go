package refunds

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmarceau/cartline-backend/pkg/db/models"
	"github.com/dmarceau/cartline-backend/pkg/enums"
)

// RefundDTO is the transport shape of a refund record.
type RefundDTO struct {
	ID          uuid.UUID          `json:"id"`
	OrderID     uuid.UUID          `json:"order_id"`
	SellerID    uuid.UUID          `json:"seller_id"`
	BuyerID     uuid.UUID          `json:"buyer_id"`
	Amount      decimal.Decimal    `json:"amount"`
	Reason      *string            `json:"reason,omitempty"`
	Notes       *string            `json:"notes,omitempty"`
	Status      enums.RefundStatus `json:"status"`
	ProcessedAt *time.Time         `json:"processed_at,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
}

// RefundList wraps a page of refunds plus the next cursor.
type RefundList struct {
	Refunds    []RefundDTO `json:"refunds"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

// RefundItemsInput captures a seller's cancellation request for their share
// of an order.
type RefundItemsInput struct {
	OrderID uuid.UUID
	Reason  *string
	Notes   *string
}

func refundFromModel(m *models.Refund) RefundDTO {
	return RefundDTO{
		ID:          m.ID,
		OrderID:     m.OrderID,
		SellerID:    m.SellerID,
		BuyerID:     m.BuyerID,
		Amount:      m.Amount,
		Reason:      m.Reason,
		Notes:       m.Notes,
		Status:      m.Status,
		ProcessedAt: m.ProcessedAt,
		CreatedAt:   m.CreatedAt,
	}
}

package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmarceau/cartline-backend/pkg/db/models"
	"github.com/dmarceau/cartline-backend/pkg/enums"
)

// ItemDTO is the immutable product snapshot carried by an order line.
type ItemDTO struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   *uuid.UUID      `json:"product_id,omitempty"`
	SellerID    uuid.UUID       `json:"seller_id"`
	ProductName string          `json:"product_name"`
	ProductSKU  string          `json:"product_sku"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"line_total"`
	IsRefunded  bool            `json:"is_refunded"`
}

// HistoryDTO is one entry of the append-only status audit trail.
type HistoryDTO struct {
	ID         uuid.UUID          `json:"id"`
	FromStatus *enums.OrderStatus `json:"from_status,omitempty"`
	ToStatus   enums.OrderStatus  `json:"to_status"`
	ChangedBy  *uuid.UUID         `json:"changed_by,omitempty"`
	Note       *string            `json:"note,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
}

// OrderDTO is the transport shape of an order.
type OrderDTO struct {
	ID              uuid.UUID           `json:"id"`
	OrderNumber     string              `json:"order_number"`
	UserID          uuid.UUID           `json:"user_id"`
	Status          enums.OrderStatus   `json:"status"`
	PaymentMethod   enums.PaymentMethod `json:"payment_method"`
	PaymentStatus   enums.PaymentStatus `json:"payment_status"`
	Subtotal        decimal.Decimal     `json:"subtotal"`
	Tax             decimal.Decimal     `json:"tax"`
	ShippingCost    decimal.Decimal     `json:"shipping_cost"`
	Total           decimal.Decimal     `json:"total"`
	ShippingAddress string              `json:"shipping_address"`
	Notes           *string             `json:"notes,omitempty"`
	ShippedAt       *time.Time          `json:"shipped_at,omitempty"`
	DeliveredAt     *time.Time          `json:"delivered_at,omitempty"`
	Items           []ItemDTO           `json:"items"`
	StatusHistory   []HistoryDTO        `json:"status_history,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
}

// OrderList wraps a page of orders plus the next cursor.
type OrderList struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// PlaceOrderInput captures the checkout request for the buyer's cart.
type PlaceOrderInput struct {
	ShippingAddress string
	PaymentMethod   enums.PaymentMethod
	Notes           *string
}

// UpdateStatusInput captures a requested status transition.
type UpdateStatusInput struct {
	Status enums.OrderStatus
	Note   *string
}

func orderFromModel(m *models.Order) OrderDTO {
	dto := OrderDTO{
		ID:              m.ID,
		OrderNumber:     m.OrderNumber,
		UserID:          m.UserID,
		Status:          m.Status,
		PaymentMethod:   m.PaymentMethod,
		PaymentStatus:   m.PaymentStatus,
		Subtotal:        m.Subtotal,
		Tax:             m.Tax,
		ShippingCost:    m.ShippingCost,
		Total:           m.Total,
		ShippingAddress: m.ShippingAddress,
		Notes:           m.Notes,
		ShippedAt:       m.ShippedAt,
		DeliveredAt:     m.DeliveredAt,
		Items:           make([]ItemDTO, 0, len(m.Items)),
		CreatedAt:       m.CreatedAt,
	}
	for i := range m.Items {
		dto.Items = append(dto.Items, itemFromModel(&m.Items[i]))
	}
	for i := range m.StatusHistory {
		dto.StatusHistory = append(dto.StatusHistory, historyFromModel(&m.StatusHistory[i]))
	}
	return dto
}

func itemFromModel(m *models.OrderItem) ItemDTO {
	return ItemDTO{
		ID:          m.ID,
		ProductID:   m.ProductID,
		SellerID:    m.SellerID,
		ProductName: m.ProductName,
		ProductSKU:  m.ProductSKU,
		UnitPrice:   m.UnitPrice,
		Quantity:    m.Quantity,
		LineTotal:   m.LineTotal,
		IsRefunded:  m.IsRefunded,
	}
}

func historyFromModel(m *models.OrderStatusHistory) HistoryDTO {
	return HistoryDTO{
		ID:         m.ID,
		FromStatus: m.FromStatus,
		ToStatus:   m.ToStatus,
		ChangedBy:  m.ChangedBy,
		Note:       m.Note,
		CreatedAt:  m.CreatedAt,
	}
}

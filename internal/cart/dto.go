package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmarceau/cartline-backend/pkg/db/models"
)

// ItemDTO is a cart line joined with its live product data.
type ItemDTO struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	ProductSKU  string          `json:"product_sku"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"line_total"`
	InStock     bool            `json:"in_stock"`
	IsActive    bool            `json:"is_active"`
}

// CartDTO is the transport shape of a buyer's cart. Totals are computed
// from live product prices at read time.
type CartDTO struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	Items     []ItemDTO       `json:"items"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	ItemCount int             `json:"item_count"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// AddItemInput captures a request to add a product to the cart.
type AddItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// UpdateItemInput captures a quantity change for an existing line.
type UpdateItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

func cartFromModel(m *models.Cart) CartDTO {
	dto := CartDTO{
		ID:        m.ID,
		UserID:    m.UserID,
		Items:     make([]ItemDTO, 0, len(m.Items)),
		Subtotal:  decimal.Zero,
		UpdatedAt: m.UpdatedAt,
	}
	for i := range m.Items {
		item := itemFromModel(&m.Items[i])
		dto.Items = append(dto.Items, item)
		dto.Subtotal = dto.Subtotal.Add(item.LineTotal)
		dto.ItemCount += item.Quantity
	}
	return dto
}

func itemFromModel(m *models.CartItem) ItemDTO {
	dto := ItemDTO{
		ID:        m.ID,
		ProductID: m.ProductID,
		Quantity:  m.Quantity,
		LineTotal: decimal.Zero,
	}
	if m.Product != nil {
		dto.ProductName = m.Product.Name
		dto.ProductSKU = m.Product.SKU
		dto.UnitPrice = m.Product.Price
		dto.LineTotal = m.Product.Price.Mul(decimal.NewFromInt(int64(m.Quantity)))
		dto.InStock = m.Product.Stock >= m.Quantity
		dto.IsActive = m.Product.IsActive
	}
	return dto
}

package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dmarceau/cartline-backend/pkg/db/models"
	"github.com/dmarceau/cartline-backend/pkg/enums"
	"github.com/dmarceau/cartline-backend/pkg/pagination"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  order_number TEXT NOT NULL UNIQUE,
  user_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  payment_method TEXT NOT NULL,
  payment_status TEXT NOT NULL DEFAULT 'pending',
  subtotal TEXT NOT NULL,
  tax TEXT NOT NULL,
  shipping_cost TEXT NOT NULL DEFAULT '0',
  total TEXT NOT NULL,
  shipping_address TEXT NOT NULL,
  notes TEXT,
  shipped_at DATETIME,
  delivered_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	orderItems := `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT,
  seller_id TEXT NOT NULL,
  product_name TEXT NOT NULL,
  product_sku TEXT NOT NULL,
  unit_price TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  line_total TEXT NOT NULL,
  is_refunded INTEGER NOT NULL DEFAULT 0,
  refunded_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	history := `
CREATE TABLE IF NOT EXISTS order_status_histories (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  from_status TEXT,
  to_status TEXT NOT NULL,
  changed_by TEXT,
  note TEXT,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(orderItems).Error)
	require.NoError(t, db.Exec(history).Error)
	return db
}

func seedOrder(t *testing.T, db *gorm.DB, userID, sellerID uuid.UUID, number string, status enums.OrderStatus, created time.Time) *models.Order {
	t.Helper()

	order := &models.Order{
		ID:              uuid.New(),
		OrderNumber:     number,
		UserID:          userID,
		Status:          status,
		PaymentMethod:   enums.PaymentMethodCard,
		PaymentStatus:   enums.PaymentStatusPending,
		Subtotal:        decimal.RequireFromString("50.00"),
		Tax:             decimal.RequireFromString("5.00"),
		ShippingCost:    decimal.Zero,
		Total:           decimal.RequireFromString("55.00"),
		ShippingAddress: "12 Main St",
		CreatedAt:       created,
		UpdatedAt:       created,
	}
	require.NoError(t, db.Create(order).Error)

	item := &models.OrderItem{
		ID:          uuid.New(),
		OrderID:     order.ID,
		SellerID:    sellerID,
		ProductName: "Test Product",
		ProductSKU:  "PRD-20260110-AAAAA",
		UnitPrice:   decimal.RequireFromString("25.00"),
		Quantity:    2,
		LineTotal:   decimal.RequireFromString("50.00"),
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	require.NoError(t, db.Create(item).Error)
	return order
}

func TestRepositoryListByUserPagination(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	buyer := uuid.New()
	seller := uuid.New()
	now := time.Now().UTC()
	seedOrder(t, db, buyer, seller, "ORD-AAAAAAAAAAAA", enums.OrderStatusPending, now.Add(-time.Hour))
	newest := seedOrder(t, db, buyer, seller, "ORD-BBBBBBBBBBBB", enums.OrderStatusPending, now)
	seedOrder(t, db, uuid.New(), seller, "ORD-CCCCCCCCCCCC", enums.OrderStatusPending, now)

	list, err := repo.ListByUser(context.Background(), buyer, pagination.Params{Limit: 1}, nil)
	require.NoError(t, err)
	require.Len(t, list.Orders, 1)
	assert.Equal(t, newest.OrderNumber, list.Orders[0].OrderNumber)
	assert.NotEmpty(t, list.NextCursor)

	second, err := repo.ListByUser(context.Background(), buyer, pagination.Params{Limit: 1, Cursor: list.NextCursor}, nil)
	require.NoError(t, err)
	require.Len(t, second.Orders, 1)
	assert.Equal(t, "ORD-AAAAAAAAAAAA", second.Orders[0].OrderNumber)
	assert.Empty(t, second.NextCursor)
}

func TestRepositoryListByUserStatusFilter(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	buyer := uuid.New()
	seller := uuid.New()
	now := time.Now().UTC()
	seedOrder(t, db, buyer, seller, "ORD-DDDDDDDDDDDD", enums.OrderStatusPending, now.Add(-time.Minute))
	shipped := seedOrder(t, db, buyer, seller, "ORD-EEEEEEEEEEEE", enums.OrderStatusShipped, now)

	status := enums.OrderStatusShipped
	list, err := repo.ListByUser(context.Background(), buyer, pagination.Params{Limit: 10}, &status)
	require.NoError(t, err)
	require.Len(t, list.Orders, 1)
	assert.Equal(t, shipped.OrderNumber, list.Orders[0].OrderNumber)
}

func TestRepositoryListBySeller(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	sellerA := uuid.New()
	sellerB := uuid.New()
	now := time.Now().UTC()
	mine := seedOrder(t, db, uuid.New(), sellerA, "ORD-FFFFFFFFFFFF", enums.OrderStatusPending, now)
	seedOrder(t, db, uuid.New(), sellerB, "ORD-GGGGGGGGGGGG", enums.OrderStatusPending, now)

	list, err := repo.ListBySeller(context.Background(), sellerA, pagination.Params{Limit: 10}, nil)
	require.NoError(t, err)
	require.Len(t, list.Orders, 1)
	assert.Equal(t, mine.OrderNumber, list.Orders[0].OrderNumber)
}

func TestRepositoryStatusHistoryRoundTrip(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	buyer := uuid.New()
	order := seedOrder(t, db, buyer, uuid.New(), "ORD-HHHHHHHHHHHH", enums.OrderStatusPending, time.Now().UTC())

	require.NoError(t, repo.AppendStatusHistory(context.Background(), &models.OrderStatusHistory{
		ID:       uuid.New(),
		OrderID:  order.ID,
		ToStatus: enums.OrderStatusPending,
	}))
	from := enums.OrderStatusPending
	require.NoError(t, repo.AppendStatusHistory(context.Background(), &models.OrderStatusHistory{
		ID:         uuid.New(),
		OrderID:    order.ID,
		FromStatus: &from,
		ToStatus:   enums.OrderStatusProcessing,
	}))

	loaded, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.Len(t, loaded.StatusHistory, 2)
	assert.Nil(t, loaded.StatusHistory[0].FromStatus)
	assert.Equal(t, enums.OrderStatusProcessing, loaded.StatusHistory[1].ToStatus)
	require.Len(t, loaded.Items, 1)
}

func TestRepositoryRefundBookkeeping(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	seller := uuid.New()
	order := seedOrder(t, db, uuid.New(), seller, "ORD-JJJJJJJJJJJJ", enums.OrderStatusProcessing, time.Now().UTC())

	items, err := repo.UnrefundedItemsBySeller(context.Background(), order.ID, seller)
	require.NoError(t, err)
	require.Len(t, items, 1)

	require.NoError(t, repo.MarkItemsRefunded(context.Background(), []uuid.UUID{items[0].ID}))

	var refunded models.OrderItem
	require.NoError(t, db.First(&refunded, "id = ?", items[0].ID).Error)
	assert.True(t, refunded.IsRefunded)
	require.NotNil(t, refunded.RefundedAt)
	assert.WithinDuration(t, time.Now().UTC(), *refunded.RefundedAt, time.Minute)

	items, err = repo.UnrefundedItemsBySeller(context.Background(), order.ID, seller)
	require.NoError(t, err)
	assert.Empty(t, items)

	count, err := repo.CountUnrefundedItems(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	has, err := repo.SellerHasItems(context.Background(), order.ID, seller)
	require.NoError(t, err)
	assert.True(t, has)
}

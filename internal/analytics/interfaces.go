package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmarceau/cartline-backend/pkg/db/models"
)

// ProductViewCount pairs a product with its impression count over a window.
type ProductViewCount struct {
	ProductID uuid.UUID
	Views     int64
}

// SearchCount pairs a normalized query string with its frequency.
type SearchCount struct {
	Query    string
	Searches int64
}

// DailySellerSales is one seller's aggregate for a single day, produced by
// the rollup query over order items.
type DailySellerSales struct {
	SellerID    uuid.UUID
	OrdersCount int
	UnitsSold   int
	Revenue     string
}

// Repository exposes persistence operations for analytics events and rollups.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateProductView(ctx context.Context, view *models.ProductView) error
	CreateSearchQuery(ctx context.Context, query *models.SearchQuery) error

	TopProducts(ctx context.Context, since time.Time, limit int) ([]ProductViewCount, error)
	TopSearches(ctx context.Context, since time.Time, limit int) ([]SearchCount, error)

	// AggregateDailySales computes per-seller totals for orders placed within
	// the given day, excluding cancelled orders and refunded items.
	AggregateDailySales(ctx context.Context, dayStart, dayEnd time.Time) ([]DailySellerSales, error)
	UpsertSalesMetric(ctx context.Context, metric *models.SalesMetric) error
	ListSalesMetrics(ctx context.Context, sellerID uuid.UUID, from, to time.Time) ([]models.SalesMetric, error)

	DeleteProductViewsBefore(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteSearchQueriesBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

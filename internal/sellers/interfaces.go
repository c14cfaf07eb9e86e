package sellers

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dmarceau/cartline-backend/pkg/db/models"
	"github.com/dmarceau/cartline-backend/pkg/pagination"
)

// SalesTotals aggregates a seller's lifetime sales from non-refunded order
// items, excluding cancelled orders.
type SalesTotals struct {
	Revenue     decimal.Decimal
	OrdersCount int64
	UnitsSold   int64
}

// PayoutTotals aggregates a seller's payout requests by state.
type PayoutTotals struct {
	Pending   decimal.Decimal
	Completed decimal.Decimal
}

// Repository exposes persistence operations for seller profiles and payouts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateProfile(ctx context.Context, profile *models.SellerProfile) (*models.SellerProfile, error)
	FindProfileByUserID(ctx context.Context, userID uuid.UUID) (*models.SellerProfile, error)
	FindProfileBySlug(ctx context.Context, slug string) (*models.SellerProfile, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, updates map[string]any) error

	SalesTotals(ctx context.Context, sellerID uuid.UUID) (*SalesTotals, error)
	PayoutTotals(ctx context.Context, sellerID uuid.UUID) (*PayoutTotals, error)
	CreatePayout(ctx context.Context, payout *models.SellerPayout) (*models.SellerPayout, error)
	ListPayouts(ctx context.Context, sellerID uuid.UUID, params pagination.Params) (*PayoutList, error)
}

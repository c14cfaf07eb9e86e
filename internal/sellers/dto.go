package sellers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmarceau/cartline-backend/internal/catalog"
	"github.com/dmarceau/cartline-backend/pkg/db/models"
	"github.com/dmarceau/cartline-backend/pkg/enums"
)

// ProfileDTO is the transport shape of a seller storefront profile.
type ProfileDTO struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	StoreName   string    `json:"store_name"`
	StoreSlug   string    `json:"store_slug"`
	Description *string   `json:"description,omitempty"`
	LogoURL     *string   `json:"logo_url,omitempty"`
	IsVerified  bool      `json:"is_verified"`
	CreatedAt   time.Time `json:"created_at"`
}

// StorefrontDTO is the public view of a seller: profile plus active listings.
type StorefrontDTO struct {
	Profile  ProfileDTO          `json:"profile"`
	Products catalog.ProductList `json:"products"`
}

// DashboardDTO aggregates a seller's sales and payout position.
type DashboardDTO struct {
	Revenue          decimal.Decimal `json:"revenue"`
	OrdersCount      int64           `json:"orders_count"`
	UnitsSold        int64           `json:"units_sold"`
	PendingPayouts   decimal.Decimal `json:"pending_payouts"`
	CompletedPayouts decimal.Decimal `json:"completed_payouts"`
	Available        decimal.Decimal `json:"available"`
}

// PayoutDTO is the transport shape of one payout request.
type PayoutDTO struct {
	ID          uuid.UUID          `json:"id"`
	SellerID    uuid.UUID          `json:"seller_id"`
	Amount      decimal.Decimal    `json:"amount"`
	Status      enums.PayoutStatus `json:"status"`
	Notes       *string            `json:"notes,omitempty"`
	ProcessedAt *time.Time         `json:"processed_at,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
}

// PayoutList wraps a page of payouts plus the next cursor.
type PayoutList struct {
	Payouts    []PayoutDTO `json:"payouts"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

// CreateProfileInput captures a seller's storefront registration.
type CreateProfileInput struct {
	StoreName   string
	StoreSlug   string
	Description *string
	LogoURL     *string
}

// UpdateProfileInput captures the mutable storefront fields.
type UpdateProfileInput struct {
	StoreName   *string
	Description *string
	LogoURL     *string
}

// RequestPayoutInput captures a withdrawal request.
type RequestPayoutInput struct {
	Amount decimal.Decimal
	Notes  *string
}

func profileFromModel(m *models.SellerProfile) ProfileDTO {
	return ProfileDTO{
		ID:          m.ID,
		UserID:      m.UserID,
		StoreName:   m.StoreName,
		StoreSlug:   m.StoreSlug,
		Description: m.Description,
		LogoURL:     m.LogoURL,
		IsVerified:  m.IsVerified,
		CreatedAt:   m.CreatedAt,
	}
}

func payoutFromModel(m *models.SellerPayout) PayoutDTO {
	return PayoutDTO{
		ID:          m.ID,
		SellerID:    m.SellerID,
		Amount:      m.Amount,
		Status:      m.Status,
		Notes:       m.Notes,
		ProcessedAt: m.ProcessedAt,
		CreatedAt:   m.CreatedAt,
	}
}

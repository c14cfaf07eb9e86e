package refunds

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmarceau/cartline-backend/pkg/db/models"
	"github.com/dmarceau/cartline-backend/pkg/pagination"
)

// Repository exposes persistence operations for refund records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, refund *models.Refund) (*models.Refund, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID, params pagination.Params) (*RefundList, error)
	ListByBuyer(ctx context.Context, buyerID uuid.UUID, params pagination.Params) (*RefundList, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Refund, error)
}

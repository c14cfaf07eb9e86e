package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmarceau/cartline-backend/pkg/db/models"
	"github.com/dmarceau/cartline-backend/pkg/enums"
	"github.com/dmarceau/cartline-backend/pkg/pagination"
)

// Repository exposes persistence operations for orders and their audit trail.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	// FindByIDForUpdate locks the order row until the enclosing transaction
	// commits. Callers must be inside WithTx.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params, status *enums.OrderStatus) (*OrderList, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID, params pagination.Params, status *enums.OrderStatus) (*OrderList, error)
	SellerHasItems(ctx context.Context, orderID, sellerID uuid.UUID) (bool, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, updates map[string]any) error
	AppendStatusHistory(ctx context.Context, entry *models.OrderStatusHistory) error
	MarkItemsRefunded(ctx context.Context, itemIDs []uuid.UUID) error
	UnrefundedItemsBySeller(ctx context.Context, orderID, sellerID uuid.UUID) ([]models.OrderItem, error)
	CountUnrefundedItems(ctx context.Context, orderID uuid.UUID) (int64, error)
}

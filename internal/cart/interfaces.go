package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmarceau/cartline-backend/pkg/db/models"
)

// Repository exposes persistence operations for buyer carts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	// FindOrCreateByUser returns the buyer's cart, creating an empty one on
	// first use. Items are preloaded with their products.
	FindOrCreateByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	FindItem(ctx context.Context, cartID, productID uuid.UUID) (*models.CartItem, error)
	CreateItem(ctx context.Context, item *models.CartItem) error
	UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error
	DeleteItem(ctx context.Context, itemID uuid.UUID) error
	ClearItems(ctx context.Context, cartID uuid.UUID) error
}

package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmarceau/cartline-backend/pkg/db/models"
	"github.com/dmarceau/cartline-backend/pkg/pagination"
)

// Repository defines persistence operations for the catalog tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error)
	FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
	// FindProductsByIDsForUpdate locks the matched rows until the enclosing
	// transaction commits. Callers must be inside WithTx.
	FindProductsByIDsForUpdate(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, updates map[string]any) error
	SearchProducts(ctx context.Context, params pagination.Params, filters SearchFilters) (*ProductList, error)
	ListProductsBySeller(ctx context.Context, sellerID uuid.UUID, params pagination.Params, includeInactive bool) (*ProductList, error)
	// DecrementStockClamped subtracts qty from stock, flooring at zero.
	DecrementStockClamped(ctx context.Context, productID uuid.UUID, qty int) error
	RestoreStock(ctx context.Context, productID uuid.UUID, qty int) error

	CreateCategory(ctx context.Context, category *models.Category) (*models.Category, error)
	FindCategoryByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	FindCategoryBySlug(ctx context.Context, slug string) (*models.Category, error)
	ListCategories(ctx context.Context, includeInactive bool) ([]models.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, updates map[string]any) error

	CreateReview(ctx context.Context, review *models.ProductReview) (*models.ProductReview, error)
	ListReviewsByProduct(ctx context.Context, productID uuid.UUID, params pagination.Params) (*ReviewList, error)
	RatingSummary(ctx context.Context, productID uuid.UUID) (*RatingSummaryDTO, error)
	HasPurchased(ctx context.Context, userID, productID uuid.UUID) (bool, error)
}

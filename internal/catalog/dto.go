package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmarceau/cartline-backend/pkg/db/models"
)

// ProductDTO is the transport shape of a catalog listing.
type ProductDTO struct {
	ID          uuid.UUID       `json:"id"`
	SellerID    uuid.UUID       `json:"seller_id"`
	CategoryID  *uuid.UUID      `json:"category_id,omitempty"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Tags        []string        `json:"tags"`
	ImageURL    *string         `json:"image_url,omitempty"`
	IsActive    bool            `json:"is_active"`
	Category    *CategoryDTO    `json:"category,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ProductList wraps a page of products plus the next cursor.
type ProductList struct {
	Products   []ProductDTO `json:"products"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

// CategoryDTO is the transport shape of a catalog category.
type CategoryDTO struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Description *string    `json:"description,omitempty"`
	ParentID    *uuid.UUID `json:"parent_id,omitempty"`
	IsActive    bool       `json:"is_active"`
}

// ReviewDTO is the transport shape of a product review.
type ReviewDTO struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	UserID    uuid.UUID `json:"user_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// ReviewList wraps paginated reviews plus the next cursor.
type ReviewList struct {
	Reviews    []ReviewDTO `json:"reviews"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

// RatingSummaryDTO reports the aggregate rating for a product.
type RatingSummaryDTO struct {
	Average decimal.Decimal `json:"average"`
	Count   int64           `json:"count"`
}

// CreateProductInput captures the fields a seller submits for a new listing.
type CreateProductInput struct {
	CategoryID  *uuid.UUID
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	Tags        []string
	ImageURL    *string
}

// UpdateProductInput captures the mutable listing fields.
type UpdateProductInput struct {
	CategoryID  *uuid.UUID
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Stock       *int
	Tags        []string
	ImageURL    *string
	IsActive    *bool
}

// SearchFilters describe the inputs supported by the product search.
type SearchFilters struct {
	Query      string
	CategoryID *uuid.UUID
	SellerID   *uuid.UUID
	Tag        string
	PriceMin   *decimal.Decimal
	PriceMax   *decimal.Decimal
}

// CreateCategoryInput captures the fields for a new category.
type CreateCategoryInput struct {
	Name        string
	Slug        string
	Description *string
	ParentID    *uuid.UUID
}

// UpdateCategoryInput captures the mutable category fields.
type UpdateCategoryInput struct {
	Name        *string
	Description *string
	IsActive    *bool
}

// CreateReviewInput captures a buyer's review submission.
type CreateReviewInput struct {
	Rating  int
	Comment string
}

func productFromModel(m *models.Product) ProductDTO {
	dto := ProductDTO{
		ID:          m.ID,
		SellerID:    m.SellerID,
		CategoryID:  m.CategoryID,
		SKU:         m.SKU,
		Name:        m.Name,
		Description: m.Description,
		Price:       m.Price,
		Stock:       m.Stock,
		Tags:        append([]string(nil), m.Tags...),
		ImageURL:    m.ImageURL,
		IsActive:    m.IsActive,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	if m.Category != nil {
		category := categoryFromModel(m.Category)
		dto.Category = &category
	}
	return dto
}

func categoryFromModel(m *models.Category) CategoryDTO {
	return CategoryDTO{
		ID:          m.ID,
		Name:        m.Name,
		Slug:        m.Slug,
		Description: m.Description,
		ParentID:    m.ParentID,
		IsActive:    m.IsActive,
	}
}

func reviewFromModel(m *models.ProductReview) ReviewDTO {
	return ReviewDTO{
		ID:        m.ID,
		ProductID: m.ProductID,
		UserID:    m.UserID,
		Rating:    m.Rating,
		Comment:   m.Comment,
		CreatedAt: m.CreatedAt,
	}
}

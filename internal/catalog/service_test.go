package catalog

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dmarceau/cartline-backend/pkg/db/models"
	"github.com/dmarceau/cartline-backend/pkg/enums"
	pkgerrors "github.com/dmarceau/cartline-backend/pkg/errors"
	"github.com/dmarceau/cartline-backend/pkg/pagination"
)

type stubCatalogRepo struct {
	products      map[uuid.UUID]*models.Product
	categories    map[uuid.UUID]*models.Category
	reviews       []*models.ProductReview
	purchased     map[uuid.UUID]bool
	createErr     error
	createErrOnce bool
	updates       map[string]any
}

func newStubCatalogRepo() *stubCatalogRepo {
	return &stubCatalogRepo{
		products:   make(map[uuid.UUID]*models.Product),
		categories: make(map[uuid.UUID]*models.Category),
		purchased:  make(map[uuid.UUID]bool),
	}
}

func (s *stubCatalogRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubCatalogRepo) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if s.createErr != nil {
		err := s.createErr
		if s.createErrOnce {
			s.createErr = nil
		}
		return nil, err
	}
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	s.products[product.ID] = product
	return product, nil
}

func (s *stubCatalogRepo) FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, ok := s.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return product, nil
}

func (s *stubCatalogRepo) FindProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	var out []models.Product
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *stubCatalogRepo) FindProductsByIDsForUpdate(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	return s.FindProductsByIDs(ctx, ids)
}

func (s *stubCatalogRepo) UpdateProduct(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	s.updates = updates
	if product, ok := s.products[id]; ok {
		if active, exists := updates["is_active"]; exists {
			product.IsActive = active.(bool)
		}
	}
	return nil
}

func (s *stubCatalogRepo) SearchProducts(ctx context.Context, params pagination.Params, filters SearchFilters) (*ProductList, error) {
	list := &ProductList{}
	for _, p := range s.products {
		if !p.IsActive {
			continue
		}
		if q := strings.ToLower(filters.Query); q != "" && !strings.Contains(strings.ToLower(p.Name), q) {
			continue
		}
		list.Products = append(list.Products, productFromModel(p))
	}
	return list, nil
}

func (s *stubCatalogRepo) ListProductsBySeller(ctx context.Context, sellerID uuid.UUID, params pagination.Params, includeInactive bool) (*ProductList, error) {
	list := &ProductList{}
	for _, p := range s.products {
		if p.SellerID != sellerID {
			continue
		}
		if !includeInactive && !p.IsActive {
			continue
		}
		list.Products = append(list.Products, productFromModel(p))
	}
	return list, nil
}

func (s *stubCatalogRepo) DecrementStockClamped(ctx context.Context, productID uuid.UUID, qty int) error {
	if p, ok := s.products[productID]; ok {
		p.Stock -= qty
		if p.Stock < 0 {
			p.Stock = 0
		}
	}
	return nil
}

func (s *stubCatalogRepo) RestoreStock(ctx context.Context, productID uuid.UUID, qty int) error {
	if p, ok := s.products[productID]; ok {
		p.Stock += qty
	}
	return nil
}

func (s *stubCatalogRepo) CreateCategory(ctx context.Context, category *models.Category) (*models.Category, error) {
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	s.categories[category.ID] = category
	return category, nil
}

func (s *stubCatalogRepo) FindCategoryByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	category, ok := s.categories[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return category, nil
}

func (s *stubCatalogRepo) FindCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	for _, c := range s.categories {
		if c.Slug == slug {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCatalogRepo) ListCategories(ctx context.Context, includeInactive bool) ([]models.Category, error) {
	var out []models.Category
	for _, c := range s.categories {
		if !includeInactive && !c.IsActive {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (s *stubCatalogRepo) UpdateCategory(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	s.updates = updates
	return nil
}

func (s *stubCatalogRepo) CreateReview(ctx context.Context, review *models.ProductReview) (*models.ProductReview, error) {
	for _, existing := range s.reviews {
		if existing.ProductID == review.ProductID && existing.UserID == review.UserID {
			return nil, fmt.Errorf("duplicate key value violates unique constraint \"idx_reviews_product_user\"")
		}
	}
	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}
	s.reviews = append(s.reviews, review)
	return review, nil
}

func (s *stubCatalogRepo) ListReviewsByProduct(ctx context.Context, productID uuid.UUID, params pagination.Params) (*ReviewList, error) {
	list := &ReviewList{}
	for _, r := range s.reviews {
		if r.ProductID == productID {
			list.Reviews = append(list.Reviews, reviewFromModel(r))
		}
	}
	return list, nil
}

func (s *stubCatalogRepo) RatingSummary(ctx context.Context, productID uuid.UUID) (*RatingSummaryDTO, error) {
	return &RatingSummaryDTO{}, nil
}

func (s *stubCatalogRepo) HasPurchased(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	return s.purchased[userID], nil
}

func TestCreateProductGeneratesSKU(t *testing.T) {
	repo := newStubCatalogRepo()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	sellerID := uuid.New()
	product, err := svc.CreateProduct(context.Background(), sellerID, CreateProductInput{
		Name:  "Walnut Desk Organizer",
		Price: decimal.RequireFromString("34.99"),
		Stock: 12,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	if !strings.HasPrefix(product.SKU, "PRD-") {
		t.Fatalf("unexpected sku %q", product.SKU)
	}
	if product.SellerID != sellerID {
		t.Fatalf("seller not set")
	}
	if !product.IsActive {
		t.Fatal("new products must start active")
	}
}

func TestCreateProductRetriesOnSKUCollision(t *testing.T) {
	repo := newStubCatalogRepo()
	repo.createErr = fmt.Errorf("duplicate key value violates unique constraint \"idx_products_sku\"")
	repo.createErrOnce = true
	svc, _ := NewService(repo)

	product, err := svc.CreateProduct(context.Background(), uuid.New(), CreateProductInput{
		Name:  "Ceramic Mug",
		Price: decimal.NewFromInt(14),
		Stock: 3,
	})
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if product == nil {
		t.Fatal("expected product after retry")
	}
}

func TestCreateProductValidation(t *testing.T) {
	repo := newStubCatalogRepo()
	svc, _ := NewService(repo)

	_, err := svc.CreateProduct(context.Background(), uuid.New(), CreateProductInput{
		Name:  "  ",
		Price: decimal.NewFromInt(5),
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	_, err = svc.CreateProduct(context.Background(), uuid.New(), CreateProductInput{
		Name:  "Negative",
		Price: decimal.NewFromInt(-1),
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for price, got %v", err)
	}
}

func TestUpdateProductOwnershipEnforced(t *testing.T) {
	repo := newStubCatalogRepo()
	svc, _ := NewService(repo)

	owner := uuid.New()
	stranger := uuid.New()
	product := &models.Product{ID: uuid.New(), SellerID: owner, Name: "Lamp", IsActive: true}
	repo.products[product.ID] = product

	name := "Updated Lamp"
	_, err := svc.UpdateProduct(context.Background(), stranger, enums.UserRoleSeller, product.ID, UpdateProductInput{Name: &name})
	if !pkgerrors.HasCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	if _, err := svc.UpdateProduct(context.Background(), stranger, enums.UserRoleAdmin, product.ID, UpdateProductInput{Name: &name}); err != nil {
		t.Fatalf("admin should bypass ownership, got %v", err)
	}
}

func TestDeactivateProduct(t *testing.T) {
	repo := newStubCatalogRepo()
	svc, _ := NewService(repo)

	owner := uuid.New()
	product := &models.Product{ID: uuid.New(), SellerID: owner, Name: "Chair", IsActive: true}
	repo.products[product.ID] = product

	if err := svc.DeactivateProduct(context.Background(), owner, enums.UserRoleSeller, product.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if product.IsActive {
		t.Fatal("expected product deactivated")
	}
}

func TestAddReviewRequiresPurchase(t *testing.T) {
	repo := newStubCatalogRepo()
	svc, _ := NewService(repo)

	buyer := uuid.New()
	product := &models.Product{ID: uuid.New(), SellerID: uuid.New(), Name: "Desk", IsActive: true}
	repo.products[product.ID] = product

	_, err := svc.AddReview(context.Background(), buyer, product.ID, CreateReviewInput{Rating: 5})
	if !pkgerrors.HasCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden for non-buyer, got %v", err)
	}

	repo.purchased[buyer] = true
	review, err := svc.AddReview(context.Background(), buyer, product.ID, CreateReviewInput{Rating: 4, Comment: " solid "})
	if err != nil {
		t.Fatalf("add review: %v", err)
	}
	if review.Comment != "solid" {
		t.Fatalf("comment not trimmed: %q", review.Comment)
	}

	_, err = svc.AddReview(context.Background(), buyer, product.ID, CreateReviewInput{Rating: 2})
	if !pkgerrors.HasCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict for duplicate review, got %v", err)
	}
}

func TestAddReviewRatingBounds(t *testing.T) {
	repo := newStubCatalogRepo()
	svc, _ := NewService(repo)

	_, err := svc.AddReview(context.Background(), uuid.New(), uuid.New(), CreateReviewInput{Rating: 0})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	_, err = svc.AddReview(context.Background(), uuid.New(), uuid.New(), CreateReviewInput{Rating: 6})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateCategorySlugifiesName(t *testing.T) {
	repo := newStubCatalogRepo()
	svc, _ := NewService(repo)

	category, err := svc.CreateCategory(context.Background(), CreateCategoryInput{Name: "Home Office Gear"})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	if category.Slug != "home-office-gear" {
		t.Fatalf("unexpected slug %q", category.Slug)
	}
}

package sellers

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dmarceau/cartline-backend/internal/catalog"
	"github.com/dmarceau/cartline-backend/pkg/db/models"
	"github.com/dmarceau/cartline-backend/pkg/enums"
	pkgerrors "github.com/dmarceau/cartline-backend/pkg/errors"
	"github.com/dmarceau/cartline-backend/pkg/pagination"
)

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubSellersRepo struct {
	profiles map[uuid.UUID]*models.SellerProfile
	payouts  []*models.SellerPayout
	sales    SalesTotals
}

func newStubSellersRepo() *stubSellersRepo {
	return &stubSellersRepo{
		profiles: make(map[uuid.UUID]*models.SellerProfile),
		sales:    SalesTotals{Revenue: decimal.Zero},
	}
}

func (s *stubSellersRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubSellersRepo) CreateProfile(ctx context.Context, profile *models.SellerProfile) (*models.SellerProfile, error) {
	for _, existing := range s.profiles {
		if existing.UserID == profile.UserID {
			return nil, fmt.Errorf("duplicate key value violates unique constraint \"idx_seller_profiles_user\"")
		}
		if existing.StoreSlug == profile.StoreSlug {
			return nil, fmt.Errorf("duplicate key value violates unique constraint \"idx_seller_profiles_slug\"")
		}
	}
	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}
	s.profiles[profile.ID] = profile
	return profile, nil
}

func (s *stubSellersRepo) FindProfileByUserID(ctx context.Context, userID uuid.UUID) (*models.SellerProfile, error) {
	for _, p := range s.profiles {
		if p.UserID == userID {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubSellersRepo) FindProfileBySlug(ctx context.Context, slug string) (*models.SellerProfile, error) {
	for _, p := range s.profiles {
		if p.StoreSlug == slug {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubSellersRepo) UpdateProfile(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	profile, ok := s.profiles[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if name, exists := updates["store_name"]; exists {
		profile.StoreName = name.(string)
	}
	return nil
}

func (s *stubSellersRepo) SalesTotals(ctx context.Context, sellerID uuid.UUID) (*SalesTotals, error) {
	totals := s.sales
	return &totals, nil
}

func (s *stubSellersRepo) PayoutTotals(ctx context.Context, sellerID uuid.UUID) (*PayoutTotals, error) {
	totals := &PayoutTotals{Pending: decimal.Zero, Completed: decimal.Zero}
	for _, p := range s.payouts {
		if p.SellerID != sellerID {
			continue
		}
		switch p.Status {
		case enums.PayoutStatusPending, enums.PayoutStatusProcessing:
			totals.Pending = totals.Pending.Add(p.Amount)
		case enums.PayoutStatusCompleted:
			totals.Completed = totals.Completed.Add(p.Amount)
		}
	}
	return totals, nil
}

func (s *stubSellersRepo) CreatePayout(ctx context.Context, payout *models.SellerPayout) (*models.SellerPayout, error) {
	if payout.ID == uuid.Nil {
		payout.ID = uuid.New()
	}
	s.payouts = append(s.payouts, payout)
	return payout, nil
}

func (s *stubSellersRepo) ListPayouts(ctx context.Context, sellerID uuid.UUID, params pagination.Params) (*PayoutList, error) {
	list := &PayoutList{}
	for _, p := range s.payouts {
		if p.SellerID == sellerID {
			list.Payouts = append(list.Payouts, payoutFromModel(p))
		}
	}
	return list, nil
}

type stubStorefrontProducts struct {
	catalog.Repository
	list catalog.ProductList
}

func (s *stubStorefrontProducts) ListProductsBySeller(ctx context.Context, sellerID uuid.UUID, params pagination.Params, includeInactive bool) (*catalog.ProductList, error) {
	if includeInactive {
		return nil, fmt.Errorf("storefront must list active products only")
	}
	list := s.list
	return &list, nil
}

func newSellersFixture(t *testing.T) (Service, *stubSellersRepo, *stubStorefrontProducts) {
	t.Helper()
	repo := newStubSellersRepo()
	products := &stubStorefrontProducts{}
	svc, err := NewService(repo, products, stubTxRunner{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, repo, products
}

func seedProfile(repo *stubSellersRepo, userID uuid.UUID, slug string) *models.SellerProfile {
	profile := &models.SellerProfile{
		ID:        uuid.New(),
		UserID:    userID,
		StoreName: "Maple Goods",
		StoreSlug: slug,
	}
	repo.profiles[profile.ID] = profile
	return profile
}

func TestCreateProfileRequiresSellerRole(t *testing.T) {
	svc, _, _ := newSellersFixture(t)

	_, err := svc.CreateProfile(context.Background(), uuid.New(), enums.UserRoleBuyer, CreateProfileInput{StoreName: "Shop"})
	if !pkgerrors.HasCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden for buyer, got %v", err)
	}
}

func TestCreateProfileSlugDefaultsFromName(t *testing.T) {
	svc, _, _ := newSellersFixture(t)

	profile, err := svc.CreateProfile(context.Background(), uuid.New(), enums.UserRoleSeller, CreateProfileInput{StoreName: "Maple Goods Co"})
	if err != nil {
		t.Fatalf("create profile: %v", err)
	}
	if profile.StoreSlug != "maple-goods-co" {
		t.Fatalf("slug = %q, want maple-goods-co", profile.StoreSlug)
	}
}

func TestCreateProfileDuplicateSlug(t *testing.T) {
	svc, repo, _ := newSellersFixture(t)
	seedProfile(repo, uuid.New(), "maple-goods")

	_, err := svc.CreateProfile(context.Background(), uuid.New(), enums.UserRoleSeller, CreateProfileInput{
		StoreName: "Other Shop",
		StoreSlug: "maple-goods",
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestCreateProfileOnePerSeller(t *testing.T) {
	svc, repo, _ := newSellersFixture(t)
	seller := uuid.New()
	seedProfile(repo, seller, "first-shop")

	_, err := svc.CreateProfile(context.Background(), seller, enums.UserRoleSeller, CreateProfileInput{StoreName: "Second Shop"})
	if !pkgerrors.HasCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestGetStorefrontUnknownSlug(t *testing.T) {
	svc, _, _ := newSellersFixture(t)

	_, err := svc.GetStorefront(context.Background(), "missing-shop", pagination.Params{})
	if !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDashboardAvailableBalance(t *testing.T) {
	svc, repo, _ := newSellersFixture(t)
	seller := uuid.New()
	seedProfile(repo, seller, "maple-goods")
	repo.sales = SalesTotals{
		Revenue:     decimal.RequireFromString("500.00"),
		OrdersCount: 7,
		UnitsSold:   12,
	}
	repo.payouts = []*models.SellerPayout{
		{SellerID: seller, Amount: decimal.RequireFromString("100.00"), Status: enums.PayoutStatusPending},
		{SellerID: seller, Amount: decimal.RequireFromString("150.00"), Status: enums.PayoutStatusCompleted},
	}

	dashboard, err := svc.Dashboard(context.Background(), seller)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if !dashboard.Available.Equal(decimal.RequireFromString("250.00")) {
		t.Fatalf("available = %s, want 250.00", dashboard.Available)
	}
	if dashboard.OrdersCount != 7 || dashboard.UnitsSold != 12 {
		t.Fatalf("unexpected counts %+v", dashboard)
	}
}

func TestRequestPayoutWithinAvailable(t *testing.T) {
	svc, repo, _ := newSellersFixture(t)
	seller := uuid.New()
	seedProfile(repo, seller, "maple-goods")
	repo.sales = SalesTotals{Revenue: decimal.RequireFromString("200.00")}

	payout, err := svc.RequestPayout(context.Background(), seller, RequestPayoutInput{Amount: decimal.RequireFromString("80.00")})
	if err != nil {
		t.Fatalf("request payout: %v", err)
	}
	if payout.Status != enums.PayoutStatusPending {
		t.Fatalf("status = %s, want pending", payout.Status)
	}

	// A second request can only draw on what remains.
	_, err = svc.RequestPayout(context.Background(), seller, RequestPayoutInput{Amount: decimal.RequireFromString("150.00")})
	if !pkgerrors.HasCode(err, pkgerrors.CodeInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
}

func TestRequestPayoutRejectsNonPositive(t *testing.T) {
	svc, repo, _ := newSellersFixture(t)
	seller := uuid.New()
	seedProfile(repo, seller, "maple-goods")

	_, err := svc.RequestPayout(context.Background(), seller, RequestPayoutInput{Amount: decimal.Zero})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

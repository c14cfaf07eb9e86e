package sellers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmarceau/cartline-backend/internal/catalog"
	"github.com/dmarceau/cartline-backend/pkg/db"
	"github.com/dmarceau/cartline-backend/pkg/db/models"
	"github.com/dmarceau/cartline-backend/pkg/enums"
	pkgerrors "github.com/dmarceau/cartline-backend/pkg/errors"
	"github.com/dmarceau/cartline-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines seller storefront, dashboard, and payout operations.
type Service interface {
	CreateProfile(ctx context.Context, userID uuid.UUID, userRole enums.UserRole, input CreateProfileInput) (*ProfileDTO, error)
	GetMyProfile(ctx context.Context, userID uuid.UUID) (*ProfileDTO, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*ProfileDTO, error)
	GetStorefront(ctx context.Context, slug string, params pagination.Params) (*StorefrontDTO, error)
	Dashboard(ctx context.Context, sellerID uuid.UUID) (*DashboardDTO, error)
	RequestPayout(ctx context.Context, sellerID uuid.UUID, input RequestPayoutInput) (*PayoutDTO, error)
	ListPayouts(ctx context.Context, sellerID uuid.UUID, params pagination.Params) (*PayoutList, error)
}

type service struct {
	repo     Repository
	products catalog.Repository
	tx       txRunner
}

// NewService builds a sellers service with the required dependencies.
func NewService(repo Repository, products catalog.Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("sellers repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product store required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, products: products, tx: tx}, nil
}

func (s *service) CreateProfile(ctx context.Context, userID uuid.UUID, userRole enums.UserRole, input CreateProfileInput) (*ProfileDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if userRole != enums.UserRoleSeller && userRole != enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only sellers can open a storefront")
	}
	name := strings.TrimSpace(input.StoreName)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store name required")
	}
	slug := strings.TrimSpace(strings.ToLower(input.StoreSlug))
	if slug == "" {
		slug = slugify(name)
	}

	profile := &models.SellerProfile{
		UserID:      userID,
		StoreName:   name,
		StoreSlug:   slug,
		Description: input.Description,
		LogoURL:     input.LogoURL,
	}
	created, err := s.repo.CreateProfile(ctx, profile)
	if err != nil {
		if db.IsUniqueViolation(err, "idx_seller_profiles_user") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "seller already has a storefront")
		}
		if db.IsUniqueViolation(err, "idx_seller_profiles_slug") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "store slug already taken")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create seller profile")
	}
	dto := profileFromModel(created)
	return &dto, nil
}

func (s *service) GetMyProfile(ctx context.Context, userID uuid.UUID) (*ProfileDTO, error) {
	profile, err := s.loadProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	dto := profileFromModel(profile)
	return &dto, nil
}

func (s *service) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*ProfileDTO, error) {
	profile, err := s.loadProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.StoreName != nil {
		name := strings.TrimSpace(*input.StoreName)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "store name required")
		}
		updates["store_name"] = name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.LogoURL != nil {
		updates["logo_url"] = *input.LogoURL
	}
	if len(updates) > 0 {
		if err := s.repo.UpdateProfile(ctx, profile.ID, updates); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update seller profile")
		}
	}
	return s.GetMyProfile(ctx, userID)
}

func (s *service) GetStorefront(ctx context.Context, slug string, params pagination.Params) (*StorefrontDTO, error) {
	slug = strings.TrimSpace(strings.ToLower(slug))
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store slug required")
	}

	profile, err := s.repo.FindProfileBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "storefront not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load storefront")
	}

	products, err := s.products.ListProductsBySeller(ctx, profile.UserID, params, false)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list storefront products")
	}
	return &StorefrontDTO{
		Profile:  profileFromModel(profile),
		Products: *products,
	}, nil
}

func (s *service) Dashboard(ctx context.Context, sellerID uuid.UUID) (*DashboardDTO, error) {
	if _, err := s.loadProfile(ctx, sellerID); err != nil {
		return nil, err
	}

	sales, err := s.repo.SalesTotals(ctx, sellerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sales totals")
	}
	payouts, err := s.repo.PayoutTotals(ctx, sellerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payout totals")
	}

	return &DashboardDTO{
		Revenue:          sales.Revenue,
		OrdersCount:      sales.OrdersCount,
		UnitsSold:        sales.UnitsSold,
		PendingPayouts:   payouts.Pending,
		CompletedPayouts: payouts.Completed,
		Available:        sales.Revenue.Sub(payouts.Pending).Sub(payouts.Completed),
	}, nil
}

func (s *service) RequestPayout(ctx context.Context, sellerID uuid.UUID, input RequestPayoutInput) (*PayoutDTO, error) {
	if _, err := s.loadProfile(ctx, sellerID); err != nil {
		return nil, err
	}
	if !input.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payout amount must be positive")
	}

	var created *models.SellerPayout
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		sales, err := repo.SalesTotals(ctx, sellerID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sales totals")
		}
		payouts, err := repo.PayoutTotals(ctx, sellerID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payout totals")
		}

		available := sales.Revenue.Sub(payouts.Pending).Sub(payouts.Completed)
		if input.Amount.GreaterThan(available) {
			return pkgerrors.New(pkgerrors.CodeInsufficientFunds,
				fmt.Sprintf("requested %s exceeds available balance %s", input.Amount, available))
		}

		created, err = repo.CreatePayout(ctx, &models.SellerPayout{
			SellerID: sellerID,
			Amount:   input.Amount,
			Status:   enums.PayoutStatusPending,
			Notes:    input.Notes,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payout")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	dto := payoutFromModel(created)
	return &dto, nil
}

func (s *service) ListPayouts(ctx context.Context, sellerID uuid.UUID, params pagination.Params) (*PayoutList, error) {
	if sellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	list, err := s.repo.ListPayouts(ctx, sellerID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list payouts")
	}
	return list, nil
}

func (s *service) loadProfile(ctx context.Context, userID uuid.UUID) (*models.SellerProfile, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	profile, err := s.repo.FindProfileByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "seller profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load seller profile")
	}
	return profile, nil
}

func slugify(value string) string {
	slug := strings.ToLower(strings.TrimSpace(value))
	slug = strings.Join(strings.Fields(slug), "-")
	return slug
}

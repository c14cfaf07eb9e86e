package analytics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/dmarceau/cartline-backend/pkg/db/models"
	pkgerrors "github.com/dmarceau/cartline-backend/pkg/errors"
)

const (
	defaultTopLimit = 10
	maxTopLimit     = 50
)

// Service defines analytics capture, read, and maintenance operations.
type Service interface {
	RecordProductView(ctx context.Context, input RecordViewInput) error
	RecordSearch(ctx context.Context, input RecordSearchInput) error

	TopProducts(ctx context.Context, since time.Time, limit int) ([]TopProductDTO, error)
	TopSearches(ctx context.Context, since time.Time, limit int) ([]TopSearchDTO, error)
	SellerSalesSeries(ctx context.Context, sellerID uuid.UUID, from, to time.Time) ([]SalesPointDTO, error)

	// RollupDailySales recomputes and upserts sales_metrics rows for the day
	// containing the given time. Safe to re-run for the same day.
	RollupDailySales(ctx context.Context, day time.Time) (int, error)
	// PurgeOldEvents deletes raw view and search events older than the
	// retention window. Rollups are kept.
	PurgeOldEvents(ctx context.Context, retentionDays int) (int64, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService builds an analytics service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("analytics repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) RecordProductView(ctx context.Context, input RecordViewInput) error {
	if input.ProductID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	view := &models.ProductView{
		ProductID: input.ProductID,
		UserID:    input.UserID,
		IPAddress: input.IPAddress,
	}
	if err := s.repo.CreateProductView(ctx, view); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record product view")
	}
	return nil
}

func (s *service) RecordSearch(ctx context.Context, input RecordSearchInput) error {
	query := strings.ToLower(strings.TrimSpace(input.Query))
	if query == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "search query required")
	}
	if input.ResultsCount < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "results count cannot be negative")
	}
	event := &models.SearchQuery{
		Query:        query,
		UserID:       input.UserID,
		ResultsCount: input.ResultsCount,
	}
	if err := s.repo.CreateSearchQuery(ctx, event); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record search")
	}
	return nil
}

func (s *service) TopProducts(ctx context.Context, since time.Time, limit int) ([]TopProductDTO, error) {
	rows, err := s.repo.TopProducts(ctx, since, normalizeTopLimit(limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load top products")
	}
	return lo.Map(rows, func(row ProductViewCount, _ int) TopProductDTO {
		return TopProductDTO{ProductID: row.ProductID, Views: row.Views}
	}), nil
}

func (s *service) TopSearches(ctx context.Context, since time.Time, limit int) ([]TopSearchDTO, error) {
	rows, err := s.repo.TopSearches(ctx, since, normalizeTopLimit(limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load top searches")
	}
	return lo.Map(rows, func(row SearchCount, _ int) TopSearchDTO {
		return TopSearchDTO{Query: row.Query, Searches: row.Searches}
	}), nil
}

func (s *service) SellerSalesSeries(ctx context.Context, sellerID uuid.UUID, from, to time.Time) ([]SalesPointDTO, error) {
	if sellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if to.Before(from) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "series range end precedes start")
	}
	rows, err := s.repo.ListSalesMetrics(ctx, sellerID, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sales metrics")
	}
	return lo.Map(rows, func(row models.SalesMetric, _ int) SalesPointDTO {
		return salesPointFromModel(row)
	}), nil
}

func (s *service) RollupDailySales(ctx context.Context, day time.Time) (int, error) {
	dayStart, dayEnd := dayBounds(day)

	totals, err := s.repo.AggregateDailySales(ctx, dayStart, dayEnd)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate daily sales")
	}

	for _, row := range totals {
		revenue, err := decimal.NewFromString(row.Revenue)
		if err != nil {
			return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "parse revenue aggregate")
		}
		metric := &models.SalesMetric{
			SellerID:    row.SellerID,
			MetricDate:  dayStart,
			OrdersCount: row.OrdersCount,
			UnitsSold:   row.UnitsSold,
			Revenue:     revenue,
		}
		if err := s.repo.UpsertSalesMetric(ctx, metric); err != nil {
			return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert sales metric")
		}
	}
	return len(totals), nil
}

func (s *service) PurgeOldEvents(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays < 1 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "retention must be at least one day")
	}
	cutoff := s.now().UTC().AddDate(0, 0, -retentionDays)

	views, err := s.repo.DeleteProductViewsBefore(ctx, cutoff)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "purge product views")
	}
	searches, err := s.repo.DeleteSearchQueriesBefore(ctx, cutoff)
	if err != nil {
		return views, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "purge search queries")
	}
	return views + searches, nil
}

func normalizeTopLimit(limit int) int {
	if limit < 1 {
		return defaultTopLimit
	}
	if limit > maxTopLimit {
		return maxTopLimit
	}
	return limit
}

package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dmarceau/cartline-backend/pkg/db/models"
	"github.com/dmarceau/cartline-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an analytics repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateProductView(ctx context.Context, view *models.ProductView) error {
	return r.db.WithContext(ctx).Create(view).Error
}

func (r *repository) CreateSearchQuery(ctx context.Context, query *models.SearchQuery) error {
	return r.db.WithContext(ctx).Create(query).Error
}

func (r *repository) TopProducts(ctx context.Context, since time.Time, limit int) ([]ProductViewCount, error) {
	var rows []ProductViewCount
	err := r.db.WithContext(ctx).
		Model(&models.ProductView{}).
		Select("product_id, COUNT(*) AS views").
		Where("created_at >= ?", since).
		Group("product_id").
		Order("views DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) TopSearches(ctx context.Context, since time.Time, limit int) ([]SearchCount, error) {
	var rows []SearchCount
	err := r.db.WithContext(ctx).
		Model(&models.SearchQuery{}).
		Select("query, COUNT(*) AS searches").
		Where("created_at >= ?", since).
		Group("query").
		Order("searches DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) AggregateDailySales(ctx context.Context, dayStart, dayEnd time.Time) ([]DailySellerSales, error) {
	var rows []DailySellerSales
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			oi.seller_id                    AS seller_id,
			COUNT(DISTINCT oi.order_id)     AS orders_count,
			COALESCE(SUM(oi.quantity), 0)   AS units_sold,
			COALESCE(SUM(oi.line_total), 0) AS revenue
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE o.created_at >= ? AND o.created_at < ?
		  AND o.status <> ?
		  AND oi.is_refunded = ?
		GROUP BY oi.seller_id`,
		dayStart, dayEnd, enums.OrderStatusCancelled, false,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) UpsertSalesMetric(ctx context.Context, metric *models.SalesMetric) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "seller_id"}, {Name: "metric_date"}},
			DoUpdates: clause.Assignments(map[string]any{
				"orders_count": metric.OrdersCount,
				"units_sold":   metric.UnitsSold,
				"revenue":      metric.Revenue,
				"updated_at":   time.Now().UTC(),
			}),
		}).
		Create(metric).Error
}

func (r *repository) ListSalesMetrics(ctx context.Context, sellerID uuid.UUID, from, to time.Time) ([]models.SalesMetric, error) {
	var rows []models.SalesMetric
	err := r.db.WithContext(ctx).
		Where("seller_id = ? AND metric_date >= ? AND metric_date <= ?", sellerID, from, to).
		Order("metric_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) DeleteProductViewsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&models.ProductView{})
	return res.RowsAffected, res.Error
}

func (r *repository) DeleteSearchQueriesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&models.SearchQuery{})
	return res.RowsAffected, res.Error
}

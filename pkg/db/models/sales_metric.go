package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SalesMetric is the per-seller, per-day sales rollup maintained by the cron
// worker. Rows are upserted on (seller_id, metric_date).
type SalesMetric struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SellerID    uuid.UUID       `gorm:"column:seller_id;type:uuid;not null;uniqueIndex:idx_sales_metrics_seller_date"`
	MetricDate  time.Time       `gorm:"column:metric_date;type:date;not null;uniqueIndex:idx_sales_metrics_seller_date"`
	OrdersCount int             `gorm:"column:orders_count;not null;default:0"`
	UnitsSold   int             `gorm:"column:units_sold;not null;default:0"`
	Revenue     decimal.Decimal `gorm:"column:revenue;type:numeric(12,2);not null;default:0"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

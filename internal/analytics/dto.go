package analytics

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmarceau/cartline-backend/pkg/db/models"
)

// TopProductDTO is one entry of the most-viewed product ranking.
type TopProductDTO struct {
	ProductID uuid.UUID `json:"product_id"`
	Views     int64     `json:"views"`
}

// TopSearchDTO is one entry of the most-frequent search ranking.
type TopSearchDTO struct {
	Query    string `json:"query"`
	Searches int64  `json:"searches"`
}

// SalesPointDTO is one day of a seller's sales series.
type SalesPointDTO struct {
	Date        string          `json:"date"`
	OrdersCount int             `json:"orders_count"`
	UnitsSold   int             `json:"units_sold"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// RecordViewInput captures a product impression.
type RecordViewInput struct {
	ProductID uuid.UUID
	UserID    *uuid.UUID
	IPAddress *string
}

// RecordSearchInput captures a catalog search event.
type RecordSearchInput struct {
	Query        string
	UserID       *uuid.UUID
	ResultsCount int
}

// metricDateLayout is the wire format for sales series dates.
const metricDateLayout = "2006-01-02"

func salesPointFromModel(m models.SalesMetric) SalesPointDTO {
	return SalesPointDTO{
		Date:        m.MetricDate.UTC().Format(metricDateLayout),
		OrdersCount: m.OrdersCount,
		UnitsSold:   m.UnitsSold,
		Revenue:     m.Revenue,
	}
}

// dayBounds returns the UTC day window [start, end) containing t.
func dayBounds(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.Add(24 * time.Hour)
}

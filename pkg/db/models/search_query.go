package models

import (
	"time"

	"github.com/google/uuid"
)

// SearchQuery records one catalog search for analytics.
type SearchQuery struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Query        string     `gorm:"column:query;not null"`
	UserID       *uuid.UUID `gorm:"column:user_id;type:uuid"`
	ResultsCount int        `gorm:"column:results_count;not null;default:0"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime;index"`
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// ProductView records one catalog detail impression for analytics.
type ProductView struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID uuid.UUID  `gorm:"column:product_id;type:uuid;not null;index"`
	UserID    *uuid.UUID `gorm:"column:user_id;type:uuid"`
	IPAddress *string    `gorm:"column:ip_address"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime;index"`
}

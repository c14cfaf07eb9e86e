package models

import (
	"time"

	"github.com/google/uuid"
)

// SellerProfile is the storefront record owned by a seller user.
type SellerProfile struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	StoreName   string    `gorm:"column:store_name;not null"`
	StoreSlug   string    `gorm:"column:store_slug;not null;uniqueIndex"`
	Description *string   `gorm:"column:description"`
	LogoURL     *string   `gorm:"column:logo_url"`
	IsVerified  bool      `gorm:"column:is_verified;not null;default:false"`
	User        *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

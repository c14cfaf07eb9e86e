package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmarceau/cartline-backend/pkg/enums"
)

// OrderStatusHistory is the append-only audit trail of status transitions.
// Rows are never updated or deleted.
type OrderStatusHistory struct {
	ID         uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID    uuid.UUID          `gorm:"column:order_id;type:uuid;not null;index"`
	FromStatus *enums.OrderStatus `gorm:"column:from_status;type:order_status"`
	ToStatus   enums.OrderStatus  `gorm:"column:to_status;type:order_status;not null"`
	ChangedBy  *uuid.UUID         `gorm:"column:changed_by;type:uuid"`
	Note       *string            `gorm:"column:note"`
	CreatedAt  time.Time          `gorm:"column:created_at;autoCreateTime"`
}

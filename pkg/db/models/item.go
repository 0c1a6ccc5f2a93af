package models

import (
	"time"

	"github.com/google/uuid"
)

// Item is a physical listing offered for rent. Listing management lives in
// another service; this model carries the pricing inputs the rental flow
// snapshots and the counters the reactors maintain.
type Item struct {
	ID      uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OwnerID uuid.UUID `gorm:"column:owner_id;type:uuid;not null;index" json:"owner_id"`
	Title   string    `gorm:"column:title;not null" json:"title"`

	DailyRateCents       int64  `gorm:"column:daily_rate_cents;not null" json:"daily_rate_cents"`
	SecurityDepositCents int64  `gorm:"column:security_deposit_cents;not null;default:0" json:"security_deposit_cents"`
	DeliveryFeeCents     int64  `gorm:"column:delivery_fee_cents;not null;default:0" json:"delivery_fee_cents"`
	Currency             string `gorm:"column:currency;not null;default:'USD'" json:"currency"`

	ViewCount     int64 `gorm:"column:view_count;not null;default:0" json:"view_count"`
	RentalCount   int64 `gorm:"column:rental_count;not null;default:0" json:"rental_count"`
	RevenueCents  int64 `gorm:"column:revenue_cents;not null;default:0" json:"revenue_cents"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

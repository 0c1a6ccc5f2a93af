package models

import (
	"time"

	"github.com/google/uuid"
)

// User carries the profile fields the rental flow reads and the counters
// the reactors maintain. Registration and identity verification happen in
// an external service; this row mirrors the verified flag it produces.
type User struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	DisplayName string    `gorm:"column:display_name;not null" json:"display_name"`
	Verified    bool      `gorm:"column:verified;not null;default:false" json:"verified"`

	ItemsRented       int64 `gorm:"column:items_rented;not null;default:0" json:"items_rented"`
	SuccessfulRentals int64 `gorm:"column:successful_rentals;not null;default:0" json:"successful_rentals"`

	// WalletBalanceCents is a display cache only. The ledger is the sole
	// source of truth; mismatches are resolved by recomputing from it.
	WalletBalanceCents int64 `gorm:"column:wallet_balance_cents;not null;default:0" json:"wallet_balance_cents"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

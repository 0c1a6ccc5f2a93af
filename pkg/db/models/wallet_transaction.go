package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/borrowhub/borrowhub-backend/pkg/enums"
)

// WalletTransaction is one append-only ledger entry. Rows are never edited
// in place except to advance availability_status exactly once; corrections
// are new offsetting entries. Balances are always derived by summing
// completed entries, never stored as a mutable counter.
type WalletTransaction struct {
	ID       uuid.UUID                   `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID   uuid.UUID                   `gorm:"column:user_id;type:uuid;not null;index:idx_wallet_user_status,priority:1;index:idx_wallet_user_recent,priority:1" json:"user_id"`
	Type     enums.WalletTransactionType `gorm:"column:type;type:text;not null" json:"type"`
	// Amount is signed: debits negative, credits positive.
	AmountCents int64                          `gorm:"column:amount_cents;not null" json:"amount_cents"`
	Currency    string                         `gorm:"column:currency;not null;default:'USD'" json:"currency"`
	Status      enums.WalletTransactionStatus  `gorm:"column:status;type:text;not null;default:'completed';index:idx_wallet_user_status,priority:2" json:"status"`
	// AvailabilityStatus may be empty on rows written before the tag
	// existed; readers treat those as AVAILABLE.
	AvailabilityStatus enums.AvailabilityStatus `gorm:"column:availability_status;type:text;index:idx_wallet_user_status,priority:3" json:"availability_status"`
	RelatedRentalID    *uuid.UUID               `gorm:"column:related_rental_id;type:uuid;index" json:"related_rental_id,omitempty"`
	Description        string                   `gorm:"column:description" json:"description"`
	CreatedAt          time.Time                `gorm:"column:created_at;autoCreateTime;index:idx_wallet_user_recent,priority:2,sort:desc" json:"created_at"`
}

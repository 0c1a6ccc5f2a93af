package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/borrowhub/borrowhub-backend/pkg/enums"
	"github.com/borrowhub/borrowhub-backend/pkg/types"
)

// RentalPricing is the immutable price snapshot computed at request time.
// It is never recomputed after creation; a later item price change cannot
// alter an agreed contract.
type RentalPricing struct {
	DailyRateCents       int64  `gorm:"column:daily_rate_cents;not null" json:"daily_rate_cents"`
	TotalDays            int    `gorm:"column:total_days;not null" json:"total_days"`
	SubtotalCents        int64  `gorm:"column:subtotal_cents;not null" json:"subtotal_cents"`
	PlatformFeeCents     int64  `gorm:"column:platform_fee_cents;not null" json:"platform_fee_cents"`
	SecurityDepositCents int64  `gorm:"column:security_deposit_cents;not null;default:0" json:"security_deposit_cents"`
	DeliveryFeeCents     int64  `gorm:"column:delivery_fee_cents;not null;default:0" json:"delivery_fee_cents"`
	TotalCents           int64  `gorm:"column:total_cents;not null" json:"total_cents"`
	Currency             string `gorm:"column:currency;not null;default:'USD'" json:"currency"`
}

// Rental is the agreement document tracking one item loan from request to
// settlement. Rentals are never deleted; terminal rows stay for audit.
type Rental struct {
	ID       uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ItemID   uuid.UUID `gorm:"column:item_id;type:uuid;not null;index" json:"item_id"`
	OwnerID  uuid.UUID `gorm:"column:owner_id;type:uuid;not null;index" json:"owner_id"`
	RenterID uuid.UUID `gorm:"column:renter_id;type:uuid;not null;index" json:"renter_id"`

	Status         enums.RentalStatus   `gorm:"column:status;type:text;not null;default:'pending'" json:"status"`
	DeliveryMethod enums.DeliveryMethod `gorm:"column:delivery_method;type:text;not null" json:"delivery_method"`
	ChannelID      *string              `gorm:"column:channel_id" json:"channel_id,omitempty"`

	RequestedStart time.Time  `gorm:"column:requested_start;not null" json:"requested_start"`
	RequestedEnd   time.Time  `gorm:"column:requested_end;not null" json:"requested_end"`
	ConfirmedStart *time.Time `gorm:"column:confirmed_start" json:"confirmed_start,omitempty"`
	ConfirmedEnd   *time.Time `gorm:"column:confirmed_end" json:"confirmed_end,omitempty"`
	ActualStart    *time.Time `gorm:"column:actual_start" json:"actual_start,omitempty"`
	ActualEnd      *time.Time `gorm:"column:actual_end" json:"actual_end,omitempty"`

	Pricing RentalPricing `gorm:"embedded;embeddedPrefix:pricing_" json:"pricing"`

	GatewayOrderID       *string             `gorm:"column:gateway_order_id;uniqueIndex" json:"gateway_order_id,omitempty"`
	GatewayTransactionID *string             `gorm:"column:gateway_transaction_id" json:"gateway_transaction_id,omitempty"`
	PaymentStatus        enums.PaymentStatus `gorm:"column:payment_status;type:text;not null;default:'pending'" json:"payment_status"`

	OwnerHandoverConfirmed    bool       `gorm:"column:owner_handover_confirmed;not null;default:false" json:"owner_handover_confirmed"`
	OwnerHandoverConfirmedAt  *time.Time `gorm:"column:owner_handover_confirmed_at" json:"owner_handover_confirmed_at,omitempty"`
	RenterHandoverConfirmed   bool       `gorm:"column:renter_handover_confirmed;not null;default:false" json:"renter_handover_confirmed"`
	RenterHandoverConfirmedAt *time.Time `gorm:"column:renter_handover_confirmed_at" json:"renter_handover_confirmed_at,omitempty"`

	OwnerCompletionConfirmed  bool                `gorm:"column:owner_completion_confirmed;not null;default:false" json:"owner_completion_confirmed"`
	RenterCompletionConfirmed bool                `gorm:"column:renter_completion_confirmed;not null;default:false" json:"renter_completion_confirmed"`
	DamageReport              *types.DamageReport `gorm:"column:damage_report;type:jsonb;serializer:json" json:"damage_report,omitempty"`
	CompletedAt               *time.Time          `gorm:"column:completed_at" json:"completed_at,omitempty"`

	Dispute  *types.Dispute `gorm:"column:dispute;type:jsonb;serializer:json" json:"dispute,omitempty"`
	Timeline types.Timeline `gorm:"column:timeline;type:jsonb;serializer:json" json:"timeline"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// IsParticipant reports whether the user is the rental's owner or renter.
func (r *Rental) IsParticipant(userID uuid.UUID) bool {
	return r.OwnerID == userID || r.RenterID == userID
}

// RoleOf returns the side the user acts as, if any.
func (r *Rental) RoleOf(userID uuid.UUID) (enums.RentalRole, bool) {
	switch userID {
	case r.OwnerID:
		return enums.RentalRoleOwner, true
	case r.RenterID:
		return enums.RentalRoleRenter, true
	}
	return "", false
}

// HasOpenDispute reports whether an unresolved dispute is attached.
func (r *Rental) HasOpenDispute() bool {
	return r.Dispute != nil && r.Dispute.Status == string(enums.DisputeStatusOpen)
}

package types

import (
	"time"

	"github.com/google/uuid"
)

// DisputeResolution records the moderator's final split for a dispute.
type DisputeResolution struct {
	Decision          string    `json:"decision"`
	RefundCents       int64     `json:"refund_cents"`
	CompensationCents int64     `json:"compensation_cents"`
	ModeratorID       uuid.UUID `json:"moderator_id"`
	Notes             string    `json:"notes,omitempty"`
	ResolvedAt        time.Time `json:"resolved_at"`
}

// Dispute is the embedded dispute record on a rental. Created open by
// raiseDispute, closed exactly once by resolveDispute.
type Dispute struct {
	Status      string             `json:"status"`
	InitiatedBy uuid.UUID          `json:"initiated_by"`
	Reason      string             `json:"reason"`
	Evidence    []string           `json:"evidence,omitempty"`
	InitiatedAt time.Time          `json:"initiated_at"`
	Resolution  *DisputeResolution `json:"resolution,omitempty"`
}

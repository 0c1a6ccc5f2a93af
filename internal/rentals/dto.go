package rentals

import (
	"time"

	"github.com/google/uuid"

	"github.com/borrowhub/borrowhub-backend/pkg/enums"
	"github.com/borrowhub/borrowhub-backend/pkg/types"
)

// RequestInput captures a renter's rental request.
type RequestInput struct {
	ItemID         uuid.UUID
	RenterID       uuid.UUID
	Start          time.Time
	End            time.Time
	DeliveryMethod enums.DeliveryMethod
}

// RespondAction is the owner's answer to a pending request.
type RespondAction string

const (
	RespondActionApprove RespondAction = "approve"
	RespondActionReject  RespondAction = "reject"
)

// RespondInput captures the owner's decision on a pending rental.
type RespondInput struct {
	RentalID uuid.UUID
	OwnerID  uuid.UUID
	Action   RespondAction
	// SourceID is the gateway payment source used for the charge on approval.
	SourceID string
}

// HandoverInput captures one side's handover confirmation.
type HandoverInput struct {
	RentalID uuid.UUID
	UserID   uuid.UUID
	Role     enums.RentalRole
}

// CompletionInput captures one side's completion confirmation. Only the
// owner may attach a damage report.
type CompletionInput struct {
	RentalID     uuid.UUID
	UserID       uuid.UUID
	Role         enums.RentalRole
	DamageReport *types.DamageReport
}

// ListFilter narrows the rentals returned for a participant.
type ListFilter struct {
	Role   *enums.RentalRole
	Status *enums.RentalStatus
	Limit  int
}

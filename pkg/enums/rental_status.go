package enums

import "fmt"

// RentalStatus tracks the lifecycle of a rental agreement.
type RentalStatus string

const (
	RentalStatusPending          RentalStatus = "pending"
	RentalStatusApproved         RentalStatus = "approved"
	RentalStatusRejected         RentalStatus = "rejected"
	RentalStatusAwaitingHandover RentalStatus = "awaiting_handover"
	RentalStatusActive           RentalStatus = "active"
	RentalStatusDisputed         RentalStatus = "disputed"
	RentalStatusCompleted        RentalStatus = "completed"
)

var validRentalStatuses = []RentalStatus{
	RentalStatusPending,
	RentalStatusApproved,
	RentalStatusRejected,
	RentalStatusAwaitingHandover,
	RentalStatusActive,
	RentalStatusDisputed,
	RentalStatusCompleted,
}

// String implements fmt.Stringer.
func (s RentalStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known RentalStatus.
func (s RentalStatus) IsValid() bool {
	for _, candidate := range validRentalStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions exist from the status.
func (s RentalStatus) IsTerminal() bool {
	return s == RentalStatusRejected || s == RentalStatusCompleted
}

// BlocksAvailability reports whether a rental in this status reserves the
// item for its date range.
func (s RentalStatus) BlocksAvailability() bool {
	switch s {
	case RentalStatusApproved, RentalStatusAwaitingHandover, RentalStatusActive:
		return true
	}
	return false
}

// ParseRentalStatus converts raw input into a RentalStatus.
func ParseRentalStatus(value string) (RentalStatus, error) {
	for _, candidate := range validRentalStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid rental status %q", value)
}

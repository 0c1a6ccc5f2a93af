package enums

import "fmt"

// AvailabilityStatus tags a wallet transaction with whether its amount
// counts toward withdrawable balance. Legacy rows predate the tag and
// carry an empty value; they are treated as AVAILABLE.
type AvailabilityStatus string

const (
	AvailabilityPending   AvailabilityStatus = "PENDING"
	AvailabilityLocked    AvailabilityStatus = "LOCKED"
	AvailabilityAvailable AvailabilityStatus = "AVAILABLE"
)

var validAvailabilityStatuses = []AvailabilityStatus{
	AvailabilityPending,
	AvailabilityLocked,
	AvailabilityAvailable,
}

// IsValid reports whether the value is a known AvailabilityStatus.
// The empty legacy value is not valid for new writes.
func (s AvailabilityStatus) IsValid() bool {
	for _, candidate := range validAvailabilityStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// Effective resolves the legacy empty tag to AVAILABLE.
func (s AvailabilityStatus) Effective() AvailabilityStatus {
	if s == "" {
		return AvailabilityAvailable
	}
	return s
}

// CanAdvanceTo reports whether the status may move to next. Advancement is
// one-way: PENDING→AVAILABLE, PENDING→LOCKED, LOCKED→AVAILABLE. AVAILABLE
// never regresses.
func (s AvailabilityStatus) CanAdvanceTo(next AvailabilityStatus) bool {
	switch s.Effective() {
	case AvailabilityPending:
		return next == AvailabilityAvailable || next == AvailabilityLocked
	case AvailabilityLocked:
		return next == AvailabilityAvailable
	default:
		return false
	}
}

// ParseAvailabilityStatus converts raw input into an AvailabilityStatus.
func ParseAvailabilityStatus(value string) (AvailabilityStatus, error) {
	for _, candidate := range validAvailabilityStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid availability status %q", value)
}

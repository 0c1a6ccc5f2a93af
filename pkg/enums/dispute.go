package enums

import "fmt"

// DisputeStatus tracks the embedded dispute record on a rental.
type DisputeStatus string

const (
	DisputeStatusOpen     DisputeStatus = "open"
	DisputeStatusResolved DisputeStatus = "resolved"
)

// IsValid reports whether the value is a known DisputeStatus.
func (s DisputeStatus) IsValid() bool {
	return s == DisputeStatusOpen || s == DisputeStatusResolved
}

// DisputeDecision is the moderator's ruling when closing a dispute.
type DisputeDecision string

const (
	DisputeDecisionFavorRenter DisputeDecision = "favor_renter"
	DisputeDecisionFavorOwner  DisputeDecision = "favor_owner"
	DisputeDecisionSplit       DisputeDecision = "split"
)

var validDisputeDecisions = []DisputeDecision{
	DisputeDecisionFavorRenter,
	DisputeDecisionFavorOwner,
	DisputeDecisionSplit,
}

// IsValid reports whether the value is a known DisputeDecision.
func (d DisputeDecision) IsValid() bool {
	for _, candidate := range validDisputeDecisions {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDisputeDecision converts raw input into a DisputeDecision.
func ParseDisputeDecision(value string) (DisputeDecision, error) {
	for _, candidate := range validDisputeDecisions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid dispute decision %q", value)
}

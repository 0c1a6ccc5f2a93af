package enums

import "fmt"

// RentalRole identifies which side of a rental a caller acts as.
type RentalRole string

const (
	RentalRoleOwner  RentalRole = "owner"
	RentalRoleRenter RentalRole = "renter"
)

// IsValid reports whether the value is a known RentalRole.
func (r RentalRole) IsValid() bool {
	return r == RentalRoleOwner || r == RentalRoleRenter
}

// Other returns the opposite side of the rental.
func (r RentalRole) Other() RentalRole {
	if r == RentalRoleOwner {
		return RentalRoleRenter
	}
	return RentalRoleOwner
}

// ParseRentalRole converts raw input into a RentalRole.
func ParseRentalRole(value string) (RentalRole, error) {
	switch RentalRole(value) {
	case RentalRoleOwner:
		return RentalRoleOwner, nil
	case RentalRoleRenter:
		return RentalRoleRenter, nil
	}
	return "", fmt.Errorf("invalid rental role %q", value)
}

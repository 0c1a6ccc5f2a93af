package enums

import "fmt"

// UserRole is the platform-level role carried in the access token.
type UserRole string

const (
	UserRoleUser      UserRole = "user"
	UserRoleModerator UserRole = "moderator"
)

// IsValid reports whether the value is a known UserRole.
func (r UserRole) IsValid() bool {
	return r == UserRoleUser || r == UserRoleModerator
}

// ParseUserRole converts raw input into a UserRole.
func ParseUserRole(value string) (UserRole, error) {
	switch UserRole(value) {
	case UserRoleUser:
		return UserRoleUser, nil
	case UserRoleModerator:
		return UserRoleModerator, nil
	}
	return "", fmt.Errorf("invalid user role %q", value)
}

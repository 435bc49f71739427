package enums

import "fmt"

// MemberRole identifies the acting surface of an authenticated user.
type MemberRole string

const (
	MemberRoleAdmin    MemberRole = "admin"
	MemberRoleVendor   MemberRole = "vendor"
	MemberRoleCustomer MemberRole = "customer"
)

var validMemberRoles = []MemberRole{
	MemberRoleAdmin,
	MemberRoleVendor,
	MemberRoleCustomer,
}

// IsValid reports whether the value is a known MemberRole.
func (m MemberRole) IsValid() bool {
	for _, candidate := range validMemberRoles {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMemberRole converts raw input into a MemberRole.
func ParseMemberRole(value string) (MemberRole, error) {
	for _, candidate := range validMemberRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid member role %q", value)
}

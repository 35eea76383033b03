package enums

import (
	"fmt"
	"strings"
)

// ActorRole is the platform role carried in access tokens and audit rows.
type ActorRole string

const (
	ActorRoleCustomer   ActorRole = "customer"
	ActorRoleManager    ActorRole = "manager"
	ActorRoleVendor     ActorRole = "vendor"
	ActorRoleBeautician ActorRole = "beautician"
	ActorRoleAdmin      ActorRole = "admin"
	ActorRoleSystem     ActorRole = "system"
)

var validActorRoles = []ActorRole{
	ActorRoleCustomer,
	ActorRoleManager,
	ActorRoleVendor,
	ActorRoleBeautician,
	ActorRoleAdmin,
	ActorRoleSystem,
}

// String implements fmt.Stringer.
func (r ActorRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known ActorRole.
func (r ActorRole) IsValid() bool {
	for _, candidate := range validActorRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// IsStaff reports whether the role acts on behalf of the platform.
func (r ActorRole) IsStaff() bool {
	return r == ActorRoleManager || r == ActorRoleAdmin
}

// ParseActorRole converts raw input into an ActorRole. Matching is case-insensitive.
func ParseActorRole(value string) (ActorRole, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validActorRoles {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid actor role %q", value)
}

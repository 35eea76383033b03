package types

import (
	"github.com/google/uuid"

	"github.com/glowcall/glowcall-backend/pkg/enums"
)

// Actor identifies who performs an operation. System actors have no ID.
type Actor struct {
	ID       *uuid.UUID
	Role     enums.ActorRole
	VendorID *uuid.UUID
}

// SystemActor returns the actor used by background processes.
func SystemActor() Actor {
	return Actor{Role: enums.ActorRoleSystem}
}

// NewActor builds an actor for an authenticated principal.
func NewActor(id uuid.UUID, role enums.ActorRole) Actor {
	return Actor{ID: &id, Role: role}
}

// WithVendor scopes a vendor-role actor to the vendor it represents.
func (a Actor) WithVendor(vendorID uuid.UUID) Actor {
	a.VendorID = &vendorID
	return a
}

// RolePtr returns the role as a pointer for nullable audit columns.
func (a Actor) RolePtr() *enums.ActorRole {
	if a.Role == "" {
		return nil
	}
	role := a.Role
	return &role
}

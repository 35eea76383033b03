package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/glowcall/glowcall-backend/pkg/enums"
	"github.com/glowcall/glowcall-backend/pkg/types"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID     uuid.UUID
	Role       enums.ActorRole
	VendorID   *uuid.UUID
	EmployeeID *uuid.UUID
	JTI        string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID     uuid.UUID       `json:"user_id"`
	Role       enums.ActorRole `json:"role"`
	VendorID   *uuid.UUID      `json:"vendor_id,omitempty"`
	EmployeeID *uuid.UUID      `json:"employee_id,omitempty"`
	jwt.RegisteredClaims
}

// Actor converts the claims into the identity services authorize against.
func (c AccessTokenClaims) Actor() types.Actor {
	actor := types.NewActor(c.UserID, c.Role)
	if c.VendorID != nil {
		actor = actor.WithVendor(*c.VendorID)
	}
	return actor
}

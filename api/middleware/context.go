package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/glowcall/glowcall-backend/pkg/enums"
	"github.com/glowcall/glowcall-backend/pkg/types"
)

type contextKey string

const (
	ctxUserID     contextKey = "user_id"
	ctxRole       contextKey = "actor_role"
	ctxVendorID   contextKey = "vendor_id"
	ctxEmployeeID contextKey = "employee_id"
)

// Principal is the authenticated caller as seen by handlers.
type Principal struct {
	UserID     uuid.UUID
	Role       enums.ActorRole
	VendorID   *uuid.UUID
	EmployeeID *uuid.UUID
}

// Actor converts the principal into the identity services authorize against.
func (p Principal) Actor() types.Actor {
	actor := types.NewActor(p.UserID, p.Role)
	if p.VendorID != nil {
		actor = actor.WithVendor(*p.VendorID)
	}
	return actor
}

// WithPrincipal seeds ctx with an authenticated principal.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxUserID, p.UserID)
	ctx = context.WithValue(ctx, ctxRole, p.Role)
	if p.VendorID != nil {
		ctx = context.WithValue(ctx, ctxVendorID, *p.VendorID)
	}
	if p.EmployeeID != nil {
		ctx = context.WithValue(ctx, ctxEmployeeID, *p.EmployeeID)
	}
	return ctx
}

// PrincipalFromContext returns the caller seeded by Auth.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	if ctx == nil {
		return Principal{}, false
	}
	userID, ok := ctx.Value(ctxUserID).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return Principal{}, false
	}
	p := Principal{UserID: userID}
	p.Role, _ = ctx.Value(ctxRole).(enums.ActorRole)
	if vendorID, ok := ctx.Value(ctxVendorID).(uuid.UUID); ok {
		p.VendorID = &vendorID
	}
	if employeeID, ok := ctx.Value(ctxEmployeeID).(uuid.UUID); ok {
		p.EmployeeID = &employeeID
	}
	return p, true
}

func UserIDFromContext(ctx context.Context) string {
	if p, ok := PrincipalFromContext(ctx); ok {
		return p.UserID.String()
	}
	return ""
}

func RoleFromContext(ctx context.Context) enums.ActorRole {
	if p, ok := PrincipalFromContext(ctx); ok {
		return p.Role
	}
	return ""
}

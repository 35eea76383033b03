package types

import (
	"testing"

	"github.com/google/uuid"

	"github.com/glowcall/glowcall-backend/pkg/enums"
)

func TestActorHelpers(t *testing.T) {
	id := uuid.New()
	vendorID := uuid.New()

	actor := NewActor(id, enums.ActorRoleVendor).WithVendor(vendorID)
	if actor.ID == nil || *actor.ID != id {
		t.Fatalf("expected actor id %s", id)
	}
	if actor.VendorID == nil || *actor.VendorID != vendorID {
		t.Fatalf("expected vendor scope %s", vendorID)
	}
	if role := actor.RolePtr(); role == nil || *role != enums.ActorRoleVendor {
		t.Fatalf("unexpected role pointer %v", role)
	}

	system := SystemActor()
	if system.ID != nil {
		t.Fatal("system actor must not carry an id")
	}
	if (Actor{}).RolePtr() != nil {
		t.Fatal("empty role should be nil")
	}
}

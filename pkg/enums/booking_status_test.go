package enums

import "testing"

func TestParseBookingStatus(t *testing.T) {
	for _, status := range BookingStatuses() {
		parsed, err := ParseBookingStatus(string(status))
		if err != nil {
			t.Fatalf("parse %s: %v", status, err)
		}
		if parsed != status {
			t.Fatalf("expected %s, got %s", status, parsed)
		}
	}

	for _, raw := range []string{"", "pending", "SHIPPED", "COMPLETED "} {
		if _, err := ParseBookingStatus(raw); err == nil {
			t.Fatalf("expected %q to be rejected", raw)
		}
	}
}

func TestBookingStatusTerminal(t *testing.T) {
	terminal := map[BookingStatus]bool{
		BookingStatusCompleted: true,
		BookingStatusCancelled: true,
		BookingStatusRefunded:  true,
	}
	for _, status := range BookingStatuses() {
		if status.IsTerminal() != terminal[status] {
			t.Fatalf("unexpected terminal flag for %s", status)
		}
	}
	if len(BookingStatuses()) != 9 {
		t.Fatalf("expected nine statuses, got %d", len(BookingStatuses()))
	}
}

func TestParseActorRoleIsCaseInsensitive(t *testing.T) {
	role, err := ParseActorRole(" Manager ")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if role != ActorRoleManager || !role.IsStaff() {
		t.Fatalf("unexpected role %q", role)
	}
	if ActorRoleVendor.IsStaff() {
		t.Fatal("vendors are not platform staff")
	}
	if _, err := ParseActorRole("owner"); err == nil {
		t.Fatal("expected unknown role to be rejected")
	}
}

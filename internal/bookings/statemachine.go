package bookings

import (
	"time"

	"gorm.io/gorm"

	"github.com/glowcall/glowcall-backend/pkg/enums"
)

// allowedSources lists, per target status, every status a booking may leave
// to reach it. PENDING is entered at intake only.
var allowedSources = map[enums.BookingStatus][]enums.BookingStatus{
	enums.BookingStatusPending: nil,
	enums.BookingStatusAwaitingManager: {
		enums.BookingStatusPending,
		enums.BookingStatusAwaitingVendorResponse,
		enums.BookingStatusAwaitingBeautician,
		enums.BookingStatusConfirmed,
	},
	enums.BookingStatusAwaitingVendorResponse: {
		enums.BookingStatusAwaitingManager,
	},
	enums.BookingStatusAwaitingBeautician: {
		enums.BookingStatusPending,
		enums.BookingStatusAwaitingVendorResponse,
	},
	enums.BookingStatusConfirmed: {
		enums.BookingStatusAwaitingBeautician,
		enums.BookingStatusAwaitingVendorResponse,
	},
	enums.BookingStatusInProgress: {
		enums.BookingStatusConfirmed,
	},
	enums.BookingStatusCompleted: {
		enums.BookingStatusConfirmed,
		enums.BookingStatusInProgress,
	},
	enums.BookingStatusCancelled: {
		enums.BookingStatusPending,
		enums.BookingStatusAwaitingManager,
		enums.BookingStatusAwaitingVendorResponse,
		enums.BookingStatusAwaitingBeautician,
		enums.BookingStatusConfirmed,
		enums.BookingStatusInProgress,
	},
	enums.BookingStatusRefunded: {
		enums.BookingStatusConfirmed,
		enums.BookingStatusInProgress,
	},
}

// AllowedSources returns a copy of the statuses from which target is reachable.
func AllowedSources(target enums.BookingStatus) []enums.BookingStatus {
	sources := allowedSources[target]
	out := make([]enums.BookingStatus, len(sources))
	copy(out, sources)
	return out
}

// CanTransition reports whether the table has an edge from -> to.
func CanTransition(from, to enums.BookingStatus) bool {
	return containsStatus(allowedSources[to], from)
}

// effectiveSources narrows the table entry for target to the statuses an
// operation accepts. A nil restriction means the table alone decides.
func effectiveSources(target enums.BookingStatus, restrict []enums.BookingStatus) []enums.BookingStatus {
	table := allowedSources[target]
	if restrict == nil {
		return AllowedSources(target)
	}
	out := make([]enums.BookingStatus, 0, len(restrict))
	for _, status := range restrict {
		if containsStatus(table, status) {
			out = append(out, status)
		}
	}
	return out
}

// sideEffects returns the column updates that always accompany entering target.
func sideEffects(target enums.BookingStatus, now time.Time) map[string]any {
	updates := map[string]any{
		"status":     target,
		"updated_at": now,
	}
	switch target {
	case enums.BookingStatusAwaitingManager:
		updates["vendor_id"] = nil
		updates["employee_id"] = nil
		updates["manager_assigned_at"] = nil
		updates["vendor_responded_at"] = nil
		updates["beautician_assigned_at"] = nil
	case enums.BookingStatusAwaitingVendorResponse:
		updates["manager_assigned_at"] = gorm.Expr("COALESCE(manager_assigned_at, ?)", now)
	case enums.BookingStatusConfirmed:
		updates["vendor_responded_at"] = gorm.Expr("COALESCE(vendor_responded_at, ?)", now)
	case enums.BookingStatusCompleted:
		updates["customer_notified_at"] = now
	}
	return updates
}

func containsStatus(list []enums.BookingStatus, status enums.BookingStatus) bool {
	for _, candidate := range list {
		if candidate == status {
			return true
		}
	}
	return false
}

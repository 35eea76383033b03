package enums

import "fmt"

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingStatusPending                BookingStatus = "PENDING"
	BookingStatusAwaitingManager        BookingStatus = "AWAITING_MANAGER"
	BookingStatusAwaitingVendorResponse BookingStatus = "AWAITING_VENDOR_RESPONSE"
	BookingStatusAwaitingBeautician     BookingStatus = "AWAITING_BEAUTICIAN"
	BookingStatusConfirmed              BookingStatus = "CONFIRMED"
	BookingStatusInProgress             BookingStatus = "IN_PROGRESS"
	BookingStatusCompleted              BookingStatus = "COMPLETED"
	BookingStatusCancelled              BookingStatus = "CANCELLED"
	BookingStatusRefunded               BookingStatus = "REFUNDED"
)

var validBookingStatuses = []BookingStatus{
	BookingStatusPending,
	BookingStatusAwaitingManager,
	BookingStatusAwaitingVendorResponse,
	BookingStatusAwaitingBeautician,
	BookingStatusConfirmed,
	BookingStatusInProgress,
	BookingStatusCompleted,
	BookingStatusCancelled,
	BookingStatusRefunded,
}

// BookingStatuses returns every known status in lifecycle order.
func BookingStatuses() []BookingStatus {
	out := make([]BookingStatus, len(validBookingStatuses))
	copy(out, validBookingStatuses)
	return out
}

// String implements fmt.Stringer.
func (s BookingStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known BookingStatus.
func (s BookingStatus) IsValid() bool {
	for _, candidate := range validBookingStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are modeled from s.
func (s BookingStatus) IsTerminal() bool {
	switch s {
	case BookingStatusCompleted, BookingStatusCancelled, BookingStatusRefunded:
		return true
	default:
		return false
	}
}

// ParseBookingStatus converts raw input into a BookingStatus.
func ParseBookingStatus(value string) (BookingStatus, error) {
	for _, candidate := range validBookingStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid booking status %q", value)
}

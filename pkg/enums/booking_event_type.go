package enums

import "fmt"

// BookingEventType classifies rows of the booking audit log.
type BookingEventType string

const (
	BookingEventCreated               BookingEventType = "CREATED"
	BookingEventStatusChanged         BookingEventType = "STATUS_CHANGED"
	BookingEventManagerAssignedVendor BookingEventType = "MANAGER_ASSIGNED_VENDOR"
	BookingEventVendorAccepted        BookingEventType = "VENDOR_ACCEPTED"
	BookingEventVendorRejected        BookingEventType = "VENDOR_REJECTED"
	BookingEventBeauticianAssigned    BookingEventType = "BEAUTICIAN_ASSIGNED"
	BookingEventCancelled             BookingEventType = "CANCELLED"
	BookingEventInvoiceGenerated      BookingEventType = "INVOICE_GENERATED"
)

var validBookingEventTypes = []BookingEventType{
	BookingEventCreated,
	BookingEventStatusChanged,
	BookingEventManagerAssignedVendor,
	BookingEventVendorAccepted,
	BookingEventVendorRejected,
	BookingEventBeauticianAssigned,
	BookingEventCancelled,
	BookingEventInvoiceGenerated,
}

// String implements fmt.Stringer.
func (t BookingEventType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known BookingEventType.
func (t BookingEventType) IsValid() bool {
	for _, candidate := range validBookingEventTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseBookingEventType converts raw input into a BookingEventType.
func ParseBookingEventType(value string) (BookingEventType, error) {
	for _, candidate := range validBookingEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid booking event type %q", value)
}

package enums

import "fmt"

// BookingType distinguishes at-home catalog bookings from salon visits.
type BookingType string

const (
	BookingTypeAtHome     BookingType = "AT_HOME"
	BookingTypeSalonVisit BookingType = "SALON_VISIT"
)

var validBookingTypes = []BookingType{
	BookingTypeAtHome,
	BookingTypeSalonVisit,
}

// String implements fmt.Stringer.
func (t BookingType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known BookingType.
func (t BookingType) IsValid() bool {
	for _, candidate := range validBookingTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseBookingType converts raw input into a BookingType.
func ParseBookingType(value string) (BookingType, error) {
	for _, candidate := range validBookingTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid booking type %q", value)
}

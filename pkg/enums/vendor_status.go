package enums

import "fmt"

// VendorStatus tracks vendor onboarding. Only approved vendors receive bookings.
type VendorStatus string

const (
	VendorStatusPending   VendorStatus = "PENDING"
	VendorStatusApproved  VendorStatus = "APPROVED"
	VendorStatusSuspended VendorStatus = "SUSPENDED"
	VendorStatusRejected  VendorStatus = "REJECTED"
)

var validVendorStatuses = []VendorStatus{
	VendorStatusPending,
	VendorStatusApproved,
	VendorStatusSuspended,
	VendorStatusRejected,
}

func (v VendorStatus) String() string {
	return string(v)
}

func (v VendorStatus) IsValid() bool {
	for _, candidate := range validVendorStatuses {
		if candidate == v {
			return true
		}
	}
	return false
}

func ParseVendorStatus(value string) (VendorStatus, error) {
	for _, candidate := range validVendorStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid vendor status %q", value)
}

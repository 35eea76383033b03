package enums

import "fmt"

// InvoiceStatus maps to invoices.status.
type InvoiceStatus string

const (
	InvoiceStatusIssued InvoiceStatus = "ISSUED"
	InvoiceStatusVoid   InvoiceStatus = "VOID"
)

var validInvoiceStatuses = []InvoiceStatus{
	InvoiceStatusIssued,
	InvoiceStatusVoid,
}

// IsValid reports whether the value is a known InvoiceStatus.
func (s InvoiceStatus) IsValid() bool {
	for _, candidate := range validInvoiceStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// PayoutStatus maps to payouts.status.
type PayoutStatus string

const (
	PayoutStatusPending   PayoutStatus = "PENDING"
	PayoutStatusPaid      PayoutStatus = "PAID"
	PayoutStatusCancelled PayoutStatus = "CANCELLED"
)

var validPayoutStatuses = []PayoutStatus{
	PayoutStatusPending,
	PayoutStatusPaid,
	PayoutStatusCancelled,
}

// IsValid reports whether the value is a known PayoutStatus.
func (s PayoutStatus) IsValid() bool {
	for _, candidate := range validPayoutStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParsePayoutStatus converts raw input into a PayoutStatus.
func ParsePayoutStatus(value string) (PayoutStatus, error) {
	for _, candidate := range validPayoutStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payout status %q", value)
}

// PayoutProviderType identifies who receives a payout.
type PayoutProviderType string

const (
	PayoutProviderVendor     PayoutProviderType = "VENDOR"
	PayoutProviderBeautician PayoutProviderType = "BEAUTICIAN"
)

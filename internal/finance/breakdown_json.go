package finance

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

type breakdownWire struct {
	BaseAmount         string `json:"baseAmount"`
	VatAmount          string `json:"vatAmount"`
	TotalAmount        string `json:"totalAmount"`
	PlatformCommission string `json:"platformCommission"`
	VendorPayout       string `json:"vendorPayout"`
}

// MarshalJSON renders every amount as a fixed two-decimal string.
func (b Breakdown) MarshalJSON() ([]byte, error) {
	return json.Marshal(breakdownWire{
		BaseAmount:         b.BaseAmount.StringFixed(2),
		VatAmount:          b.VatAmount.StringFixed(2),
		TotalAmount:        b.TotalAmount.StringFixed(2),
		PlatformCommission: b.PlatformCommission.StringFixed(2),
		VendorPayout:       b.VendorPayout.StringFixed(2),
	})
}

// UnmarshalJSON accepts the string form written by MarshalJSON.
func (b *Breakdown) UnmarshalJSON(data []byte) error {
	var wire breakdownWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	fields := []struct {
		raw string
		dst *decimal.Decimal
	}{
		{wire.BaseAmount, &b.BaseAmount},
		{wire.VatAmount, &b.VatAmount},
		{wire.TotalAmount, &b.TotalAmount},
		{wire.PlatformCommission, &b.PlatformCommission},
		{wire.VendorPayout, &b.VendorPayout},
	}
	for _, f := range fields {
		if f.raw == "" {
			*f.dst = decimal.Zero
			continue
		}
		v, err := decimal.NewFromString(f.raw)
		if err != nil {
			return err
		}
		*f.dst = v
	}
	return nil
}

package finance

import (
	"github.com/shopspring/decimal"
)

var (
	defaultTaxRate        = decimal.RequireFromString("0.16")
	defaultCommissionRate = decimal.RequireFromString("0.15")
	one                   = decimal.NewFromInt(1)
)

// Rates is the rate table applied to every booking.
type Rates struct {
	TaxRate        decimal.Decimal
	CommissionRate decimal.Decimal
}

// DefaultRates returns the canonical 16% VAT and 15% platform commission.
func DefaultRates() Rates {
	return Rates{TaxRate: defaultTaxRate, CommissionRate: defaultCommissionRate}
}

// PayoutRate is the provider share, 1 - CommissionRate.
func (r Rates) PayoutRate() decimal.Decimal {
	return one.Sub(r.CommissionRate)
}

// Breakdown is the financial snapshot of a booking. Amounts are rounded to
// two decimals, half away from zero.
type Breakdown struct {
	BaseAmount         decimal.Decimal `json:"baseAmount"`
	VatAmount          decimal.Decimal `json:"vatAmount"`
	TotalAmount        decimal.Decimal `json:"totalAmount"`
	PlatformCommission decimal.Decimal `json:"platformCommission"`
	VendorPayout       decimal.Decimal `json:"vendorPayout"`
}

// Engine computes breakdowns from a fixed rate table.
type Engine struct {
	rates Rates
}

// NewEngine builds an engine. Zero rates fall back to the defaults.
func NewEngine(rates Rates) *Engine {
	if rates.TaxRate.IsZero() && rates.CommissionRate.IsZero() {
		rates = DefaultRates()
	}
	return &Engine{rates: rates}
}

// Rates returns the engine's rate table.
func (e *Engine) Rates() Rates {
	return e.rates
}

// CalculateFromBase derives VAT, total, commission and payout from a
// pre-tax base. Negative input is treated as zero.
func (e *Engine) CalculateFromBase(base decimal.Decimal) Breakdown {
	if base.IsNegative() {
		base = decimal.Zero
	}
	return Breakdown{
		BaseAmount:         round2(base),
		VatAmount:          round2(base.Mul(e.rates.TaxRate)),
		TotalAmount:        round2(base.Add(base.Mul(e.rates.TaxRate))),
		PlatformCommission: round2(base.Mul(e.rates.CommissionRate)),
		VendorPayout:       round2(base.Mul(e.rates.PayoutRate())),
	}
}

// CalculateFromTotal treats the entered amount as the base. Stored booking
// totals are pre-tax, so invoicing applies the same formula.
func (e *Engine) CalculateFromTotal(entered decimal.Decimal) Breakdown {
	return e.CalculateFromBase(entered)
}

func round2(v decimal.Decimal) decimal.Decimal {
	return v.Round(2)
}

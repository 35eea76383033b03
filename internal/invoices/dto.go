package invoices

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/glowcall/glowcall-backend/pkg/db/models"
	"github.com/glowcall/glowcall-backend/pkg/enums"
)

// InvoiceDTO is the public shape of an invoice. Snapshots are passed through
// as stored; they are already camelCase with fixed two-decimal amounts.
type InvoiceDTO struct {
	ID                 uuid.UUID           `json:"id"`
	BookingID          uuid.UUID           `json:"bookingId"`
	InvoiceNumber      string              `json:"invoiceNumber"`
	Status             enums.InvoiceStatus `json:"status"`
	Customer           json.RawMessage     `json:"customer"`
	Items              json.RawMessage     `json:"items"`
	FinancialBreakdown json.RawMessage     `json:"financialBreakdown"`
	IssuedAt           time.Time           `json:"issuedAt"`
	CreatedAt          time.Time           `json:"createdAt"`
}

// PayoutDTO is the provider share of an invoice.
type PayoutDTO struct {
	ID           uuid.UUID                `json:"id"`
	BookingID    uuid.UUID                `json:"bookingId"`
	InvoiceID    uuid.UUID                `json:"invoiceId"`
	ProviderType enums.PayoutProviderType `json:"providerType"`
	ProviderID   uuid.UUID                `json:"providerId"`
	Amount       string                   `json:"amount"`
	Status       enums.PayoutStatus       `json:"status"`
	PaidAt       *time.Time               `json:"paidAt,omitempty"`
	CreatedAt    time.Time                `json:"createdAt"`
}

// DetailsDTO pairs an invoice with its payout.
type DetailsDTO struct {
	Invoice InvoiceDTO `json:"invoice"`
	Payout  *PayoutDTO `json:"payout,omitempty"`
}

// NewInvoiceDTO maps a stored invoice.
func NewInvoiceDTO(invoice *models.Invoice) InvoiceDTO {
	return InvoiceDTO{
		ID:                 invoice.ID,
		BookingID:          invoice.BookingID,
		InvoiceNumber:      invoice.InvoiceNumber,
		Status:             invoice.Status,
		Customer:           rawOrNull(invoice.CustomerSnapshot),
		Items:              rawOrNull(invoice.ItemsSnapshot),
		FinancialBreakdown: rawOrNull(invoice.FinancialBreakdown),
		IssuedAt:           invoice.IssuedAt,
		CreatedAt:          invoice.CreatedAt,
	}
}

// NewPayoutDTO maps a stored payout; nil stays nil.
func NewPayoutDTO(payout *models.Payout) *PayoutDTO {
	if payout == nil {
		return nil
	}
	return &PayoutDTO{
		ID:           payout.ID,
		BookingID:    payout.BookingID,
		InvoiceID:    payout.InvoiceID,
		ProviderType: payout.ProviderType,
		ProviderID:   payout.ProviderID,
		Amount:       payout.Amount.StringFixed(2),
		Status:       payout.Status,
		PaidAt:       payout.PaidAt,
		CreatedAt:    payout.CreatedAt,
	}
}

// NewDetailsDTO maps Get's result.
func NewDetailsDTO(details *Details) DetailsDTO {
	return DetailsDTO{
		Invoice: NewInvoiceDTO(details.Invoice),
		Payout:  NewPayoutDTO(details.Payout),
	}
}

func rawOrNull(data []byte) json.RawMessage {
	if len(data) == 0 {
		return json.RawMessage("null")
	}
	return json.RawMessage(data)
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/glowcall/glowcall-backend/pkg/enums"
)

// Invoice is the immutable billing snapshot of a booking. One per booking.
type Invoice struct {
	ID                 uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BookingID          uuid.UUID           `gorm:"column:booking_id;type:uuid;not null;uniqueIndex"`
	InvoiceNumber      string              `gorm:"column:invoice_number;not null;uniqueIndex"`
	Status             enums.InvoiceStatus `gorm:"column:status;type:text;not null"`
	CustomerSnapshot   datatypes.JSON      `gorm:"column:customer_snapshot;type:jsonb;not null"`
	ItemsSnapshot      datatypes.JSON      `gorm:"column:items_snapshot;type:jsonb;not null"`
	FinancialBreakdown datatypes.JSON      `gorm:"column:financial_breakdown;type:jsonb;not null"`
	IssuedAt           time.Time           `gorm:"column:issued_at;not null"`
	CreatedAt          time.Time           `gorm:"column:created_at;autoCreateTime"`
}

// Payout is the provider's share of an invoiced booking.
type Payout struct {
	ID           uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BookingID    uuid.UUID                `gorm:"column:booking_id;type:uuid;not null;uniqueIndex"`
	InvoiceID    uuid.UUID                `gorm:"column:invoice_id;type:uuid;not null"`
	ProviderType enums.PayoutProviderType `gorm:"column:provider_type;type:text;not null"`
	ProviderID   uuid.UUID                `gorm:"column:provider_id;type:uuid;not null"`
	Amount       decimal.Decimal          `gorm:"column:amount;type:numeric(12,2);not null"`
	Status       enums.PayoutStatus       `gorm:"column:status;type:text;not null"`
	PaidAt       *time.Time               `gorm:"column:paid_at"`
	CreatedAt    time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}

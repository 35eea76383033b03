package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/glowcall/glowcall-backend/pkg/enums"
)

// Booking is the aggregate root of the lifecycle engine. It owns its items,
// products and events; every other party is referenced by id only.
type Booking struct {
	ID                   uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID           uuid.UUID           `gorm:"column:customer_id;type:uuid;not null"`
	VendorID             *uuid.UUID          `gorm:"column:vendor_id;type:uuid"`
	ManagerID            *uuid.UUID          `gorm:"column:manager_id;type:uuid"`
	EmployeeID           *uuid.UUID          `gorm:"column:employee_id;type:uuid"`
	AddressID            *uuid.UUID          `gorm:"column:address_id;type:uuid"`
	CatalogServiceID     *uuid.UUID          `gorm:"column:catalog_service_id;type:uuid"`
	BookingType          enums.BookingType   `gorm:"column:booking_type;type:text;not null"`
	Status               enums.BookingStatus `gorm:"column:status;type:text;not null"`
	ScheduledDate        time.Time           `gorm:"column:scheduled_date;type:date;not null"`
	ScheduledTime        string              `gorm:"column:scheduled_time;not null"`
	Duration             int                 `gorm:"column:duration;not null"`
	ServiceSubtotal      decimal.Decimal     `gorm:"column:service_subtotal;type:numeric(12,2);not null"`
	ProductSubtotal      decimal.Decimal     `gorm:"column:product_subtotal;type:numeric(12,2);not null"`
	Subtotal             decimal.Decimal     `gorm:"column:subtotal;type:numeric(12,2);not null"`
	Discount             decimal.Decimal     `gorm:"column:discount;type:numeric(12,2);not null"`
	Tax                  decimal.Decimal     `gorm:"column:tax;type:numeric(12,2);not null"`
	Total                decimal.Decimal     `gorm:"column:total;type:numeric(12,2);not null"`
	VendorPayout         *decimal.Decimal    `gorm:"column:vendor_payout;type:numeric(12,2)"`
	PlatformRevenue      *decimal.Decimal    `gorm:"column:platform_revenue;type:numeric(12,2)"`
	Notes                *string             `gorm:"column:notes"`
	CancellationReason   *string             `gorm:"column:cancellation_reason"`
	ManagerAssignedAt    *time.Time          `gorm:"column:manager_assigned_at"`
	VendorRespondedAt    *time.Time          `gorm:"column:vendor_responded_at"`
	BeauticianAssignedAt *time.Time          `gorm:"column:beautician_assigned_at"`
	CustomerNotifiedAt   *time.Time          `gorm:"column:customer_notified_at"`
	Items                []BookingItem       `gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE"`
	Products             []BookingProduct    `gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE"`
	CreatedAt            time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// BookingItem is one service line captured at intake. Catalog lines carry
// CatalogServiceID and VendorPayout; ad-hoc lines carry ServiceID.
type BookingItem struct {
	ID               uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BookingID        uuid.UUID        `gorm:"column:booking_id;type:uuid;not null"`
	CatalogServiceID *uuid.UUID       `gorm:"column:catalog_service_id;type:uuid"`
	ServiceID        *uuid.UUID       `gorm:"column:service_id;type:uuid"`
	Name             string           `gorm:"column:name;not null"`
	Quantity         int              `gorm:"column:quantity;not null"`
	Price            decimal.Decimal  `gorm:"column:price;type:numeric(12,2);not null"`
	BasePrice        decimal.Decimal  `gorm:"column:base_price;type:numeric(12,2);not null"`
	Duration         int              `gorm:"column:duration;not null"`
	VendorPayout     *decimal.Decimal `gorm:"column:vendor_payout;type:numeric(12,2)"`
	CreatedAt        time.Time        `gorm:"column:created_at;autoCreateTime"`
}

// BookingProduct is one merged product-catalog selection.
type BookingProduct struct {
	ID               uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BookingID        uuid.UUID       `gorm:"column:booking_id;type:uuid;not null"`
	ProductCatalogID uuid.UUID       `gorm:"column:product_catalog_id;type:uuid;not null"`
	Name             string          `gorm:"column:name;not null"`
	Quantity         int             `gorm:"column:quantity;not null"`
	UnitPrice        decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	VendorPayout     decimal.Decimal `gorm:"column:vendor_payout;type:numeric(12,2);not null"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime"`
}

// LineTotal is quantity × unit price.
func (p BookingProduct) LineTotal() decimal.Decimal {
	return p.UnitPrice.Mul(decimal.NewFromInt(int64(p.Quantity)))
}

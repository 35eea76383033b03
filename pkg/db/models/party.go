package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/glowcall/glowcall-backend/pkg/enums"
)

// Customer is the booking owner.
type Customer struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	Email     string    `gorm:"column:email;not null;uniqueIndex"`
	Phone     *string   `gorm:"column:phone"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// Address is a delivery location owned by a customer.
type Address struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID uuid.UUID `gorm:"column:customer_id;type:uuid;not null"`
	Street     string    `gorm:"column:street;not null"`
	City       string    `gorm:"column:city;not null"`
	State      *string   `gorm:"column:state"`
	PostalCode *string   `gorm:"column:postal_code"`
	Notes      *string   `gorm:"column:notes"`
	IsDefault  bool      `gorm:"column:is_default;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

// Vendor is a salon or service provider.
type Vendor struct {
	ID        uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string             `gorm:"column:name;not null"`
	Email     *string            `gorm:"column:email"`
	Phone     *string            `gorm:"column:phone"`
	Status    enums.VendorStatus `gorm:"column:status;type:text;not null"`
	CreatedAt time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// Employee is a beautician working for a vendor.
type Employee struct {
	ID        uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	VendorID  uuid.UUID            `gorm:"column:vendor_id;type:uuid;not null"`
	Name      string               `gorm:"column:name;not null"`
	Email     *string              `gorm:"column:email"`
	Phone     *string              `gorm:"column:phone"`
	Status    enums.EmployeeStatus `gorm:"column:status;type:text;not null"`
	CreatedAt time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// ServiceCatalog is a platform-defined service with a fixed customer price
// and vendor payout.
type ServiceCatalog struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name          string          `gorm:"column:name;not null"`
	CustomerPrice decimal.Decimal `gorm:"column:customer_price;type:numeric(12,2);not null"`
	BasePrice     decimal.Decimal `gorm:"column:base_price;type:numeric(12,2);not null"`
	VendorPayout  decimal.Decimal `gorm:"column:vendor_payout;type:numeric(12,2);not null"`
	Duration      int             `gorm:"column:duration;not null"`
	IsActive      bool            `gorm:"column:is_active;not null"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (ServiceCatalog) TableName() string { return "service_catalog" }

// Service is a vendor-owned listing used by the ad-hoc flow.
type Service struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	VendorID  uuid.UUID       `gorm:"column:vendor_id;type:uuid;not null"`
	Name      string          `gorm:"column:name;not null"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Duration  int             `gorm:"column:duration;not null"`
	IsActive  bool            `gorm:"column:is_active;not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}

// ProductCatalog is a platform-defined retail product sold with a booking.
type ProductCatalog struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string          `gorm:"column:name;not null"`
	UnitPrice    decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	VendorPayout decimal.Decimal `gorm:"column:vendor_payout;type:numeric(12,2);not null"`
	IsActive     bool            `gorm:"column:is_active;not null"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (ProductCatalog) TableName() string { return "product_catalog" }

package dbtest

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/glowcall/glowcall-backend/pkg/db/models"
	"github.com/glowcall/glowcall-backend/pkg/enums"
)

// MustCustomer inserts a customer with a unique email.
func MustCustomer(t testing.TB, conn *gorm.DB) *models.Customer {
	t.Helper()
	phone := "+15550001111"
	customer := &models.Customer{
		ID:    uuid.New(),
		Name:  "Dana Client",
		Email: fmt.Sprintf("client_%s@example.com", uuid.NewString()),
		Phone: &phone,
	}
	mustCreate(t, conn, customer)
	return customer
}

// MustAddress inserts an address for the customer.
func MustAddress(t testing.TB, conn *gorm.DB, customerID uuid.UUID, isDefault bool) *models.Address {
	t.Helper()
	address := &models.Address{
		ID:         uuid.New(),
		CustomerID: customerID,
		Street:     "12 Palm Row",
		City:       "Austin",
		IsDefault:  isDefault,
	}
	mustCreate(t, conn, address)
	return address
}

// MustVendor inserts a vendor with the given status.
func MustVendor(t testing.TB, conn *gorm.DB, status enums.VendorStatus) *models.Vendor {
	t.Helper()
	vendor := &models.Vendor{
		ID:     uuid.New(),
		Name:   "Glow Studio",
		Status: status,
	}
	mustCreate(t, conn, vendor)
	return vendor
}

// MustEmployee inserts an employee under the vendor.
func MustEmployee(t testing.TB, conn *gorm.DB, vendorID uuid.UUID, status enums.EmployeeStatus) *models.Employee {
	t.Helper()
	employee := &models.Employee{
		ID:       uuid.New(),
		VendorID: vendorID,
		Name:     "Riley Stylist",
		Status:   status,
	}
	mustCreate(t, conn, employee)
	return employee
}

// MustCatalogService inserts an active platform catalog service.
func MustCatalogService(t testing.TB, conn *gorm.DB, price, payout string, duration int) *models.ServiceCatalog {
	t.Helper()
	svc := &models.ServiceCatalog{
		ID:            uuid.New(),
		Name:          "Signature Facial",
		CustomerPrice: decimal.RequireFromString(price),
		BasePrice:     decimal.RequireFromString(price),
		VendorPayout:  decimal.RequireFromString(payout),
		Duration:      duration,
		IsActive:      true,
	}
	mustCreate(t, conn, svc)
	return svc
}

// MustService inserts an active vendor-owned service.
func MustService(t testing.TB, conn *gorm.DB, vendorID uuid.UUID, price string, duration int) *models.Service {
	t.Helper()
	svc := &models.Service{
		ID:       uuid.New(),
		VendorID: vendorID,
		Name:     "Blowout",
		Price:    decimal.RequireFromString(price),
		Duration: duration,
		IsActive: true,
	}
	mustCreate(t, conn, svc)
	return svc
}

// MustProduct inserts an active catalog product.
func MustProduct(t testing.TB, conn *gorm.DB, unitPrice, payout string) *models.ProductCatalog {
	t.Helper()
	product := &models.ProductCatalog{
		ID:           uuid.New(),
		Name:         "Argan Oil",
		UnitPrice:    decimal.RequireFromString(unitPrice),
		VendorPayout: decimal.RequireFromString(payout),
		IsActive:     true,
	}
	mustCreate(t, conn, product)
	return product
}

func mustCreate(t testing.TB, conn *gorm.DB, value any) {
	t.Helper()
	if err := conn.Create(value).Error; err != nil {
		t.Fatalf("seed %T: %v", value, err)
	}
}

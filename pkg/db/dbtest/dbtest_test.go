package dbtest

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/glowcall/glowcall-backend/pkg/db/models"
	"github.com/glowcall/glowcall-backend/pkg/enums"
)

func TestSchemaRoundTripsDecimalsAndUUIDs(t *testing.T) {
	client := Open(t)
	conn := client.DB()

	vendor := MustVendor(t, conn, enums.VendorStatusApproved)
	svc := MustCatalogService(t, conn, "99.95", "84.96", 45)

	var gotVendor models.Vendor
	if err := conn.First(&gotVendor, "id = ?", vendor.ID).Error; err != nil {
		t.Fatalf("load vendor: %v", err)
	}
	if gotVendor.Status != enums.VendorStatusApproved {
		t.Fatalf("unexpected vendor status %s", gotVendor.Status)
	}

	var gotSvc models.ServiceCatalog
	if err := conn.First(&gotSvc, "id = ?", svc.ID).Error; err != nil {
		t.Fatalf("load service: %v", err)
	}
	if !gotSvc.CustomerPrice.Equal(decimal.RequireFromString("99.95")) {
		t.Fatalf("expected 99.95, got %s", gotSvc.CustomerPrice)
	}
	if !gotSvc.IsActive {
		t.Fatal("expected active service")
	}
}

func TestOpenIsolatesDatabases(t *testing.T) {
	first := Open(t)
	MustCustomer(t, first.DB())

	second := Open(t)
	var count int64
	if err := second.DB().Model(&models.Customer{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected isolated database, found %d customers", count)
	}
}

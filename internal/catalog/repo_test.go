package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/glowcall/glowcall-backend/pkg/db/dbtest"
	"github.com/glowcall/glowcall-backend/pkg/db/models"
	"github.com/glowcall/glowcall-backend/pkg/enums"
)

func TestActiveLookupsSkipInactiveRows(t *testing.T) {
	client := dbtest.Open(t)
	conn := client.DB()
	repo := NewRepository(conn)

	active := dbtest.MustCatalogService(t, conn, "100", "85", 60)
	inactive := dbtest.MustCatalogService(t, conn, "50", "40", 30)
	if err := conn.Model(&models.ServiceCatalog{}).Where("id = ?", inactive.ID).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	rows, err := repo.ActiveCatalogServices(context.Background(), []uuid.UUID{active.ID, inactive.ID})
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != active.ID {
		t.Fatalf("expected only the active service, got %+v", rows)
	}

	vendor := dbtest.MustVendor(t, conn, enums.VendorStatusApproved)
	svc := dbtest.MustService(t, conn, vendor.ID, "40", 45)
	services, err := repo.ActiveServices(context.Background(), []uuid.UUID{svc.ID, uuid.New()})
	if err != nil {
		t.Fatalf("services lookup: %v", err)
	}
	if len(services) != 1 || services[0].VendorID != vendor.ID {
		t.Fatalf("unexpected services %+v", services)
	}

	product := dbtest.MustProduct(t, conn, "12.50", "10")
	products, err := repo.ActiveProducts(context.Background(), []uuid.UUID{product.ID})
	if err != nil {
		t.Fatalf("products lookup: %v", err)
	}
	if len(products) != 1 || products[0].UnitPrice.String() != "12.5" {
		t.Fatalf("unexpected products %+v", products)
	}
}

func TestEmptyLookupsSkipQuery(t *testing.T) {
	repo := NewRepository(nil)
	rows, err := repo.ActiveProducts(context.Background(), nil)
	if err != nil || len(rows) != 0 {
		t.Fatalf("expected empty result, got %v / %v", rows, err)
	}
}

func TestUniqueIDsPreservesOrder(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	got := UniqueIDs([]uuid.UUID{a, b, a, b, a})
	if len(got) != 2 || got[0] != a || got[1] != b {
		t.Fatalf("unexpected ids %v", got)
	}
}

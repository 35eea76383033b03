package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/glowcall/glowcall-backend/pkg/migrate"
)

func readMigration(t *testing.T, suffix string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", "*_"+suffix+".sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no %s migration file found", suffix)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func TestBookingsMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "create_bookings")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS bookings",
		"CREATE TABLE IF NOT EXISTS booking_items",
		"CREATE TABLE IF NOT EXISTS booking_products",
		"CREATE TABLE IF NOT EXISTS booking_events",
		"FOREIGN KEY (booking_id) REFERENCES bookings(id) ON DELETE CASCADE",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_booking_products_booking_product",
		"CHECK (total >= 0)",
		"DROP TABLE IF EXISTS bookings",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestInvoicesMigrationEnforcesOnePerBooking(t *testing.T) {
	content := readMigration(t, "create_invoices_payouts")

	checks := []string{
		"CONSTRAINT invoices_booking_id_key UNIQUE (booking_id)",
		"CONSTRAINT invoices_invoice_number_key UNIQUE (invoice_number)",
		"CONSTRAINT payouts_booking_id_key UNIQUE (booking_id)",
		"DROP TABLE IF EXISTS invoices",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestValidateDirAcceptsMigrations(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("expected migrations to validate: %v", err)
	}
}

func TestValidateDirRejectsBadFilename(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := migrate.ValidateDir(dir); err == nil {
		t.Fatal("expected invalid filename error")
	}
}

func TestCreateSQLMigrationSanitizesName(t *testing.T) {
	dir := t.TempDir()
	path, err := migrate.CreateSQLMigration(dir, "Add Payout Paid At!")
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	if !strings.HasSuffix(path, "_add_payout_paid_at.sql") {
		t.Fatalf("unexpected filename %s", path)
	}
	if err := migrate.ValidateDir(dir); err != nil {
		t.Fatalf("created migration should validate: %v", err)
	}
}

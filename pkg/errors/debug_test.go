package errors

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestDumpCapturesTypedErrorAndReason(t *testing.T) {
	err := New(CodeNotFound, "vendor not found").WithReason("vendor_not_found")
	wrapped := fmt.Errorf("assign vendor: %w", err)

	d := Dump(wrapped)
	if d.Code != CodeNotFound {
		t.Fatalf("expected code %s got %s", CodeNotFound, d.Code)
	}
	if d.Reason != "vendor_not_found" {
		t.Fatalf("expected reason vendor_not_found got %q", d.Reason)
	}
	if d.Retryable {
		t.Fatal("not found must not be retryable")
	}
	if len(d.Chain) != 2 {
		t.Fatalf("expected chain of 2 got %d", len(d.Chain))
	}
}

func TestDumpExtractsPostgresFields(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "invoices_booking_id_key", TableName: "invoices"}
	d := Dump(Wrap(CodeDependency, pgErr, "insert invoice"))

	if d.PGCode != "23505" || d.PGConstraint != "invoices_booking_id_key" || d.PGTable != "invoices" {
		t.Fatalf("unexpected pg fields %+v", d)
	}
	if !d.Retryable {
		t.Fatal("dependency errors are retryable")
	}
}

func TestDumpNil(t *testing.T) {
	if d := Dump(nil); d.TopMessage != "" || d.Chain != nil {
		t.Fatalf("expected empty dump got %+v", d)
	}
}

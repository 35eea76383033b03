package customers

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/glowcall/glowcall-backend/pkg/db/dbtest"
)

func TestFindByID(t *testing.T) {
	client := dbtest.Open(t)
	repo := NewRepository(client.DB())
	customer := dbtest.MustCustomer(t, client.DB())

	got, err := repo.FindByID(context.Background(), customer.ID)
	if err != nil {
		t.Fatalf("find customer: %v", err)
	}
	if got.Email != customer.Email || got.Phone == nil {
		t.Fatalf("unexpected customer %+v", got)
	}

	if _, err := repo.FindByID(context.Background(), uuid.New()); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected record not found, got %v", err)
	}
}

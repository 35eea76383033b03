package address

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/glowcall/glowcall-backend/pkg/db/models"
	pkgerrors "github.com/glowcall/glowcall-backend/pkg/errors"
)

// ReasonAddressRequired is reported when no rule yields an address.
const ReasonAddressRequired = "address_required"

// RawAddress is a free-form address captured at intake.
type RawAddress struct {
	Street     string  `json:"street"`
	City       string  `json:"city"`
	State      *string `json:"state,omitempty"`
	PostalCode *string `json:"postalCode,omitempty"`
	Notes      *string `json:"notes,omitempty"`
}

func (r *RawAddress) usable() bool {
	return r != nil && strings.TrimSpace(r.Street) != "" && strings.TrimSpace(r.City) != ""
}

// ResolveRequest carries the address inputs of a booking request.
type ResolveRequest struct {
	CustomerID uuid.UUID
	AddressID  *uuid.UUID
	Raw        *RawAddress
}

// Resolver picks the address a booking is delivered to.
type Resolver interface {
	Resolve(ctx context.Context, tx *gorm.DB, req ResolveRequest) (*models.Address, error)
}

type resolver struct {
	repo Repository
}

// NewResolver builds the address resolver.
func NewResolver(repo Repository) (Resolver, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "address repository required")
	}
	return &resolver{repo: repo}, nil
}

// Resolve tries, in order: an address id owned by the customer, a raw
// street+city (inserted within tx), then the customer's default address.
func (r *resolver) Resolve(ctx context.Context, tx *gorm.DB, req ResolveRequest) (*models.Address, error) {
	repo := r.repo.WithTx(tx)

	if req.AddressID != nil {
		owned, err := repo.FindOwned(ctx, *req.AddressID, req.CustomerID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load address")
		}
		if owned != nil {
			return owned, nil
		}
	}

	if req.Raw.usable() {
		created := &models.Address{
			ID:         uuid.New(),
			CustomerID: req.CustomerID,
			Street:     strings.TrimSpace(req.Raw.Street),
			City:       strings.TrimSpace(req.Raw.City),
			State:      trimmedPtr(req.Raw.State),
			PostalCode: trimmedPtr(req.Raw.PostalCode),
			Notes:      trimmedPtr(req.Raw.Notes),
		}
		if err := repo.Create(ctx, created); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create address")
		}
		return created, nil
	}

	fallback, err := repo.FindDefault(ctx, req.CustomerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load default address")
	}
	if fallback != nil {
		return fallback, nil
	}

	return nil, pkgerrors.New(pkgerrors.CodeValidation, "an address is required").WithReason(ReasonAddressRequired)
}

func trimmedPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

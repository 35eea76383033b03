package intake

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/glowcall/glowcall-backend/internal/address"
	"github.com/glowcall/glowcall-backend/pkg/enums"
	pkgerrors "github.com/glowcall/glowcall-backend/pkg/errors"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"

	defaultDurationMinutes = 60
)

var acceptedTimeLayouts = []string{"15:04", "15:04:05", "3:04 PM", "3:04PM"}

// ServiceSelection picks one vendor-owned service. Price and Quantity
// override the listing when set.
type ServiceSelection struct {
	ServiceID uuid.UUID        `json:"serviceId" validate:"required"`
	Price     *decimal.Decimal `json:"price,omitempty"`
	Quantity  *int             `json:"quantity,omitempty"`
}

// ProductSelection adds a catalog product to the booking.
type ProductSelection struct {
	ProductCatalogID uuid.UUID `json:"productCatalogId" validate:"required"`
	Quantity         int       `json:"quantity"`
}

// CreateBookingInput is every shape of booking request the platform accepts.
type CreateBookingInput struct {
	CustomerID        uuid.UUID           `json:"customerId"`
	ScheduledDate     string              `json:"scheduledDate" validate:"required"`
	ScheduledTime     string              `json:"scheduledTime" validate:"required"`
	CatalogServiceIDs []uuid.UUID         `json:"catalogServiceIds,omitempty"`
	Services          []ServiceSelection  `json:"services,omitempty" validate:"omitempty,dive"`
	Products          []ProductSelection  `json:"products,omitempty" validate:"omitempty,dive"`
	AddressID         *uuid.UUID          `json:"addressId,omitempty"`
	Address           *address.RawAddress `json:"address,omitempty"`
	Total             *decimal.Decimal    `json:"total,omitempty"`
	BookingType       *enums.BookingType  `json:"bookingType,omitempty"`
	Duration          *int                `json:"duration,omitempty"`
	Notes             *string             `json:"notes,omitempty"`
}

type schedule struct {
	date time.Time
	time string
}

func (in CreateBookingInput) validate() (schedule, error) {
	if in.CustomerID == uuid.Nil {
		return schedule{}, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	date, err := time.Parse(dateLayout, strings.TrimSpace(in.ScheduledDate))
	if err != nil {
		return schedule{}, pkgerrors.New(pkgerrors.CodeValidation, "scheduled date must be YYYY-MM-DD").
			WithDetails(map[string]any{"scheduledDate": in.ScheduledDate})
	}
	clock, ok := parseClock(in.ScheduledTime)
	if !ok {
		return schedule{}, pkgerrors.New(pkgerrors.CodeValidation, "scheduled time not recognized").
			WithDetails(map[string]any{"scheduledTime": in.ScheduledTime})
	}
	if in.BookingType != nil && !in.BookingType.IsValid() {
		return schedule{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid booking type").
			WithDetails(map[string]any{"bookingType": *in.BookingType})
	}
	if in.Total != nil && in.Total.IsNegative() {
		return schedule{}, pkgerrors.New(pkgerrors.CodeValidation, "total must not be negative")
	}
	for _, selection := range in.Services {
		if selection.Price != nil && selection.Price.IsNegative() {
			return schedule{}, pkgerrors.New(pkgerrors.CodeValidation, "service price must not be negative").
				WithDetails(map[string]any{"serviceId": selection.ServiceID})
		}
	}
	return schedule{date: date, time: clock}, nil
}

// parseClock normalizes the accepted time spellings to HH:MM.
func parseClock(raw string) (string, bool) {
	value := strings.ToUpper(strings.TrimSpace(raw))
	for _, layout := range acceptedTimeLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.Format(timeLayout), true
		}
	}
	return "", false
}

func trimmedNotes(notes *string) *string {
	if notes == nil {
		return nil
	}
	value := strings.TrimSpace(*notes)
	if value == "" {
		return nil
	}
	return &value
}

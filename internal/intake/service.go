package intake

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/glowcall/glowcall-backend/internal/address"
	"github.com/glowcall/glowcall-backend/internal/bookingevents"
	"github.com/glowcall/glowcall-backend/internal/bookings"
	"github.com/glowcall/glowcall-backend/internal/catalog"
	"github.com/glowcall/glowcall-backend/internal/customers"
	"github.com/glowcall/glowcall-backend/pkg/db/models"
	"github.com/glowcall/glowcall-backend/pkg/enums"
	pkgerrors "github.com/glowcall/glowcall-backend/pkg/errors"
	"github.com/glowcall/glowcall-backend/pkg/logger"
	"github.com/glowcall/glowcall-backend/pkg/metrics"
	"github.com/glowcall/glowcall-backend/pkg/outbox"
	"github.com/glowcall/glowcall-backend/pkg/outbox/payloads"
	"github.com/glowcall/glowcall-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service turns booking requests into persisted bookings.
type Service interface {
	CreateBooking(ctx context.Context, input CreateBookingInput, actor types.Actor) (*models.Booking, error)
}

// ServiceParams wires the intake resolver. Metrics and Logger are optional.
type ServiceParams struct {
	Bookings  bookings.Repository
	Catalog   catalog.Repository
	Customers customers.Repository
	Addresses address.Resolver
	Tx        txRunner
	Events    bookingevents.Recorder
	Outbox    outboxPublisher
	Metrics   *metrics.BookingMetrics
	Logger    *logger.Logger
}

type service struct {
	bookings  bookings.Repository
	catalog   catalog.Repository
	customers customers.Repository
	addresses address.Resolver
	tx        txRunner
	events    bookingevents.Recorder
	outbox    outboxPublisher
	metrics   *metrics.BookingMetrics
	logg      *logger.Logger
	now       func() time.Time
}

// NewService builds the intake resolver.
func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.Bookings == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "booking repository required")
	case params.Catalog == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "catalog repository required")
	case params.Customers == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "customer repository required")
	case params.Addresses == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "address resolver required")
	case params.Tx == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	case params.Events == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "booking event recorder required")
	case params.Outbox == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "outbox publisher required")
	}
	return &service{
		bookings:  params.Bookings,
		catalog:   params.Catalog,
		customers: params.Customers,
		addresses: params.Addresses,
		tx:        params.Tx,
		events:    params.Events,
		outbox:    params.Outbox,
		metrics:   params.Metrics,
		logg:      params.Logger,
		now:       time.Now,
	}, nil
}

// CreateBooking resolves the flow, address, lines and totals of input and
// persists the booking with its CREATED event in one transaction.
func (s *service) CreateBooking(ctx context.Context, input CreateBookingInput, actor types.Actor) (*models.Booking, error) {
	when, err := input.validate()
	if err != nil {
		return nil, err
	}
	catalogFlow := len(input.CatalogServiceIDs) > 0

	var created *models.Booking
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.customers.WithTx(tx).FindByID(ctx, input.CustomerID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "customer not found").WithReason(ReasonCustomerNotFound)
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
		}

		addr, err := s.addresses.Resolve(ctx, tx, address.ResolveRequest{
			CustomerID: input.CustomerID,
			AddressID:  input.AddressID,
			Raw:        input.Address,
		})
		if err != nil {
			return err
		}

		catalogRepo := s.catalog.WithTx(tx)
		var services serviceLines
		if catalogFlow {
			services, err = resolveCatalogServices(ctx, catalogRepo, input.CatalogServiceIDs)
		} else {
			services, err = resolveServices(ctx, catalogRepo, input.Services)
		}
		if err != nil {
			return err
		}
		products, err := resolveProducts(ctx, catalogRepo, input.Products)
		if err != nil {
			return err
		}

		booking := assemble(input, when, catalogFlow, services, products)
		booking.ID = uuid.New()
		booking.AddressID = &addr.ID
		booking.CreatedAt = s.now().UTC()
		booking.UpdatedAt = booking.CreatedAt

		if err := s.bookings.WithTx(tx).Create(ctx, booking); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create booking")
		}

		eventData := map[string]any{
			"status":       booking.Status,
			"booking_type": booking.BookingType,
			"total":        booking.Total.StringFixed(2),
		}
		if err := s.events.Record(ctx, tx, booking.ID, enums.BookingEventCreated, actor, eventData); err != nil {
			return err
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventBookingCreated,
			AggregateType: enums.AggregateBooking,
			AggregateID:   booking.ID,
			Version:       1,
			Actor:         outbox.ActorFrom(actor),
			OccurredAt:    booking.CreatedAt,
			Data: payloads.BookingCreatedEvent{
				BookingID:     booking.ID,
				CustomerID:    booking.CustomerID,
				VendorID:      booking.VendorID,
				BookingType:   booking.BookingType,
				Status:        booking.Status,
				ScheduledDate: booking.ScheduledDate.Format(dateLayout),
				ScheduledTime: booking.ScheduledTime,
				Total:         booking.Total.StringFixed(2),
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit booking created event")
		}

		created = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncCreated(string(created.BookingType))
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"booking_id":   created.ID.String(),
			"customer_id":  created.CustomerID.String(),
			"booking_type": created.BookingType,
			"status":       created.Status,
		})
		s.logg.Info(logCtx, "booking created")
	}
	return created, nil
}

// assemble derives the booking row and its money columns from resolved lines.
func assemble(input CreateBookingInput, when schedule, catalogFlow bool, services serviceLines, products productLines) *models.Booking {
	booking := &models.Booking{
		CustomerID:    input.CustomerID,
		ScheduledDate: when.date,
		ScheduledTime: when.time,
		Notes:         trimmedNotes(input.Notes),
		Items:         services.items,
		Products:      products.products,
		Discount:      decimal.Zero,
		Tax:           decimal.Zero,
	}

	if catalogFlow {
		booking.BookingType = enums.BookingTypeAtHome
		booking.Status = enums.BookingStatusAwaitingManager
		booking.CatalogServiceID = services.catalogServiceID
	} else {
		booking.BookingType = enums.BookingTypeSalonVisit
		booking.Status = enums.BookingStatusPending
		booking.VendorID = services.vendorID
	}
	if input.BookingType != nil {
		booking.BookingType = *input.BookingType
	}

	booking.ServiceSubtotal = roundMoney(services.subtotal)
	booking.ProductSubtotal = roundMoney(products.subtotal)
	booking.Subtotal = roundMoney(services.subtotal.Add(products.subtotal))
	booking.Total = booking.Subtotal
	if input.Total != nil && input.Total.IsPositive() {
		booking.Total = roundMoney(*input.Total)
	}

	switch {
	case services.duration > 0:
		booking.Duration = services.duration
	case input.Duration != nil && *input.Duration > 0:
		booking.Duration = *input.Duration
	default:
		booking.Duration = defaultDurationMinutes
	}

	if catalogFlow || len(products.products) > 0 {
		payout := roundMoney(services.payout.Add(products.payout))
		revenue := booking.Total.Sub(payout)
		if revenue.IsNegative() {
			revenue = decimal.Zero
		}
		booking.VendorPayout = &payout
		booking.PlatformRevenue = &revenue
	}
	return booking
}

package intake

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glowcall/glowcall-backend/internal/address"
	"github.com/glowcall/glowcall-backend/internal/bookingevents"
	"github.com/glowcall/glowcall-backend/internal/bookings"
	"github.com/glowcall/glowcall-backend/internal/catalog"
	"github.com/glowcall/glowcall-backend/internal/customers"
	"github.com/glowcall/glowcall-backend/pkg/db"
	"github.com/glowcall/glowcall-backend/pkg/db/dbtest"
	"github.com/glowcall/glowcall-backend/pkg/db/models"
	"github.com/glowcall/glowcall-backend/pkg/enums"
	pkgerrors "github.com/glowcall/glowcall-backend/pkg/errors"
	"github.com/glowcall/glowcall-backend/pkg/outbox"
	"github.com/glowcall/glowcall-backend/pkg/types"
)

type fixture struct {
	client   *db.Client
	svc      Service
	customer *models.Customer
	actor    types.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	client := dbtest.Open(t)
	conn := client.DB()

	resolver, err := address.NewResolver(address.NewRepository(conn))
	require.NoError(t, err)
	events, err := bookingevents.NewService(bookingevents.NewRepository(conn))
	require.NoError(t, err)

	svc, err := NewService(ServiceParams{
		Bookings:  bookings.NewRepository(conn),
		Catalog:   catalog.NewRepository(conn),
		Customers: customers.NewRepository(conn),
		Addresses: resolver,
		Tx:        client,
		Events:    events,
		Outbox:    outbox.NewService(outbox.NewRepository(conn), nil),
	})
	require.NoError(t, err)

	customer := dbtest.MustCustomer(t, conn)
	return &fixture{
		client:   client,
		svc:      svc,
		customer: customer,
		actor:    types.NewActor(customer.ID, enums.ActorRoleCustomer),
	}
}

func (f *fixture) baseInput() CreateBookingInput {
	return CreateBookingInput{
		CustomerID:    f.customer.ID,
		ScheduledDate: "2026-11-02",
		ScheduledTime: "10:30 AM",
		Address:       &address.RawAddress{Street: "1 Main St", City: "Austin"},
	}
}

func TestCreateCatalogBookingMergesProducts(t *testing.T) {
	f := newFixture(t)
	conn := f.client.DB()
	facial := dbtest.MustCatalogService(t, conn, "100.00", "80.00", 45)
	oil := dbtest.MustProduct(t, conn, "10.00", "6.00")

	input := f.baseInput()
	input.CatalogServiceIDs = []uuid.UUID{facial.ID, facial.ID}
	input.Products = []ProductSelection{
		{ProductCatalogID: oil.ID, Quantity: 2},
		{ProductCatalogID: oil.ID, Quantity: 3},
	}

	booking, err := f.svc.CreateBooking(context.Background(), input, f.actor)
	require.NoError(t, err)

	assert.Equal(t, enums.BookingTypeAtHome, booking.BookingType)
	assert.Equal(t, enums.BookingStatusAwaitingManager, booking.Status)
	assert.Nil(t, booking.VendorID)
	assert.Equal(t, "10:30", booking.ScheduledTime)
	assert.Equal(t, 45, booking.Duration)

	require.Len(t, booking.Items, 1)
	require.Len(t, booking.Products, 1)
	assert.Equal(t, 5, booking.Products[0].Quantity)

	assert.Equal(t, "100.00", booking.ServiceSubtotal.StringFixed(2))
	assert.Equal(t, "50.00", booking.ProductSubtotal.StringFixed(2))
	assert.True(t, booking.Subtotal.Equal(booking.ServiceSubtotal.Add(booking.ProductSubtotal)))
	assert.Equal(t, "150.00", booking.Total.StringFixed(2))
	require.NotNil(t, booking.VendorPayout)
	assert.Equal(t, "110.00", booking.VendorPayout.StringFixed(2))
	require.NotNil(t, booking.PlatformRevenue)
	assert.Equal(t, "40.00", booking.PlatformRevenue.StringFixed(2))

	stored, err := bookings.NewRepository(conn).FindWithLines(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Products, 1)
	require.NotNil(t, stored.AddressID)

	var events []models.BookingEvent
	require.NoError(t, conn.Where("booking_id = ?", booking.ID).Find(&events).Error)
	require.Len(t, events, 1)
	assert.Equal(t, enums.BookingEventCreated, events[0].Type)

	var outboxRows []models.OutboxEvent
	require.NoError(t, conn.Where("aggregate_id = ?", booking.ID).Find(&outboxRows).Error)
	require.Len(t, outboxRows, 1)
	assert.Equal(t, enums.EventBookingCreated, outboxRows[0].EventType)
}

func TestCreateAdHocBookingUsesServiceVendor(t *testing.T) {
	f := newFixture(t)
	conn := f.client.DB()
	vendor := dbtest.MustVendor(t, conn, enums.VendorStatusApproved)
	blowout := dbtest.MustService(t, conn, vendor.ID, "40.00", 30)

	quantity := 2
	input := f.baseInput()
	input.Address = nil
	dbtest.MustAddress(t, conn, f.customer.ID, true)
	input.Services = []ServiceSelection{{ServiceID: blowout.ID, Quantity: &quantity}}

	booking, err := f.svc.CreateBooking(context.Background(), input, f.actor)
	require.NoError(t, err)

	assert.Equal(t, enums.BookingTypeSalonVisit, booking.BookingType)
	assert.Equal(t, enums.BookingStatusPending, booking.Status)
	require.NotNil(t, booking.VendorID)
	assert.Equal(t, vendor.ID, *booking.VendorID)
	assert.Equal(t, "80.00", booking.Total.StringFixed(2))
	assert.Equal(t, 60, booking.Duration)
	assert.Nil(t, booking.VendorPayout)
	assert.Nil(t, booking.PlatformRevenue)
	require.Len(t, booking.Items, 1)
	assert.Equal(t, "40.00", booking.Items[0].BasePrice.StringFixed(2))
}

func TestCreateBookingOverrideTotal(t *testing.T) {
	f := newFixture(t)
	vendor := dbtest.MustVendor(t, f.client.DB(), enums.VendorStatusApproved)
	svc := dbtest.MustService(t, f.client.DB(), vendor.ID, "40.00", 30)

	total := decimal.RequireFromString("55.555")
	override := enums.BookingTypeAtHome
	input := f.baseInput()
	input.Services = []ServiceSelection{{ServiceID: svc.ID}}
	input.Total = &total
	input.BookingType = &override

	booking, err := f.svc.CreateBooking(context.Background(), input, f.actor)
	require.NoError(t, err)
	assert.Equal(t, "55.56", booking.Total.StringFixed(2))
	assert.Equal(t, "40.00", booking.Subtotal.StringFixed(2))
	assert.Equal(t, enums.BookingTypeAtHome, booking.BookingType)
	assert.Equal(t, enums.BookingStatusPending, booking.Status)
}

func TestCreateBookingFailures(t *testing.T) {
	f := newFixture(t)
	conn := f.client.DB()
	vendorA := dbtest.MustVendor(t, conn, enums.VendorStatusApproved)
	vendorB := dbtest.MustVendor(t, conn, enums.VendorStatusApproved)
	serviceA := dbtest.MustService(t, conn, vendorA.ID, "40.00", 30)
	serviceB := dbtest.MustService(t, conn, vendorB.ID, "50.00", 30)

	cases := []struct {
		name   string
		mutate func(in *CreateBookingInput)
		code   pkgerrors.Code
		reason string
	}{
		{
			name: "no address",
			mutate: func(in *CreateBookingInput) {
				in.Address = nil
				in.Services = []ServiceSelection{{ServiceID: serviceA.ID}}
			},
			code:   pkgerrors.CodeValidation,
			reason: address.ReasonAddressRequired,
		},
		{
			name: "unknown catalog service",
			mutate: func(in *CreateBookingInput) {
				in.CatalogServiceIDs = []uuid.UUID{uuid.New()}
			},
			code:   pkgerrors.CodeNotFound,
			reason: ReasonCatalogServiceNotFound,
		},
		{
			name:   "no services",
			mutate: func(in *CreateBookingInput) {},
			code:   pkgerrors.CodeValidation,
			reason: ReasonServiceSelectionRequired,
		},
		{
			name: "mixed vendors",
			mutate: func(in *CreateBookingInput) {
				in.Services = []ServiceSelection{{ServiceID: serviceA.ID}, {ServiceID: serviceB.ID}}
			},
			code:   pkgerrors.CodeValidation,
			reason: ReasonMixedVendorServices,
		},
		{
			name: "unknown product",
			mutate: func(in *CreateBookingInput) {
				in.Services = []ServiceSelection{{ServiceID: serviceA.ID}}
				in.Products = []ProductSelection{{ProductCatalogID: uuid.New(), Quantity: 1}}
			},
			code:   pkgerrors.CodeNotFound,
			reason: ReasonProductNotFound,
		},
		{
			name: "unknown customer",
			mutate: func(in *CreateBookingInput) {
				in.CustomerID = uuid.New()
				in.Services = []ServiceSelection{{ServiceID: serviceA.ID}}
			},
			code:   pkgerrors.CodeNotFound,
			reason: ReasonCustomerNotFound,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := f.baseInput()
			tc.mutate(&input)
			_, err := f.svc.CreateBooking(context.Background(), input, f.actor)
			require.Error(t, err)
			assert.True(t, pkgerrors.IsCode(err, tc.code), "got %v", err)
			assert.Equal(t, tc.reason, pkgerrors.ReasonOf(err))
		})
	}

	var count int64
	require.NoError(t, conn.Model(&models.Booking{}).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, conn.Model(&models.Address{}).Count(&count).Error)
	assert.Zero(t, count, "raw addresses roll back with the failed booking")
}

func TestCreateBookingRejectsBadSchedule(t *testing.T) {
	f := newFixture(t)
	input := f.baseInput()
	input.ScheduledDate = "02/11/2026"
	_, err := f.svc.CreateBooking(context.Background(), input, f.actor)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	input = f.baseInput()
	input.ScheduledTime = "quarter past ten"
	_, err = f.svc.CreateBooking(context.Background(), input, f.actor)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

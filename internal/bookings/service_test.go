package bookings

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glowcall/glowcall-backend/internal/bookingevents"
	"github.com/glowcall/glowcall-backend/internal/vendors"
	"github.com/glowcall/glowcall-backend/pkg/db"
	"github.com/glowcall/glowcall-backend/pkg/db/dbtest"
	"github.com/glowcall/glowcall-backend/pkg/db/models"
	"github.com/glowcall/glowcall-backend/pkg/enums"
	pkgerrors "github.com/glowcall/glowcall-backend/pkg/errors"
	"github.com/glowcall/glowcall-backend/pkg/outbox"
	"github.com/glowcall/glowcall-backend/pkg/pagination"
	"github.com/glowcall/glowcall-backend/pkg/types"
)

type recordingDispatcher struct {
	bookings  []models.Booking
	employees []models.Employee
}

func (d *recordingDispatcher) BeauticianAssigned(_ context.Context, booking models.Booking, employee models.Employee) {
	d.bookings = append(d.bookings, booking)
	d.employees = append(d.employees, employee)
}

type stubIssuer struct {
	calls []uuid.UUID
}

func (s *stubIssuer) Generate(_ context.Context, bookingID uuid.UUID) (*models.Invoice, error) {
	s.calls = append(s.calls, bookingID)
	return &models.Invoice{BookingID: bookingID}, nil
}

type fixture struct {
	client     *db.Client
	svc        Service
	dispatcher *recordingDispatcher
	issuer     *stubIssuer
	manager    types.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	client := dbtest.Open(t)
	events, err := bookingevents.NewService(bookingevents.NewRepository(client.DB()))
	require.NoError(t, err)

	dispatcher := &recordingDispatcher{}
	issuer := &stubIssuer{}
	svc, err := NewService(ServiceParams{
		Repo:       NewRepository(client.DB()),
		Vendors:    vendors.NewRepository(client.DB()),
		Tx:         client,
		Events:     events,
		Outbox:     outbox.NewService(outbox.NewRepository(client.DB()), nil),
		Dispatcher: dispatcher,
		Invoices:   issuer,
	})
	require.NoError(t, err)

	return &fixture{
		client:     client,
		svc:        svc,
		dispatcher: dispatcher,
		issuer:     issuer,
		manager:    types.NewActor(uuid.New(), enums.ActorRoleManager),
	}
}

func (f *fixture) seedBooking(t *testing.T, status enums.BookingStatus, vendorID *uuid.UUID) *models.Booking {
	t.Helper()
	customer := dbtest.MustCustomer(t, f.client.DB())
	total := decimal.RequireFromString("100.00")
	booking := &models.Booking{
		ID:              uuid.New(),
		CustomerID:      customer.ID,
		VendorID:        vendorID,
		BookingType:     enums.BookingTypeAtHome,
		Status:          status,
		ScheduledDate:   time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC),
		ScheduledTime:   "10:30",
		Duration:        60,
		ServiceSubtotal: total,
		ProductSubtotal: decimal.Zero,
		Subtotal:        total,
		Discount:        decimal.Zero,
		Tax:             decimal.Zero,
		Total:           total,
	}
	require.NoError(t, NewRepository(f.client.DB()).Create(context.Background(), booking))
	return booking
}

func (f *fixture) eventTypes(t *testing.T, bookingID uuid.UUID) []enums.BookingEventType {
	t.Helper()
	page, err := f.svc.ListEvents(context.Background(), bookingID, pagination.Params{Limit: 50})
	require.NoError(t, err)
	out := make([]enums.BookingEventType, 0, len(page.Events))
	for _, event := range page.Events {
		out = append(out, event.Type)
	}
	return out
}

func (f *fixture) outboxCount(t *testing.T, eventType enums.OutboxEventType) int64 {
	t.Helper()
	var count int64
	require.NoError(t, f.client.DB().Model(&models.OutboxEvent{}).Where("event_type = ?", eventType).Count(&count).Error)
	return count
}

func TestAssignVendorMovesToAwaitingVendorResponse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	vendor := dbtest.MustVendor(t, f.client.DB(), enums.VendorStatusApproved)
	booking := f.seedBooking(t, enums.BookingStatusAwaitingManager, nil)

	updated, err := f.svc.AssignVendor(ctx, booking.ID, vendor.ID, f.manager)
	require.NoError(t, err)

	assert.Equal(t, enums.BookingStatusAwaitingVendorResponse, updated.Status)
	require.NotNil(t, updated.VendorID)
	assert.Equal(t, vendor.ID, *updated.VendorID)
	require.NotNil(t, updated.ManagerID)
	assert.Equal(t, *f.manager.ID, *updated.ManagerID)
	assert.NotNil(t, updated.ManagerAssignedAt)

	assert.Equal(t, []enums.BookingEventType{
		enums.BookingEventStatusChanged,
		enums.BookingEventManagerAssignedVendor,
	}, f.eventTypes(t, booking.ID))
	assert.EqualValues(t, 1, f.outboxCount(t, enums.EventBookingStatusChanged))
}

func TestAssignVendorRejectsMissingAndIneligibleVendors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	booking := f.seedBooking(t, enums.BookingStatusAwaitingManager, nil)

	_, err := f.svc.AssignVendor(ctx, booking.ID, uuid.New(), f.manager)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	assert.Equal(t, ReasonVendorNotFound, pkgerrors.ReasonOf(err))

	suspended := dbtest.MustVendor(t, f.client.DB(), enums.VendorStatusSuspended)
	_, err = f.svc.AssignVendor(ctx, booking.ID, suspended.ID, f.manager)
	require.Error(t, err)
	assert.Equal(t, ReasonVendorNotEligible, pkgerrors.ReasonOf(err))

	stored, err := f.svc.Get(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.BookingStatusAwaitingManager, stored.Status)
	assert.Nil(t, stored.VendorID)
	assert.Empty(t, f.eventTypes(t, booking.ID))
}

func TestVendorRejectResetsAssignment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	vendor := dbtest.MustVendor(t, f.client.DB(), enums.VendorStatusApproved)
	booking := f.seedBooking(t, enums.BookingStatusAwaitingManager, nil)

	_, err := f.svc.AssignVendor(ctx, booking.ID, vendor.ID, f.manager)
	require.NoError(t, err)

	vendorActor := types.NewActor(uuid.New(), enums.ActorRoleVendor).WithVendor(vendor.ID)
	updated, err := f.svc.VendorRespond(ctx, booking.ID, false, "fully booked", vendorActor)
	require.NoError(t, err)

	assert.Equal(t, enums.BookingStatusAwaitingManager, updated.Status)
	assert.Nil(t, updated.VendorID)
	assert.Nil(t, updated.ManagerID)
	assert.Nil(t, updated.ManagerAssignedAt)
	assert.Nil(t, updated.VendorRespondedAt)

	recorded := f.eventTypes(t, booking.ID)
	assert.Equal(t, enums.BookingEventVendorRejected, recorded[len(recorded)-1])
}

func TestVendorRespondRequiresOwningVendor(t *testing.T) {
	f := newFixture(t)
	vendor := dbtest.MustVendor(t, f.client.DB(), enums.VendorStatusApproved)
	booking := f.seedBooking(t, enums.BookingStatusPending, &vendor.ID)

	stranger := types.NewActor(uuid.New(), enums.ActorRoleVendor).WithVendor(uuid.New())
	_, err := f.svc.VendorRespond(context.Background(), booking.ID, true, "", stranger)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
}

func TestVendorAcceptFromPending(t *testing.T) {
	f := newFixture(t)
	vendor := dbtest.MustVendor(t, f.client.DB(), enums.VendorStatusApproved)
	booking := f.seedBooking(t, enums.BookingStatusPending, &vendor.ID)

	actor := types.NewActor(uuid.New(), enums.ActorRoleVendor).WithVendor(vendor.ID)
	updated, err := f.svc.VendorRespond(context.Background(), booking.ID, true, "", actor)
	require.NoError(t, err)
	assert.Equal(t, enums.BookingStatusAwaitingBeautician, updated.Status)
	assert.Nil(t, updated.EmployeeID)
	assert.NotNil(t, updated.VendorRespondedAt)
}

func TestAssignBeauticianOnPendingIsStateConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	vendor := dbtest.MustVendor(t, f.client.DB(), enums.VendorStatusApproved)
	employee := dbtest.MustEmployee(t, f.client.DB(), vendor.ID, enums.EmployeeStatusActive)
	booking := f.seedBooking(t, enums.BookingStatusPending, &vendor.ID)

	_, err := f.svc.AssignBeautician(ctx, booking.ID, EmployeeRef{EmployeeID: &employee.ID}, f.manager)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
	details, ok := pkgerrors.As(err).Details().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, enums.BookingStatusPending, details["current_status"])
	assert.Equal(t, enums.BookingStatusConfirmed, details["target_status"])

	stored, err := f.svc.Get(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.BookingStatusPending, stored.Status)
	assert.Nil(t, stored.EmployeeID)
	assert.Empty(t, f.dispatcher.bookings)
}

func TestAssignBeauticianExistingEmployee(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	vendor := dbtest.MustVendor(t, f.client.DB(), enums.VendorStatusApproved)
	employee := dbtest.MustEmployee(t, f.client.DB(), vendor.ID, enums.EmployeeStatusActive)
	booking := f.seedBooking(t, enums.BookingStatusAwaitingBeautician, &vendor.ID)

	updated, err := f.svc.AssignBeautician(ctx, booking.ID, EmployeeRef{EmployeeID: &employee.ID}, f.manager)
	require.NoError(t, err)
	assert.Equal(t, enums.BookingStatusConfirmed, updated.Status)
	require.NotNil(t, updated.EmployeeID)
	assert.Equal(t, employee.ID, *updated.EmployeeID)
	assert.NotNil(t, updated.BeauticianAssignedAt)
	assert.NotNil(t, updated.VendorRespondedAt)

	require.Len(t, f.dispatcher.employees, 1)
	assert.Equal(t, employee.ID, f.dispatcher.employees[0].ID)
	assert.Equal(t, booking.ID, f.dispatcher.bookings[0].ID)
}

func TestAssignBeauticianCreatesEmployee(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	vendor := dbtest.MustVendor(t, f.client.DB(), enums.VendorStatusApproved)
	booking := f.seedBooking(t, enums.BookingStatusAwaitingBeautician, &vendor.ID)
	phone := "+15550002222"

	updated, err := f.svc.AssignBeautician(ctx, booking.ID, EmployeeRef{Name: "  Sam Brow ", Phone: &phone}, f.manager)
	require.NoError(t, err)
	require.NotNil(t, updated.EmployeeID)

	employee, err := vendors.NewRepository(f.client.DB()).FindEmployee(ctx, *updated.EmployeeID)
	require.NoError(t, err)
	assert.Equal(t, "Sam Brow", employee.Name)
	assert.Equal(t, vendor.ID, employee.VendorID)
	assert.Equal(t, enums.EmployeeStatusActive, employee.Status)
}

func TestAssignBeauticianValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	vendor := dbtest.MustVendor(t, f.client.DB(), enums.VendorStatusApproved)
	other := dbtest.MustVendor(t, f.client.DB(), enums.VendorStatusApproved)
	foreign := dbtest.MustEmployee(t, f.client.DB(), other.ID, enums.EmployeeStatusActive)
	inactive := dbtest.MustEmployee(t, f.client.DB(), vendor.ID, enums.EmployeeStatusInactive)
	booking := f.seedBooking(t, enums.BookingStatusAwaitingBeautician, &vendor.ID)
	missing := uuid.New()

	cases := []struct {
		name   string
		ref    EmployeeRef
		code   pkgerrors.Code
		reason string
	}{
		{"unknown employee", EmployeeRef{EmployeeID: &missing}, pkgerrors.CodeNotFound, ReasonEmployeeNotFound},
		{"foreign employee", EmployeeRef{EmployeeID: &foreign.ID}, pkgerrors.CodeNotFound, ReasonEmployeeNotEligible},
		{"inactive employee", EmployeeRef{EmployeeID: &inactive.ID}, pkgerrors.CodeNotFound, ReasonEmployeeNotEligible},
		{"missing details", EmployeeRef{Name: "  "}, pkgerrors.CodeValidation, ReasonBeauticianDetailsRequired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.AssignBeautician(ctx, booking.ID, tc.ref, f.manager)
			require.Error(t, err)
			assert.True(t, pkgerrors.IsCode(err, tc.code))
			assert.Equal(t, tc.reason, pkgerrors.ReasonOf(err))
		})
	}
}

func TestAssignBeauticianNeedsVendorForNewEmployee(t *testing.T) {
	f := newFixture(t)
	booking := f.seedBooking(t, enums.BookingStatusAwaitingBeautician, nil)

	_, err := f.svc.AssignBeautician(context.Background(), booking.ID, EmployeeRef{Name: "Sam Brow"}, f.manager)
	require.Error(t, err)
	assert.Equal(t, ReasonVendorRequired, pkgerrors.ReasonOf(err))
}

func TestCompletingSetsCustomerNotifiedAndIssuesInvoice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	vendor := dbtest.MustVendor(t, f.client.DB(), enums.VendorStatusApproved)
	booking := f.seedBooking(t, enums.BookingStatusConfirmed, &vendor.ID)

	updated, err := f.svc.TransitionStatus(ctx, booking.ID, enums.BookingStatusCompleted, f.manager)
	require.NoError(t, err)
	assert.Equal(t, enums.BookingStatusCompleted, updated.Status)
	assert.NotNil(t, updated.CustomerNotifiedAt)
	assert.Equal(t, []uuid.UUID{booking.ID}, f.issuer.calls)

	_, err = f.svc.TransitionStatus(ctx, booking.ID, enums.BookingStatusInProgress, f.manager)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
}

func TestTransitionStatusUnknownBookingAndStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.TransitionStatus(ctx, uuid.New(), enums.BookingStatusCancelled, f.manager)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = f.svc.TransitionStatus(ctx, uuid.New(), enums.BookingStatus("LOST"), f.manager)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestCancelStoresReasonAndKeepsParties(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	vendor := dbtest.MustVendor(t, f.client.DB(), enums.VendorStatusApproved)
	booking := f.seedBooking(t, enums.BookingStatusAwaitingBeautician, &vendor.ID)

	customer := types.NewActor(booking.CustomerID, enums.ActorRoleCustomer)
	updated, err := f.svc.Cancel(ctx, booking.ID, "schedule clash", customer)
	require.NoError(t, err)
	assert.Equal(t, enums.BookingStatusCancelled, updated.Status)
	require.NotNil(t, updated.CancellationReason)
	assert.Equal(t, "schedule clash", *updated.CancellationReason)
	require.NotNil(t, updated.VendorID)
	assert.Equal(t, vendor.ID, *updated.VendorID)

	_, err = f.svc.Cancel(ctx, booking.ID, "again", customer)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))

	stranger := types.NewActor(uuid.New(), enums.ActorRoleCustomer)
	other := f.seedBooking(t, enums.BookingStatusAwaitingManager, nil)
	_, err = f.svc.Cancel(ctx, other.ID, "", stranger)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}

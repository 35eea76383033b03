package bookings

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/glowcall/glowcall-backend/internal/bookingevents"
	"github.com/glowcall/glowcall-backend/internal/vendors"
	"github.com/glowcall/glowcall-backend/pkg/db/models"
	"github.com/glowcall/glowcall-backend/pkg/enums"
	pkgerrors "github.com/glowcall/glowcall-backend/pkg/errors"
	"github.com/glowcall/glowcall-backend/pkg/logger"
	"github.com/glowcall/glowcall-backend/pkg/metrics"
	"github.com/glowcall/glowcall-backend/pkg/outbox"
	"github.com/glowcall/glowcall-backend/pkg/outbox/payloads"
	"github.com/glowcall/glowcall-backend/pkg/pagination"
	"github.com/glowcall/glowcall-backend/pkg/types"
)

const (
	ReasonVendorNotFound            = "vendor_not_found"
	ReasonVendorNotEligible         = "vendor_not_eligible"
	ReasonEmployeeNotFound          = "employee_not_found"
	ReasonEmployeeNotEligible       = "employee_not_eligible"
	ReasonBeauticianDetailsRequired = "beautician_details_required"
	ReasonVendorRequired            = "vendor_required"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// NotificationDispatcher queues party notifications once a transition has
// committed. Implementations swallow their own failures.
type NotificationDispatcher interface {
	BeauticianAssigned(ctx context.Context, booking models.Booking, employee models.Employee)
}

// InvoiceIssuer snapshots the invoice of a completed booking.
type InvoiceIssuer interface {
	Generate(ctx context.Context, bookingID uuid.UUID) (*models.Invoice, error)
}

// EmployeeRef names an existing employee or describes a new one.
type EmployeeRef struct {
	EmployeeID *uuid.UUID
	Name       string
	Phone      *string
	Email      *string
}

// Service coordinates every booking state change after intake.
type Service interface {
	TransitionStatus(ctx context.Context, bookingID uuid.UUID, target enums.BookingStatus, actor types.Actor) (*models.Booking, error)
	AssignVendor(ctx context.Context, bookingID, vendorID uuid.UUID, actor types.Actor) (*models.Booking, error)
	VendorRespond(ctx context.Context, bookingID uuid.UUID, accept bool, reason string, actor types.Actor) (*models.Booking, error)
	AssignBeautician(ctx context.Context, bookingID uuid.UUID, ref EmployeeRef, actor types.Actor) (*models.Booking, error)
	Cancel(ctx context.Context, bookingID uuid.UUID, reason string, actor types.Actor) (*models.Booking, error)
	Get(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error)
	ListEvents(ctx context.Context, bookingID uuid.UUID, params pagination.Params) (*bookingevents.ListResult, error)
}

// ServiceParams wires the coordinator. Dispatcher, Invoices, Metrics and
// Logger are optional.
type ServiceParams struct {
	Repo       Repository
	Vendors    vendors.Repository
	Tx         txRunner
	Events     bookingevents.Service
	Outbox     outboxPublisher
	Dispatcher NotificationDispatcher
	Invoices   InvoiceIssuer
	Metrics    *metrics.BookingMetrics
	Logger     *logger.Logger
}

type service struct {
	repo       Repository
	vendors    vendors.Repository
	tx         txRunner
	events     bookingevents.Service
	outbox     outboxPublisher
	dispatcher NotificationDispatcher
	invoices   InvoiceIssuer
	metrics    *metrics.BookingMetrics
	logg       *logger.Logger
	now        func() time.Time
}

// NewService builds the assignment coordinator.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "booking repository required")
	}
	if params.Vendors == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "vendor repository required")
	}
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	if params.Events == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "booking event service required")
	}
	if params.Outbox == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "outbox publisher required")
	}
	return &service{
		repo:       params.Repo,
		vendors:    params.Vendors,
		tx:         params.Tx,
		events:     params.Events,
		outbox:     params.Outbox,
		dispatcher: params.Dispatcher,
		invoices:   params.Invoices,
		metrics:    params.Metrics,
		logg:       params.Logger,
		now:        time.Now,
	}, nil
}

// transition describes one guarded status change.
type transition struct {
	target enums.BookingStatus
	// sources restricts the table entry for target; nil keeps it whole.
	sources    []enums.BookingStatus
	action     enums.BookingEventType
	actionData map[string]any
	// prepare runs after the status guard and returns extra column updates.
	prepare func(ctx context.Context, tx *gorm.DB, booking *models.Booking) (map[string]any, error)
}

type transitionResult struct {
	booking *models.Booking
	from    enums.BookingStatus
}

func (s *service) TransitionStatus(ctx context.Context, bookingID uuid.UUID, target enums.BookingStatus, actor types.Actor) (*models.Booking, error) {
	if !target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid booking status").WithDetails(map[string]any{"status": target})
	}
	return s.run(ctx, bookingID, actor, transition{target: target})
}

func (s *service) AssignVendor(ctx context.Context, bookingID, vendorID uuid.UUID, actor types.Actor) (*models.Booking, error) {
	if vendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor id required")
	}
	return s.run(ctx, bookingID, actor, transition{
		target:     enums.BookingStatusAwaitingVendorResponse,
		sources:    []enums.BookingStatus{enums.BookingStatusAwaitingManager},
		action:     enums.BookingEventManagerAssignedVendor,
		actionData: map[string]any{"vendor_id": vendorID.String()},
		prepare: func(ctx context.Context, tx *gorm.DB, _ *models.Booking) (map[string]any, error) {
			vendor, err := s.vendors.WithTx(tx).FindVendor(ctx, vendorID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vendor not found").WithReason(ReasonVendorNotFound)
				}
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vendor")
			}
			if vendor.Status != enums.VendorStatusApproved {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vendor not eligible").WithReason(ReasonVendorNotEligible)
			}
			return map[string]any{
				"vendor_id":  vendor.ID,
				"manager_id": actor.ID,
			}, nil
		},
	})
}

func (s *service) VendorRespond(ctx context.Context, bookingID uuid.UUID, accept bool, reason string, actor types.Actor) (*models.Booking, error) {
	sources := []enums.BookingStatus{enums.BookingStatusPending, enums.BookingStatusAwaitingVendorResponse}
	if accept {
		return s.run(ctx, bookingID, actor, transition{
			target:  enums.BookingStatusAwaitingBeautician,
			sources: sources,
			action:  enums.BookingEventVendorAccepted,
			prepare: func(context.Context, *gorm.DB, *models.Booking) (map[string]any, error) {
				return map[string]any{
					"employee_id":         nil,
					"vendor_responded_at": s.now().UTC(),
				}, nil
			},
		})
	}

	data := map[string]any{}
	if trimmed := strings.TrimSpace(reason); trimmed != "" {
		data["reason"] = trimmed
	}
	return s.run(ctx, bookingID, actor, transition{
		target:     enums.BookingStatusAwaitingManager,
		sources:    sources,
		action:     enums.BookingEventVendorRejected,
		actionData: data,
		prepare: func(context.Context, *gorm.DB, *models.Booking) (map[string]any, error) {
			return map[string]any{"manager_id": nil}, nil
		},
	})
}

func (s *service) AssignBeautician(ctx context.Context, bookingID uuid.UUID, ref EmployeeRef, actor types.Actor) (*models.Booking, error) {
	var assigned models.Employee
	result, err := s.apply(ctx, bookingID, actor, transition{
		target:  enums.BookingStatusConfirmed,
		sources: []enums.BookingStatus{enums.BookingStatusAwaitingBeautician, enums.BookingStatusAwaitingVendorResponse},
		action:  enums.BookingEventBeauticianAssigned,
		prepare: func(ctx context.Context, tx *gorm.DB, booking *models.Booking) (map[string]any, error) {
			employee, err := s.resolveEmployee(ctx, tx, booking, ref)
			if err != nil {
				return nil, err
			}
			assigned = *employee
			return map[string]any{
				"employee_id":            employee.ID,
				"beautician_assigned_at": s.now().UTC(),
			}, nil
		},
	})
	if err != nil {
		return nil, err
	}
	if s.dispatcher != nil {
		s.dispatcher.BeauticianAssigned(ctx, *result.booking, assigned)
	}
	return result.booking, nil
}

func (s *service) Cancel(ctx context.Context, bookingID uuid.UUID, reason string, actor types.Actor) (*models.Booking, error) {
	var stored *string
	data := map[string]any{}
	if trimmed := strings.TrimSpace(reason); trimmed != "" {
		stored = &trimmed
		data["reason"] = trimmed
	}
	return s.run(ctx, bookingID, actor, transition{
		target:     enums.BookingStatusCancelled,
		action:     enums.BookingEventCancelled,
		actionData: data,
		prepare: func(context.Context, *gorm.DB, *models.Booking) (map[string]any, error) {
			return map[string]any{"cancellation_reason": stored}, nil
		},
	})
}

func (s *service) Get(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error) {
	booking, err := s.repo.FindWithLines(ctx, bookingID)
	if err != nil {
		return nil, mapLoadError(err)
	}
	return booking, nil
}

func (s *service) ListEvents(ctx context.Context, bookingID uuid.UUID, params pagination.Params) (*bookingevents.ListResult, error) {
	if _, err := s.repo.FindByID(ctx, bookingID); err != nil {
		return nil, mapLoadError(err)
	}
	return s.events.List(ctx, bookingID, params)
}

func (s *service) run(ctx context.Context, bookingID uuid.UUID, actor types.Actor, t transition) (*models.Booking, error) {
	result, err := s.apply(ctx, bookingID, actor, t)
	if err != nil {
		return nil, err
	}
	return result.booking, nil
}

// apply executes t in one transaction and runs the post-commit hooks.
func (s *service) apply(ctx context.Context, bookingID uuid.UUID, actor types.Actor, t transition) (*transitionResult, error) {
	allowed := effectiveSources(t.target, t.sources)
	var result transitionResult

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		booking, err := repo.FindByID(ctx, bookingID)
		if err != nil {
			return mapLoadError(err)
		}
		if err := authorizeParty(booking, actor); err != nil {
			return err
		}
		if !containsStatus(allowed, booking.Status) {
			return s.conflict(booking.Status, t.target)
		}

		now := s.now().UTC()
		updates := sideEffects(t.target, now)
		if t.prepare != nil {
			extra, err := t.prepare(ctx, tx, booking)
			if err != nil {
				return err
			}
			for column, value := range extra {
				updates[column] = value
			}
		}

		observed := StatusGuard{Status: booking.Status, VendorID: booking.VendorID}
		rows, err := repo.UpdateStatus(ctx, booking.ID, observed, updates)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update booking status")
		}
		if rows == 0 {
			current, err := repo.FindByID(ctx, booking.ID)
			if err != nil {
				return mapLoadError(err)
			}
			return s.conflict(current.Status, t.target)
		}

		statusData := map[string]any{"from": booking.Status, "to": t.target}
		if err := s.events.Record(ctx, tx, booking.ID, enums.BookingEventStatusChanged, actor, statusData); err != nil {
			return err
		}
		if t.action != "" {
			if err := s.events.Record(ctx, tx, booking.ID, t.action, actor, t.actionData); err != nil {
				return err
			}
		}

		updated, err := repo.FindByID(ctx, booking.ID)
		if err != nil {
			return mapLoadError(err)
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventBookingStatusChanged,
			AggregateType: enums.AggregateBooking,
			AggregateID:   updated.ID,
			Version:       1,
			Actor:         outbox.ActorFrom(actor),
			OccurredAt:    now,
			Data: payloads.BookingStatusChangedEvent{
				BookingID:  updated.ID,
				From:       booking.Status,
				To:         updated.Status,
				VendorID:   updated.VendorID,
				EmployeeID: updated.EmployeeID,
				ChangedAt:  now,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit booking status event")
		}

		result = transitionResult{booking: updated, from: booking.Status}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncTransition(string(result.from), string(t.target))
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"booking_id": bookingID.String(),
			"from":       result.from,
			"to":         t.target,
			"actor_role": actor.Role,
		})
		s.logg.Info(logCtx, "booking status changed")
	}

	if t.target == enums.BookingStatusCompleted {
		s.issueInvoice(ctx, bookingID)
	}
	return &result, nil
}

// issueInvoice generates the invoice of a freshly completed booking. Failures
// are logged; the invoice can be generated again on demand.
func (s *service) issueInvoice(ctx context.Context, bookingID uuid.UUID) {
	if s.invoices == nil {
		return
	}
	if _, err := s.invoices.Generate(ctx, bookingID); err != nil && s.logg != nil {
		logCtx := s.logg.WithBookingID(ctx, bookingID.String())
		s.logg.Error(logCtx, "invoice generation after completion failed", err)
	}
}

func (s *service) resolveEmployee(ctx context.Context, tx *gorm.DB, booking *models.Booking, ref EmployeeRef) (*models.Employee, error) {
	repo := s.vendors.WithTx(tx)

	if ref.EmployeeID != nil {
		employee, err := repo.FindEmployee(ctx, *ref.EmployeeID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "employee not found").WithReason(ReasonEmployeeNotFound)
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load employee")
		}
		if employee.Status != enums.EmployeeStatusActive || booking.VendorID == nil || employee.VendorID != *booking.VendorID {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "employee not eligible").WithReason(ReasonEmployeeNotEligible)
		}
		return employee, nil
	}

	name := strings.TrimSpace(ref.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "beautician name required").WithReason(ReasonBeauticianDetailsRequired)
	}
	if booking.VendorID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "booking has no vendor").WithReason(ReasonVendorRequired)
	}
	employee := &models.Employee{
		ID:       uuid.New(),
		VendorID: *booking.VendorID,
		Name:     name,
		Phone:    ref.Phone,
		Email:    ref.Email,
		Status:   enums.EmployeeStatusActive,
	}
	if err := repo.CreateEmployee(ctx, employee); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create employee")
	}
	return employee, nil
}

func (s *service) conflict(current, target enums.BookingStatus) error {
	s.metrics.IncConflict(string(target))
	return pkgerrors.New(pkgerrors.CodeStateConflict, "booking status does not allow this transition").
		WithDetails(map[string]any{
			"current_status": current,
			"target_status":  target,
		})
}

// authorizeParty keeps vendors, beauticians and customers on their own
// bookings. Staff and system actors are unrestricted.
func authorizeParty(booking *models.Booking, actor types.Actor) error {
	switch actor.Role {
	case enums.ActorRoleVendor, enums.ActorRoleBeautician:
		if actor.VendorID == nil || booking.VendorID == nil || *actor.VendorID != *booking.VendorID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "booking is not assigned to this vendor")
		}
	case enums.ActorRoleCustomer:
		if actor.ID == nil || *actor.ID != booking.CustomerID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "booking does not belong to customer")
		}
	}
	return nil
}

// CanView reports whether actor may read booking and its audit trail.
// Beauticians see bookings of the vendor that employs them.
func CanView(booking *models.Booking, actor types.Actor) error {
	if booking == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
	}
	return authorizeParty(booking, actor)
}

func mapLoadError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
	}
	if typed := pkgerrors.As(err); typed != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load booking")
}

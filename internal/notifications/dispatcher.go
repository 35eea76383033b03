package notifications

import (
	"context"

	"gorm.io/gorm"

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

// Dispatcher queues notification requests on the outbox after a booking
// transition has committed. It never reports failures to the caller.
type Dispatcher struct {
	tx      txRunner
	outbox  outboxPublisher
	metrics *metrics.BookingMetrics
	logg    *logger.Logger
}

// NewDispatcher builds a dispatcher over the transaction runner and outbox.
// Metrics and logger are optional.
func NewDispatcher(tx txRunner, publisher outboxPublisher, m *metrics.BookingMetrics, logg *logger.Logger) (*Dispatcher, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	if publisher == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "outbox publisher required")
	}
	return &Dispatcher{tx: tx, outbox: publisher, metrics: m, logg: logg}, nil
}

// BeauticianAssigned tells the customer the booking is confirmed and who is
// coming, and tells the beautician about the new job.
func (d *Dispatcher) BeauticianAssigned(ctx context.Context, booking models.Booking, employee models.Employee) {
	base := payloads.NotificationRequestedEvent{
		BookingID:      booking.ID,
		ScheduledDate:  booking.ScheduledDate.Format("2006-01-02"),
		ScheduledTime:  booking.ScheduledTime,
		BeauticianName: employee.Name,
	}

	confirmed := base
	confirmed.Type = enums.NotificationTypeBookingConfirmed
	confirmed.RecipientType = enums.RecipientCustomer
	confirmed.RecipientID = booking.CustomerID

	assigned := base
	assigned.Type = enums.NotificationTypeBeauticianAssigned
	assigned.RecipientType = enums.RecipientEmployee
	assigned.RecipientID = employee.ID

	customerAssigned := base
	customerAssigned.Type = enums.NotificationTypeCustomerBeauticianAssigned
	customerAssigned.RecipientType = enums.RecipientCustomer
	customerAssigned.RecipientID = booking.CustomerID

	d.Dispatch(ctx, confirmed, assigned, customerAssigned)
}

// Dispatch queues each request in its own transaction so one failure does
// not drop the others.
func (d *Dispatcher) Dispatch(ctx context.Context, requests ...payloads.NotificationRequestedEvent) {
	for _, request := range requests {
		err := d.tx.WithTx(ctx, func(tx *gorm.DB) error {
			return d.outbox.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventNotificationRequested,
				AggregateType: enums.AggregateNotification,
				AggregateID:   request.BookingID,
				Version:       1,
				Actor:         outbox.ActorFrom(types.SystemActor()),
				Data:          request,
			})
		})
		if err == nil {
			continue
		}
		d.metrics.IncDispatchFailure(string(request.Type))
		if d.logg != nil {
			logCtx := d.logg.WithFields(ctx, map[string]any{
				"booking_id":        request.BookingID.String(),
				"notification_type": request.Type,
				"recipient_type":    request.RecipientType,
			})
			d.logg.Error(logCtx, "notification dispatch failed", err)
		}
	}
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// BookingMetrics counts lifecycle activity of the booking engine.
type BookingMetrics struct {
	created       *prometheus.CounterVec
	transitions   *prometheus.CounterVec
	conflicts     *prometheus.CounterVec
	invoices      prometheus.Counter
	dispatchFails *prometheus.CounterVec
}

// NewBookingMetrics registers the booking metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	if reg == nil {
		return &BookingMetrics{}
	}
	created := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "glowcall_bookings_created_total",
		Help: "Bookings created, by booking type.",
	}, []string{"booking_type"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "glowcall_booking_transitions_total",
		Help: "Applied booking status transitions.",
	}, []string{"from", "to"})
	conflicts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "glowcall_booking_transition_conflicts_total",
		Help: "Transitions refused because the booking status moved on.",
	}, []string{"to"})
	invoices := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "glowcall_invoices_generated_total",
		Help: "Invoices issued for completed bookings.",
	})
	dispatchFails := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "glowcall_notification_dispatch_failures_total",
		Help: "Notification requests that could not be queued.",
	}, []string{"type"})
	reg.MustRegister(created, transitions, conflicts, invoices, dispatchFails)
	return &BookingMetrics{
		created:       created,
		transitions:   transitions,
		conflicts:     conflicts,
		invoices:      invoices,
		dispatchFails: dispatchFails,
	}
}

// IncCreated counts a new booking.
func (b *BookingMetrics) IncCreated(bookingType string) {
	if b == nil || b.created == nil {
		return
	}
	b.created.WithLabelValues(normalizeLabel(bookingType)).Inc()
}

// IncTransition counts an applied status change.
func (b *BookingMetrics) IncTransition(from, to string) {
	if b == nil || b.transitions == nil {
		return
	}
	b.transitions.WithLabelValues(normalizeLabel(from), normalizeLabel(to)).Inc()
}

// IncConflict counts a refused transition.
func (b *BookingMetrics) IncConflict(to string) {
	if b == nil || b.conflicts == nil {
		return
	}
	b.conflicts.WithLabelValues(normalizeLabel(to)).Inc()
}

// IncInvoice counts an issued invoice.
func (b *BookingMetrics) IncInvoice() {
	if b == nil || b.invoices == nil {
		return
	}
	b.invoices.Inc()
}

// IncDispatchFailure counts a notification that was not queued.
func (b *BookingMetrics) IncDispatchFailure(notificationType string) {
	if b == nil || b.dispatchFails == nil {
		return
	}
	b.dispatchFails.WithLabelValues(normalizeLabel(notificationType)).Inc()
}

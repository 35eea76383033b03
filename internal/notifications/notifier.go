package notifications

import (
	"context"

	"github.com/glowcall/glowcall-backend/pkg/logger"
	"github.com/glowcall/glowcall-backend/pkg/outbox/payloads"
)

// Notifier delivers booking notifications outside the in-app inbox (email,
// SMS, push). Delivery channels live behind this interface.
type Notifier interface {
	NotifyBookingConfirmed(ctx context.Context, request payloads.NotificationRequestedEvent) error
	NotifyBeauticianAssigned(ctx context.Context, request payloads.NotificationRequestedEvent) error
	NotifyCustomerBeauticianAssigned(ctx context.Context, request payloads.NotificationRequestedEvent) error
}

// LogNotifier records each delivery as a structured log line.
type LogNotifier struct {
	logg *logger.Logger
}

func NewLogNotifier(logg *logger.Logger) *LogNotifier {
	return &LogNotifier{logg: logg}
}

func (n *LogNotifier) NotifyBookingConfirmed(ctx context.Context, request payloads.NotificationRequestedEvent) error {
	n.log(ctx, request)
	return nil
}

func (n *LogNotifier) NotifyBeauticianAssigned(ctx context.Context, request payloads.NotificationRequestedEvent) error {
	n.log(ctx, request)
	return nil
}

func (n *LogNotifier) NotifyCustomerBeauticianAssigned(ctx context.Context, request payloads.NotificationRequestedEvent) error {
	n.log(ctx, request)
	return nil
}

func (n *LogNotifier) log(ctx context.Context, request payloads.NotificationRequestedEvent) {
	if n == nil || n.logg == nil {
		return
	}
	logCtx := n.logg.WithFields(ctx, map[string]any{
		"notification_type": request.Type,
		"recipient_type":    request.RecipientType,
		"recipient_id":      request.RecipientID.String(),
		"booking_id":        request.BookingID.String(),
	})
	n.logg.Info(logCtx, "notification delivered")
}

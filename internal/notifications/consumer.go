package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/glowcall/glowcall-backend/pkg/db/models"
	"github.com/glowcall/glowcall-backend/pkg/enums"
	"github.com/glowcall/glowcall-backend/pkg/logger"
	"github.com/glowcall/glowcall-backend/pkg/outbox"
	"github.com/glowcall/glowcall-backend/pkg/outbox/idempotency"
	"github.com/glowcall/glowcall-backend/pkg/outbox/payloads"
	"github.com/glowcall/glowcall-backend/pkg/outbox/registry"
)

const notificationConsumer = "notification-worker"

type inboxWriter interface {
	Create(ctx context.Context, notification *models.Notification) error
}

type deduplicator interface {
	ProcessOnce(ctx context.Context, consumer string, eventID uuid.UUID, fn func(ctx context.Context) error) (bool, error)
}

// Consumer turns notification_requested events into inbox rows and
// Notifier deliveries.
type Consumer struct {
	repo         inboxWriter
	subscription *pubsub.Subscriber
	idempotency  deduplicator
	decoders     *registry.DecoderRegistry
	notifier     Notifier
	logg         *logger.Logger
}

// NewConsumer builds the notification consumer.
func NewConsumer(repo inboxWriter, subscription *pubsub.Subscriber, manager *idempotency.Manager, notifier Notifier, logg *logger.Logger) (*Consumer, error) {
	if subscription == nil {
		return nil, fmt.Errorf("notification subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	consumer, err := newConsumer(repo, manager, notifier, logg)
	if err != nil {
		return nil, err
	}
	consumer.subscription = subscription
	return consumer, nil
}

func newConsumer(repo inboxWriter, dedupe deduplicator, notifier Notifier, logg *logger.Logger) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	decoders := registry.NewDecoderRegistry()
	decoders.RegisterJSON(enums.EventNotificationRequested, 1, func() interface{} {
		return &payloads.NotificationRequestedEvent{}
	})
	return &Consumer{
		repo:        repo,
		idempotency: dedupe,
		decoders:    decoders,
		notifier:    notifier,
		logg:        logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg.ID, msg.Attributes, msg.Data)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, messageID string, attributes map[string]string, data []byte) processResult {
	eventType := attributes["event_type"]
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": messageID,
		"event_type": eventType,
	})

	if eventType != string(enums.EventNotificationRequested) {
		c.logg.Info(logCtx, "skipping non-notification event")
		return processResult{ack: true}
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{ack: true}
	}

	decoded, err := c.decoders.Decode(enums.EventNotificationRequested, envelope.Version, envelope.Data)
	if err != nil {
		c.logg.Error(logCtx, "failed to parse payload", err)
		return processResult{ack: true}
	}
	request, ok := decoded.(*payloads.NotificationRequestedEvent)
	if !ok || !request.Type.IsValid() || request.RecipientID == uuid.Nil {
		c.logg.Warn(logCtx, "notification request incomplete")
		return processResult{ack: true}
	}

	logCtx = c.logg.WithFields(logCtx, map[string]any{
		"booking_id":        request.BookingID.String(),
		"notification_type": request.Type,
		"recipient_type":    request.RecipientType,
	})

	skipped, err := c.idempotency.ProcessOnce(ctx, notificationConsumer, eventID, func(ctx context.Context) error {
		return c.handle(ctx, *request)
	})
	if err != nil {
		c.logg.Error(logCtx, "notification handling failed", err)
		return processResult{nack: true}
	}
	if skipped {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	c.logg.Info(logCtx, "notification stored")
	return processResult{ack: true}
}

func (c *Consumer) handle(ctx context.Context, request payloads.NotificationRequestedEvent) error {
	title, message := render(request)
	bookingID := request.BookingID
	notification := &models.Notification{
		RecipientType: request.RecipientType,
		RecipientID:   request.RecipientID,
		BookingID:     &bookingID,
		Type:          request.Type,
		Title:         title,
		Message:       message,
	}
	if err := c.repo.Create(ctx, notification); err != nil {
		return err
	}

	// The inbox row is the record of truth; delivery failures are not retried.
	if err := c.deliver(ctx, request); err != nil {
		c.logg.Error(ctx, "notification delivery failed", err)
	}
	return nil
}

func (c *Consumer) deliver(ctx context.Context, request payloads.NotificationRequestedEvent) error {
	switch request.Type {
	case enums.NotificationTypeBookingConfirmed:
		return c.notifier.NotifyBookingConfirmed(ctx, request)
	case enums.NotificationTypeBeauticianAssigned:
		return c.notifier.NotifyBeauticianAssigned(ctx, request)
	case enums.NotificationTypeCustomerBeauticianAssigned:
		return c.notifier.NotifyCustomerBeauticianAssigned(ctx, request)
	}
	return nil
}

func render(request payloads.NotificationRequestedEvent) (string, string) {
	when := fmt.Sprintf("%s at %s", request.ScheduledDate, request.ScheduledTime)
	switch request.Type {
	case enums.NotificationTypeBookingConfirmed:
		return "Booking confirmed", fmt.Sprintf("Your booking on %s is confirmed.", when)
	case enums.NotificationTypeBeauticianAssigned:
		return "New booking assigned", fmt.Sprintf("You have a new booking on %s.", when)
	case enums.NotificationTypeCustomerBeauticianAssigned:
		name := request.BeauticianName
		if name == "" {
			name = "Your beautician"
		}
		return "Beautician assigned", fmt.Sprintf("%s will take care of your booking on %s.", name, when)
	}
	return "Booking update", fmt.Sprintf("Your booking on %s was updated.", when)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/glowcall/glowcall-backend/pkg/config"
	"github.com/glowcall/glowcall-backend/pkg/db/models"
	"github.com/glowcall/glowcall-backend/pkg/enums"
	pkgerrors "github.com/glowcall/glowcall-backend/pkg/errors"
	"github.com/glowcall/glowcall-backend/pkg/logger"
	"github.com/glowcall/glowcall-backend/pkg/metrics"
	"github.com/glowcall/glowcall-backend/pkg/outbox"
	"github.com/glowcall/glowcall-backend/pkg/outbox/registry"
)

const (
	defaultBatchSize      = 50
	defaultPollMs         = 500
	defaultPublishTimeout = 15 * time.Second
	defaultMaxAttempts    = 10
	maxBackoff            = 10 * time.Second
	jitterWindow          = 250 * time.Millisecond
)

type dbClient interface {
	Ping(context.Context) error
	WithTx(context.Context, func(tx *gorm.DB) error) error
}

type pubSubClient interface {
	Ping(context.Context) error
	Publisher(name string) *gcppubsub.Publisher
}

type outboxRepository interface {
	FetchUnpublishedForPublish(tx *gorm.DB, limit int) ([]models.OutboxEvent, error)
	MarkPublishedTx(tx *gorm.DB, id uuid.UUID) error
	MarkFailedTx(tx *gorm.DB, id uuid.UUID, err error) error
	MarkTerminalTx(tx *gorm.DB, id uuid.UUID, err error) error
}

type dlqRepository interface {
	InsertTx(tx *gorm.DB, entry models.OutboxDLQ) error
}

type registryResolver interface {
	Resolve(models.OutboxEvent) (*registry.ResolvedEvent, error)
}

type publisherFactory func(topic string) publisher

type publisher interface {
	Publish(context.Context, *gcppubsub.Message) publishResult
}

type publishResult interface {
	Get(context.Context) (string, error)
}

type ServiceParams struct {
	Config           *config.Config
	Logger           *logger.Logger
	DB               dbClient
	PubSub           pubSubClient
	Repository       outboxRepository
	Registry         registryResolver
	PublisherFactory publisherFactory
	DLQRepository    dlqRepository
	Metrics          *metrics.OutboxMetrics
}

// Service drains the outbox table onto the booking and notification topics.
type Service struct {
	logg             *logger.Logger
	db               dbClient
	repo             outboxRepository
	pubsub           pubSubClient
	registry         registryResolver
	dlq              dlqRepository
	publisherFactory publisherFactory
	metrics          *metrics.OutboxMetrics
	batchSize        int
	maxAttempts      int
	pollInterval     time.Duration
}

func NewService(params ServiceParams) (*Service, error) {
	required := []struct {
		name    string
		missing bool
	}{
		{"config", params.Config == nil},
		{"logger", params.Logger == nil},
		{"database client", params.DB == nil},
		{"pubsub client", params.PubSub == nil},
		{"outbox repository", params.Repository == nil},
		{"event registry", params.Registry == nil},
		{"dlq repository", params.DLQRepository == nil},
	}
	for _, dep := range required {
		if dep.missing {
			return nil, pkgerrors.New(pkgerrors.CodeDependency, dep.name+" is required")
		}
	}

	factory := params.PublisherFactory
	if factory == nil {
		factory = func(topic string) publisher {
			return wrapPublisher(params.PubSub.Publisher(topic))
		}
	}

	cfg := params.Config.Outbox
	return &Service{
		logg:             params.Logger,
		db:               params.DB,
		repo:             params.Repository,
		pubsub:           params.PubSub,
		registry:         params.Registry,
		dlq:              params.DLQRepository,
		publisherFactory: factory,
		metrics:          params.Metrics,
		batchSize:        positiveOr(cfg.BatchSize, defaultBatchSize),
		maxAttempts:      positiveOr(cfg.MaxAttempts, defaultMaxAttempts),
		pollInterval:     time.Duration(positiveOr(cfg.PollIntervalMS, defaultPollMs)) * time.Millisecond,
	}, nil
}

func positiveOr(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}

// Run polls until ctx is cancelled. A full batch is followed immediately by
// the next one; errors back off exponentially up to maxBackoff.
func (s *Service) Run(ctx context.Context) error {
	if err := s.ready(ctx); err != nil {
		return err
	}

	retry := newBackoff(s.pollInterval, maxBackoff)
	for {
		if err := ctx.Err(); err != nil {
			s.logg.Info(ctx, "outbox publisher context canceled")
			return err
		}

		processed, err := s.processBatch(ctx)
		var wait time.Duration
		switch {
		case err != nil:
			s.logg.Error(ctx, "outbox publisher batch error", err)
			wait = retry.next()
		case processed:
			retry.reset()
			continue
		default:
			retry.reset()
			wait = s.pollInterval
		}

		if err := sleep(ctx, jittered(wait)); err != nil {
			return err
		}
	}
}

func (s *Service) ready(ctx context.Context) error {
	if err := s.db.Ping(ctx); err != nil {
		s.logg.Error(ctx, "database ping failed", err)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database ping failed")
	}
	if err := s.pubsub.Ping(ctx); err != nil {
		s.logg.Error(ctx, "pubsub ping failed", err)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "pubsub ping failed")
	}
	return nil
}

type outcome int

const (
	outcomePublished outcome = iota
	outcomeRetry
	outcomeDeadLetter
)

// delivery is the result of one publish attempt, settled inside the batch tx.
type delivery struct {
	event   models.OutboxEvent
	outcome outcome
	reason  enums.OutboxDLQErrorReason
	err     error
	fields  map[string]any
}

// processBatch claims up to batchSize rows and settles each one. Publisher
// handles are built once per topic per batch.
func (s *Service) processBatch(ctx context.Context) (bool, error) {
	processed := false
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		events, err := s.repo.FetchUnpublishedForPublish(tx, s.batchSize)
		if err != nil {
			return err
		}
		processed = len(events) > 0

		publishers := map[string]publisher{}
		for _, event := range events {
			if err := s.settle(ctx, tx, s.deliver(ctx, event, publishers)); err != nil {
				return err
			}
		}
		return nil
	})
	return processed, err
}

func (s *Service) deliver(ctx context.Context, event models.OutboxEvent, publishers map[string]publisher) delivery {
	d := delivery{event: event}

	resolved, err := s.registry.Resolve(event)
	if err != nil {
		d.fields = s.eventFields(event, outbox.PayloadEnvelope{}, "")
		d.outcome, d.reason, d.err = outcomeDeadLetter, enums.OutboxDLQReasonNonRetryable, err
		return d
	}

	topic := resolved.Descriptor.Topic
	d.fields = s.eventFields(event, resolved.Envelope, topic)

	pub, ok := publishers[topic]
	if !ok {
		pub = s.publisherFactory(topic)
		publishers[topic] = pub
	}

	err = s.publish(ctx, pub, topic, newMessage(event, resolved.Envelope))
	var nonRetry registry.NonRetryableError
	switch {
	case err == nil:
		d.outcome = outcomePublished
	case errors.As(err, &nonRetry):
		d.outcome, d.reason, d.err = outcomeDeadLetter, enums.OutboxDLQReasonNonRetryable, err
	case event.AttemptCount+1 >= s.maxAttempts:
		d.fields["attempt_count"] = event.AttemptCount + 1
		d.fields["terminal_reason"] = "max_attempts"
		d.outcome, d.reason = outcomeDeadLetter, enums.OutboxDLQReasonMaxAttempts
		d.err = fmt.Errorf("max publish attempts reached: %w", err)
	default:
		d.fields["attempt_count"] = event.AttemptCount + 1
		d.outcome, d.err = outcomeRetry, err
	}
	return d
}

func (s *Service) settle(ctx context.Context, tx *gorm.DB, d delivery) error {
	id := d.event.ID
	eventType := string(d.event.EventType)

	switch d.outcome {
	case outcomePublished:
		if err := s.repo.MarkPublishedTx(tx, id); err != nil {
			return fmt.Errorf("mark published %s: %w", id, err)
		}
		s.metrics.IncPublished(eventType)
		s.logg.Info(s.logg.WithFields(ctx, d.fields), "outbox event published")

	case outcomeRetry:
		s.logg.Warn(s.logg.WithField(s.logg.WithFields(ctx, d.fields), "error", d.err.Error()), "outbox publish failed")
		s.metrics.IncFailed(eventType)
		if err := s.repo.MarkFailedTx(tx, id, d.err); err != nil {
			return fmt.Errorf("mark failure %s: %w", id, err)
		}

	case outcomeDeadLetter:
		d.fields["error_reason"] = d.reason
		s.logg.Warn(s.logg.WithField(s.logg.WithFields(ctx, d.fields), "error", d.err.Error()), "outbox event will not be retried")
		msg := d.err.Error()
		entry := models.OutboxDLQ{
			EventID:       id,
			EventType:     d.event.EventType,
			AggregateType: d.event.AggregateType,
			AggregateID:   d.event.AggregateID,
			Payload:       d.event.Payload,
			ErrorReason:   d.reason,
			ErrorMessage:  &msg,
			AttemptCount:  d.event.AttemptCount,
			FailedAt:      time.Now().UTC(),
		}
		if err := s.dlq.InsertTx(tx, entry); err != nil {
			return fmt.Errorf("insert dlq %s: %w", id, err)
		}
		if err := s.repo.MarkTerminalTx(tx, id, d.err); err != nil {
			return fmt.Errorf("mark terminal %s: %w", id, err)
		}
		s.metrics.IncDeadLettered(string(d.reason))
	}
	return nil
}

func newMessage(event models.OutboxEvent, envelope outbox.PayloadEnvelope) *gcppubsub.Message {
	return &gcppubsub.Message{
		Data: event.Payload,
		Attributes: map[string]string{
			"event_id":       envelope.EventID,
			"event_type":     string(event.EventType),
			"aggregate_type": string(event.AggregateType),
			"aggregate_id":   event.AggregateID.String(),
			"created_at":     event.CreatedAt.Format(time.RFC3339Nano),
		},
	}
}

// publish blocks until the broker acks or defaultPublishTimeout elapses. A
// missing publisher is terminal since the topic can never be reached.
func (s *Service) publish(ctx context.Context, pub publisher, topic string, msg *gcppubsub.Message) error {
	if pub == nil {
		return registry.NewNonRetryableError(fmt.Errorf("publisher not configured for topic %s", topic))
	}
	ctx, cancel := context.WithTimeout(ctx, defaultPublishTimeout)
	defer cancel()

	result := pub.Publish(ctx, msg)
	if result == nil {
		return registry.NewNonRetryableError(fmt.Errorf("publisher returned nil for topic %s", topic))
	}
	_, err := result.Get(ctx)
	return err
}

func (s *Service) eventFields(event models.OutboxEvent, envelope outbox.PayloadEnvelope, topic string) map[string]any {
	fields := map[string]any{
		"outbox_id":      event.ID.String(),
		"event_type":     event.EventType,
		"aggregate_type": event.AggregateType,
		"aggregate_id":   event.AggregateID.String(),
		"batch_size":     s.batchSize,
		"attempt_count":  event.AttemptCount,
	}
	if envelope.EventID != "" {
		fields["event_id"] = envelope.EventID
		fields["occurred_at"] = envelope.OccurredAt.Format(time.RFC3339Nano)
	}
	if topic != "" {
		fields["topic"] = topic
	}
	if event.LastError != nil {
		fields["last_error"] = *event.LastError
	}
	return fields
}

// backoff doubles from base up to max and starts over on reset.
type backoff struct {
	base    time.Duration
	max     time.Duration
	current time.Duration
}

func newBackoff(base, ceiling time.Duration) *backoff {
	return &backoff{base: base, max: ceiling, current: base}
}

func (b *backoff) next() time.Duration {
	b.current = min(b.current*2, b.max)
	return b.current
}

func (b *backoff) reset() {
	b.current = b.base
}

func jittered(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return d + rand.N(jitterWindow)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// gcpPublisher adapts *pubsub.Publisher to the publisher interface.
type gcpPublisher struct {
	*gcppubsub.Publisher
}

func wrapPublisher(p *gcppubsub.Publisher) publisher {
	if p == nil {
		return nil
	}
	return gcpPublisher{Publisher: p}
}

func (p gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	return p.Publisher.Publish(ctx, msg)
}

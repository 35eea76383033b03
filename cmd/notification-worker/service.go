package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glowcall/glowcall-backend/pkg/logger"
)

const heartbeatInterval = 30 * time.Second

type pinger interface {
	Ping(context.Context) error
}

type consumer interface {
	Run(context.Context) error
}

type ServiceParams struct {
	Logger     *logger.Logger
	DB         pinger
	Redis      pinger
	PubSub     pinger
	Consumer   consumer
	InstanceID string
}

type Service struct {
	logg       *logger.Logger
	db         pinger
	redis      pinger
	pubsub     pinger
	consumer   consumer
	instanceID string
	heartbeat  time.Duration
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if params.DB == nil {
		return nil, errors.New("database client is required")
	}
	if params.Redis == nil {
		return nil, errors.New("redis client is required")
	}
	if params.PubSub == nil {
		return nil, errors.New("pubsub client is required")
	}
	if params.Consumer == nil {
		return nil, errors.New("notification consumer is required")
	}

	return &Service{
		logg:       params.Logger,
		db:         params.DB,
		redis:      params.Redis,
		pubsub:     params.PubSub,
		consumer:   params.Consumer,
		instanceID: params.InstanceID,
		heartbeat:  heartbeatInterval,
	}, nil
}

func (s *Service) ensureReadiness(ctx context.Context) error {
	if err := pingDependency(ctx, s.logg, "database", s.db.Ping); err != nil {
		return err
	}
	if err := pingDependency(ctx, s.logg, "redis", s.redis.Ping); err != nil {
		return err
	}
	if err := pingDependency(ctx, s.logg, "pubsub", s.pubsub.Ping); err != nil {
		return err
	}
	s.logg.Info(ctx, "notification worker dependencies are ready")
	return nil
}

func pingDependency(ctx context.Context, logg *logger.Logger, name string, fn func(context.Context) error) error {
	if err := fn(ctx); err != nil {
		logg.Error(ctx, fmt.Sprintf("%s ping failed", name), err)
		return fmt.Errorf("%s ping failed: %w", name, err)
	}
	return nil
}

// Run blocks until the consumer stops or ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = s.logg.WithField(ctx, "instance", s.instanceID)

	if err := s.ensureReadiness(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(s.heartbeat)
	defer ticker.Stop()
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.consumer.Run(ctx)
	}()

	for {
		select {
		case <-ctx.Done():
			s.logg.Info(ctx, "notification worker context canceled")
			return ctx.Err()
		case err := <-errCh:
			if err != nil && !errors.Is(err, context.Canceled) {
				s.logg.Error(ctx, "notification consumer stopped unexpectedly", err)
			}
			return err
		case <-ticker.C:
			s.logg.Debug(ctx, "notification worker heartbeat")
		}
	}
}

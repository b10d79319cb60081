package main

import (
	"context"
	"errors"
	"math/rand"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/kinaskak/storefront-backend/pkg/config"
	"github.com/kinaskak/storefront-backend/pkg/db/models"
	"github.com/kinaskak/storefront-backend/pkg/logger"
)

const (
	defaultBatchSize      = 50
	defaultPollMs         = 500
	defaultMaxAttempts    = 10
	defaultPublishTimeout = 15 * time.Second
	maxBackoff            = 10 * time.Second
	jitterWindow          = 250 * time.Millisecond
)

var jitterSource = rand.New(rand.NewSource(time.Now().UnixNano()))

type outboxRepository interface {
	FetchUnpublished(limit, maxAttempts int) ([]models.OutboxEvent, error)
	MarkPublished(id uuid.UUID) error
	MarkFailed(id uuid.UUID, cause error) error
}

type publisher interface {
	Publish(ctx context.Context, msg *gcppubsub.Message) publishResult
}

type publishResult interface {
	Get(ctx context.Context) (string, error)
}

type gcpPublisher struct {
	inner *gcppubsub.Publisher
}

func (p gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	return p.inner.Publish(ctx, msg)
}

type ServiceParams struct {
	Config     *config.Config
	Logger     *logger.Logger
	Repository outboxRepository
	Publisher  publisher
}

// Service drains the transactional outbox onto the order-events topic. Events
// that keep failing stop being picked up once they exhaust their attempts.
type Service struct {
	cfg          *config.Config
	logg         *logger.Logger
	repo         outboxRepository
	publisher    publisher
	batchSize    int
	maxAttempts  int
	pollInterval time.Duration
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Config == nil {
		return nil, errors.New("config is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if params.Repository == nil {
		return nil, errors.New("outbox repository is required")
	}
	if params.Publisher == nil {
		return nil, errors.New("publisher is required")
	}

	batch := params.Config.Outbox.BatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}
	pollMs := params.Config.Outbox.PollIntervalMS
	if pollMs <= 0 {
		pollMs = defaultPollMs
	}
	maxAttempts := params.Config.Outbox.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}

	return &Service{
		cfg:          params.Config,
		logg:         params.Logger,
		repo:         params.Repository,
		publisher:    params.Publisher,
		batchSize:    batch,
		maxAttempts:  maxAttempts,
		pollInterval: time.Duration(pollMs) * time.Millisecond,
	}, nil
}

func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	interval := s.pollInterval
	backoff := interval

	for {
		select {
		case <-ctx.Done():
			s.logg.Info(ctx, "outbox publisher context canceled")
			return ctx.Err()
		default:
		}

		processed, err := s.processBatch(ctx)
		if err != nil {
			s.logg.Error(ctx, "outbox publisher batch error", err)
			backoff = nextBackoff(backoff, interval, maxBackoff)
			if err := s.sleep(ctx, withJitter(backoff)); err != nil {
				return err
			}
			continue
		}

		backoff = interval

		if processed {
			continue
		}

		if err := s.sleep(ctx, withJitter(interval)); err != nil {
			return err
		}
	}
}

// processBatch publishes one batch. A publish failure marks the row and moves
// on; only repository errors abort the batch.
func (s *Service) processBatch(ctx context.Context) (bool, error) {
	events, err := s.repo.FetchUnpublished(s.batchSize, s.maxAttempts)
	if err != nil {
		return false, err
	}
	if len(events) == 0 {
		return false, nil
	}

	for _, event := range events {
		fields := s.eventFields(event)
		if err := s.publish(ctx, event); err != nil {
			fields["attempt_count"] = event.AttemptCount + 1
			eventCtx := s.logg.WithFields(ctx, fields)
			eventCtx = s.logg.WithField(eventCtx, "error", err.Error())
			s.logg.Warn(eventCtx, "outbox publish failed")
			if markErr := s.repo.MarkFailed(event.ID, err); markErr != nil {
				return true, markErr
			}
			continue
		}

		if markErr := s.repo.MarkPublished(event.ID); markErr != nil {
			return true, markErr
		}
		s.logg.Info(s.logg.WithFields(ctx, fields), "outbox event published")
	}
	return true, nil
}

func (s *Service) publish(ctx context.Context, event models.OutboxEvent) error {
	msg := &gcppubsub.Message{
		Data: event.Payload,
		Attributes: map[string]string{
			"event_id":     event.ID.String(),
			"event_type":   string(event.EventType),
			"aggregate_id": event.AggregateID.String(),
			"created_at":   event.CreatedAt.Format(time.RFC3339Nano),
		},
	}

	publishCtx, cancel := context.WithTimeout(ctx, defaultPublishTimeout)
	defer cancel()

	result := s.publisher.Publish(publishCtx, msg)
	if result == nil {
		return errors.New("publisher returned nil result")
	}
	_, err := result.Get(publishCtx)
	return err
}

func (s *Service) eventFields(event models.OutboxEvent) map[string]any {
	fields := map[string]any{
		"outbox_id":     event.ID.String(),
		"event_type":    event.EventType,
		"aggregate_id":  event.AggregateID.String(),
		"attempt_count": event.AttemptCount,
		"batch_size":    s.batchSize,
	}
	if event.LastError != nil {
		fields["last_error"] = *event.LastError
	}
	return fields
}

func (s *Service) sleep(ctx context.Context, d time.Duration) error {
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

func nextBackoff(current, base, max time.Duration) time.Duration {
	if current <= 0 {
		current = base
	}
	next := current * 2
	if next > max {
		return max
	}
	return next
}

func withJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	jitter := time.Duration(jitterSource.Int63n(int64(jitterWindow)))
	return d + jitter
}

package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kinaskak/storefront-backend/pkg/db/models"
	"github.com/kinaskak/storefront-backend/pkg/enums"
	"github.com/kinaskak/storefront-backend/pkg/logger"
)

// DomainEvent is the shape services emit; the payload is wrapped in a
// versioned envelope before hitting the outbox table.
type DomainEvent struct {
	EventType   enums.OutboxEventType
	AggregateID uuid.UUID
	Data        interface{}
	Version     int
	OccurredAt  time.Time
}

// PayloadEnvelope is the serialized form published to consumers.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"event_id"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       json.RawMessage `json:"data"`
}

type Service struct {
	repo *Repository
	logg *logger.Logger
}

func NewService(repo *Repository, logg *logger.Logger) *Service {
	return &Service{repo: repo, logg: logg}
}

// Emit appends the event to the outbox inside the caller's transaction, so the
// event commits atomically with the domain change that produced it.
func (s *Service) Emit(ctx context.Context, tx *gorm.DB, event DomainEvent) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	payload, err := json.Marshal(event.Data)
	if err != nil {
		return err
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	if event.Version == 0 {
		event.Version = 1
	}
	envelope := PayloadEnvelope{
		Version:    event.Version,
		EventID:    uuid.NewString(),
		OccurredAt: event.OccurredAt,
		Data:       payload,
	}
	payloadJSON, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	row := models.OutboxEvent{
		EventType:   event.EventType,
		AggregateID: event.AggregateID,
		Payload:     json.RawMessage(payloadJSON),
	}
	if err := s.repo.Insert(tx, row); err != nil {
		return err
	}
	if s.logg != nil {
		fields := map[string]any{
			"event_id":     envelope.EventID,
			"event_type":   event.EventType,
			"aggregate_id": event.AggregateID.String(),
		}
		logCtx := s.logg.WithFields(ctx, fields)
		s.logg.Info(logCtx, "outbox event queued")
	}
	return nil
}

// Package events persists domain events and fans them out to in-process
// notifiers. Events are append-only audit records; delivery failures never
// roll back the emitting operation.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Event is one persisted domain event.
type Event struct {
	ID          string          `json:"id"`
	Topic       string          `json:"topic"`
	AggregateID string          `json:"aggregateId"`
	Payload     json.RawMessage `json:"payload"`
	OccurredAt  time.Time       `json:"occurredAt"`
}

// Store defines the persistence operations required by the bus.
type Store interface {
	InsertEvent(ctx context.Context, event Event) (Event, error)
}

// Notifier reacts to emitted events (queue enqueue, metrics, email).
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// Bus persists domain events and dispatches them to notifiers.
type Bus struct {
	Store     Store
	Notifiers []Notifier
}

// Emit records the event and hands it to all configured notifiers. Notifier
// errors are joined and returned after every notifier has run.
func (b *Bus) Emit(ctx context.Context, topic, aggregateID string, payload any) (Event, error) {
	if b == nil || b.Store == nil {
		return Event{}, errors.New("events: store not configured")
	}
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return Event{}, errors.New("events: topic is required")
	}
	if strings.TrimSpace(aggregateID) == "" {
		return Event{}, errors.New("events: aggregate id is required")
	}
	encoded, err := encodePayload(payload)
	if err != nil {
		return Event{}, fmt.Errorf("events: encode payload: %w", err)
	}
	event, err := b.Store.InsertEvent(ctx, Event{
		Topic:       topic,
		AggregateID: aggregateID,
		Payload:     encoded,
	})
	if err != nil {
		return Event{}, fmt.Errorf("events: persist event: %w", err)
	}
	var joined error
	for _, notifier := range b.Notifiers {
		if notifier == nil {
			continue
		}
		if notifyErr := notifier.Notify(ctx, event); notifyErr != nil {
			joined = errors.Join(joined, fmt.Errorf("events: notifier: %w", notifyErr))
		}
	}
	return event, joined
}

func encodePayload(payload any) (json.RawMessage, error) {
	if payload == nil {
		return json.RawMessage(`{}`), nil
	}
	if raw, ok := payload.(json.RawMessage); ok {
		if len(raw) == 0 {
			return json.RawMessage(`{}`), nil
		}
		return raw, nil
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return encoded, nil
}

// PGStore persists events in the domain_events table.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore constructs a PGStore on the provided pool.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// InsertEvent implements Store.
func (s *PGStore) InsertEvent(ctx context.Context, event Event) (Event, error) {
	if s == nil || s.pool == nil {
		return Event{}, errors.New("event store not configured")
	}
	event.ID = uuid.NewString()
	event.OccurredAt = time.Now().UTC()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO domain_events (id, topic, aggregate_id, payload, occurred_at)
		VALUES ($1, $2, $3, $4, $5)`,
		event.ID, event.Topic, event.AggregateID, []byte(event.Payload), event.OccurredAt)
	if err != nil {
		return Event{}, err
	}
	return event, nil
}

// MemoryStore collects events in memory for tests.
type MemoryStore struct {
	Events []Event
}

// InsertEvent implements Store.
func (s *MemoryStore) InsertEvent(_ context.Context, event Event) (Event, error) {
	event.ID = uuid.NewString()
	event.OccurredAt = time.Now().UTC()
	s.Events = append(s.Events, event)
	return event, nil
}

// Package events announces registry, ledger and directory mutations on the
// configured message broker.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/port-russell/marina/internal/logging"
	"github.com/port-russell/marina/internal/mq"
)

const (
	CatwayCreated      = "catway.created"
	CatwayUpdated      = "catway.updated"
	CatwayDeleted      = "catway.deleted"
	ReservationCreated = "reservation.created"
	ReservationUpdated = "reservation.updated"
	ReservationDeleted = "reservation.deleted"
	UserCreated        = "user.created"
	UserUpdated        = "user.updated"
	UserDeleted        = "user.deleted"
)

// Event is the JSON payload published for each mutation.
type Event struct {
	Type          string    `json:"type"`
	OccurredAt    time.Time `json:"occurredAt"`
	CatwayNumber  int       `json:"catwayNumber,omitempty"`
	ReservationID string    `json:"reservationId,omitempty"`
	UserID        string    `json:"userId,omitempty"`
}

// Notifier receives mutation events. Implementations must not block callers
// on broker failures.
type Notifier interface {
	Notify(ctx context.Context, event Event)
}

// Nop discards events.
type Nop struct{}

func (Nop) Notify(context.Context, Event) {}

// Publisher is the broker-backed Notifier.
type Publisher struct {
	queue   *mq.MQ
	channel string
	now     func() time.Time
}

func NewPublisher(queue *mq.MQ, channel string) *Publisher {
	return &Publisher{queue: queue, channel: channel, now: time.Now}
}

// Notify publishes event. Errors are logged; the mutation already happened.
func (p *Publisher) Notify(ctx context.Context, event Event) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = p.now().UTC()
	}
	data, err := json.Marshal(event)
	if err != nil {
		logging.FromContext(ctx).ErrorContext(ctx, "encode event", "type", event.Type, "error", err)
		return
	}
	id, err := p.queue.Publish(ctx, p.channel, data, map[string]string{"type": event.Type})
	if err != nil {
		logging.FromContext(ctx).WarnContext(ctx, "publish event failed", "type", event.Type, "error", err)
		return
	}
	logging.FromContext(ctx).DebugContext(ctx, "event published", "type", event.Type, "message_id", id)
}

// Decode parses a message produced by Publisher.
func Decode(msg mq.Message) (Event, error) {
	var event Event
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		return Event{}, fmt.Errorf("decode event %s: %w", msg.ID, err)
	}
	return event, nil
}

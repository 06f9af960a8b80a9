package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/port-russell/marina/internal/mq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingBackend struct {
	channel string
	data    []byte
	attrs   map[string]string
	err     error
}

func (b *recordingBackend) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	b.channel = channel
	b.data = data
	b.attrs = attrs
	return "m-1", b.err
}

func (b *recordingBackend) Subscribe(context.Context, string, mq.Handler) error { return nil }
func (b *recordingBackend) Close() error                                      { return nil }

func TestPublisher_NotifyEncodesEvent(t *testing.T) {
	backend := &recordingBackend{}
	publisher := NewPublisher(mq.New(backend), "marina.events")
	fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	publisher.now = func() time.Time { return fixed }

	publisher.Notify(context.Background(), Event{Type: CatwayCreated, CatwayNumber: 12})

	assert.Equal(t, "marina.events", backend.channel)
	assert.Equal(t, CatwayCreated, backend.attrs["type"])

	decoded, err := Decode(mq.Message{ID: "m-1", Data: backend.data})
	require.NoError(t, err)
	assert.Equal(t, Event{Type: CatwayCreated, OccurredAt: fixed, CatwayNumber: 12}, decoded)
}

func TestPublisher_NotifySwallowsBrokerErrors(t *testing.T) {
	backend := &recordingBackend{err: errors.New("broker down")}
	publisher := NewPublisher(mq.New(backend), "marina.events")

	assert.NotPanics(t, func() {
		publisher.Notify(context.Background(), Event{Type: UserDeleted, UserID: "u1"})
	})
}

func TestDecode_Malformed(t *testing.T) {
	_, err := Decode(mq.Message{ID: "x", Data: []byte("{")})
	assert.Error(t, err)
}

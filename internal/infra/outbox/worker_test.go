package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appoutbox "rentbook/internal/app/outbox"
	"rentbook/internal/infra/storage/memory"
)

type published struct {
	topic   string
	key     string
	payload []byte
	headers map[string]string
}

type fakeProducer struct {
	mu   sync.Mutex
	sent []published
	fail error
}

func (p *fakeProducer) Publish(_ context.Context, topic, key string, payload []byte, headers map[string]string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail != nil {
		return p.fail
	}
	p.sent = append(p.sent, published{topic: topic, key: key, payload: payload, headers: headers})
	return nil
}

func addRecord(t *testing.T, box *memory.Outbox, id string) {
	t.Helper()
	require.NoError(t, box.Add(context.Background(), appoutbox.EventRecord{
		ID:         id,
		Name:       "booking.confirmed",
		Payload:    []byte(`{"booking_id":"b-1"}`),
		OccurredAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		Aggregate:  "b-1",
		Headers:    map[string]string{"x-request-id": "req-1"},
	}))
}

func TestWorkerDrainPublishesCloudEvents(t *testing.T) {
	box := memory.NewOutbox()
	addRecord(t, box, "evt-1")
	addRecord(t, box, "evt-2")
	producer := &fakeProducer{}
	w := &Worker{Relay: box, Producer: producer, TopicPrefix: "dev."}

	require.NoError(t, w.Drain(context.Background()))

	require.Len(t, producer.sent, 2)
	assert.Zero(t, box.Pending())
	first := producer.sent[0]
	assert.Equal(t, "dev.booking.events.v1", first.topic)
	assert.Equal(t, "b-1", first.key)
	assert.Equal(t, "application/cloudevents+json", first.headers["content-type"])
	assert.Equal(t, "req-1", first.headers["x-request-id"])

	var evt map[string]any
	require.NoError(t, json.Unmarshal(first.payload, &evt))
	assert.Equal(t, "evt-1", evt["id"])
	assert.Equal(t, "booking.confirmed.v1", evt["type"])
	assert.Equal(t, "app://rentbook", evt["source"])
	assert.Equal(t, map[string]any{"booking_id": "b-1"}, evt["data"])
}

func TestWorkerReschedulesFailedPublish(t *testing.T) {
	box := memory.NewOutbox()
	addRecord(t, box, "evt-1")
	producer := &fakeProducer{fail: errors.New("broker down")}
	w := &Worker{Relay: box, Producer: producer, Backoff: []time.Duration{time.Hour}}

	require.NoError(t, w.Drain(context.Background()))

	assert.Empty(t, producer.sent)
	assert.Equal(t, 1, box.Pending())
	rec, err := box.Claim(context.Background(), "checker")
	require.NoError(t, err)
	assert.Nil(t, rec, "record must wait for its backoff")
}

func TestWorkerNextRetryRepeatsLastStep(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	w := &Worker{Backoff: []time.Duration{time.Second, time.Minute}, now: func() time.Time { return now }}

	assert.Equal(t, now.Add(time.Second), w.nextRetry(0))
	assert.Equal(t, now.Add(time.Minute), w.nextRetry(1))
	assert.Equal(t, now.Add(time.Minute), w.nextRetry(7))
	assert.Equal(t, now.Add(5*time.Second), (&Worker{now: func() time.Time { return now }}).nextRetry(0))
}

func TestWorkerTopicFor(t *testing.T) {
	w := &Worker{}
	assert.Equal(t, "listing.events.v1", w.topicFor("listing.activated"))
	assert.Equal(t, "renter.events.v1", w.topicFor("renter"))
}

func TestWorkerRunRequiresDependencies(t *testing.T) {
	err := (&Worker{}).Run(context.Background())
	assert.ErrorIs(t, err, ErrWorkerNotConfigured)
}

func TestWorkerRunWakesOnFlush(t *testing.T) {
	box := memory.NewOutbox()
	producer := &fakeProducer{}
	w := &Worker{Relay: box, Producer: producer, Interval: time.Hour, Wakeup: box.Wakeup()}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	addRecord(t, box, "evt-1")
	require.NoError(t, box.Flush(ctx))

	assert.Eventually(t, func() bool { return box.Pending() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/campus-delivery-backend/internal/domain/order"
	"github.com/your-org/campus-delivery-backend/internal/pkg/logger"
)

type fakeWriter struct {
	msgs     []kafka.Message
	err      error
	deadline bool
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	_, f.deadline = ctx.Deadline()
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func TestPublisherPublish(t *testing.T) {
	w := &fakeWriter{}
	p := NewPublisherWith(w, 0)

	o := &order.Order{ID: 9, Reference: "ORD-1", CampusID: 3, Status: order.OrderStatusPending}
	at := time.Date(2025, 3, 20, 12, 0, 0, 0, time.UTC)
	require.NoError(t, p.Publish(context.Background(), order.NewCreatedEvent(o, at)))

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.True(t, w.deadline)
	assert.Equal(t, "ORD-1", string(msg.Key))
	assert.Equal(t, at, msg.Time)
	assert.Equal(t, "order.created", headerValue(msg.Headers, eventTypeHeader))

	var evt order.Event
	require.NoError(t, json.Unmarshal(msg.Value, &evt))
	assert.Equal(t, uint(3), evt.CampusID)
	assert.Equal(t, order.OrderStatusPending, evt.Status)
}

func TestPublisherWrapsWriteErrors(t *testing.T) {
	p := NewPublisherWith(&fakeWriter{err: errors.New("no brokers")}, time.Second)
	err := p.Publish(context.Background(), order.Event{Type: order.EventOrderCreated, Reference: "ORD-2"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ORD-2")
}

type fakeReader struct {
	mu   sync.Mutex
	msgs []kafka.Message
}

func (f *fakeReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	f.mu.Lock()
	if len(f.msgs) > 0 {
		m := f.msgs[0]
		f.msgs = f.msgs[1:]
		f.mu.Unlock()
		return m, nil
	}
	f.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (f *fakeReader) Close() error { return nil }

type collector struct {
	mu     sync.Mutex
	events []order.Event
	done   chan struct{}
	want   int
}

func (c *collector) Publish(_ context.Context, evt order.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, evt)
	if len(c.events) == c.want {
		close(c.done)
	}
	return nil
}

func TestConsumerConsume(t *testing.T) {
	good, _ := json.Marshal(order.Event{Type: order.EventOrderStatusChanged, Reference: "ORD-3", Status: order.OrderStatusAccepted})
	untyped, _ := json.Marshal(order.Event{Reference: "ORD-4"})
	reader := &fakeReader{msgs: []kafka.Message{
		{Value: good},
		{Value: []byte("not json")},
		{Value: untyped, Headers: []kafka.Header{{Key: eventTypeHeader, Value: []byte("order.created")}}},
	}}

	sink := &collector{done: make(chan struct{}), want: 2}
	c := NewConsumerWith(reader, logger.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- c.Consume(ctx, sink) }()

	select {
	case <-sink.done:
	case <-time.After(time.Second):
		t.Fatal("events not consumed")
	}
	cancel()
	require.NoError(t, <-errCh)

	sink.mu.Lock()
	defer sink.mu.Unlock()
	assert.Equal(t, "ORD-3", sink.events[0].Reference)
	assert.Equal(t, order.OrderStatusAccepted, sink.events[0].Status)
	assert.Equal(t, "order.created", sink.events[1].Type)
}

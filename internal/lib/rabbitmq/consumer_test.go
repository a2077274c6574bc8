package rabbitmq

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeSource struct {
	deliveries chan amqp.Delivery
	err        error
}

func (f *fakeSource) Consume(string, string, bool, bool, bool, bool, amqp.Table) (<-chan amqp.Delivery, error) {
	return f.deliveries, f.err
}

type recordingAck struct {
	mu     sync.Mutex
	acked  []uint64
	nacked []uint64
	done   chan struct{}
}

func (r *recordingAck) Ack(tag uint64, _ bool) error {
	r.mu.Lock()
	r.acked = append(r.acked, tag)
	r.mu.Unlock()
	r.done <- struct{}{}
	return nil
}

func (r *recordingAck) Nack(tag uint64, _ bool, _ bool) error {
	r.mu.Lock()
	r.nacked = append(r.nacked, tag)
	r.mu.Unlock()
	r.done <- struct{}{}
	return nil
}

func (r *recordingAck) Reject(uint64, bool) error { return nil }

func TestConsumerMessage_AckAndNack(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := &fakeSource{deliveries: make(chan amqp.Delivery)}
	ack := &recordingAck{done: make(chan struct{}, 2)}

	handler := func(_ context.Context, body []byte) error {
		if string(body) == "bad" {
			return errors.New("cannot handle")
		}
		return nil
	}

	require.NoError(t, ConsumerMessage(ctx, src, "q", handler, newNoopLogger()))

	src.deliveries <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, Body: []byte("good")}
	src.deliveries <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 2, Body: []byte("bad")}

	for range 2 {
		select {
		case <-ack.done:
		case <-time.After(2 * time.Second):
			t.Fatal("timeout waiting for ack")
		}
	}

	ack.mu.Lock()
	defer ack.mu.Unlock()
	assert.Equal(t, []uint64{1}, ack.acked)
	assert.Equal(t, []uint64{2}, ack.nacked)
}

func TestConsumerMessage_ConsumeError(t *testing.T) {
	src := &fakeSource{err: errors.New("no such queue")}

	err := ConsumerMessage(context.Background(), src, "missing", func(context.Context, []byte) error { return nil }, newNoopLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rabbitmq.ConsumerMessage")
}

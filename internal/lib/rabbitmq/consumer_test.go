package rabbitmq

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAck struct {
	acked    bool
	nacked   bool
	requeued bool
}

func (f *fakeAck) Ack(bool) error { f.acked = true; return nil }

func (f *fakeAck) Nack(_, requeue bool) error {
	f.nacked = true
	f.requeued = requeue
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestProcess(t *testing.T) {
	tests := []struct {
		name       string
		handlerErr error
		wantAck    bool
		wantNack   bool
	}{
		{name: "success acks", wantAck: true},
		{name: "handler error nacks with requeue", handlerErr: errors.New("fail"), wantNack: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ack := &fakeAck{}
			var got []byte
			handler := func(_ context.Context, body []byte) error {
				got = body
				return tt.handlerErr
			}

			process(context.Background(), discardLogger(), ack, []byte("payload"), handler)

			assert.Equal(t, "payload", string(got))
			assert.Equal(t, tt.wantAck, ack.acked)
			assert.Equal(t, tt.wantNack, ack.nacked)
			if tt.wantNack {
				assert.True(t, ack.requeued)
			}
		})
	}
}

type fakeConsumer struct {
	deliveries chan amqp.Delivery
	err        error
}

func (f *fakeConsumer) Consume(string, string, bool, bool, bool, bool, amqp.Table) (<-chan amqp.Delivery, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.deliveries, nil
}

func TestConsumerMessage_ConsumeError(t *testing.T) {
	err := ConsumerMessage(context.Background(), discardLogger(), &fakeConsumer{err: amqp.ErrClosed}, QueueUsageRecord,
		func(context.Context, []byte) error { return nil })

	require.Error(t, err)
	assert.Contains(t, err.Error(), "rabbitmq.ConsumerMessage")
}

func TestConsumerMessage_StopsOnClosedDeliveries(t *testing.T) {
	fc := &fakeConsumer{deliveries: make(chan amqp.Delivery)}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err := ConsumerMessage(ctx, discardLogger(), fc, QueueUsageRecord,
		func(context.Context, []byte) error { return nil })
	require.NoError(t, err)

	close(fc.deliveries)
}

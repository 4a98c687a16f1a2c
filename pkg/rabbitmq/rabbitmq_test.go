package rabbitmq

import (
	"context"
	"errors"
	"testing"

	amqp "github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeAck struct {
	acked, nacked, requeued bool
	err                     error
}

func (f *fakeAck) Ack(bool) error {
	f.acked = true
	return f.err
}

func (f *fakeAck) Nack(_ bool, requeue bool) error {
	f.nacked = true
	f.requeued = requeue
	return f.err
}

func TestSettle(t *testing.T) {
	logger := zap.NewNop()

	t.Run("success acks", func(t *testing.T) {
		ack := &fakeAck{}
		settle(logger, 1, ack, nil)
		assert.True(t, ack.acked)
		assert.False(t, ack.nacked)
	})

	t.Run("failure nacks without requeue", func(t *testing.T) {
		ack := &fakeAck{}
		settle(logger, 2, ack, errors.New("bad payload"))
		assert.False(t, ack.acked)
		assert.True(t, ack.nacked)
		assert.False(t, ack.requeued)
	})

	t.Run("broker error is swallowed", func(t *testing.T) {
		ack := &fakeAck{err: errors.New("channel closed")}
		assert.NotPanics(t, func() { settle(logger, 3, ack, nil) })
	})
}

func TestClosedClient(t *testing.T) {
	c := &Client{logger: zap.NewNop()}

	assert.NoError(t, c.Close())
	assert.ErrorIs(t, c.Publish(context.Background(), "product.created", []byte("{}")), ErrClosed)
	assert.ErrorIs(t, c.Consume(context.Background(), func(amqp.Delivery) error { return nil }), ErrClosed)
}

func TestDeadLetterTopology(t *testing.T) {
	cfg := Config{Exchange: "catalog.events", Queue: "catalog.product_events"}

	assert.Equal(t, "catalog.events.dlx", cfg.deadLetterExchange())
	assert.Equal(t, "catalog.product_events.dead", cfg.deadLetterQueue())
	assert.Equal(t, amqp.Table{"x-dead-letter-exchange": "catalog.events.dlx"}, cfg.queueArgs())
	assert.NoError(t, cfg.queueArgs().Validate())
}

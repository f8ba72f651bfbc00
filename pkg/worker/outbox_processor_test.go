package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/b2bagadi/Maw3idokom2-sub000/internal/model"
	"github.com/b2bagadi/Maw3idokom2-sub000/internal/repository/memory"
	"github.com/b2bagadi/Maw3idokom2-sub000/pkg/logger"
	"github.com/b2bagadi/Maw3idokom2-sub000/pkg/messaging"
	memorybroker "github.com/b2bagadi/Maw3idokom2-sub000/pkg/messaging/memory"
	"github.com/b2bagadi/Maw3idokom2-sub000/pkg/metrics"
)

type failingBroker struct {
	calls int
}

func (b *failingBroker) Publish(context.Context, string, interface{}) error {
	b.calls++
	return errors.New("redis unavailable")
}

func (b *failingBroker) Subscribe(context.Context, string) (<-chan []byte, error) {
	return nil, errors.New("not supported")
}

func (b *failingBroker) Close() error { return nil }

var testConfig = OutboxProcessorConfig{
	BatchSize:     10,
	PollInterval:  time.Second,
	RetryAttempts: 2,
	MaxDeliveries: 2,
}

func enqueue(t *testing.T, store *memory.Store) {
	t.Helper()
	require.NoError(t, store.Outbox().Create(context.Background(), &model.OutboxEvent{
		EventType: model.EventAppointmentBooked,
		Payload:   json.RawMessage(`{"appointment_id":"a"}`),
	}))
}

func TestProcessOnce_PublishesAndMarksProcessed(t *testing.T) {
	store := memory.NewStore()
	broker := memorybroker.NewBroker()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub, err := broker.Subscribe(ctx, "appointments")
	require.NoError(t, err)
	enqueue(t, store)

	p := NewOutboxProcessor(store.Outbox(), broker, "appointments", testConfig, logger.Nop(), metrics.NewNop())
	n, err := p.ProcessOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	select {
	case raw := <-sub:
		var msg messaging.Message
		require.NoError(t, json.Unmarshal(raw, &msg))
		assert.Equal(t, model.EventAppointmentBooked, msg.Type)
		assert.JSONEq(t, `{"appointment_id":"a"}`, string(msg.Payload))
	case <-time.After(time.Second):
		t.Fatal("message not delivered")
	}

	events := store.Events()
	require.Len(t, events, 1)
	assert.Equal(t, model.OutboxStatusProcessed, events[0].Status)
	assert.NotNil(t, events[0].ProcessedAt)
}

func TestProcessOnce_FailedDeliveryBacksOffThenGivesUp(t *testing.T) {
	store := memory.NewStore()
	broker := &failingBroker{}
	enqueue(t, store)

	p := NewOutboxProcessor(store.Outbox(), broker, "appointments", testConfig, logger.Nop(), metrics.NewNop())
	base := time.Now()
	p.now = func() time.Time { return base }

	_, err := p.ProcessOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, broker.calls)

	evt := store.Events()[0]
	assert.Equal(t, model.OutboxStatusRetry, evt.Status)
	assert.Equal(t, 1, evt.RetryCount)
	require.NotNil(t, evt.RetryAt)
	assert.Equal(t, base.Add(2*time.Second), *evt.RetryAt)

	// Not due yet.
	n, err := p.ProcessOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestBackoff(t *testing.T) {
	assert.Equal(t, 2*time.Second, backoff(time.Second, 1))
	assert.Equal(t, 64*time.Second, backoff(time.Second, 10))
}

func TestNewOutboxProcessor_RejectsBadConfig(t *testing.T) {
	assert.Panics(t, func() {
		NewOutboxProcessor(nil, nil, "x", OutboxProcessorConfig{PollInterval: time.Second}, logger.Nop(), metrics.NewNop())
	})
}

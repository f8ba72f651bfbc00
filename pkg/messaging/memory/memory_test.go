package memory

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/b2bagadi/Maw3idokom2-sub000/pkg/messaging"
)

func TestBroker_PublishSubscribe(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := b.Subscribe(ctx, "appointments")
	require.NoError(t, err)

	require.NoError(t, b.Publish(ctx, "appointments", messaging.Message{
		Type:    "appointment.booked",
		Payload: json.RawMessage(`{"id":"1"}`),
	}))
	require.NoError(t, b.Publish(ctx, "other", map[string]string{"ignored": "yes"}))

	select {
	case raw := <-ch:
		var msg messaging.Message
		require.NoError(t, json.Unmarshal(raw, &msg))
		assert.Equal(t, "appointment.booked", msg.Type)
		assert.JSONEq(t, `{"id":"1"}`, string(msg.Payload))
	case <-time.After(time.Second):
		t.Fatal("message not delivered")
	}
}

func TestBroker_UnsubscribeOnCancel(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := b.Subscribe(ctx, "appointments")
	require.NoError(t, err)

	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

func TestBroker_ClosedRejectsPublish(t *testing.T) {
	b := NewBroker()
	require.NoError(t, b.Close())
	assert.Error(t, b.Publish(context.Background(), "appointments", "x"))
}

package messaging_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/b2bagadi/Maw3idokom2-sub000/pkg/messaging"
	"github.com/b2bagadi/Maw3idokom2-sub000/pkg/messaging/memory"
)

func TestBrokerAdapter_DeliversPastFailingHandler(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	adapter := messaging.NewBrokerAdapter(memory.NewBroker(), nil)
	got := make(chan string, 3)
	require.NoError(t, adapter.Subscribe(ctx, "appointments", func(raw []byte) error {
		var msg messaging.Message
		require.NoError(t, json.Unmarshal(raw, &msg))
		if msg.Type == "boom" {
			panic("handler bug")
		}
		got <- msg.Type
		return nil
	}))

	for _, typ := range []string{"appointment.booked", "boom", "appointment.confirmed"} {
		payload, err := json.Marshal(messaging.Message{Type: typ, Payload: json.RawMessage(`{}`)})
		require.NoError(t, err)
		require.NoError(t, adapter.Publish(ctx, "appointments", payload))
	}

	for _, want := range []string{"appointment.booked", "appointment.confirmed"} {
		select {
		case typ := <-got:
			assert.Equal(t, want, typ)
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for %s", want)
		}
	}
}

func TestBrokerAdapter_RejectsNonJSON(t *testing.T) {
	adapter := messaging.NewBrokerAdapter(memory.NewBroker(), nil)
	assert.Error(t, adapter.Publish(context.Background(), "appointments", []byte("not json")))
}

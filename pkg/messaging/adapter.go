package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/b2bagadi/Maw3idokom2-sub000/pkg/logger"
)

// BrokerAdapter exposes a Broker as a callback-style MessageBroker for
// consumers such as the notifier.
type BrokerAdapter struct {
	broker Broker
	logger *logger.Logger
}

func NewBrokerAdapter(broker Broker, log *logger.Logger) *BrokerAdapter {
	if log == nil {
		log = logger.Nop()
	}
	return &BrokerAdapter{broker: broker, logger: log}
}

var _ MessageBroker = (*BrokerAdapter)(nil)

// Publish forwards payload unchanged. It must already be a JSON document.
func (a *BrokerAdapter) Publish(ctx context.Context, topic string, payload []byte) error {
	if !json.Valid(payload) {
		return fmt.Errorf("payload for %s is not valid JSON", topic)
	}
	return a.broker.Publish(ctx, topic, json.RawMessage(payload))
}

func (a *BrokerAdapter) Close() error {
	return a.broker.Close()
}

// Subscribe returns once the subscription is registered and delivers each
// message to handler in order until ctx is done. A failing or panicking
// handler is logged and does not stop delivery.
func (a *BrokerAdapter) Subscribe(ctx context.Context, topic string, handler func([]byte) error) error {
	msgChan, err := a.broker.Subscribe(ctx, topic)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}

	go func() {
		for msg := range msgChan {
			if err := a.deliver(handler, msg); err != nil {
				a.logger.Error(err, "message handler failed", "topic", topic)
			}
		}
	}()
	return nil
}

func (a *BrokerAdapter) deliver(handler func([]byte) error, msg []byte) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("handler panic: %v", rec)
		}
	}()
	return handler(msg)
}

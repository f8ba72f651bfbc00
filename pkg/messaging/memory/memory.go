// Package memory is an in-process messaging.Broker used by the memory
// storage driver and by tests.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/b2bagadi/Maw3idokom2-sub000/pkg/messaging"
)

type Broker struct {
	mu     sync.RWMutex
	subs   map[string][]chan []byte
	closed bool
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[string][]chan []byte)}
}

var _ messaging.Broker = (*Broker)(nil)

// Publish fans message out to current subscribers of channel. Slow
// subscribers with a full buffer miss the message, matching pub/sub
// delivery semantics.
func (b *Broker) Publish(ctx context.Context, channel string, message interface{}) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return fmt.Errorf("broker is closed")
	}
	for _, ch := range b.subs[channel] {
		select {
		case ch <- payload:
		default:
		}
	}
	return nil
}

func (b *Broker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, fmt.Errorf("broker is closed")
	}

	ch := make(chan []byte, 100)
	b.subs[channel] = append(b.subs[channel], ch)

	go func() {
		<-ctx.Done()
		b.unsubscribe(channel, ch)
	}()
	return ch, nil
}

func (b *Broker) unsubscribe(channel string, target chan []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.subs[channel]
	for i, ch := range subs {
		if ch == target {
			b.subs[channel] = append(subs[:i], subs[i+1:]...)
			close(ch)
			return
		}
	}
}

func (b *Broker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for channel, subs := range b.subs {
		for _, ch := range subs {
			close(ch)
		}
		delete(b.subs, channel)
	}
	return nil
}

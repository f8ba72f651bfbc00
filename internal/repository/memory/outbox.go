package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/b2bagadi/Maw3idokom2-sub000/internal/model"
)

type outboxRepo struct{ s *Store }

func (r outboxRepo) Create(_ context.Context, evt *model.OutboxEvent) error {
	if evt == nil || evt.Payload == nil {
		return fmt.Errorf("event payload cannot be nil")
	}
	if evt.ID == uuid.Nil {
		evt.ID = uuid.New()
	}
	if evt.CreatedAt.IsZero() {
		evt.CreatedAt = r.s.now()
	}
	evt.UpdatedAt = evt.CreatedAt
	evt.Status = model.OutboxStatusPending

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *evt
	r.s.outbox = append(r.s.outbox, &cp)
	return nil
}

func due(evt *model.OutboxEvent, now time.Time) bool {
	if evt.Status != model.OutboxStatusPending && evt.Status != model.OutboxStatusRetry {
		return false
	}
	return evt.RetryAt == nil || !evt.RetryAt.After(now)
}

// ProcessPending hands copies of due events to handle and writes them back
// only if every handle call succeeds.
func (r outboxRepo) ProcessPending(ctx context.Context, limit int, handle func(ctx context.Context, event *model.OutboxEvent) error) (int, error) {
	r.s.outboxMu.Lock()
	defer r.s.outboxMu.Unlock()

	now := r.s.now()
	r.s.mu.RLock()
	var batch []*model.OutboxEvent
	for _, evt := range r.s.outbox {
		if due(evt, now) {
			cp := *evt
			batch = append(batch, &cp)
		}
	}
	r.s.mu.RUnlock()

	sort.SliceStable(batch, func(i, j int) bool { return batch[i].CreatedAt.Before(batch[j].CreatedAt) })
	if len(batch) > limit {
		batch = batch[:limit]
	}

	for _, evt := range batch {
		if err := handle(ctx, evt); err != nil {
			return 0, err
		}
		evt.UpdatedAt = r.s.now()
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	byID := make(map[uuid.UUID]*model.OutboxEvent, len(batch))
	for _, evt := range batch {
		byID[evt.ID] = evt
	}
	for i, evt := range r.s.outbox {
		if updated, ok := byID[evt.ID]; ok {
			r.s.outbox[i] = updated
		}
	}
	return len(batch), nil
}

func (r outboxRepo) CountPending(context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for _, evt := range r.s.outbox {
		if evt.Status == model.OutboxStatusPending || evt.Status == model.OutboxStatusRetry {
			n++
		}
	}
	return n, nil
}

func (r outboxRepo) DeleteProcessedBefore(_ context.Context, before time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.outbox[:0]
	var deleted int64
	for _, evt := range r.s.outbox {
		if evt.Status == model.OutboxStatusProcessed && evt.ProcessedAt != nil && evt.ProcessedAt.Before(before) {
			deleted++
			continue
		}
		kept = append(kept, evt)
	}
	r.s.outbox = kept
	return deleted, nil
}

// Events returns a snapshot of the outbox in insertion order.
func (s *Store) Events() []*model.OutboxEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.OutboxEvent, len(s.outbox))
	for i, evt := range s.outbox {
		cp := *evt
		out[i] = &cp
	}
	return out
}

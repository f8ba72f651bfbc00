package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/b2bagadi/Maw3idokom2-sub000/internal/model"
	"github.com/b2bagadi/Maw3idokom2-sub000/internal/repository"
)

const outboxColumns = `id, event_type, payload, status, error_message, retry_count, retry_at, processed_at, created_at, updated_at`

type outboxRepository struct {
	BaseRepository
}

func NewOutboxRepository(base BaseRepository) repository.OutboxRepository {
	return &outboxRepository{base}
}

func (r *outboxRepository) Create(ctx context.Context, event *model.OutboxEvent) error {
	return insertOutboxEvent(ctx, r.db, event)
}

func insertOutboxEvent(ctx context.Context, exec sqlx.ExecerContext, event *model.OutboxEvent) error {
	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}
	if event.Payload == nil {
		return fmt.Errorf("event payload cannot be nil")
	}

	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	event.UpdatedAt = event.CreatedAt
	event.Status = model.OutboxStatusPending

	query := `
		INSERT INTO outbox_events (id, event_type, payload, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	// lib/pq sends []byte as bytea, so the jsonb payload goes over as text.
	_, err := exec.ExecContext(ctx, query,
		event.ID,
		event.EventType,
		string(event.Payload),
		event.Status,
		event.CreatedAt,
		event.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create outbox event: %w", err)
	}
	return nil
}

func (r *outboxRepository) ProcessPending(ctx context.Context, limit int, handle func(ctx context.Context, event *model.OutboxEvent) error) (int, error) {
	processed := 0
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			SELECT ` + outboxColumns + `
			FROM outbox_events
			WHERE status IN ('pending', 'retry')
			AND (retry_at IS NULL OR retry_at <= NOW())
			ORDER BY created_at
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		`
		var events []*model.OutboxEvent
		if err := tx.SelectContext(ctx, &events, query, limit); err != nil {
			return fmt.Errorf("failed to lock pending events: %w", err)
		}

		for _, evt := range events {
			if err := handle(ctx, evt); err != nil {
				return err
			}

			_, err := tx.ExecContext(ctx, `
				UPDATE outbox_events
				SET status = $1,
					error_message = $2,
					retry_count = $3,
					retry_at = $4,
					processed_at = $5,
					updated_at = NOW()
				WHERE id = $6
			`, evt.Status, evt.ErrorMessage, evt.RetryCount, evt.RetryAt, evt.ProcessedAt, evt.ID)
			if err != nil {
				return fmt.Errorf("failed to update event status: %w", err)
			}
			processed++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return processed, nil
}

func (r *outboxRepository) CountPending(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM outbox_events WHERE status IN ('pending', 'retry')`); err != nil {
		return 0, fmt.Errorf("failed to count pending events: %w", err)
	}
	return n, nil
}

func (r *outboxRepository) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	query := `
		DELETE FROM outbox_events
		WHERE status = 'processed'
		AND processed_at < $1
	`
	result, err := r.db.ExecContext(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete processed events: %w", err)
	}

	return result.RowsAffected()
}

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

const workingHoursColumns = `id, business_id, staff_id, day_of_week, start_time, end_time, is_enabled, updated_at`

type workingHoursRepository struct {
	BaseRepository
}

func NewWorkingHoursRepository(base BaseRepository) repository.WorkingHoursRepository {
	return &workingHoursRepository{base}
}

// Get returns the stored rows for one week. staff_id IS NOT DISTINCT FROM
// matches the business default row set when staffID is nil.
func (r *workingHoursRepository) Get(ctx context.Context, businessID uuid.UUID, staffID *uuid.UUID) ([]*model.WorkingHours, error) {
	query := `
		SELECT ` + workingHoursColumns + `
		FROM working_hours
		WHERE business_id = $1 AND staff_id IS NOT DISTINCT FROM $2
		ORDER BY day_of_week
	`
	var rows []*model.WorkingHours
	if err := r.db.SelectContext(ctx, &rows, query, businessID, staffID); err != nil {
		return nil, fmt.Errorf("failed to get working hours: %w", err)
	}
	return rows, nil
}

// Replace swaps the whole week atomically.
func (r *workingHoursRepository) Replace(ctx context.Context, businessID uuid.UUID, staffID *uuid.UUID, days []*model.WorkingHours) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM working_hours WHERE business_id = $1 AND staff_id IS NOT DISTINCT FROM $2`,
			businessID, staffID,
		); err != nil {
			return fmt.Errorf("failed to clear working hours: %w", err)
		}

		now := time.Now()
		for _, day := range days {
			if day.ID == uuid.Nil {
				day.ID = uuid.New()
			}
			day.BusinessID = businessID
			day.StaffID = staffID
			day.UpdatedAt = now

			_, err := tx.ExecContext(ctx, `
				INSERT INTO working_hours (`+workingHoursColumns+`)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			`, day.ID, day.BusinessID, day.StaffID, day.DayOfWeek, day.StartTime, day.EndTime, day.IsEnabled, day.UpdatedAt)
			if err != nil {
				return fmt.Errorf("failed to insert working hours: %w", mapError(err))
			}
		}
		return nil
	})
}

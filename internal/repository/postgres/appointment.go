package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/b2bagadi/Maw3idokom2-sub000/internal/model"
	"github.com/b2bagadi/Maw3idokom2-sub000/internal/repository"
	apperrors "github.com/b2bagadi/Maw3idokom2-sub000/pkg/errors"
)

var appointmentColumnList = []string{
	"id", "business_id", "staff_id", "service_id", "customer_id",
	"customer_name", "customer_email", "customer_phone",
	"start_time", "end_time", "status", "notes",
	"reject_reason", "cancel_reason", "created_at", "updated_at",
}

var appointmentColumns = strings.Join(appointmentColumnList, ", ")

var dialect = goqu.Dialect("postgres")

type appointmentRepository struct {
	BaseRepository
}

func NewAppointmentRepository(base BaseRepository) repository.AppointmentRepository {
	return &appointmentRepository{base}
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return getAppointment(ctx, r.db, `SELECT `+appointmentColumns+` FROM appointments WHERE id = $1`, id)
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	query, args, err := listQuery(filters)
	if err != nil {
		return nil, fmt.Errorf("failed to build appointment query: %w", err)
	}

	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) Count(ctx context.Context, filters *model.AppointmentFilters) (int, error) {
	query, args, err := countQuery(filters)
	if err != nil {
		return 0, fmt.Errorf("failed to build appointment count query: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count appointments: %w", err)
	}
	return total, nil
}

func filtered(filters *model.AppointmentFilters) *goqu.SelectDataset {
	ds := dialect.From("appointments").
		Where(goqu.C("business_id").Eq(filters.BusinessID))

	if filters.StaffID != nil {
		ds = ds.Where(goqu.C("staff_id").Eq(*filters.StaffID))
	}
	if filters.CustomerID != nil {
		ds = ds.Where(goqu.C("customer_id").Eq(*filters.CustomerID))
	}
	if len(filters.Statuses) > 0 {
		statuses := make([]string, len(filters.Statuses))
		for i, s := range filters.Statuses {
			statuses[i] = string(s)
		}
		ds = ds.Where(goqu.C("status").In(statuses))
	}
	if filters.From != nil {
		ds = ds.Where(goqu.C("end_time").Gt(*filters.From))
	}
	if filters.To != nil {
		ds = ds.Where(goqu.C("start_time").Lt(*filters.To))
	}
	return ds
}

func countQuery(filters *model.AppointmentFilters) (string, []interface{}, error) {
	return filtered(filters).Select(goqu.COUNT("*")).Prepared(true).ToSQL()
}

func listQuery(filters *model.AppointmentFilters) (string, []interface{}, error) {
	cols := make([]interface{}, len(appointmentColumnList))
	for i, c := range appointmentColumnList {
		cols[i] = c
	}

	ds := filtered(filters).Select(cols...).Order(goqu.C("start_time").Asc())
	if filters.Limit > 0 {
		ds = ds.Limit(uint(filters.Limit))
	}
	if filters.Offset > 0 {
		ds = ds.Offset(uint(filters.Offset))
	}

	return ds.Prepared(true).ToSQL()
}

func (r *appointmentRepository) ListOccupied(ctx context.Context, staffID uuid.UUID, from, to time.Time) ([]*model.Appointment, error) {
	return listOccupied(ctx, r.db, staffID, from, to)
}

// DeleteBlock removes a BLOCKED row. Booked appointments are never deleted;
// they leave the calendar through status transitions.
func (r *appointmentRepository) DeleteBlock(ctx context.Context, businessID, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM appointments WHERE id = $1 AND business_id = $2 AND status = $3`,
		id, businessID, model.AppointmentStatusBlocked,
	)
	if err != nil {
		return fmt.Errorf("failed to delete blocked time: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NewNotFound("blocked time", nil)
	}
	return nil
}

// WithStaffLock serializes writers per staff member by locking the staff row
// for the length of the transaction. The exclusion constraint on
// appointments backs this up for writers that bypass the lock.
func (r *appointmentRepository) WithStaffLock(ctx context.Context, staffID uuid.UUID, fn func(tx repository.AppointmentTx) error) error {
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		var locked uuid.UUID
		if err := tx.GetContext(ctx, &locked, `SELECT id FROM staff WHERE id = $1 FOR UPDATE`, staffID); err != nil {
			if isNoRows(err) {
				return apperrors.NewNotFound("staff", err)
			}
			return fmt.Errorf("failed to lock staff: %w", err)
		}
		return fn(&appointmentTx{tx: tx})
	})
	return mapError(err)
}

type appointmentTx struct {
	tx *sqlx.Tx
}

func (t *appointmentTx) ListOccupied(ctx context.Context, staffID uuid.UUID, from, to time.Time) ([]*model.Appointment, error) {
	return listOccupied(ctx, t.tx, staffID, from, to)
}

func (t *appointmentTx) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return getAppointment(ctx, t.tx, `SELECT `+appointmentColumns+` FROM appointments WHERE id = $1 FOR UPDATE`, id)
}

func (t *appointmentTx) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (` + appointmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	if appointment.ID == uuid.Nil {
		appointment.ID = uuid.New()
	}
	if appointment.CreatedAt.IsZero() {
		appointment.CreatedAt = time.Now()
	}
	appointment.UpdatedAt = appointment.CreatedAt

	_, err := t.tx.ExecContext(ctx, query,
		appointment.ID,
		appointment.BusinessID,
		appointment.StaffID,
		appointment.ServiceID,
		appointment.CustomerID,
		appointment.CustomerName,
		appointment.CustomerEmail,
		appointment.CustomerPhone,
		appointment.StartTime,
		appointment.EndTime,
		appointment.Status,
		appointment.Notes,
		appointment.RejectReason,
		appointment.CancelReason,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	)
	if err != nil {
		if mapped := mapError(err); apperrors.IsSlotUnavailable(mapped) {
			return mapped
		}
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (t *appointmentTx) Update(ctx context.Context, appointment *model.Appointment) error {
	query := `
		UPDATE appointments
		SET start_time = $1, end_time = $2, status = $3, notes = $4,
			reject_reason = $5, cancel_reason = $6, updated_at = $7
		WHERE id = $8
	`
	if appointment.UpdatedAt.IsZero() {
		appointment.UpdatedAt = time.Now()
	}

	result, err := t.tx.ExecContext(ctx, query,
		appointment.StartTime,
		appointment.EndTime,
		appointment.Status,
		appointment.Notes,
		appointment.RejectReason,
		appointment.CancelReason,
		appointment.UpdatedAt,
		appointment.ID,
	)
	if err != nil {
		if mapped := mapError(err); apperrors.IsSlotUnavailable(mapped) {
			return mapped
		}
		return fmt.Errorf("failed to update appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NewNotFound("appointment", nil)
	}
	return nil
}

func (t *appointmentTx) AddEvent(ctx context.Context, event *model.OutboxEvent) error {
	return insertOutboxEvent(ctx, t.tx, event)
}

func getAppointment(ctx context.Context, q sqlx.QueryerContext, query string, id uuid.UUID) (*model.Appointment, error) {
	var appointment model.Appointment
	if err := sqlx.GetContext(ctx, q, &appointment, query, id); err != nil {
		if isNoRows(err) {
			return nil, apperrors.NewNotFound("appointment", err)
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

func listOccupied(ctx context.Context, q sqlx.QueryerContext, staffID uuid.UUID, from, to time.Time) ([]*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE staff_id = $1
		  AND status = ANY($2)
		  AND start_time < $4
		  AND end_time > $3
		ORDER BY start_time
	`
	statuses := make([]string, len(model.SlotHoldingStatuses))
	for i, s := range model.SlotHoldingStatuses {
		statuses[i] = string(s)
	}

	var appointments []*model.Appointment
	if err := sqlx.SelectContext(ctx, q, &appointments, query, staffID, pq.Array(statuses), from, to); err != nil {
		return nil, fmt.Errorf("failed to list occupied intervals: %w", err)
	}
	return appointments, nil
}

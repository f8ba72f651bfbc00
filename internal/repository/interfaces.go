package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/b2bagadi/Maw3idokom2-sub000/internal/model"
)

// All repository interfaces in one file
type (
	BusinessRepository interface {
		Create(ctx context.Context, business *model.Business) error
		Get(ctx context.Context, id uuid.UUID) (*model.Business, error)
		GetBySlug(ctx context.Context, slug string) (*model.Business, error)
	}

	StaffRepository interface {
		Create(ctx context.Context, staff *model.Staff) error
		Get(ctx context.Context, id uuid.UUID) (*model.Staff, error)
		ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]*model.Staff, error)
	}

	ServiceRepository interface {
		Create(ctx context.Context, service *model.Service) error
		Get(ctx context.Context, id uuid.UUID) (*model.Service, error)
		ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]*model.Service, error)
	}

	// WorkingHoursRepository stores weekly schedules. A nil staffID addresses
	// the business-level default week.
	WorkingHoursRepository interface {
		Get(ctx context.Context, businessID uuid.UUID, staffID *uuid.UUID) ([]*model.WorkingHours, error)
		Replace(ctx context.Context, businessID uuid.UUID, staffID *uuid.UUID, days []*model.WorkingHours) error
	}

	AppointmentRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
		// Count reports how many rows match filters, ignoring pagination.
		Count(ctx context.Context, filters *model.AppointmentFilters) (int, error)
		// ListOccupied returns slot-holding rows of staffID overlapping [from, to).
		ListOccupied(ctx context.Context, staffID uuid.UUID, from, to time.Time) ([]*model.Appointment, error)
		DeleteBlock(ctx context.Context, businessID, id uuid.UUID) error
		// WithStaffLock runs fn in a unit of work that excludes every other
		// WithStaffLock call for the same staff member. Writes made through tx
		// are committed only if fn returns nil.
		WithStaffLock(ctx context.Context, staffID uuid.UUID, fn func(tx AppointmentTx) error) error
	}

	// AppointmentTx is the write side of a staff-locked unit of work. Create
	// and Update return a SlotUnavailable error when storage detects an
	// overlap.
	AppointmentTx interface {
		ListOccupied(ctx context.Context, staffID uuid.UUID, from, to time.Time) ([]*model.Appointment, error)
		GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		Create(ctx context.Context, appointment *model.Appointment) error
		Update(ctx context.Context, appointment *model.Appointment) error
		AddEvent(ctx context.Context, event *model.OutboxEvent) error
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		// ProcessPending locks up to limit due events, skipping rows locked by
		// other workers, calls handle for each and persists the status fields
		// handle set on the event.
		ProcessPending(ctx context.Context, limit int, handle func(ctx context.Context, event *model.OutboxEvent) error) (int, error)
		CountPending(ctx context.Context) (int, error)
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}

	// Store bundles every repository behind one storage driver.
	Store interface {
		Businesses() BusinessRepository
		Staff() StaffRepository
		Services() ServiceRepository
		WorkingHours() WorkingHoursRepository
		Appointments() AppointmentRepository
		Outbox() OutboxRepository
		Ping(ctx context.Context) error
		Close() error
	}
)

// Package schedule manages weekly working hours and blocked time.
package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/b2bagadi/Maw3idokom2-sub000/internal/model"
	"github.com/b2bagadi/Maw3idokom2-sub000/internal/repository"
	apperrors "github.com/b2bagadi/Maw3idokom2-sub000/pkg/errors"
	"github.com/b2bagadi/Maw3idokom2-sub000/pkg/logger"
)

// CacheInvalidator drops cached availability. A nil staffID covers every
// staff member of the business.
type CacheInvalidator interface {
	InvalidateStaff(businessID uuid.UUID, staffID *uuid.UUID)
}

type nopInvalidator struct{}

func (nopInvalidator) InvalidateStaff(uuid.UUID, *uuid.UUID) {}

// StaffLookup is the slice of the directory this package needs.
type StaffLookup interface {
	GetStaff(ctx context.Context, businessID, id uuid.UUID) (*model.Staff, error)
}

type Service struct {
	hours        repository.WorkingHoursRepository
	appointments repository.AppointmentRepository
	staff        StaffLookup
	cache        CacheInvalidator
	logger       *logger.Logger
}

func NewService(store repository.Store, staff StaffLookup, cache CacheInvalidator, log *logger.Logger) *Service {
	if cache == nil {
		cache = nopInvalidator{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		hours:        store.WorkingHours(),
		appointments: store.Appointments(),
		staff:        staff,
		cache:        cache,
		logger:       log,
	}
}

// ResolveWeek returns the effective week for staffID: its own rows when it has
// any, otherwise the business default rows.
func ResolveWeek(ctx context.Context, repo repository.WorkingHoursRepository, businessID uuid.UUID, staffID *uuid.UUID) (model.WeeklyHours, error) {
	if staffID != nil {
		rows, err := repo.Get(ctx, businessID, staffID)
		if err != nil {
			return model.WeeklyHours{}, fmt.Errorf("failed to load staff working hours: %w", err)
		}
		if len(rows) > 0 {
			return model.NewWeeklyHours(rows), nil
		}
	}
	rows, err := repo.Get(ctx, businessID, nil)
	if err != nil {
		return model.WeeklyHours{}, fmt.Errorf("failed to load business working hours: %w", err)
	}
	return model.NewWeeklyHours(rows), nil
}

func (s *Service) GetWorkingHours(ctx context.Context, businessID uuid.UUID, staffID *uuid.UUID) (model.WeeklyHours, error) {
	if staffID != nil {
		if _, err := s.staff.GetStaff(ctx, businessID, *staffID); err != nil {
			return model.WeeklyHours{}, err
		}
	}
	return ResolveWeek(ctx, s.hours, businessID, staffID)
}

// SaveWorkingHours replaces the whole week. Weekdays left out are stored as
// missing and read back disabled.
func (s *Service) SaveWorkingHours(ctx context.Context, businessID uuid.UUID, staffID *uuid.UUID, days []*model.WorkingHours) (model.WeeklyHours, error) {
	if staffID != nil {
		if _, err := s.staff.GetStaff(ctx, businessID, *staffID); err != nil {
			return model.WeeklyHours{}, err
		}
	}
	if err := model.ValidateWeek(days); err != nil {
		return model.WeeklyHours{}, err
	}
	if err := s.hours.Replace(ctx, businessID, staffID, days); err != nil {
		return model.WeeklyHours{}, fmt.Errorf("failed to save working hours: %w", err)
	}
	s.cache.InvalidateStaff(businessID, staffID)

	s.logger.Info("working hours saved", "business_id", businessID.String(), "staff_scoped", staffID != nil, "days", len(days))
	return ResolveWeek(ctx, s.hours, businessID, staffID)
}

// CreateBlock reserves [start, end) on the staff calendar. It is serialized
// with bookings and fails when the interval overlaps slot-holding time.
func (s *Service) CreateBlock(ctx context.Context, businessID, staffID uuid.UUID, req *model.CreateBlockRequest) (*model.Appointment, error) {
	if !req.EndTime.After(req.StartTime) {
		return nil, apperrors.NewValidation("end time must be after start time", nil)
	}
	if _, err := s.staff.GetStaff(ctx, businessID, staffID); err != nil {
		return nil, err
	}

	block := &model.Appointment{
		BusinessID: businessID,
		StaffID:    staffID,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Status:     model.AppointmentStatusBlocked,
		Notes:      req.Notes,
	}

	err := s.appointments.WithStaffLock(ctx, staffID, func(tx repository.AppointmentTx) error {
		occupied, err := tx.ListOccupied(ctx, staffID, block.StartTime, block.EndTime)
		if err != nil {
			return err
		}
		if len(occupied) > 0 {
			return apperrors.NewSlotUnavailable("blocked time overlaps an existing appointment or block")
		}
		return tx.Create(ctx, block)
	})
	if err != nil {
		return nil, err
	}

	s.cache.InvalidateStaff(businessID, &staffID)
	return block, nil
}

func (s *Service) ListBlocks(ctx context.Context, businessID, staffID uuid.UUID, from, to *time.Time) ([]*model.Appointment, error) {
	if _, err := s.staff.GetStaff(ctx, businessID, staffID); err != nil {
		return nil, err
	}
	return s.appointments.List(ctx, &model.AppointmentFilters{
		BusinessID: businessID,
		StaffID:    &staffID,
		Statuses:   []model.AppointmentStatus{model.AppointmentStatusBlocked},
		From:       from,
		To:         to,
	})
}

func (s *Service) DeleteBlock(ctx context.Context, businessID, id uuid.UUID) error {
	block, err := s.appointments.Get(ctx, id)
	if err != nil {
		return err
	}
	if block.BusinessID != businessID || block.Status != model.AppointmentStatusBlocked {
		return apperrors.NewNotFound("blocked time", nil)
	}
	if err := s.appointments.DeleteBlock(ctx, businessID, id); err != nil {
		return err
	}
	s.cache.InvalidateStaff(businessID, &block.StaffID)
	return nil
}

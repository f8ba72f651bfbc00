// Package booking creates PENDING appointments from public booking requests.
package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	engine "github.com/b2bagadi/Maw3idokom2-sub000/internal/availability"
	"github.com/b2bagadi/Maw3idokom2-sub000/internal/model"
	"github.com/b2bagadi/Maw3idokom2-sub000/internal/repository"
	"github.com/b2bagadi/Maw3idokom2-sub000/internal/service/availability"
	"github.com/b2bagadi/Maw3idokom2-sub000/internal/service/directory"
	apperrors "github.com/b2bagadi/Maw3idokom2-sub000/pkg/errors"
	"github.com/b2bagadi/Maw3idokom2-sub000/pkg/logger"
	"github.com/b2bagadi/Maw3idokom2-sub000/pkg/metrics"
	"github.com/b2bagadi/Maw3idokom2-sub000/pkg/validator"
)

const DefaultMaxAdvance = 90 * 24 * time.Hour

type Config struct {
	MaxAdvance time.Duration
}

type Service struct {
	appointments repository.AppointmentRepository
	directory    *directory.Service
	availability *availability.Service
	validate     validator.Validator
	maxAdvance   time.Duration
	metrics      *metrics.Metrics
	logger       *logger.Logger
}

func NewService(store repository.Store, dir *directory.Service, avail *availability.Service, cfg Config, m *metrics.Metrics, log *logger.Logger) *Service {
	if cfg.MaxAdvance <= 0 {
		cfg.MaxAdvance = DefaultMaxAdvance
	}
	if m == nil {
		m = metrics.NewNop()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		appointments: store.Appointments(),
		directory:    dir,
		availability: avail,
		validate:     validator.New(),
		maxAdvance:   cfg.MaxAdvance,
		metrics:      m,
		logger:       log,
	}
}

func (s *Service) validateRequest(req *model.BookingRequest) error {
	if err := s.validate.Validate(req); err != nil {
		return err
	}
	if req.CustomerID != nil {
		return nil
	}
	if strings.TrimSpace(req.CustomerName) == "" {
		return apperrors.NewValidation("customerName is required for guest bookings", nil)
	}
	if strings.TrimSpace(req.CustomerEmail) == "" && strings.TrimSpace(req.CustomerPhone) == "" {
		return apperrors.NewValidation("customerEmail or customerPhone is required for guest bookings", nil)
	}
	return nil
}

// Book validates req, then rechecks the slot under the staff lock and inserts
// a PENDING appointment with its booked event. Losing a race returns
// SlotUnavailable.
func (s *Service) Book(ctx context.Context, req *model.BookingRequest) (*model.Appointment, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	business, err := s.directory.GetBusinessBySlug(ctx, req.BusinessSlug)
	if err != nil {
		return nil, err
	}
	svc, err := s.directory.GetService(ctx, business.ID, req.ServiceID)
	if err != nil {
		return nil, err
	}
	if _, err := s.directory.GetStaff(ctx, business.ID, req.StaffID); err != nil {
		return nil, err
	}
	loc, err := business.Location()
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}

	now := s.availability.Now()
	if req.StartTime.After(now.Add(s.maxAdvance)) {
		return nil, apperrors.NewValidation(
			fmt.Sprintf("bookings open at most %d days ahead", int(s.maxAdvance.Hours()/24)), nil)
	}

	candidate := engine.Interval{Start: req.StartTime, End: req.StartTime.Add(svc.Duration())}
	day := availability.DayOf(req.StartTime, loc)
	apt := &model.Appointment{
		BusinessID:    business.ID,
		StaffID:       req.StaffID,
		ServiceID:     &svc.ID,
		CustomerID:    req.CustomerID,
		CustomerName:  strings.TrimSpace(req.CustomerName),
		CustomerEmail: strings.TrimSpace(req.CustomerEmail),
		CustomerPhone: strings.TrimSpace(req.CustomerPhone),
		StartTime:     candidate.Start,
		EndTime:       candidate.End,
		Status:        model.AppointmentStatusPending,
		Notes:         req.Notes,
	}

	err = s.appointments.WithStaffLock(ctx, req.StaffID, func(tx repository.AppointmentTx) error {
		window, ok, err := s.availability.Window(ctx, business.ID, req.StaffID, day, loc)
		if err != nil {
			return err
		}
		if !ok {
			return apperrors.NewSlotUnavailable("staff member does not work on that day")
		}
		occupied, err := tx.ListOccupied(ctx, req.StaffID, window.Start, window.End)
		if err != nil {
			return err
		}
		if !engine.Fits(window, candidate, engine.OccupiedFrom(occupied, nil), s.availability.Now()) {
			return apperrors.NewSlotUnavailable("")
		}

		apt.CreatedAt = s.availability.Now()
		if err := tx.Create(ctx, apt); err != nil {
			return err
		}
		evt, err := model.NewAppointmentEvent(model.EventAppointmentBooked, business, apt, "", "", apt.CreatedAt).ToOutbox()
		if err != nil {
			return fmt.Errorf("failed to build booked event: %w", err)
		}
		return tx.AddEvent(ctx, evt)
	})
	if err != nil {
		if apperrors.IsSlotUnavailable(err) {
			s.metrics.BookingConflicts.WithLabelValues("book").Inc()
		}
		return nil, err
	}

	s.availability.InvalidateDay(business.ID, req.StaffID, day)
	s.metrics.BookingsCreated.Inc()
	s.logger.Info("appointment booked",
		"appointment_id", apt.ID.String(),
		"business_id", business.ID.String(),
		"staff_id", req.StaffID.String(),
		"start_time", apt.StartTime.Format(time.RFC3339),
	)
	return apt, nil
}

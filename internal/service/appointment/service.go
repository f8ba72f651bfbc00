// Package appointment drives the appointment status machine. Every applied
// transition is written together with its outbox event under the staff lock.
package appointment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	engine "github.com/b2bagadi/Maw3idokom2-sub000/internal/availability"
	"github.com/b2bagadi/Maw3idokom2-sub000/internal/model"
	"github.com/b2bagadi/Maw3idokom2-sub000/internal/repository"
	"github.com/b2bagadi/Maw3idokom2-sub000/internal/service/availability"
	"github.com/b2bagadi/Maw3idokom2-sub000/internal/service/directory"
	apperrors "github.com/b2bagadi/Maw3idokom2-sub000/pkg/errors"
	"github.com/b2bagadi/Maw3idokom2-sub000/pkg/logger"
	"github.com/b2bagadi/Maw3idokom2-sub000/pkg/metrics"
)

// Actor identifies who is acting. Owners carry BusinessID, customers carry
// CustomerID.
type Actor struct {
	BusinessID *uuid.UUID
	CustomerID *uuid.UUID
}

func Owner(businessID uuid.UUID) Actor    { return Actor{BusinessID: &businessID} }
func Customer(customerID uuid.UUID) Actor { return Actor{CustomerID: &customerID} }

// canSee reports whether the actor may address apt at all. Appointments of
// other tenants or customers are reported as not found.
func (a Actor) canSee(apt *model.Appointment) bool {
	switch {
	case a.BusinessID != nil:
		return apt.BusinessID == *a.BusinessID
	case a.CustomerID != nil:
		return apt.CustomerID != nil && *apt.CustomerID == *a.CustomerID
	default:
		return false
	}
}

type Service struct {
	appointments repository.AppointmentRepository
	directory    *directory.Service
	availability *availability.Service
	metrics      *metrics.Metrics
	logger       *logger.Logger
}

func NewService(store repository.Store, dir *directory.Service, avail *availability.Service, m *metrics.Metrics, log *logger.Logger) *Service {
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
		metrics:      m,
		logger:       log,
	}
}

func (s *Service) Get(ctx context.Context, actor Actor, id uuid.UUID) (*model.Appointment, error) {
	apt, err := s.appointments.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.canSee(apt) || apt.Status == model.AppointmentStatusBlocked {
		return nil, apperrors.NewNotFound("appointment", nil)
	}
	return apt, nil
}

// List returns one page of booked appointments and the number matching
// filters overall. Blocked time has its own listing.
func (s *Service) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, int, error) {
	if len(filters.Statuses) == 0 {
		filters.Statuses = []model.AppointmentStatus{
			model.AppointmentStatusPending,
			model.AppointmentStatusConfirmed,
			model.AppointmentStatusRejected,
			model.AppointmentStatusCancelled,
			model.AppointmentStatusCompleted,
		}
	}
	apts, err := s.appointments.List(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list appointments: %w", err)
	}
	total, err := s.appointments.Count(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count appointments: %w", err)
	}
	return apts, total, nil
}

func (s *Service) Confirm(ctx context.Context, businessID, id uuid.UUID) (*model.Appointment, error) {
	return s.transition(ctx, Owner(businessID), id, model.ActionConfirm, "", nil)
}

func (s *Service) Reject(ctx context.Context, businessID, id uuid.UUID, reason string) (*model.Appointment, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperrors.NewValidation("a reason is required to reject an appointment", nil)
	}
	return s.transition(ctx, Owner(businessID), id, model.ActionReject, reason, func(apt *model.Appointment, _ repository.AppointmentTx) error {
		apt.RejectReason = &reason
		return nil
	})
}

// Cancel is open to the owning business and to the customer who booked.
func (s *Service) Cancel(ctx context.Context, actor Actor, id uuid.UUID, reason string) (*model.Appointment, error) {
	reason = strings.TrimSpace(reason)
	return s.transition(ctx, actor, id, model.ActionCancel, reason, func(apt *model.Appointment, _ repository.AppointmentTx) error {
		if reason != "" {
			apt.CancelReason = &reason
		}
		return nil
	})
}

// Complete is allowed once the appointment has started.
func (s *Service) Complete(ctx context.Context, businessID, id uuid.UUID) (*model.Appointment, error) {
	return s.transition(ctx, Owner(businessID), id, model.ActionComplete, "", func(apt *model.Appointment, _ repository.AppointmentTx) error {
		if s.availability.Now().Before(apt.StartTime) {
			return &apperrors.AppError{
				Code:    apperrors.ErrInvalidTransition,
				Message: "cannot complete an appointment before it starts",
			}
		}
		return nil
	})
}

// Reschedule moves the appointment to start, keeping its duration and status.
// On conflict neither this appointment nor the one occupying the slot
// changes.
func (s *Service) Reschedule(ctx context.Context, businessID, id uuid.UUID, start time.Time) (*model.Appointment, error) {
	business, err := s.directory.GetBusiness(ctx, businessID)
	if err != nil {
		return nil, err
	}
	loc, err := business.Location()
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}

	return s.transition(ctx, Owner(businessID), id, model.ActionReschedule, "", func(apt *model.Appointment, tx repository.AppointmentTx) error {
		candidate := engine.Interval{Start: start, End: start.Add(apt.Duration())}
		day := availability.DayOf(start, loc)

		window, ok, err := s.availability.Window(ctx, businessID, apt.StaffID, day, loc)
		if err != nil {
			return err
		}
		if !ok {
			return apperrors.NewSlotUnavailable("staff member does not work on that day")
		}
		occupied, err := tx.ListOccupied(ctx, apt.StaffID, window.Start, window.End)
		if err != nil {
			return err
		}
		if !engine.Fits(window, candidate, engine.OccupiedFrom(occupied, &apt.ID), s.availability.Now()) {
			s.metrics.BookingConflicts.WithLabelValues("reschedule").Inc()
			return apperrors.NewSlotUnavailable("")
		}
		apt.StartTime = candidate.Start
		apt.EndTime = candidate.End
		return nil
	})
}

type mutation func(apt *model.Appointment, tx repository.AppointmentTx) error

func (s *Service) transition(ctx context.Context, actor Actor, id uuid.UUID, action model.Action, reason string, mutate mutation) (*model.Appointment, error) {
	// The staff id is needed before the lock is taken. It never changes, so
	// reading it unlocked is safe.
	current, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	business, err := s.directory.GetBusiness(ctx, current.BusinessID)
	if err != nil {
		return nil, err
	}

	var updated *model.Appointment
	var previous model.AppointmentStatus
	err = s.appointments.WithStaffLock(ctx, current.StaffID, func(tx repository.AppointmentTx) error {
		apt, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		previous = apt.Status

		next, err := apt.Status.Next(action)
		if err != nil {
			return err
		}
		if mutate != nil {
			if err := mutate(apt, tx); err != nil {
				return err
			}
		}
		apt.Status = next
		apt.UpdatedAt = s.availability.Now()

		if err := tx.Update(ctx, apt); err != nil {
			return err
		}
		evt, err := model.NewAppointmentEvent(model.EventTypeFor(action), business, apt, previous, reason, apt.UpdatedAt).ToOutbox()
		if err != nil {
			return fmt.Errorf("failed to build %s event: %w", action, err)
		}
		if err := tx.AddEvent(ctx, evt); err != nil {
			return err
		}
		updated = apt
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.availability.Invalidate(updated.BusinessID, updated.StaffID)
	s.metrics.Transitions.WithLabelValues(string(action), string(previous), string(updated.Status)).Inc()
	s.logger.Info("appointment transition applied",
		"appointment_id", updated.ID.String(),
		"action", string(action),
		"from", string(previous),
		"to", string(updated.Status),
	)
	return updated, nil
}

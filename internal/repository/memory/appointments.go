package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/b2bagadi/Maw3idokom2-sub000/internal/model"
	"github.com/b2bagadi/Maw3idokom2-sub000/internal/repository"
	apperrors "github.com/b2bagadi/Maw3idokom2-sub000/pkg/errors"
)

type appointmentRepo struct{ s *Store }

func (r appointmentRepo) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	apt, ok := r.s.appointments[id]
	if !ok {
		return nil, apperrors.NewNotFound("appointment", nil)
	}
	return apt.Clone(), nil
}

func (r appointmentRepo) List(_ context.Context, f *model.AppointmentFilters) ([]*model.Appointment, error) {
	r.s.mu.RLock()
	var out []*model.Appointment
	for _, apt := range r.s.appointments {
		if matches(apt, f) {
			out = append(out, apt.Clone())
		}
	}
	r.s.mu.RUnlock()

	sortByStart(out)
	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return nil, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r appointmentRepo) Count(_ context.Context, f *model.AppointmentFilters) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for _, apt := range r.s.appointments {
		if matches(apt, f) {
			n++
		}
	}
	return n, nil
}

func matches(apt *model.Appointment, f *model.AppointmentFilters) bool {
	if apt.BusinessID != f.BusinessID {
		return false
	}
	if f.StaffID != nil && apt.StaffID != *f.StaffID {
		return false
	}
	if f.CustomerID != nil && (apt.CustomerID == nil || *apt.CustomerID != *f.CustomerID) {
		return false
	}
	if len(f.Statuses) > 0 {
		found := false
		for _, st := range f.Statuses {
			if apt.Status == st {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.From != nil && !apt.EndTime.After(*f.From) {
		return false
	}
	if f.To != nil && !apt.StartTime.Before(*f.To) {
		return false
	}
	return true
}

func (r appointmentRepo) ListOccupied(_ context.Context, staffID uuid.UUID, from, to time.Time) ([]*model.Appointment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return occupied(r.s.appointments, nil, staffID, from, to, uuid.Nil), nil
}

func (r appointmentRepo) DeleteBlock(_ context.Context, businessID, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	apt, ok := r.s.appointments[id]
	if !ok || apt.BusinessID != businessID || apt.Status != model.AppointmentStatusBlocked {
		return apperrors.NewNotFound("blocked time", nil)
	}
	delete(r.s.appointments, id)
	return nil
}

// WithStaffLock holds the staff member's mutex while fn runs. Writes are
// staged on the tx and applied together only when fn succeeds.
func (r appointmentRepo) WithStaffLock(ctx context.Context, staffID uuid.UUID, fn func(tx repository.AppointmentTx) error) error {
	r.s.mu.RLock()
	_, ok := r.s.staff[staffID]
	r.s.mu.RUnlock()
	if !ok {
		return apperrors.NewNotFound("staff", nil)
	}

	lock := r.s.staffLock(staffID)
	lock.Lock()
	defer lock.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &appointmentTx{s: r.s, staged: make(map[uuid.UUID]*model.Appointment)}
	if err := fn(tx); err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, apt := range tx.staged {
		r.s.appointments[id] = apt
	}
	r.s.outbox = append(r.s.outbox, tx.events...)
	return nil
}

type appointmentTx struct {
	s      *Store
	staged map[uuid.UUID]*model.Appointment
	events []*model.OutboxEvent
}

func (t *appointmentTx) ListOccupied(_ context.Context, staffID uuid.UUID, from, to time.Time) ([]*model.Appointment, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	return occupied(t.s.appointments, t.staged, staffID, from, to, uuid.Nil), nil
}

func (t *appointmentTx) GetForUpdate(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	if apt, ok := t.staged[id]; ok {
		return apt.Clone(), nil
	}
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	apt, ok := t.s.appointments[id]
	if !ok {
		return nil, apperrors.NewNotFound("appointment", nil)
	}
	return apt.Clone(), nil
}

func (t *appointmentTx) Create(_ context.Context, apt *model.Appointment) error {
	if apt.ID == uuid.Nil {
		apt.ID = uuid.New()
	}
	if apt.CreatedAt.IsZero() {
		apt.CreatedAt = t.s.now()
	}
	apt.UpdatedAt = apt.CreatedAt
	if err := t.checkOverlap(apt); err != nil {
		return err
	}
	t.staged[apt.ID] = apt.Clone()
	return nil
}

func (t *appointmentTx) Update(_ context.Context, apt *model.Appointment) error {
	t.s.mu.RLock()
	_, ok := t.s.appointments[apt.ID]
	t.s.mu.RUnlock()
	if _, staged := t.staged[apt.ID]; !ok && !staged {
		return apperrors.NewNotFound("appointment", nil)
	}
	if apt.UpdatedAt.IsZero() {
		apt.UpdatedAt = t.s.now()
	}
	if err := t.checkOverlap(apt); err != nil {
		return err
	}
	t.staged[apt.ID] = apt.Clone()
	return nil
}

func (t *appointmentTx) AddEvent(_ context.Context, evt *model.OutboxEvent) error {
	if evt.ID == uuid.Nil {
		evt.ID = uuid.New()
	}
	if evt.CreatedAt.IsZero() {
		evt.CreatedAt = t.s.now()
	}
	evt.UpdatedAt = evt.CreatedAt
	evt.Status = model.OutboxStatusPending
	cp := *evt
	t.events = append(t.events, &cp)
	return nil
}

// checkOverlap mirrors the appointments_no_overlap exclusion constraint.
func (t *appointmentTx) checkOverlap(apt *model.Appointment) error {
	if !apt.Status.HoldsSlot() {
		return nil
	}
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	if len(occupied(t.s.appointments, t.staged, apt.StaffID, apt.StartTime, apt.EndTime, apt.ID)) > 0 {
		return apperrors.NewSlotUnavailable("")
	}
	return nil
}

// occupied returns slot-holding appointments of staffID overlapping
// [from, to), reading staged over committed and skipping exclude.
func occupied(committed, staged map[uuid.UUID]*model.Appointment, staffID uuid.UUID, from, to time.Time, exclude uuid.UUID) []*model.Appointment {
	var out []*model.Appointment
	visit := func(apt *model.Appointment) {
		if apt.ID == exclude || apt.StaffID != staffID || !apt.Status.HoldsSlot() {
			return
		}
		if apt.StartTime.Before(to) && apt.EndTime.After(from) {
			out = append(out, apt.Clone())
		}
	}
	for id, apt := range committed {
		if _, shadowed := staged[id]; shadowed {
			continue
		}
		visit(apt)
	}
	for _, apt := range staged {
		visit(apt)
	}
	sortByStart(out)
	return out
}

func sortByStart(apts []*model.Appointment) {
	sort.Slice(apts, func(i, j int) bool {
		if apts[i].StartTime.Equal(apts[j].StartTime) {
			return apts[i].ID.String() < apts[j].ID.String()
		}
		return apts[i].StartTime.Before(apts[j].StartTime)
	})
}

// Package memory is a process-local repository.Store. It backs tests and
// single-instance demo deployments; data is lost on restart.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/b2bagadi/Maw3idokom2-sub000/internal/model"
	"github.com/b2bagadi/Maw3idokom2-sub000/internal/repository"
	apperrors "github.com/b2bagadi/Maw3idokom2-sub000/pkg/errors"
)

type hoursKey struct {
	businessID uuid.UUID
	staffID    uuid.UUID // uuid.Nil for the business default week
}

type Store struct {
	mu           sync.RWMutex
	businesses   map[uuid.UUID]*model.Business
	slugs        map[string]uuid.UUID
	staff        map[uuid.UUID]*model.Staff
	services     map[uuid.UUID]*model.Service
	hours        map[hoursKey][]*model.WorkingHours
	appointments map[uuid.UUID]*model.Appointment
	outbox       []*model.OutboxEvent

	locksMu    sync.Mutex
	staffLocks map[uuid.UUID]*sync.Mutex

	// outboxMu serializes ProcessPending the way row locks do in postgres.
	outboxMu sync.Mutex

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		businesses:   make(map[uuid.UUID]*model.Business),
		slugs:        make(map[string]uuid.UUID),
		staff:        make(map[uuid.UUID]*model.Staff),
		services:     make(map[uuid.UUID]*model.Service),
		hours:        make(map[hoursKey][]*model.WorkingHours),
		appointments: make(map[uuid.UUID]*model.Appointment),
		staffLocks:   make(map[uuid.UUID]*sync.Mutex),
		now:          time.Now,
	}
}

func (s *Store) Businesses() repository.BusinessRepository       { return businessRepo{s} }
func (s *Store) Staff() repository.StaffRepository               { return staffRepo{s} }
func (s *Store) Services() repository.ServiceRepository          { return serviceRepo{s} }
func (s *Store) WorkingHours() repository.WorkingHoursRepository { return hoursRepo{s} }
func (s *Store) Appointments() repository.AppointmentRepository  { return appointmentRepo{s} }
func (s *Store) Outbox() repository.OutboxRepository             { return outboxRepo{s} }

func (s *Store) Ping(context.Context) error { return nil }
func (s *Store) Close() error               { return nil }

var _ repository.Store = (*Store)(nil)

func (s *Store) staffLock(id uuid.UUID) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	l, ok := s.staffLocks[id]
	if !ok {
		l = &sync.Mutex{}
		s.staffLocks[id] = l
	}
	return l
}

type businessRepo struct{ s *Store }

func (r businessRepo) Create(_ context.Context, b *model.Business) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, taken := r.s.slugs[b.Slug]; taken {
		return apperrors.NewValidation("duplicate business slug "+b.Slug, nil)
	}
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	b.CreatedAt = r.s.now()
	b.UpdatedAt = b.CreatedAt
	cp := *b
	r.s.businesses[b.ID] = &cp
	r.s.slugs[b.Slug] = b.ID
	return nil
}

func (r businessRepo) Get(_ context.Context, id uuid.UUID) (*model.Business, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	b, ok := r.s.businesses[id]
	if !ok {
		return nil, apperrors.NewNotFound("business", nil)
	}
	cp := *b
	return &cp, nil
}

func (r businessRepo) GetBySlug(ctx context.Context, slug string) (*model.Business, error) {
	r.s.mu.RLock()
	id, ok := r.s.slugs[slug]
	r.s.mu.RUnlock()
	if !ok {
		return nil, apperrors.NewNotFound("business", nil)
	}
	return r.Get(ctx, id)
}

type staffRepo struct{ s *Store }

func (r staffRepo) Create(_ context.Context, st *model.Staff) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if st.ID == uuid.Nil {
		st.ID = uuid.New()
	}
	st.CreatedAt = r.s.now()
	st.UpdatedAt = st.CreatedAt
	cp := *st
	r.s.staff[st.ID] = &cp
	return nil
}

func (r staffRepo) Get(_ context.Context, id uuid.UUID) (*model.Staff, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	st, ok := r.s.staff[id]
	if !ok {
		return nil, apperrors.NewNotFound("staff", nil)
	}
	cp := *st
	return &cp, nil
}

func (r staffRepo) ListByBusiness(_ context.Context, businessID uuid.UUID) ([]*model.Staff, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*model.Staff
	for _, st := range r.s.staff {
		if st.BusinessID == businessID {
			cp := *st
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type serviceRepo struct{ s *Store }

func (r serviceRepo) Create(_ context.Context, svc *model.Service) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if svc.ID == uuid.Nil {
		svc.ID = uuid.New()
	}
	svc.CreatedAt = r.s.now()
	svc.UpdatedAt = svc.CreatedAt
	cp := *svc
	r.s.services[svc.ID] = &cp
	return nil
}

func (r serviceRepo) Get(_ context.Context, id uuid.UUID) (*model.Service, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	svc, ok := r.s.services[id]
	if !ok {
		return nil, apperrors.NewNotFound("service", nil)
	}
	cp := *svc
	return &cp, nil
}

func (r serviceRepo) ListByBusiness(_ context.Context, businessID uuid.UUID) ([]*model.Service, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*model.Service
	for _, svc := range r.s.services {
		if svc.BusinessID == businessID {
			cp := *svc
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type hoursRepo struct{ s *Store }

func keyFor(businessID uuid.UUID, staffID *uuid.UUID) hoursKey {
	k := hoursKey{businessID: businessID}
	if staffID != nil {
		k.staffID = *staffID
	}
	return k
}

func (r hoursRepo) Get(_ context.Context, businessID uuid.UUID, staffID *uuid.UUID) ([]*model.WorkingHours, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rows := r.s.hours[keyFor(businessID, staffID)]
	out := make([]*model.WorkingHours, len(rows))
	for i, row := range rows {
		cp := *row
		out[i] = &cp
	}
	return out, nil
}

func (r hoursRepo) Replace(_ context.Context, businessID uuid.UUID, staffID *uuid.UUID, days []*model.WorkingHours) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.now()
	rows := make([]*model.WorkingHours, 0, len(days))
	for _, day := range days {
		if day.ID == uuid.Nil {
			day.ID = uuid.New()
		}
		day.BusinessID = businessID
		day.StaffID = staffID
		day.UpdatedAt = now
		cp := *day
		rows = append(rows, &cp)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].DayOfWeek < rows[j].DayOfWeek })
	r.s.hours[keyFor(businessID, staffID)] = rows
	return nil
}

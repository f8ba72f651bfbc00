package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/b2bagadi/Maw3idokom2-sub000/internal/repository"
)

// Store implements repository.Store on PostgreSQL.
type Store struct {
	db           *sqlx.DB
	businesses   repository.BusinessRepository
	staff        repository.StaffRepository
	services     repository.ServiceRepository
	workingHours repository.WorkingHoursRepository
	appointments repository.AppointmentRepository
	outbox       repository.OutboxRepository
}

func NewStore(db *sqlx.DB) *Store {
	base := NewBaseRepository(db)
	return &Store{
		db:           db,
		businesses:   NewBusinessRepository(base),
		staff:        NewStaffRepository(base),
		services:     NewServiceRepository(base),
		workingHours: NewWorkingHoursRepository(base),
		appointments: NewAppointmentRepository(base),
		outbox:       NewOutboxRepository(base),
	}
}

func (s *Store) Businesses() repository.BusinessRepository       { return s.businesses }
func (s *Store) Staff() repository.StaffRepository               { return s.staff }
func (s *Store) Services() repository.ServiceRepository          { return s.services }
func (s *Store) WorkingHours() repository.WorkingHoursRepository { return s.workingHours }
func (s *Store) Appointments() repository.AppointmentRepository  { return s.appointments }
func (s *Store) Outbox() repository.OutboxRepository             { return s.outbox }

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

var _ repository.Store = (*Store)(nil)

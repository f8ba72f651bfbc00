package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/b2bagadi/Maw3idokom2-sub000/internal/model"
	"github.com/b2bagadi/Maw3idokom2-sub000/internal/repository"
	apperrors "github.com/b2bagadi/Maw3idokom2-sub000/pkg/errors"
)

var monday = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

func seedStaff(t *testing.T, s *Store) *model.Staff {
	t.Helper()
	b := &model.Business{Slug: "salon-nour", Name: "Salon Nour", IsActive: true}
	require.NoError(t, s.Businesses().Create(context.Background(), b))
	st := &model.Staff{BusinessID: b.ID, Name: "Amina", IsActive: true}
	require.NoError(t, s.Staff().Create(context.Background(), st))
	return st
}

func apt(st *model.Staff, start time.Time, status model.AppointmentStatus) *model.Appointment {
	return &model.Appointment{
		BusinessID: st.BusinessID,
		StaffID:    st.ID,
		StartTime:  start,
		EndTime:    start.Add(30 * time.Minute),
		Status:     status,
	}
}

func create(t *testing.T, s *Store, a *model.Appointment) error {
	t.Helper()
	return s.Appointments().WithStaffLock(context.Background(), a.StaffID, func(tx repository.AppointmentTx) error {
		return tx.Create(context.Background(), a)
	})
}

func TestWithStaffLock_RejectsOverlap(t *testing.T) {
	s := NewStore()
	st := seedStaff(t, s)

	require.NoError(t, create(t, s, apt(st, monday, model.AppointmentStatusConfirmed)))

	err := create(t, s, apt(st, monday.Add(15*time.Minute), model.AppointmentStatusPending))
	assert.True(t, apperrors.IsSlotUnavailable(err))

	// Touching intervals do not overlap.
	assert.NoError(t, create(t, s, apt(st, monday.Add(30*time.Minute), model.AppointmentStatusPending)))
	// Rows that do not hold a slot are never in conflict.
	assert.NoError(t, create(t, s, apt(st, monday, model.AppointmentStatusCancelled)))
}

func TestWithStaffLock_DiscardsWritesOnError(t *testing.T) {
	s := NewStore()
	st := seedStaff(t, s)
	boom := errors.New("boom")

	err := s.Appointments().WithStaffLock(context.Background(), st.ID, func(tx repository.AppointmentTx) error {
		require.NoError(t, tx.Create(context.Background(), apt(st, monday, model.AppointmentStatusPending)))
		require.NoError(t, tx.AddEvent(context.Background(), &model.OutboxEvent{EventType: "x", Payload: []byte(`{}`)}))
		return boom
	})

	assert.ErrorIs(t, err, boom)
	occupied, err := s.Appointments().ListOccupied(context.Background(), st.ID, monday, monday.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, occupied)
	assert.Empty(t, s.Events())
}

func TestWithStaffLock_UnknownStaff(t *testing.T) {
	s := NewStore()
	err := s.Appointments().WithStaffLock(context.Background(), uuid.New(), func(repository.AppointmentTx) error { return nil })
	assert.True(t, apperrors.IsNotFound(err))
}

func TestUpdate_IgnoresItself(t *testing.T) {
	s := NewStore()
	st := seedStaff(t, s)
	a := apt(st, monday, model.AppointmentStatusConfirmed)
	require.NoError(t, create(t, s, a))

	err := s.Appointments().WithStaffLock(context.Background(), st.ID, func(tx repository.AppointmentTx) error {
		cur, err := tx.GetForUpdate(context.Background(), a.ID)
		if err != nil {
			return err
		}
		cur.StartTime = cur.StartTime.Add(15 * time.Minute)
		cur.EndTime = cur.EndTime.Add(15 * time.Minute)
		return tx.Update(context.Background(), cur)
	})
	require.NoError(t, err)

	got, err := s.Appointments().Get(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, monday.Add(15*time.Minute), got.StartTime)
}

func TestList_FiltersAndPaginates(t *testing.T) {
	s := NewStore()
	st := seedStaff(t, s)
	for i := 0; i < 4; i++ {
		status := model.AppointmentStatusPending
		if i%2 == 1 {
			status = model.AppointmentStatusConfirmed
		}
		require.NoError(t, create(t, s, apt(st, monday.Add(time.Duration(i)*time.Hour), status)))
	}

	got, err := s.Appointments().List(context.Background(), &model.AppointmentFilters{
		BusinessID: st.BusinessID,
		Statuses:   []model.AppointmentStatus{model.AppointmentStatusPending},
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].StartTime.Before(got[1].StartTime))

	page, err := s.Appointments().List(context.Background(), &model.AppointmentFilters{
		BusinessID: st.BusinessID,
		Pagination: model.Pagination{Limit: 2, Offset: 1},
	})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, monday.Add(time.Hour), page[0].StartTime)

	total, err := s.Appointments().Count(context.Background(), &model.AppointmentFilters{
		BusinessID: st.BusinessID,
		Pagination: model.Pagination{Limit: 2, Offset: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
}

func TestDeleteBlock(t *testing.T) {
	s := NewStore()
	st := seedStaff(t, s)
	block := apt(st, monday, model.AppointmentStatusBlocked)
	booked := apt(st, monday.Add(time.Hour), model.AppointmentStatusConfirmed)
	require.NoError(t, create(t, s, block))
	require.NoError(t, create(t, s, booked))

	assert.True(t, apperrors.IsNotFound(s.Appointments().DeleteBlock(context.Background(), st.BusinessID, booked.ID)))
	assert.True(t, apperrors.IsNotFound(s.Appointments().DeleteBlock(context.Background(), uuid.New(), block.ID)))
	assert.NoError(t, s.Appointments().DeleteBlock(context.Background(), st.BusinessID, block.ID))
}

func TestOutbox_ProcessPending(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	require.NoError(t, s.Outbox().Create(ctx, &model.OutboxEvent{EventType: "a", Payload: []byte(`{}`)}))
	later := time.Now().Add(time.Hour)
	require.NoError(t, s.Outbox().Create(ctx, &model.OutboxEvent{EventType: "b", Payload: []byte(`{}`)}))

	// a is delivered, b is parked for an hour.
	_, err := s.Outbox().ProcessPending(ctx, 10, func(_ context.Context, evt *model.OutboxEvent) error {
		if evt.EventType == "b" {
			evt.Status = model.OutboxStatusRetry
			evt.RetryAt = &later
			return nil
		}
		now := time.Now().Add(-48 * time.Hour)
		evt.Status = model.OutboxStatusProcessed
		evt.ProcessedAt = &now
		return nil
	})
	require.NoError(t, err)

	n, err := s.Outbox().ProcessPending(ctx, 10, func(context.Context, *model.OutboxEvent) error {
		t.Fatal("no event should be due")
		return nil
	})
	require.NoError(t, err)
	assert.Zero(t, n)

	pending, err := s.Outbox().CountPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, pending)

	deleted, err := s.Outbox().DeleteProcessedBefore(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
	assert.Len(t, s.Events(), 1)
}

func TestWorkingHours_ReplaceIsPerStaff(t *testing.T) {
	s := NewStore()
	st := seedStaff(t, s)
	ctx := context.Background()

	require.NoError(t, s.WorkingHours().Replace(ctx, st.BusinessID, nil, []*model.WorkingHours{
		{DayOfWeek: 1, StartTime: "09:00", EndTime: "17:00", IsEnabled: true},
	}))

	staffRows, err := s.WorkingHours().Get(ctx, st.BusinessID, &st.ID)
	require.NoError(t, err)
	assert.Empty(t, staffRows)

	defaults, err := s.WorkingHours().Get(ctx, st.BusinessID, nil)
	require.NoError(t, err)
	require.Len(t, defaults, 1)
	assert.Equal(t, "09:00", defaults[0].StartTime)
}

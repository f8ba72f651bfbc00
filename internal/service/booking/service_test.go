package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/b2bagadi/Maw3idokom2-sub000/internal/model"
	"github.com/b2bagadi/Maw3idokom2-sub000/internal/repository/memory"
	"github.com/b2bagadi/Maw3idokom2-sub000/internal/service/availability"
	"github.com/b2bagadi/Maw3idokom2-sub000/internal/service/directory"
	apperrors "github.com/b2bagadi/Maw3idokom2-sub000/pkg/errors"
)

var now = time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC)

// Monday 19 October 2026, 10:00 UTC.
var slot = time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)

type fixture struct {
	store   *memory.Store
	avail   *availability.Service
	booking *Service
	biz     *model.Business
	staff   *model.Staff
	svc     *model.Service
}

func setup(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	biz := &model.Business{Slug: "salon-nour", Name: "Salon Nour", Timezone: "UTC", IsActive: true}
	require.NoError(t, store.Businesses().Create(ctx, biz))
	staff := &model.Staff{BusinessID: biz.ID, Name: "Amina", IsActive: true}
	require.NoError(t, store.Staff().Create(ctx, staff))
	svc := &model.Service{BusinessID: biz.ID, Name: "Cut", DurationMinutes: 30, IsActive: true}
	require.NoError(t, store.Services().Create(ctx, svc))
	require.NoError(t, store.WorkingHours().Replace(ctx, biz.ID, nil, []*model.WorkingHours{
		{DayOfWeek: int(time.Monday), StartTime: "09:00", EndTime: "17:00", IsEnabled: true},
	}))

	dir := directory.NewService(store)
	avail := availability.NewService(store, dir, availability.Config{
		CacheTTL: time.Minute,
		Now:      func() time.Time { return now },
	}, nil)
	return &fixture{
		store:   store,
		avail:   avail,
		booking: NewService(store, dir, avail, Config{}, nil, nil),
		biz:     biz,
		staff:   staff,
		svc:     svc,
	}
}

func (f *fixture) request(start time.Time) *model.BookingRequest {
	return &model.BookingRequest{
		BusinessSlug:  f.biz.Slug,
		ServiceID:     f.svc.ID,
		StaffID:       f.staff.ID,
		StartTime:     start,
		CustomerName:  "Youssef",
		CustomerPhone: "+212600000000",
	}
}

func TestBook_CreatesPendingAndEvent(t *testing.T) {
	f := setup(t)

	apt, err := f.booking.Book(context.Background(), f.request(slot))
	require.NoError(t, err)

	assert.Equal(t, model.AppointmentStatusPending, apt.Status)
	assert.Equal(t, slot.Add(30*time.Minute), apt.EndTime)
	assert.Equal(t, f.svc.ID, *apt.ServiceID)

	events := f.store.Events()
	require.Len(t, events, 1)
	assert.Equal(t, model.EventAppointmentBooked, events[0].EventType)
	assert.Contains(t, string(events[0].Payload), apt.ID.String())
}

func TestBook_PendingHoldsSlot(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	before, err := f.avail.Slots(ctx, f.biz.Slug, f.staff.ID, f.svc.ID, "2026-10-19")
	require.NoError(t, err)
	require.Len(t, before, 16)

	_, err = f.booking.Book(ctx, f.request(slot))
	require.NoError(t, err)

	// The cache entry for that day was invalidated by the booking.
	after, err := f.avail.Slots(ctx, f.biz.Slug, f.staff.ID, f.svc.ID, "2026-10-19")
	require.NoError(t, err)
	assert.Len(t, after, 15)
	for _, s := range after {
		assert.NotEqual(t, "10:00", s.Time)
	}

	_, err = f.booking.Book(ctx, f.request(slot.Add(15*time.Minute)))
	assert.True(t, apperrors.IsSlotUnavailable(err))
}

func TestBook_ConcurrentRequestsForOneSlot(t *testing.T) {
	f := setup(t)
	const n = 20

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := f.booking.Book(context.Background(), f.request(slot))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case apperrors.IsSlotUnavailable(err):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, n-1, conflicts)
	assert.Len(t, f.store.Events(), 1)
}

func TestBook_Validation(t *testing.T) {
	f := setup(t)
	customer := uuid.New()

	tests := []struct {
		name   string
		mutate func(r *model.BookingRequest)
		check  func(error) bool
	}{
		{"guest without contact", func(r *model.BookingRequest) { r.CustomerPhone = "" }, apperrors.IsValidation},
		{"guest without name", func(r *model.BookingRequest) { r.CustomerName = " " }, apperrors.IsValidation},
		{"bad email", func(r *model.BookingRequest) { r.CustomerEmail = "not-an-email" }, apperrors.IsValidation},
		{"missing staff", func(r *model.BookingRequest) { r.StaffID = uuid.Nil }, apperrors.IsValidation},
		{"unknown business", func(r *model.BookingRequest) { r.BusinessSlug = "nope" }, apperrors.IsNotFound},
		{"unknown service", func(r *model.BookingRequest) { r.ServiceID = uuid.New() }, apperrors.IsNotFound},
		{"beyond horizon", func(r *model.BookingRequest) { r.StartTime = now.AddDate(0, 0, 91) }, apperrors.IsValidation},
		{"outside working hours", func(r *model.BookingRequest) {
			r.StartTime = time.Date(2026, 10, 19, 16, 45, 0, 0, time.UTC)
		}, apperrors.IsSlotUnavailable},
		{"disabled day", func(r *model.BookingRequest) {
			r.StartTime = time.Date(2026, 10, 20, 10, 0, 0, 0, time.UTC)
		}, apperrors.IsSlotUnavailable},
		{"in the past", func(r *model.BookingRequest) {
			r.StartTime = time.Date(2026, 10, 12, 10, 0, 0, 0, time.UTC)
		}, apperrors.IsSlotUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := f.request(slot)
			tt.mutate(req)
			_, err := f.booking.Book(context.Background(), req)
			assert.True(t, tt.check(err), "got %v", err)
		})
	}

	t.Run("registered customer needs no contact", func(t *testing.T) {
		req := f.request(slot.Add(2 * time.Hour))
		req.CustomerName, req.CustomerPhone = "", ""
		req.CustomerID = &customer
		apt, err := f.booking.Book(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, customer, *apt.CustomerID)
	})
}

func TestBook_OffGridStartAccepted(t *testing.T) {
	f := setup(t)
	apt, err := f.booking.Book(context.Background(), f.request(slot.Add(10*time.Minute)))
	require.NoError(t, err)
	assert.Equal(t, slot.Add(40*time.Minute), apt.EndTime)
}

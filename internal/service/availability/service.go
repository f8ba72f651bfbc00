// Package availability serves bookable slots for a staff member, service and
// date. Results are cached briefly; writers invalidate by staff member. A
// non-positive CacheTTL disables the cache.
package availability

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	engine "github.com/b2bagadi/Maw3idokom2-sub000/internal/availability"
	"github.com/b2bagadi/Maw3idokom2-sub000/internal/model"
	"github.com/b2bagadi/Maw3idokom2-sub000/internal/repository"
	"github.com/b2bagadi/Maw3idokom2-sub000/internal/service/directory"
	"github.com/b2bagadi/Maw3idokom2-sub000/internal/service/schedule"
	apperrors "github.com/b2bagadi/Maw3idokom2-sub000/pkg/errors"
	"github.com/b2bagadi/Maw3idokom2-sub000/pkg/metrics"
)

// DateLayout is the wire format of the date query parameter.
const DateLayout = "2006-01-02"

type Config struct {
	Step     time.Duration
	CacheTTL time.Duration
	// Now is the clock. Defaults to time.Now.
	Now func() time.Time
}

type Service struct {
	hours        repository.WorkingHoursRepository
	appointments repository.AppointmentRepository
	directory    *directory.Service
	cache        *cache.Cache // nil when caching is disabled
	step         time.Duration
	metrics      *metrics.Metrics
	now          func() time.Time
}

func NewService(store repository.Store, dir *directory.Service, cfg Config, m *metrics.Metrics) *Service {
	if cfg.Step <= 0 {
		cfg.Step = engine.DefaultStep
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if m == nil {
		m = metrics.NewNop()
	}
	s := &Service{
		hours:        store.WorkingHours(),
		appointments: store.Appointments(),
		directory:    dir,
		step:         cfg.Step,
		metrics:      m,
		now:          cfg.Now,
	}
	if cfg.CacheTTL > 0 {
		s.cache = cache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
	}
	return s
}

func (s *Service) Step() time.Duration { return s.step }

func (s *Service) Now() time.Time { return s.now() }

// Day is a calendar date in the business timezone.
type Day struct {
	Year  int
	Month time.Month
	Day   int
}

func DayOf(t time.Time, loc *time.Location) Day {
	y, m, d := t.In(loc).Date()
	return Day{y, m, d}
}

func ParseDay(s string) (Day, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Day{}, apperrors.NewValidation(fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", s), err)
	}
	return DayOf(t, time.UTC), nil
}

func (d Day) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Window resolves the staff member's working window on day. ok is false on a
// disabled day.
func (s *Service) Window(ctx context.Context, businessID, staffID uuid.UUID, day Day, loc *time.Location) (engine.Interval, bool, error) {
	week, err := schedule.ResolveWeek(ctx, s.hours, businessID, &staffID)
	if err != nil {
		return engine.Interval{}, false, err
	}
	return engine.WorkingWindow(week, day.Year, day.Month, day.Day, loc)
}

// Slots is the public availability query.
func (s *Service) Slots(ctx context.Context, slug string, staffID, serviceID uuid.UUID, date string) ([]model.Slot, error) {
	day, err := ParseDay(date)
	if err != nil {
		return nil, err
	}
	business, err := s.directory.GetBusinessBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	loc, err := business.Location()
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}
	if _, err := s.directory.GetStaff(ctx, business.ID, staffID); err != nil {
		return nil, err
	}
	svc, err := s.directory.GetService(ctx, business.ID, serviceID)
	if err != nil {
		return nil, err
	}

	starts, err := s.cachedStarts(ctx, business.ID, staffID, svc.Duration(), day, loc)
	if err != nil {
		return nil, err
	}

	slots := make([]model.Slot, 0, len(starts))
	for _, start := range starts {
		local := start.In(loc)
		slots = append(slots, model.Slot{
			Date:      day.String(),
			Time:      local.Format("15:04"),
			StartTime: local,
			EndTime:   local.Add(svc.Duration()),
		})
	}
	return slots, nil
}

func cacheKey(businessID, staffID uuid.UUID, day Day, duration time.Duration) string {
	return fmt.Sprintf("%s:%s:%s:%d", businessID, staffID, day, int(duration.Minutes()))
}

// cachedStarts serves from cache when possible. Cached entries are
// re-filtered against the clock since a slot may have passed since it was
// computed.
func (s *Service) cachedStarts(ctx context.Context, businessID, staffID uuid.UUID, duration time.Duration, day Day, loc *time.Location) ([]time.Time, error) {
	if s.cache == nil {
		return s.Compute(ctx, businessID, staffID, duration, day, loc)
	}
	key := cacheKey(businessID, staffID, day, duration)
	now := s.now()
	if v, ok := s.cache.Get(key); ok {
		s.metrics.AvailabilityCache.WithLabelValues("hit").Inc()
		cached := v.([]time.Time)
		fresh := make([]time.Time, 0, len(cached))
		for _, t := range cached {
			if !t.Before(now) {
				fresh = append(fresh, t)
			}
		}
		return fresh, nil
	}
	s.metrics.AvailabilityCache.WithLabelValues("miss").Inc()

	starts, err := s.Compute(ctx, businessID, staffID, duration, day, loc)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(key, starts)
	return starts, nil
}

// Compute reads working hours and occupied time from storage and runs the
// engine. It never consults the cache.
func (s *Service) Compute(ctx context.Context, businessID, staffID uuid.UUID, duration time.Duration, day Day, loc *time.Location) ([]time.Time, error) {
	started := time.Now()
	defer func() { s.metrics.AvailabilityLatency.Observe(time.Since(started).Seconds()) }()

	window, ok, err := s.Window(ctx, businessID, staffID, day, loc)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []time.Time{}, nil
	}

	appointments, err := s.appointments.ListOccupied(ctx, staffID, window.Start, window.End)
	if err != nil {
		return nil, fmt.Errorf("failed to load occupied intervals: %w", err)
	}

	starts := engine.Slots(engine.Request{
		Window:   window,
		Duration: duration,
		Step:     s.step,
		Occupied: engine.OccupiedFrom(appointments, nil),
		Now:      s.now(),
	})
	if starts == nil {
		starts = []time.Time{}
	}
	return starts, nil
}

// Invalidate drops every cached day of staffID.
func (s *Service) Invalidate(businessID, staffID uuid.UUID) {
	s.dropPrefix(businessID.String() + ":" + staffID.String() + ":")
}

// InvalidateStaff implements schedule.CacheInvalidator.
func (s *Service) InvalidateStaff(businessID uuid.UUID, staffID *uuid.UUID) {
	if staffID == nil {
		s.dropPrefix(businessID.String() + ":")
		return
	}
	s.Invalidate(businessID, *staffID)
}

// InvalidateDay drops cached results of one staff member on one day, for
// every service duration.
func (s *Service) InvalidateDay(businessID, staffID uuid.UUID, day Day) {
	s.dropPrefix(fmt.Sprintf("%s:%s:%s:", businessID, staffID, day))
}

func (s *Service) dropPrefix(prefix string) {
	if s.cache == nil {
		return
	}
	for key := range s.cache.Items() {
		if strings.HasPrefix(key, prefix) {
			s.cache.Delete(key)
		}
	}
}

var _ schedule.CacheInvalidator = (*Service)(nil)

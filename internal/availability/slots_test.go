package availability

import (
	"math/rand"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/b2bagadi/Maw3idokom2-sub000/internal/model"
)

var casablanca = time.FixedZone("UTC+1", 3600)

func mondayWeek() model.WeeklyHours {
	return model.NewWeeklyHours([]*model.WorkingHours{
		{DayOfWeek: int(time.Monday), StartTime: "09:00", EndTime: "17:00", IsEnabled: true},
		{DayOfWeek: int(time.Tuesday), StartTime: "09:00", EndTime: "17:00", IsEnabled: false},
	})
}

func at(hour, minute int) time.Time {
	return time.Date(2026, 10, 12, hour, minute, 0, 0, casablanca)
}

func hhmm(slots []time.Time) []string {
	out := make([]string, len(slots))
	for i, s := range slots {
		out[i] = s.In(casablanca).Format("15:04")
	}
	return out
}

func TestSlots_ConfirmedAppointmentScenario(t *testing.T) {
	require.Equal(t, time.Monday, at(0, 0).Weekday())

	window, ok, err := WorkingWindow(mondayWeek(), 2026, time.October, 12, casablanca)
	require.NoError(t, err)
	require.True(t, ok)

	occupied := OccupiedFrom([]*model.Appointment{
		{StartTime: at(10, 0), EndTime: at(10, 30), Status: model.AppointmentStatusConfirmed},
	}, nil)

	slots := hhmm(Slots(Request{
		Window:   window,
		Duration: 30 * time.Minute,
		Step:     30 * time.Minute,
		Occupied: occupied,
		Now:      at(0, 0),
	}))

	require.GreaterOrEqual(t, len(slots), 3)
	assert.Equal(t, []string{"09:00", "09:30", "10:30"}, slots[:3])
	assert.NotContains(t, slots, "10:00")
	assert.Len(t, slots, 15)
	assert.Equal(t, "16:30", slots[len(slots)-1])
}

func TestWorkingWindow_DisabledDayYieldsNoWindow(t *testing.T) {
	week := mondayWeek()

	// Tuesday has a row but is disabled, Sunday has no row at all.
	for _, day := range []int{13, 11} {
		_, ok, err := WorkingWindow(week, 2026, time.October, day, casablanca)
		require.NoError(t, err)
		assert.False(t, ok)
	}
}

func TestWorkingWindow_InvalidHours(t *testing.T) {
	week := model.NewWeeklyHours([]*model.WorkingHours{
		{DayOfWeek: int(time.Monday), StartTime: "17:00", EndTime: "09:00", IsEnabled: true},
	})
	_, _, err := WorkingWindow(week, 2026, time.October, 12, casablanca)
	assert.Error(t, err)
}

func TestSlots_NoPartialSlotAtDayEnd(t *testing.T) {
	slots := Slots(Request{
		Window:   Interval{Start: at(9, 0), End: at(10, 15)},
		Duration: 45 * time.Minute,
		Step:     30 * time.Minute,
		Now:      at(0, 0),
	})
	// 09:00 and 09:30 fit; 10:00 would end at 10:45.
	assert.Equal(t, []string{"09:00", "09:30"}, hhmm(slots))
}

func TestSlots_SkipsPastStarts(t *testing.T) {
	slots := Slots(Request{
		Window:   Interval{Start: at(9, 0), End: at(11, 0)},
		Duration: 30 * time.Minute,
		Step:     30 * time.Minute,
		Now:      at(9, 31),
	})
	assert.Equal(t, []string{"10:00", "10:30"}, hhmm(slots))
}

func TestSlots_StepIndependentOfDuration(t *testing.T) {
	slots := Slots(Request{
		Window:   Interval{Start: at(9, 0), End: at(11, 0)},
		Duration: 60 * time.Minute,
		Now:      at(0, 0),
	})
	assert.Equal(t, []string{"09:00", "09:30", "10:00"}, hhmm(slots))
}

func TestSlots_PendingHoldsSlotRejectedFreesIt(t *testing.T) {
	window := Interval{Start: at(9, 0), End: at(10, 0)}
	pending := &model.Appointment{StartTime: at(9, 0), EndTime: at(9, 30), Status: model.AppointmentStatusPending}

	req := Request{Window: window, Duration: 30 * time.Minute, Now: at(0, 0)}

	req.Occupied = OccupiedFrom([]*model.Appointment{pending}, nil)
	assert.Equal(t, []string{"09:30"}, hhmm(Slots(req)))

	pending.Status = model.AppointmentStatusRejected
	req.Occupied = OccupiedFrom([]*model.Appointment{pending}, nil)
	assert.Equal(t, []string{"09:00", "09:30"}, hhmm(Slots(req)))
}

func TestSlots_BlockedIntervalsAndMerging(t *testing.T) {
	occupied := OccupiedFrom([]*model.Appointment{
		{StartTime: at(12, 0), EndTime: at(12, 45), Status: model.AppointmentStatusBlocked},
		{StartTime: at(12, 30), EndTime: at(13, 0), Status: model.AppointmentStatusCompleted},
		{StartTime: at(9, 0), EndTime: at(9, 30), Status: model.AppointmentStatusCancelled},
	}, nil)

	slots := Slots(Request{
		Window:   Interval{Start: at(11, 0), End: at(14, 0)},
		Duration: 30 * time.Minute,
		Occupied: occupied,
		Now:      at(0, 0),
	})
	assert.Equal(t, []string{"11:00", "11:30", "13:00", "13:30"}, hhmm(slots))
}

func TestSlots_DSTTransitionDay(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)

	week := model.NewWeeklyHours([]*model.WorkingHours{
		{DayOfWeek: int(time.Sunday), StartTime: "01:00", EndTime: "05:00", IsEnabled: true},
	})
	window, ok, err := WorkingWindow(week, 2026, time.March, 29, paris)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 3*time.Hour, window.Duration())

	slots := Slots(Request{Window: window, Duration: 30 * time.Minute, Now: time.Time{}})
	var local []string
	for _, s := range slots {
		local = append(local, s.In(paris).Format("15:04"))
	}
	assert.Equal(t, []string{"01:00", "01:30", "03:00", "03:30", "04:00", "04:30"}, local)
}

func TestSlots_Idempotent(t *testing.T) {
	req := Request{
		Window:   Interval{Start: at(9, 0), End: at(17, 0)},
		Duration: 45 * time.Minute,
		Step:     15 * time.Minute,
		Occupied: []Interval{
			{Start: at(13, 0), End: at(14, 0)},
			{Start: at(10, 10), End: at(10, 20)},
		},
		Now: at(0, 0),
	}
	occupiedBefore := append([]Interval(nil), req.Occupied...)

	first := Slots(req)
	second := Slots(req)
	assert.Equal(t, first, second)
	assert.Equal(t, occupiedBefore, req.Occupied)
}

// bruteForceFree checks a candidate against every raw occupied interval
// without merging.
func bruteForceFree(window, candidate Interval, occupied []Interval, now time.Time) bool {
	if candidate.Start.Before(window.Start) || candidate.End.After(window.End) {
		return false
	}
	if candidate.Start.Before(now) {
		return false
	}
	for _, o := range occupied {
		if candidate.Start.Before(o.End) && o.Start.Before(candidate.End) {
			return false
		}
	}
	return true
}

func TestSlots_RandomizedCrossCheck(t *testing.T) {
	rng := rand.New(rand.NewSource(20261014))

	for iter := 0; iter < 500; iter++ {
		startMin := rng.Intn(12) * 30
		lengthMin := 60 + rng.Intn(12)*15
		window := Interval{
			Start: at(6, 0).Add(time.Duration(startMin) * time.Minute),
		}
		window.End = window.Start.Add(time.Duration(lengthMin) * time.Minute)

		var occupied []Interval
		for n := rng.Intn(6); n > 0; n-- {
			s := window.Start.Add(time.Duration(rng.Intn(lengthMin+60)-30) * time.Minute)
			occupied = append(occupied, Interval{Start: s, End: s.Add(time.Duration(5+rng.Intn(90)) * time.Minute)})
		}
		duration := time.Duration(15+rng.Intn(6)*15) * time.Minute
		step := time.Duration([]int{5, 10, 15, 30}[rng.Intn(4)]) * time.Minute
		now := window.Start.Add(time.Duration(rng.Intn(lengthMin)-lengthMin/2) * time.Minute)

		got := Slots(Request{Window: window, Duration: duration, Step: step, Occupied: occupied, Now: now})

		var want []time.Time
		for s := window.Start; !s.After(window.End); s = s.Add(step) {
			if bruteForceFree(window, Interval{Start: s, End: s.Add(duration)}, occupied, now) {
				want = append(want, s)
			}
		}

		require.Equal(t, want, got, "iteration %d", iter)
		for _, s := range got {
			assert.True(t, Fits(window, Interval{Start: s, End: s.Add(duration)}, occupied, now))
		}
	}
}

func TestMerge(t *testing.T) {
	merged := Merge([]Interval{
		{Start: at(11, 0), End: at(12, 0)},
		{Start: at(9, 0), End: at(10, 0)},
		{Start: at(10, 0), End: at(10, 30)},
		{Start: at(11, 30), End: at(11, 45)},
		{Start: at(15, 0), End: at(15, 0)},
	})
	assert.Equal(t, []Interval{
		{Start: at(9, 0), End: at(10, 30)},
		{Start: at(11, 0), End: at(12, 0)},
	}, merged)
	assert.Nil(t, Merge(nil))
}

func TestFits(t *testing.T) {
	window := Interval{Start: at(9, 0), End: at(17, 0)}
	occupied := []Interval{{Start: at(10, 0), End: at(10, 30)}}
	now := at(8, 0)

	assert.True(t, Fits(window, Interval{Start: at(9, 30), End: at(10, 0)}, occupied, now))
	assert.True(t, Fits(window, Interval{Start: at(10, 30), End: at(11, 0)}, occupied, now))
	assert.True(t, Fits(window, Interval{Start: at(10, 40), End: at(11, 10)}, occupied, now))
	assert.False(t, Fits(window, Interval{Start: at(9, 45), End: at(10, 15)}, occupied, now))
	assert.False(t, Fits(window, Interval{Start: at(16, 45), End: at(17, 15)}, occupied, now))
	assert.False(t, Fits(window, Interval{Start: at(9, 0), End: at(9, 30)}, occupied, at(9, 1)))
}

package availability

import (
	"time"

	"github.com/b2bagadi/Maw3idokom2-sub000/internal/model"
)

// DefaultStep is the spacing between candidate start times. It does not
// depend on the service duration.
const DefaultStep = 30 * time.Minute

// Request describes one day of slot computation. All instants may be in any
// location; comparisons are on absolute time.
type Request struct {
	Window   Interval
	Duration time.Duration
	Step     time.Duration
	Occupied []Interval
	Now      time.Time
}

// WorkingWindow returns the working window for the calendar day (year, month,
// day) in loc. ok is false when the weekday is disabled.
func WorkingWindow(week model.WeeklyHours, year int, month time.Month, day int, loc *time.Location) (Interval, bool, error) {
	weekday := time.Date(year, month, day, 12, 0, 0, 0, loc).Weekday()
	hours := week.For(weekday)
	if !hours.IsEnabled {
		return Interval{}, false, nil
	}
	start, end, err := hours.Bounds()
	if err != nil {
		return Interval{}, false, err
	}
	return Interval{
		Start: start.On(year, month, day, loc),
		End:   end.On(year, month, day, loc),
	}, true, nil
}

// Slots walks the window from its start in Step increments and returns every
// start time whose [start, start+Duration) fits inside the window, misses all
// occupied time and does not begin before Now. The result is chronological.
func Slots(req Request) []time.Time {
	step := req.Step
	if step <= 0 {
		step = DefaultStep
	}
	if req.Duration <= 0 || !req.Window.End.After(req.Window.Start) {
		return nil
	}

	busy := Merge(req.Occupied)
	var slots []time.Time
	j := 0
	for start := req.Window.Start; !start.Add(req.Duration).After(req.Window.End); start = start.Add(step) {
		end := start.Add(req.Duration)
		// busy is sorted and disjoint, so intervals ending at or before start
		// can never overlap a later candidate either.
		for j < len(busy) && !busy[j].End.After(start) {
			j++
		}
		if j < len(busy) && busy[j].Start.Before(end) {
			continue
		}
		if start.Before(req.Now) {
			continue
		}
		slots = append(slots, start)
	}
	return slots
}

// Fits is the single-interval form of the slot predicate used when a
// booking or reschedule is submitted. Alignment to the step grid is not
// required.
func Fits(window, candidate Interval, occupied []Interval, now time.Time) bool {
	if !candidate.End.After(candidate.Start) {
		return false
	}
	if candidate.Start.Before(now) {
		return false
	}
	if !window.Contains(candidate) {
		return false
	}
	for _, o := range occupied {
		if candidate.Overlaps(o) {
			return false
		}
	}
	return true
}

// Package availability computes bookable slots from working hours and
// occupied calendar time. It does no I/O.
package availability

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/b2bagadi/Maw3idokom2-sub000/internal/model"
)

// Interval is the half-open range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// Overlaps reports whether i and o share any instant.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && o.Start.Before(i.End)
}

// Contains reports whether o lies entirely inside i.
func (i Interval) Contains(o Interval) bool {
	return !o.Start.Before(i.Start) && !o.End.After(i.End)
}

// Merge sorts intervals by start and coalesces overlapping or touching ones.
// Empty and inverted intervals are dropped. The input is not modified.
func Merge(intervals []Interval) []Interval {
	sorted := make([]Interval, 0, len(intervals))
	for _, iv := range intervals {
		if iv.End.After(iv.Start) {
			sorted = append(sorted, iv)
		}
	}
	if len(sorted) == 0 {
		return nil
	}
	sort.Slice(sorted, func(a, b int) bool {
		return sorted[a].Start.Before(sorted[b].Start)
	})

	merged := []Interval{sorted[0]}
	for _, iv := range sorted[1:] {
		last := &merged[len(merged)-1]
		if !iv.Start.After(last.End) {
			if iv.End.After(last.End) {
				last.End = iv.End
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}

// OccupiedFrom converts slot-holding appointments into intervals. The
// appointment with id exclude, if any, is skipped so a reschedule does not
// collide with itself.
func OccupiedFrom(appointments []*model.Appointment, exclude *uuid.UUID) []Interval {
	out := make([]Interval, 0, len(appointments))
	for _, a := range appointments {
		if !a.Status.HoldsSlot() {
			continue
		}
		if exclude != nil && a.ID == *exclude {
			continue
		}
		out = append(out, Interval{Start: a.StartTime, End: a.EndTime})
	}
	return out
}

package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/b2bagadi/Maw3idokom2-sub000/pkg/errors"
)

// WorkingHours is one weekday of a weekly schedule. StaffID is nil for the
// business-level default week.
type WorkingHours struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	BusinessID uuid.UUID  `db:"business_id" json:"business_id"`
	StaffID    *uuid.UUID `db:"staff_id" json:"staff_id,omitempty"`
	DayOfWeek  int        `db:"day_of_week" json:"day_of_week"`
	StartTime  string     `db:"start_time" json:"start_time"`
	EndTime    string     `db:"end_time" json:"end_time"`
	IsEnabled  bool       `db:"is_enabled" json:"is_enabled"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}

// ClockTime is a wall-clock time of day.
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClock parses a strict "HH:MM" value.
func ParseClock(s string) (ClockTime, error) {
	if len(s) != 5 || s[2] != ':' {
		return ClockTime{}, fmt.Errorf("expected HH:MM, got %q", s)
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return ClockTime{}, fmt.Errorf("expected HH:MM, got %q", s)
	}
	return ClockTime{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (c ClockTime) Minutes() int {
	return c.Hour*60 + c.Minute
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// On returns the instant this clock time falls on for the given calendar day.
func (c ClockTime) On(year int, month time.Month, day int, loc *time.Location) time.Time {
	return time.Date(year, month, day, c.Hour, c.Minute, 0, 0, loc)
}

// Bounds parses and validates the start and end of the row.
func (w WorkingHours) Bounds() (ClockTime, ClockTime, error) {
	start, err := ParseClock(w.StartTime)
	if err != nil {
		return ClockTime{}, ClockTime{}, apperrors.NewInvalidWorkingHours("invalid start time", err)
	}
	end, err := ParseClock(w.EndTime)
	if err != nil {
		return ClockTime{}, ClockTime{}, apperrors.NewInvalidWorkingHours("invalid end time", err)
	}
	if end.Minutes() <= start.Minutes() {
		return ClockTime{}, ClockTime{}, apperrors.NewInvalidWorkingHours(
			fmt.Sprintf("end time %s must be after start time %s", w.EndTime, w.StartTime), nil)
	}
	return start, end, nil
}

// Validate checks the row shape. A disabled row may leave both times empty.
func (w WorkingHours) Validate() error {
	if w.DayOfWeek < 0 || w.DayOfWeek > 6 {
		return apperrors.NewInvalidWorkingHours(fmt.Sprintf("day of week %d out of range 0-6", w.DayOfWeek), nil)
	}
	if !w.IsEnabled && w.StartTime == "" && w.EndTime == "" {
		return nil
	}
	_, _, err := w.Bounds()
	return err
}

// WeeklyHours is indexed by time.Weekday (Sunday = 0).
type WeeklyHours [7]WorkingHours

// NewWeeklyHours builds a full week from stored rows. Missing weekdays are
// disabled.
func NewWeeklyHours(rows []*WorkingHours) WeeklyHours {
	var week WeeklyHours
	for i := range week {
		week[i] = WorkingHours{DayOfWeek: i}
	}
	for _, r := range rows {
		if r.DayOfWeek < 0 || r.DayOfWeek > 6 {
			continue
		}
		week[r.DayOfWeek] = *r
	}
	return week
}

func (w WeeklyHours) For(day time.Weekday) WorkingHours {
	return w[int(day)]
}

// ValidateWeek checks every row and rejects duplicate weekdays.
func ValidateWeek(rows []*WorkingHours) error {
	seen := make(map[int]bool, len(rows))
	for _, r := range rows {
		if r == nil {
			return apperrors.NewInvalidWorkingHours("empty working hours entry", nil)
		}
		if err := r.Validate(); err != nil {
			return err
		}
		if seen[r.DayOfWeek] {
			return apperrors.NewInvalidWorkingHours(fmt.Sprintf("duplicate entry for day %d", r.DayOfWeek), nil)
		}
		seen[r.DayOfWeek] = true
	}
	return nil
}

type SaveWorkingHoursRequest struct {
	Days []*WorkingHours `json:"days" binding:"required"`
}

package domain

import (
	"fmt"
	"sort"
	"time"

	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// Service is a bookable service of a business
type Service struct {
	ID              int64
	BusinessID      int64
	Name            string
	DurationMinutes int
	Price           float64
	IsActive        bool
}

// Duration returns the service duration
func (s *Service) Duration() time.Duration {
	return time.Duration(s.DurationMinutes) * time.Minute
}

// TimeRange is a half-open time-of-day range [Start, End)
type TimeRange struct {
	Start types.TimeString
	End   types.TimeString
}

// Validate checks both bounds and their order
func (r TimeRange) Validate() error {
	if err := r.Start.Validate(); err != nil {
		return err
	}
	if err := r.End.Validate(); err != nil {
		return err
	}
	if !r.Start.IsBefore(r.End) {
		return fmt.Errorf("%w: %s-%s", ErrInvalidTimeRange, r.Start, r.End)
	}
	return nil
}

// On resolves the range to an interval on the given local date
func (r TimeRange) On(day time.Time, loc *time.Location) Interval {
	return Interval{Start: r.Start.On(day, loc), End: r.End.On(day, loc)}
}

// ScheduleType is the kind of a per-date schedule entry
type ScheduleType string

const (
	ScheduleWork   ScheduleType = "work"
	ScheduleBreak  ScheduleType = "break"
	ScheduleDayOff ScheduleType = "day_off"
)

// ScheduleEntry overrides the weekly template for a single date
type ScheduleEntry struct {
	Date  time.Time // only the calendar date is used
	Type  ScheduleType
	Range TimeRange // empty for day_off
}

// StaffMember is a person who performs services
type StaffMember struct {
	ID         int64
	BusinessID int64
	FullName   string
	Timezone   string
	IsActive   bool

	// Weekly template: weekday -> ordered working ranges (split shifts allowed)
	Weekly map[time.Weekday][]TimeRange
	// Per-date overrides
	Overrides []ScheduleEntry
}

// Location loads the staff member's timezone, falling back to DefaultTimezone
func (s *StaffMember) Location() (*time.Location, error) {
	name := s.Timezone
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidTimezone, name, err)
	}
	return loc, nil
}

// DaySchedule is the resolved working time of a staff member on one local date
type DaySchedule struct {
	Work   []Interval // ordered by start
	Breaks []Interval
}

// IsEmpty returns true when no time is worked that day
func (d DaySchedule) IsEmpty() bool {
	return len(d.Work) == 0
}

// Contains reports whether candidate fits entirely inside one working interval
func (d DaySchedule) Contains(candidate Interval) bool {
	for _, w := range d.Work {
		if w.Contains(candidate) {
			return true
		}
	}
	return false
}

// DaySchedule resolves working intervals for the calendar date of day in loc.
// A day_off entry closes the date. Work entries for the date replace the weekly template.
// Break entries are returned separately and block time inside the working intervals.
func (s *StaffMember) DaySchedule(day time.Time, loc *time.Location) DaySchedule {
	y, m, d := day.Date()
	date := time.Date(y, m, d, 0, 0, 0, 0, loc)

	var (
		workRanges  []TimeRange
		breakRanges []TimeRange
	)
	for _, entry := range s.Overrides {
		ey, em, ed := entry.Date.Date()
		if ey != y || em != m || ed != d {
			continue
		}
		switch entry.Type {
		case ScheduleDayOff:
			return DaySchedule{}
		case ScheduleWork:
			workRanges = append(workRanges, entry.Range)
		case ScheduleBreak:
			breakRanges = append(breakRanges, entry.Range)
		}
	}

	if len(workRanges) == 0 {
		workRanges = s.Weekly[date.Weekday()]
	}

	schedule := DaySchedule{
		Work:   toIntervals(workRanges, date, loc),
		Breaks: toIntervals(breakRanges, date, loc),
	}
	return schedule
}

func toIntervals(ranges []TimeRange, date time.Time, loc *time.Location) []Interval {
	if len(ranges) == 0 {
		return nil
	}

	result := make([]Interval, 0, len(ranges))
	for _, r := range ranges {
		if r.Validate() != nil {
			continue
		}
		result = append(result, r.On(date, loc))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Start.Before(result[j].Start)
	})
	return result
}

// LocalDayBounds returns [00:00, next 00:00) of the calendar date of day in loc
func LocalDayBounds(day time.Time, loc *time.Location) (time.Time, time.Time) {
	y, m, d := day.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	return start, time.Date(y, m, d+1, 0, 0, 0, 0, loc)
}

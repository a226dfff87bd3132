package domain

import "time"

// Interval is a half-open time range [Start, End)
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two half-open intervals share any instant.
// Touching intervals (a.End == b.Start) do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// Contains reports whether other lies entirely within i
func (i Interval) Contains(other Interval) bool {
	return !other.Start.Before(i.Start) && !other.End.After(i.End)
}

// Duration returns the interval length
func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// Slot is a bookable time range offered to a client
type Slot struct {
	Start time.Time
	End   time.Time
}

// Interval returns the slot as an interval
func (s Slot) Interval() Interval {
	return Interval{Start: s.Start, End: s.End}
}

// In returns the slot expressed in the given location
func (s Slot) In(loc *time.Location) Slot {
	return Slot{Start: s.Start.In(loc), End: s.End.In(loc)}
}

// WithinLocalDay reports whether the interval starts and ends on the same calendar day in loc.
// An interval ending exactly at the following midnight still belongs to its start day.
func (i Interval) WithinLocalDay(loc *time.Location) bool {
	start := i.Start.In(loc)
	last := i.End.Add(-time.Nanosecond).In(loc)
	return start.Year() == last.Year() && start.YearDay() == last.YearDay()
}

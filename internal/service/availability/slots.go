package availability

import (
	"iter"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// generateSlots перебирает кандидатов с шагом step от начала каждого рабочего интервала,
// пока кандидат длиной duration помещается в интервал. Кандидаты, пересекающиеся
// с busy, пропускаются. Последовательность ленивая и идет по возрастанию.
func generateSlots(work []domain.Interval, duration, step time.Duration, busy []domain.Interval) iter.Seq[domain.Slot] {
	return func(yield func(domain.Slot) bool) {
		if duration <= 0 || step <= 0 {
			return
		}

		var last time.Time
		for _, w := range work {
			for start := w.Start; !start.Add(duration).After(w.End); start = start.Add(step) {
				// Пересекающиеся рабочие интервалы не должны давать дубликатов
				if !last.IsZero() && !start.After(last) {
					continue
				}

				candidate := domain.Interval{Start: start, End: start.Add(duration)}
				if overlapsAny(candidate, busy) {
					continue
				}

				last = start
				if !yield(domain.Slot{Start: candidate.Start, End: candidate.End}) {
					return
				}
			}
		}
	}
}

func overlapsAny(candidate domain.Interval, busy []domain.Interval) bool {
	for _, b := range busy {
		if candidate.Overlaps(b) {
			return true
		}
	}
	return false
}

// checkPlacement применяет то же правило, что и generateSlots, к одному интервалу
func checkPlacement(schedule domain.DaySchedule, candidate domain.Interval, active []*domain.Booking, excludeID int64) error {
	if !candidate.Start.Before(candidate.End) {
		return ErrOutsideWorkingHours
	}
	if !schedule.Contains(candidate) {
		return ErrOutsideWorkingHours
	}
	if overlapsAny(candidate, schedule.Breaks) {
		return ErrOutsideWorkingHours
	}

	for _, b := range active {
		if b.ID == excludeID || !b.IsActive() {
			continue
		}
		if candidate.Overlaps(b.Interval()) {
			return ErrSlotOverlap
		}
	}
	return nil
}

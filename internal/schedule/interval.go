// Package schedule содержит арифметику интервалов для расчёта свободного времени тренера.
package schedule

import "time"

// Interval полуоткрытый промежуток [Start, End)
type Interval struct {
	Start time.Time
	End   time.Time
}

// NewInterval создаёт интервал
func NewInterval(start, end time.Time) Interval {
	return Interval{Start: start, End: end}
}

// Duration длина интервала, ноль для пустого или перевёрнутого
func (i Interval) Duration() time.Duration {
	if !i.End.After(i.Start) {
		return 0
	}
	return i.End.Sub(i.Start)
}

// IsEmpty проверяет, что в интервале нет ни одного момента
func (i Interval) IsEmpty() bool {
	return !i.End.After(i.Start)
}

// Overlaps проверяет пересечение. Интервалы, касающиеся только границей, не пересекаются.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && i.End.After(other.Start)
}

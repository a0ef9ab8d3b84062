package schedule

// Subtract вычитает занятые интервалы из свободных.
// Занятые интервалы применяются по очереди: каждый свободный интервал,
// пересекающийся с занятым, заменяется остатками до и после него.
func Subtract(free, booked []Interval) []Interval {
	current := make([]Interval, len(free))
	copy(current, free)

	for _, b := range booked {
		next := make([]Interval, 0, len(current)+1)
		for _, f := range current {
			if !f.Overlaps(b) {
				next = append(next, f)
				continue
			}
			if before := (Interval{Start: f.Start, End: b.Start}); !before.IsEmpty() {
				next = append(next, before)
			}
			if after := (Interval{Start: b.End, End: f.End}); !after.IsEmpty() {
				next = append(next, after)
			}
		}
		current = next
	}

	return current
}

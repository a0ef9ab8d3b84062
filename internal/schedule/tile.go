package schedule

import "time"

// Tile раскладывает занятия длительностью d встык внутри каждого свободного интервала.
// Хвост короче d не предлагается.
func Tile(free []Interval, d time.Duration) []time.Time {
	if d <= 0 {
		return nil
	}

	var starts []time.Time
	for _, f := range free {
		for cur := f.Start; !cur.Add(d).After(f.End); cur = cur.Add(d) {
			starts = append(starts, cur)
		}
	}
	return starts
}

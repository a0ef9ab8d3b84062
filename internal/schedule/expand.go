package schedule

import (
	"sort"
	"time"

	"github.com/Freeeeeet/coach_booking/internal/model"
)

// Expand превращает шаблоны, совпадающие с днём недели weekday, в интервалы на дату date.
// Время шаблонов трактуется как локальное в loc, поэтому переходы на летнее время
// учитываются базой часовых поясов.
func Expand(templates []*model.AvailabilityTemplate, date time.Time, weekday int, loc *time.Location) []Interval {
	var intervals []Interval
	for _, tpl := range templates {
		if tpl == nil || tpl.DayOfWeek != weekday {
			continue
		}
		if tpl.StartTime >= tpl.EndTime {
			continue
		}

		intervals = append(intervals, Interval{
			Start: tpl.StartTime.On(date, loc),
			End:   tpl.EndTime.On(date, loc),
		})
	}

	sort.Slice(intervals, func(i, j int) bool {
		return intervals[i].Start.Before(intervals[j].Start)
	})

	return intervals
}

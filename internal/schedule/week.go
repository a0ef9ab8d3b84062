package schedule

import "time"

// ISOWeekday номер дня недели: 1 = понедельник, 7 = воскресенье
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// StartOfDay полночь календарного дня t в loc
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// WeekStart полночь понедельника недели, в которую попадает t (сам понедельник включительно)
func WeekStart(t time.Time, loc *time.Location) time.Time {
	day := StartOfDay(t, loc)
	return day.AddDate(0, 0, -(ISOWeekday(day) - 1))
}

// NextMonday полночь ближайшего понедельника строго после календарного дня t.
// Для понедельника это понедельник следующей недели.
func NextMonday(t time.Time, loc *time.Location) time.Time {
	day := StartOfDay(t, loc)
	return day.AddDate(0, 0, 8-ISOWeekday(day))
}

// DatesBetween календарные дни в [from, to)
func DatesBetween(from, to time.Time) []time.Time {
	var days []time.Time
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

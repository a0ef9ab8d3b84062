package model

// ScheduleEntry подтверждённая тренировка в расписании
type ScheduleEntry struct {
	BookingID int64     `json:"booking_id"`
	CoachID   int64     `json:"coach_id"`
	MemberID  int64     `json:"member_id"`
	DayOfWeek int       `json:"day_of_week"`
	Date      string    `json:"date"`
	StartTime ClockTime `json:"start_time"`
	EndTime   ClockTime `json:"end_time"`
	Message   string    `json:"message"`
}

// ScheduleView расписание недели списком и по дням недели
type ScheduleView struct {
	ListView     []*ScheduleEntry         `json:"list_view"`
	CalendarView map[int][]*ScheduleEntry `json:"calendar_view"`
}

// WeeklySchedule расписание текущей и следующей недели
type WeeklySchedule struct {
	CurrentWeek ScheduleView `json:"current_week"`
	NextWeek    ScheduleView `json:"next_week"`
}

// Page страница выборки
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Size  int `json:"size"`
}

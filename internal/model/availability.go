package model

import "time"

// AvailabilityTemplate еженедельный блок, в который тренер готов проводить тренировки
type AvailabilityTemplate struct {
	ID        int64     `json:"id"`
	CoachID   int64     `json:"coach_id"`
	DayOfWeek int       `json:"day_of_week"` // 1 = понедельник, 7 = воскресенье
	StartTime ClockTime `json:"start_time"`
	EndTime   ClockTime `json:"end_time"`
	CreatedAt time.Time `json:"created_at"`
}

// TemplateInput данные для создания или изменения шаблона
type TemplateInput struct {
	DayOfWeek int       `json:"day_of_week" validate:"required,min=1,max=7"`
	StartTime ClockTime `json:"start_time"`
	EndTime   ClockTime `json:"end_time"`
}

// TemplateView шаблоны списком и по дням недели
type TemplateView struct {
	ListView     []*AvailabilityTemplate         `json:"list_view"`
	CalendarView map[int][]*AvailabilityTemplate `json:"calendar_view"`
}

// BookableSlot время, на которое можно записаться
type BookableSlot struct {
	StartTime ClockTime `json:"start_time"`
	EndTime   ClockTime `json:"end_time"`
	Date      string    `json:"date"` // 2006-01-02
}

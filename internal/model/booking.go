package model

import "time"

// Booking заявка участника на индивидуальную тренировку у тренера
type Booking struct {
	ID           int64         `json:"id"`
	CoachID      int64         `json:"coach_id"`
	MemberID     int64         `json:"member_id"`
	StartTime    time.Time     `json:"start_time"`
	EndTime      time.Time     `json:"end_time"`
	Status       RequestStatus `json:"status"`
	Message      string        `json:"message"`
	Reply        string        `json:"reply"`
	RequestTime  time.Time     `json:"request_time"`
	ResponseTime *time.Time    `json:"response_time"` // nil пока тренер не ответил
	CancelTime   *time.Time    `json:"cancel_time"`
	CoachIsRead  bool          `json:"coach_is_read"`
	MemberIsRead bool          `json:"member_is_read"`
	IsRecorded   bool          `json:"is_recorded"` // тренировка занесена в историю
}

// IsPending проверяет, ждёт ли заявка ответа
func (b *Booking) IsPending() bool {
	return b.Status == StatusPending
}

// IsAccepted проверяет, подтверждена ли тренировка
func (b *Booking) IsAccepted() bool {
	return b.Status == StatusAccept
}

// BelongsTo проверяет, является ли пользователь стороной заявки в данной роли
func (b *Booking) BelongsTo(party Party) bool {
	switch party.Role {
	case RoleMember:
		return b.MemberID == party.UserID
	case RoleCoach:
		return b.CoachID == party.UserID
	default:
		return false
	}
}

// BookingRequest данные, которые участник отправляет при записи
type BookingRequest struct {
	CoachID   int64      `json:"coach_id" validate:"required,gt=0"`
	DayOfWeek int        `json:"day_of_week" validate:"required,min=1,max=7"`
	StartTime *ClockTime `json:"start_time" validate:"required"` // nil, если поле не передано
	EndTime   *ClockTime `json:"end_time" validate:"required"`
	Message   string     `json:"message" validate:"max=500"`
}

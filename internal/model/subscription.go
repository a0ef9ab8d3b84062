package model

import "time"

// Subscription заявка участника на закрепление за тренером.
// Без принятой подписки записываться к тренеру нельзя.
type Subscription struct {
	ID           int64         `json:"id"`
	MemberID     int64         `json:"member_id"`
	CoachID      int64         `json:"coach_id"`
	Message      string        `json:"message"`
	Status       RequestStatus `json:"status"`
	Reply        string        `json:"reply"`
	RequestTime  time.Time     `json:"request_time"`
	ResponseTime *time.Time    `json:"response_time"`
	CancelTime   *time.Time    `json:"cancel_time"`
	CoachIsRead  bool          `json:"coach_is_read"`
	MemberIsRead bool          `json:"member_is_read"`
}

// IsPending проверяет, ждёт ли заявка ответа
func (s *Subscription) IsPending() bool {
	return s.Status == StatusPending
}

// BelongsTo проверяет, является ли пользователь стороной подписки в данной роли
func (s *Subscription) BelongsTo(party Party) bool {
	switch party.Role {
	case RoleMember:
		return s.MemberID == party.UserID
	case RoleCoach:
		return s.CoachID == party.UserID
	default:
		return false
	}
}

// SubscriptionRequest данные заявки на подписку
type SubscriptionRequest struct {
	CoachID int64  `json:"coach_id" validate:"required,gt=0"`
	Message string `json:"message" validate:"max=500"`
}

// SubscribedCoach тренер, на которого подписан участник
type SubscribedCoach struct {
	CoachID        int64     `json:"coach_id"`
	SubscriptionID int64     `json:"subscription_id"`
	Since          time.Time `json:"since"`
}

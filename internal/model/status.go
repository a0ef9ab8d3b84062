package model

import "fmt"

// RequestStatus статус заявки на тренировку или подписку
type RequestStatus string

const (
	StatusPending RequestStatus = "pending" // Ожидает ответа тренера
	StatusAccept  RequestStatus = "accept"  // Принята тренером
	StatusReject  RequestStatus = "reject"  // Отклонена тренером (вручную или автоматически)
	StatusCancel  RequestStatus = "cancel"  // Отменена участником
	StatusDelete  RequestStatus = "delete"  // Мягко удалена, скрыта из всех выборок
)

// ParseRequestStatus разбирает статус из строки запроса
func ParseRequestStatus(s string) (RequestStatus, error) {
	switch st := RequestStatus(s); st {
	case StatusPending, StatusAccept, StatusReject, StatusCancel, StatusDelete:
		return st, nil
	default:
		return "", fmt.Errorf("unknown request status %q", s)
	}
}

// IsDecision проверяет, что статус может быть выставлен тренером
func (s RequestStatus) IsDecision() bool {
	return s == StatusAccept || s == StatusReject
}

// Role сторона заявки
type Role string

const (
	RoleMember Role = "member"
	RoleCoach  Role = "coach"
)

// ParseRole разбирает роль из заголовка или параметра
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleMember, RoleCoach:
		return r, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Party пользователь в конкретной роли
type Party struct {
	UserID int64
	Role   Role
}

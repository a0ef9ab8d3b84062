package service

import (
	"context"
	"time"

	"github.com/Freeeeeet/coach_booking/internal/model"
)

// Методы Get* возвращают nil, nil, если запись не найдена.

type TemplateStore interface {
	ListByCoach(ctx context.Context, coachID int64) ([]*model.AvailabilityTemplate, error)
	GetByID(ctx context.Context, id int64) (*model.AvailabilityTemplate, error)
	// HasOverlap ищет шаблон того же тренера и дня, пересекающийся с [start, end).
	// Шаблон excludeID не учитывается (0 - учитывать все).
	HasOverlap(ctx context.Context, coachID int64, dayOfWeek int, start, end model.ClockTime, excludeID int64) (bool, error)
	Create(ctx context.Context, tpl *model.AvailabilityTemplate) error
	Update(ctx context.Context, tpl *model.AvailabilityTemplate) error
	Delete(ctx context.Context, id int64) error
}

type BookingStore interface {
	Create(ctx context.Context, booking *model.Booking) error
	GetByID(ctx context.Context, id int64) (*model.Booking, error)
	// GetForUpdate блокирует строку до конца транзакции
	GetForUpdate(ctx context.Context, id int64) (*model.Booking, error)
	// UpdateState сохраняет статус, ответ, отметки времени и флаги прочтения
	UpdateState(ctx context.Context, booking *model.Booking) error
	Delete(ctx context.Context, id int64) error

	MemberHasOverlap(ctx context.Context, memberID int64, status model.RequestStatus, start, end time.Time) (bool, error)
	// LockCoachSlot неудалённые заявки тренера, пересекающиеся с [start, end), кроме excludeID.
	// Строки блокируются до конца транзакции.
	LockCoachSlot(ctx context.Context, coachID int64, start, end time.Time, excludeID int64) ([]*model.Booking, error)
	// ListAccepted подтверждённые тренировки стороны, пересекающиеся с [from, to)
	ListAccepted(ctx context.Context, party model.Party, from, to time.Time) ([]*model.Booking, error)

	MarkRead(ctx context.Context, id int64, role model.Role) error
	CountUnread(ctx context.Context, party model.Party) (int, error)
	// ListByParty исключает удалённые, сначала непрочитанные, затем новые
	ListByParty(ctx context.Context, party model.Party, statuses []model.RequestStatus, limit, offset int) ([]*model.Booking, int, error)

	ListUnrecorded(ctx context.Context, coachID int64, now time.Time, limit, offset int) ([]*model.Booking, int, error)
	CountUnrecorded(ctx context.Context, coachID int64, now time.Time) (int, error)
}

type SubscriptionStore interface {
	Create(ctx context.Context, sub *model.Subscription) error
	GetByID(ctx context.Context, id int64) (*model.Subscription, error)
	GetForUpdate(ctx context.Context, id int64) (*model.Subscription, error)
	UpdateState(ctx context.Context, sub *model.Subscription) error

	// LatestRejected последний отказ по времени ответа
	LatestRejected(ctx context.Context, memberID, coachID int64) (*model.Subscription, error)
	ExistsWithStatus(ctx context.Context, memberID, coachID int64, statuses ...model.RequestStatus) (bool, error)
	// FindActive принятая или ожидающая подписка с блокировкой строки
	FindActive(ctx context.Context, memberID, coachID int64) (*model.Subscription, error)

	MarkRead(ctx context.Context, id int64, role model.Role) error
	CountUnread(ctx context.Context, party model.Party) (int, error)
	ListByParty(ctx context.Context, party model.Party, statuses []model.RequestStatus, limit, offset int) ([]*model.Subscription, int, error)
	ListAcceptedByMember(ctx context.Context, memberID int64) ([]*model.Subscription, error)
}

type OutboxStore interface {
	Add(ctx context.Context, event *model.OutboxEvent) error
}

// Transactor выполняет fn в одной транзакции
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Locker распределённая блокировка
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, string, error)
	Unlock(ctx context.Context, key, token string) error
}

// Package memstore хранит данные в памяти процесса. Используется в тестах сервисов и HTTP слоя.
package memstore

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/Freeeeeet/coach_booking/internal/model"
	"github.com/google/uuid"
)

type txKey struct{}

// Store общее состояние всех in-memory репозиториев
type Store struct {
	mu sync.Mutex

	seq       int64
	templates map[int64]*model.AvailabilityTemplate
	bookings  map[int64]*model.Booking
	subs      map[int64]*model.Subscription
	events    []*model.OutboxEvent
	contacts  map[int64]int64
	locks     map[string]string
}

func New() *Store {
	return &Store{
		templates: make(map[int64]*model.AvailabilityTemplate),
		bookings:  make(map[int64]*model.Booking),
		subs:      make(map[int64]*model.Subscription),
		contacts:  make(map[int64]int64),
		locks:     make(map[string]string),
	}
}

func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

type snapshot struct {
	seq       int64
	templates map[int64]*model.AvailabilityTemplate
	bookings  map[int64]*model.Booking
	subs      map[int64]*model.Subscription
	events    []*model.OutboxEvent
}

func (s *Store) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := snapshot{
		seq:       s.seq,
		templates: make(map[int64]*model.AvailabilityTemplate, len(s.templates)),
		bookings:  make(map[int64]*model.Booking, len(s.bookings)),
		subs:      make(map[int64]*model.Subscription, len(s.subs)),
		events:    slices.Clone(s.events),
	}
	for id, t := range s.templates {
		c := *t
		snap.templates[id] = &c
	}
	for id, b := range s.bookings {
		snap.bookings[id] = copyBooking(b)
	}
	for id, sub := range s.subs {
		snap.subs[id] = copySubscription(sub)
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq = snap.seq
	s.templates = snap.templates
	s.bookings = snap.bookings
	s.subs = snap.subs
	s.events = snap.events
}

// WithinTx выполняет fn и откатывает изменения, если fn вернула ошибку
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// TryLock блокировка по ключу без срока жизни
func (s *Store) TryLock(_ context.Context, key string, _ time.Duration) (bool, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, held := s.locks[key]; held {
		return false, "", nil
	}
	token := uuid.NewString()
	s.locks[key] = token
	return true, token, nil
}

func (s *Store) Unlock(_ context.Context, key, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.locks[key] == token {
		delete(s.locks, key)
	}
	return nil
}

// HoldLock занимает ключ, как будто его держит другой процесс
func (s *Store) HoldLock(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locks[key] = "held"
}

// Events отправленные и неотправленные события outbox
func (s *Store) Events() []*model.OutboxEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.events)
}

// AllBookings все заявки на тренировки по ID
func (s *Store) AllBookings() map[int64]*model.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[int64]*model.Booking, len(s.bookings))
	for id, b := range s.bookings {
		out[id] = copyBooking(b)
	}
	return out
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func copyBooking(b *model.Booking) *model.Booking {
	c := *b
	c.ResponseTime = copyTime(b.ResponseTime)
	c.CancelTime = copyTime(b.CancelTime)
	return &c
}

func copySubscription(s *model.Subscription) *model.Subscription {
	c := *s
	c.ResponseTime = copyTime(s.ResponseTime)
	c.CancelTime = copyTime(s.CancelTime)
	return &c
}

func partyOwns(p model.Party, memberID, coachID int64) bool {
	switch p.Role {
	case model.RoleMember:
		return memberID == p.UserID
	case model.RoleCoach:
		return coachID == p.UserID
	default:
		return false
	}
}

func partyRead(role model.Role, memberRead, coachRead bool) bool {
	if role == model.RoleCoach {
		return coachRead
	}
	return memberRead
}

func statusWanted(status model.RequestStatus, statuses []model.RequestStatus) bool {
	return len(statuses) == 0 || slices.Contains(statuses, status)
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if limit <= 0 || end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

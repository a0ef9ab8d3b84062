package memstore

import (
	"context"
	"slices"
	"time"

	"github.com/Freeeeeet/coach_booking/internal/model"
)

type Outbox struct{ s *Store }

func (s *Store) Outbox() *Outbox { return &Outbox{s: s} }

func (r *Outbox) Add(_ context.Context, evt *model.OutboxEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	evt.ID = r.s.nextID()
	if evt.CreatedAt.IsZero() {
		evt.CreatedAt = time.Now()
	}
	c := *evt
	r.s.events = append(r.s.events, &c)
	return nil
}

func (r *Outbox) FetchUnpublished(_ context.Context, limit int) ([]*model.OutboxEvent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*model.OutboxEvent
	for _, evt := range r.s.events {
		if evt.PublishedAt != nil {
			continue
		}
		c := *evt
		out = append(out, &c)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *Outbox) MarkPublished(_ context.Context, ids []int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := time.Now()
	for _, evt := range r.s.events {
		if slices.Contains(ids, evt.ID) {
			evt.PublishedAt = &now
		}
	}
	return nil
}

type Contacts struct{ s *Store }

func (s *Store) Contacts() *Contacts { return &Contacts{s: s} }

func (r *Contacts) TelegramChatID(_ context.Context, userID int64) (int64, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	chatID, ok := r.s.contacts[userID]
	return chatID, ok, nil
}

func (r *Contacts) SetTelegramChatID(_ context.Context, userID, chatID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.contacts[userID] = chatID
	return nil
}

package memstore

import (
	"context"
	"fmt"
	"sort"

	"github.com/Freeeeeet/coach_booking/internal/model"
)

type Templates struct{ s *Store }

func (s *Store) Templates() *Templates { return &Templates{s: s} }

func (r *Templates) ListByCoach(_ context.Context, coachID int64) ([]*model.AvailabilityTemplate, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*model.AvailabilityTemplate
	for _, t := range r.s.templates {
		if t.CoachID == coachID {
			c := *t
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DayOfWeek != out[j].DayOfWeek {
			return out[i].DayOfWeek < out[j].DayOfWeek
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out, nil
}

func (r *Templates) GetByID(_ context.Context, id int64) (*model.AvailabilityTemplate, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.templates[id]
	if !ok {
		return nil, nil
	}
	c := *t
	return &c, nil
}

func (r *Templates) HasOverlap(_ context.Context, coachID int64, dayOfWeek int, start, end model.ClockTime, excludeID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, t := range r.s.templates {
		if t.ID == excludeID || t.CoachID != coachID || t.DayOfWeek != dayOfWeek {
			continue
		}
		if t.StartTime < end && t.EndTime > start {
			return true, nil
		}
	}
	return false, nil
}

func (r *Templates) Create(_ context.Context, tpl *model.AvailabilityTemplate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	tpl.ID = r.s.nextID()
	c := *tpl
	r.s.templates[tpl.ID] = &c
	return nil
}

func (r *Templates) Update(_ context.Context, tpl *model.AvailabilityTemplate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.templates[tpl.ID]; !ok {
		return fmt.Errorf("template %d not found", tpl.ID)
	}
	c := *tpl
	r.s.templates[tpl.ID] = &c
	return nil
}

func (r *Templates) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.templates, id)
	return nil
}

package memstore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Freeeeeet/coach_booking/internal/model"
)

type Bookings struct{ s *Store }

func (s *Store) Bookings() *Bookings { return &Bookings{s: s} }

func (r *Bookings) filter(keep func(b *model.Booking) bool) []*model.Booking {
	var out []*model.Booking
	for _, b := range r.s.bookings {
		if keep(b) {
			out = append(out, copyBooking(b))
		}
	}
	return out
}

func (r *Bookings) Create(_ context.Context, b *model.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b.ID = r.s.nextID()
	r.s.bookings[b.ID] = copyBooking(b)
	return nil
}

func (r *Bookings) GetByID(_ context.Context, id int64) (*model.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b, ok := r.s.bookings[id]
	if !ok {
		return nil, nil
	}
	return copyBooking(b), nil
}

func (r *Bookings) GetForUpdate(ctx context.Context, id int64) (*model.Booking, error) {
	return r.GetByID(ctx, id)
}

func (r *Bookings) UpdateState(_ context.Context, b *model.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.bookings[b.ID]; !ok {
		return fmt.Errorf("booking %d not found", b.ID)
	}
	r.s.bookings[b.ID] = copyBooking(b)
	return nil
}

func (r *Bookings) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.bookings, id)
	return nil
}

func (r *Bookings) MemberHasOverlap(_ context.Context, memberID int64, status model.RequestStatus, start, end time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, b := range r.s.bookings {
		if b.MemberID == memberID && b.Status == status && b.StartTime.Before(end) && b.EndTime.After(start) {
			return true, nil
		}
	}
	return false, nil
}

func (r *Bookings) LockCoachSlot(_ context.Context, coachID int64, start, end time.Time, excludeID int64) ([]*model.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := r.filter(func(b *model.Booking) bool {
		return b.ID != excludeID && b.CoachID == coachID && b.Status != model.StatusDelete &&
			b.StartTime.Before(end) && b.EndTime.After(start)
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *Bookings) ListAccepted(_ context.Context, party model.Party, from, to time.Time) ([]*model.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := r.filter(func(b *model.Booking) bool {
		return b.IsAccepted() && b.BelongsTo(party) && b.StartTime.Before(to) && b.EndTime.After(from)
	})
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (r *Bookings) MarkRead(_ context.Context, id int64, role model.Role) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b, ok := r.s.bookings[id]
	if !ok {
		return nil
	}
	switch role {
	case model.RoleMember:
		b.MemberIsRead = true
	case model.RoleCoach:
		b.CoachIsRead = true
	default:
		return fmt.Errorf("unknown role %q", role)
	}
	return nil
}

func (r *Bookings) CountUnread(_ context.Context, party model.Party) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n := 0
	for _, b := range r.s.bookings {
		if b.Status != model.StatusDelete && partyOwns(party, b.MemberID, b.CoachID) &&
			!partyRead(party.Role, b.MemberIsRead, b.CoachIsRead) {
			n++
		}
	}
	return n, nil
}

func (r *Bookings) ListByParty(_ context.Context, party model.Party, statuses []model.RequestStatus, limit, offset int) ([]*model.Booking, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := r.filter(func(b *model.Booking) bool {
		return b.Status != model.StatusDelete && partyOwns(party, b.MemberID, b.CoachID) && statusWanted(b.Status, statuses)
	})
	sort.Slice(out, func(i, j int) bool {
		ri := partyRead(party.Role, out[i].MemberIsRead, out[i].CoachIsRead)
		rj := partyRead(party.Role, out[j].MemberIsRead, out[j].CoachIsRead)
		if ri != rj {
			return !ri
		}
		if !out[i].RequestTime.Equal(out[j].RequestTime) {
			return out[i].RequestTime.After(out[j].RequestTime)
		}
		return out[i].ID > out[j].ID
	})
	return page(out, limit, offset), len(out), nil
}

func (r *Bookings) unrecorded(coachID int64, now time.Time) []*model.Booking {
	return r.filter(func(b *model.Booking) bool {
		return b.CoachID == coachID && b.IsAccepted() && !b.IsRecorded && !b.EndTime.After(now)
	})
}

func (r *Bookings) ListUnrecorded(_ context.Context, coachID int64, now time.Time, limit, offset int) ([]*model.Booking, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := r.unrecorded(coachID, now)
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.After(out[j].StartTime) })
	return page(out, limit, offset), len(out), nil
}

func (r *Bookings) CountUnrecorded(_ context.Context, coachID int64, now time.Time) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return len(r.unrecorded(coachID, now)), nil
}

package memstore

import (
	"context"
	"fmt"
	"slices"
	"sort"

	"github.com/Freeeeeet/coach_booking/internal/model"
)

type Subscriptions struct{ s *Store }

func (s *Store) Subscriptions() *Subscriptions { return &Subscriptions{s: s} }

func (r *Subscriptions) Create(_ context.Context, sub *model.Subscription) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	sub.ID = r.s.nextID()
	r.s.subs[sub.ID] = copySubscription(sub)
	return nil
}

func (r *Subscriptions) GetByID(_ context.Context, id int64) (*model.Subscription, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	sub, ok := r.s.subs[id]
	if !ok {
		return nil, nil
	}
	return copySubscription(sub), nil
}

func (r *Subscriptions) GetForUpdate(ctx context.Context, id int64) (*model.Subscription, error) {
	return r.GetByID(ctx, id)
}

func (r *Subscriptions) UpdateState(_ context.Context, sub *model.Subscription) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.subs[sub.ID]; !ok {
		return fmt.Errorf("subscription %d not found", sub.ID)
	}
	r.s.subs[sub.ID] = copySubscription(sub)
	return nil
}

func (r *Subscriptions) LatestRejected(_ context.Context, memberID, coachID int64) (*model.Subscription, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var latest *model.Subscription
	for _, sub := range r.s.subs {
		if sub.MemberID != memberID || sub.CoachID != coachID || sub.Status != model.StatusReject || sub.ResponseTime == nil {
			continue
		}
		if latest == nil || sub.ResponseTime.After(*latest.ResponseTime) {
			latest = sub
		}
	}
	if latest == nil {
		return nil, nil
	}
	return copySubscription(latest), nil
}

func (r *Subscriptions) ExistsWithStatus(_ context.Context, memberID, coachID int64, statuses ...model.RequestStatus) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, sub := range r.s.subs {
		if sub.MemberID == memberID && sub.CoachID == coachID && slices.Contains(statuses, sub.Status) {
			return true, nil
		}
	}
	return false, nil
}

func (r *Subscriptions) FindActive(_ context.Context, memberID, coachID int64) (*model.Subscription, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var found *model.Subscription
	for _, sub := range r.s.subs {
		if sub.MemberID != memberID || sub.CoachID != coachID {
			continue
		}
		switch sub.Status {
		case model.StatusAccept:
			return copySubscription(sub), nil
		case model.StatusPending:
			found = sub
		}
	}
	if found == nil {
		return nil, nil
	}
	return copySubscription(found), nil
}

func (r *Subscriptions) MarkRead(_ context.Context, id int64, role model.Role) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	sub, ok := r.s.subs[id]
	if !ok {
		return nil
	}
	switch role {
	case model.RoleMember:
		sub.MemberIsRead = true
	case model.RoleCoach:
		sub.CoachIsRead = true
	default:
		return fmt.Errorf("unknown role %q", role)
	}
	return nil
}

func (r *Subscriptions) CountUnread(_ context.Context, party model.Party) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n := 0
	for _, sub := range r.s.subs {
		if sub.Status != model.StatusDelete && partyOwns(party, sub.MemberID, sub.CoachID) &&
			!partyRead(party.Role, sub.MemberIsRead, sub.CoachIsRead) {
			n++
		}
	}
	return n, nil
}

func (r *Subscriptions) ListByParty(_ context.Context, party model.Party, statuses []model.RequestStatus, limit, offset int) ([]*model.Subscription, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*model.Subscription
	for _, sub := range r.s.subs {
		if sub.Status != model.StatusDelete && partyOwns(party, sub.MemberID, sub.CoachID) && statusWanted(sub.Status, statuses) {
			out = append(out, copySubscription(sub))
		}
	}
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

func (r *Subscriptions) ListAcceptedByMember(_ context.Context, memberID int64) ([]*model.Subscription, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*model.Subscription
	for _, sub := range r.s.subs {
		if sub.MemberID == memberID && sub.Status == model.StatusAccept {
			out = append(out, copySubscription(sub))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

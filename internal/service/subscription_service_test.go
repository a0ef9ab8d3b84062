package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/Freeeeeet/coach_booking/internal/model"
	"github.com/Freeeeeet/coach_booking/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCooldownEnd(t *testing.T) {
	cases := []struct {
		name       string
		rejectedAt time.Time
		want       time.Time
	}{
		{"monday waits a full week", at(2026, 10, 19, 8, 0), at(2026, 10, 26, 0, 0)},
		{"wednesday", at(2026, 10, 21, 23, 0), at(2026, 10, 26, 0, 0)},
		{"sunday ends at midnight", at(2026, 10, 25, 21, 0), at(2026, 10, 26, 0, 0)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, service.CooldownEnd(tc.rejectedAt, time.UTC))
		})
	}
}

func TestSubscriptionService_SendRequest(t *testing.T) {
	ctx := context.Background()
	req := model.SubscriptionRequest{CoachID: coachID, Message: "hi"}

	t.Run("creates pending request", func(t *testing.T) {
		f := newFixture(t, service.DefaultCancellationPolicy())

		sub, err := f.subscriptions.SendRequest(ctx, memberID, req)
		require.NoError(t, err)

		assert.Equal(t, model.StatusPending, sub.Status)
		assert.False(t, sub.CoachIsRead)
		assert.True(t, sub.MemberIsRead)
		assert.Equal(t, "hi", sub.Message)
		assert.Equal(t, []string{model.EventSubscriptionRequested}, f.eventTypes())
	})

	t.Run("forbidden on sunday", func(t *testing.T) {
		f := newFixture(t, service.DefaultCancellationPolicy())
		f.now = at(2026, 10, 25, 12, 0)

		_, err := f.subscriptions.SendRequest(ctx, memberID, req)
		assert.ErrorIs(t, err, service.ErrBusinessRule)
		assert.Contains(t, err.Error(), "Sunday")
	})

	t.Run("cooldown after rejection", func(t *testing.T) {
		f := newFixture(t, service.DefaultCancellationPolicy())
		rejectedAt := at(2026, 10, 19, 9, 0)
		require.NoError(t, f.store.Subscriptions().Create(ctx, &model.Subscription{
			MemberID: memberID, CoachID: coachID, Status: model.StatusReject,
			RequestTime: rejectedAt.Add(-time.Hour), ResponseTime: &rejectedAt,
		}))

		_, err := f.subscriptions.SendRequest(ctx, memberID, req)
		assert.ErrorIs(t, err, service.ErrBusinessRule)
		assert.Contains(t, err.Error(), "cooling off")

		f.now = at(2026, 10, 26, 0, 0)
		_, err = f.subscriptions.SendRequest(ctx, memberID, req)
		assert.NoError(t, err)
	})

	t.Run("cooldown only concerns the same coach", func(t *testing.T) {
		f := newFixture(t, service.DefaultCancellationPolicy())
		rejectedAt := at(2026, 10, 20, 9, 0)
		require.NoError(t, f.store.Subscriptions().Create(ctx, &model.Subscription{
			MemberID: memberID, CoachID: coachID + 1, Status: model.StatusReject, ResponseTime: &rejectedAt,
		}))

		_, err := f.subscriptions.SendRequest(ctx, memberID, req)
		assert.NoError(t, err)
	})

	t.Run("duplicate pending or active subscription", func(t *testing.T) {
		f := newFixture(t, service.DefaultCancellationPolicy())

		_, err := f.subscriptions.SendRequest(ctx, memberID, req)
		require.NoError(t, err)

		_, err = f.subscriptions.SendRequest(ctx, memberID, req)
		assert.ErrorIs(t, err, service.ErrBusinessRule)

		f.subscribe(t, memberID+1, coachID)
		_, err = f.subscriptions.SendRequest(ctx, memberID+1, req)
		assert.ErrorIs(t, err, service.ErrBusinessRule)
		assert.Contains(t, err.Error(), "already subscribed")
	})

	t.Run("concurrent request of same member is refused", func(t *testing.T) {
		f := newFixture(t, service.DefaultCancellationPolicy())
		f.store.HoldLock("subscription:member:1")

		_, err := f.subscriptions.SendRequest(ctx, memberID, req)
		assert.ErrorIs(t, err, service.ErrConflict)
		assert.Empty(t, f.eventTypes())
	})

	t.Run("cannot subscribe to yourself", func(t *testing.T) {
		f := newFixture(t, service.DefaultCancellationPolicy())
		_, err := f.subscriptions.SendRequest(ctx, coachID, req)
		assert.ErrorIs(t, err, service.ErrValidation)
	})
}

func TestSubscriptionService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, service.DefaultCancellationPolicy())
	member := model.Party{UserID: memberID, Role: model.RoleMember}
	coach := model.Party{UserID: coachID, Role: model.RoleCoach}

	sub, err := f.subscriptions.SendRequest(ctx, memberID, model.SubscriptionRequest{CoachID: coachID})
	require.NoError(t, err)

	n, err := f.subscriptions.CountUnread(ctx, coach)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, f.subscriptions.ReadRequest(ctx, coach, sub.ID))
	assert.ErrorIs(t, f.subscriptions.ReadRequest(ctx, model.Party{UserID: coachID + 1, Role: model.RoleCoach}, sub.ID), service.ErrNotFound)

	_, err = f.subscriptions.CoachHandleRequest(ctx, coachID, sub.ID, model.StatusAccept, "")
	assert.ErrorIs(t, err, service.ErrValidation)
	_, err = f.subscriptions.CoachHandleRequest(ctx, coachID+1, sub.ID, model.StatusAccept, "welcome")
	assert.ErrorIs(t, err, service.ErrNotFound)

	accepted, err := f.subscriptions.CoachHandleRequest(ctx, coachID, sub.ID, model.StatusAccept, "welcome")
	require.NoError(t, err)
	assert.Equal(t, model.StatusAccept, accepted.Status)
	assert.False(t, accepted.MemberIsRead)
	assert.True(t, accepted.CoachIsRead)

	_, err = f.subscriptions.CoachHandleRequest(ctx, coachID, sub.ID, model.StatusReject, "changed my mind")
	assert.ErrorIs(t, err, service.ErrBusinessRule)

	n, err = f.subscriptions.CountUnread(ctx, member)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	page, err := f.subscriptions.List(ctx, member, 1, 10, []model.RequestStatus{model.StatusAccept})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, sub.ID, page.Items[0].ID)

	coaches, err := f.subscriptions.MySubscriptionCoaches(ctx, memberID)
	require.NoError(t, err)
	require.Len(t, coaches, 1)
	assert.Equal(t, coachID, coaches[0].CoachID)
	assert.Equal(t, wednesday, coaches[0].Since)

	f.now = f.now.Add(time.Hour)
	cancelled, err := f.subscriptions.MemberCancelSubscription(ctx, memberID, coachID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancel, cancelled.Status)
	require.NotNil(t, cancelled.CancelTime)
	assert.Equal(t, f.now, *cancelled.CancelTime)

	_, err = f.subscriptions.MemberCancelSubscription(ctx, memberID, coachID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	coaches, err = f.subscriptions.MySubscriptionCoaches(ctx, memberID)
	require.NoError(t, err)
	assert.Empty(t, coaches)

	assert.Equal(t, []string{
		model.EventSubscriptionRequested,
		model.EventSubscriptionAccepted,
		model.EventSubscriptionCancelled,
	}, f.eventTypes())
}

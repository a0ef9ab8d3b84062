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

func TestBookingService_BookSession(t *testing.T) {
	ctx := context.Background()

	t.Run("requires accepted subscription", func(t *testing.T) {
		f := newFixture(t, service.DefaultCancellationPolicy())

		_, err := f.bookings.BookSession(ctx, memberID, model.BookingRequest{
			CoachID: coachID, DayOfWeek: 1, StartTime: clockRef(t, "10:00"), EndTime: clockRef(t, "11:00"),
		})

		assert.ErrorIs(t, err, service.ErrBusinessRule)
		assert.Empty(t, f.store.AllBookings())
		assert.Empty(t, f.store.Events())
	})

	t.Run("creates pending request on next week's day", func(t *testing.T) {
		f := newFixture(t, service.DefaultCancellationPolicy())
		f.subscribe(t, memberID, coachID)

		booking, err := f.bookings.BookSession(ctx, memberID, model.BookingRequest{
			CoachID: coachID, DayOfWeek: 3, StartTime: clockRef(t, "10:00"), EndTime: clockRef(t, "11:30"), Message: "legs",
		})
		require.NoError(t, err)

		assert.Equal(t, at(2026, 10, 28, 10, 0), booking.StartTime)
		assert.Equal(t, at(2026, 10, 28, 11, 30), booking.EndTime)
		assert.Equal(t, model.StatusPending, booking.Status)
		assert.False(t, booking.CoachIsRead)
		assert.True(t, booking.MemberIsRead)
		assert.False(t, booking.IsRecorded)
		assert.Equal(t, wednesday, booking.RequestTime)

		stored := f.store.AllBookings()[booking.ID]
		require.NotNil(t, stored)
		assert.Equal(t, "legs", stored.Message)
		assert.Equal(t, []string{model.EventBookingRequested}, f.eventTypes())
		assert.Equal(t, coachID, f.store.Events()[0].RecipientID)
	})

	t.Run("on monday targets the following monday", func(t *testing.T) {
		f := newFixture(t, service.DefaultCancellationPolicy())
		f.now = at(2026, 10, 19, 9, 0)
		f.subscribe(t, memberID, coachID)

		booking, err := f.bookings.BookSession(ctx, memberID, model.BookingRequest{
			CoachID: coachID, DayOfWeek: 1, StartTime: clockRef(t, "10:00"), EndTime: clockRef(t, "11:00"),
		})
		require.NoError(t, err)
		assert.Equal(t, at(2026, 10, 26, 10, 0), booking.StartTime)
	})

	t.Run("rejects overlap with own requests", func(t *testing.T) {
		f := newFixture(t, service.DefaultCancellationPolicy())
		f.subscribe(t, memberID, coachID)
		f.subscribe(t, memberID, coachID+1)

		_, err := f.bookings.BookSession(ctx, memberID, model.BookingRequest{
			CoachID: coachID, DayOfWeek: 1, StartTime: clockRef(t, "10:00"), EndTime: clockRef(t, "11:00"),
		})
		require.NoError(t, err)

		_, err = f.bookings.BookSession(ctx, memberID, model.BookingRequest{
			CoachID: coachID + 1, DayOfWeek: 1, StartTime: clockRef(t, "10:30"), EndTime: clockRef(t, "11:30"),
		})
		assert.ErrorIs(t, err, service.ErrBusinessRule)
		assert.Contains(t, err.Error(), "pending")

		f.addBooking(t, model.Booking{
			CoachID: coachID, MemberID: memberID, Status: model.StatusAccept,
			StartTime: at(2026, 10, 27, 9, 0), EndTime: at(2026, 10, 27, 10, 0),
		})
		_, err = f.bookings.BookSession(ctx, memberID, model.BookingRequest{
			CoachID: coachID + 1, DayOfWeek: 2, StartTime: clockRef(t, "09:30"), EndTime: clockRef(t, "10:30"),
		})
		assert.ErrorIs(t, err, service.ErrBusinessRule)
		assert.Contains(t, err.Error(), "confirmed")
	})

	t.Run("adjacent sessions do not conflict", func(t *testing.T) {
		f := newFixture(t, service.DefaultCancellationPolicy())
		f.subscribe(t, memberID, coachID)

		_, err := f.bookings.BookSession(ctx, memberID, model.BookingRequest{
			CoachID: coachID, DayOfWeek: 1, StartTime: clockRef(t, "10:00"), EndTime: clockRef(t, "11:00"),
		})
		require.NoError(t, err)
		_, err = f.bookings.BookSession(ctx, memberID, model.BookingRequest{
			CoachID: coachID, DayOfWeek: 1, StartTime: clockRef(t, "11:00"), EndTime: clockRef(t, "12:00"),
		})
		require.NoError(t, err)
		assert.Len(t, f.store.AllBookings(), 2)
	})

	t.Run("validates input", func(t *testing.T) {
		f := newFixture(t, service.DefaultCancellationPolicy())
		f.subscribe(t, memberID, coachID)

		_, err := f.bookings.BookSession(ctx, memberID, model.BookingRequest{
			CoachID: coachID, DayOfWeek: 8, StartTime: clockRef(t, "10:00"), EndTime: clockRef(t, "11:00"),
		})
		assert.ErrorIs(t, err, service.ErrValidation)

		_, err = f.bookings.BookSession(ctx, memberID, model.BookingRequest{
			CoachID: coachID, DayOfWeek: 1, StartTime: clockRef(t, "11:00"), EndTime: clockRef(t, "11:00"),
		})
		assert.ErrorIs(t, err, service.ErrValidation)

		_, err = f.bookings.BookSession(ctx, memberID, model.BookingRequest{
			CoachID: coachID, DayOfWeek: 1, EndTime: clockRef(t, "01:00"),
		})
		assert.ErrorIs(t, err, service.ErrValidation)
		assert.Empty(t, f.store.AllBookings())
	})

	t.Run("concurrent request of same member is refused", func(t *testing.T) {
		f := newFixture(t, service.DefaultCancellationPolicy())
		f.subscribe(t, memberID, coachID)
		f.store.HoldLock("booking:member:1")

		_, err := f.bookings.BookSession(ctx, memberID, model.BookingRequest{
			CoachID: coachID, DayOfWeek: 1, StartTime: clockRef(t, "10:00"), EndTime: clockRef(t, "11:00"),
		})
		assert.ErrorIs(t, err, service.ErrConflict)
	})
}

func TestBookingService_CoachHandleRequest(t *testing.T) {
	ctx := context.Background()
	slotStart, slotEnd := at(2026, 10, 26, 10, 0), at(2026, 10, 26, 11, 0)

	t.Run("accept rejects competing requests for the same slot", func(t *testing.T) {
		f := newFixture(t, service.DefaultCancellationPolicy())
		first := f.addBooking(t, model.Booking{CoachID: coachID, MemberID: 1, Status: model.StatusPending, StartTime: slotStart, EndTime: slotEnd})
		second := f.addBooking(t, model.Booking{CoachID: coachID, MemberID: 2, Status: model.StatusPending, StartTime: slotStart, EndTime: slotEnd})
		third := f.addBooking(t, model.Booking{CoachID: coachID, MemberID: 3, Status: model.StatusPending, StartTime: slotStart, EndTime: slotEnd})
		other := f.addBooking(t, model.Booking{CoachID: coachID, MemberID: 4, Status: model.StatusPending, StartTime: slotStart, EndTime: slotEnd.Add(30 * time.Minute)})

		accepted, err := f.bookings.CoachHandleRequest(ctx, coachID, second.ID, model.StatusAccept, "see you")
		require.NoError(t, err)
		assert.Equal(t, model.StatusAccept, accepted.Status)
		assert.Equal(t, "see you", accepted.Reply)
		require.NotNil(t, accepted.ResponseTime)
		assert.True(t, accepted.CoachIsRead)
		assert.False(t, accepted.MemberIsRead)

		all := f.store.AllBookings()
		for _, id := range []int64{first.ID, third.ID} {
			assert.Equal(t, model.StatusReject, all[id].Status)
			assert.Equal(t, service.AutoRejectReply, all[id].Reply)
			assert.True(t, all[id].CoachIsRead)
			assert.False(t, all[id].MemberIsRead)
			assert.NotNil(t, all[id].ResponseTime)
		}
		assert.Equal(t, model.StatusPending, all[other.ID].Status)

		assert.Equal(t, []string{
			model.EventBookingAccepted,
			model.EventBookingAutoRejected,
			model.EventBookingAutoRejected,
		}, f.eventTypes())
	})

	t.Run("accept refused once the slot is confirmed", func(t *testing.T) {
		f := newFixture(t, service.DefaultCancellationPolicy())
		f.subscribe(t, 1, coachID)
		f.subscribe(t, 2, coachID)
		req := model.BookingRequest{CoachID: coachID, DayOfWeek: 2, StartTime: clockRef(t, "10:00"), EndTime: clockRef(t, "11:00")}

		first, err := f.bookings.BookSession(ctx, 1, req)
		require.NoError(t, err)
		_, err = f.bookings.CoachHandleRequest(ctx, coachID, first.ID, model.StatusAccept, "see you")
		require.NoError(t, err)

		late, err := f.bookings.BookSession(ctx, 2, req)
		require.NoError(t, err)

		_, err = f.bookings.CoachHandleRequest(ctx, coachID, late.ID, model.StatusAccept, "see you")
		assert.ErrorIs(t, err, service.ErrBusinessRule)

		accepted := 0
		for _, b := range f.store.AllBookings() {
			if b.IsAccepted() {
				accepted++
			}
		}
		assert.Equal(t, 1, accepted)
		assert.Equal(t, model.StatusPending, f.store.AllBookings()[late.ID].Status)

		_, err = f.bookings.CoachHandleRequest(ctx, coachID, late.ID, model.StatusReject, "taken")
		require.NoError(t, err)
	})

	t.Run("accept refused when overlapping a confirmed session", func(t *testing.T) {
		f := newFixture(t, service.DefaultCancellationPolicy())
		f.addBooking(t, model.Booking{CoachID: coachID, MemberID: 1, Status: model.StatusAccept, StartTime: slotStart, EndTime: slotEnd})
		shifted := f.addBooking(t, model.Booking{CoachID: coachID, MemberID: 2, Status: model.StatusPending, StartTime: slotStart.Add(30 * time.Minute), EndTime: slotEnd.Add(30 * time.Minute)})

		_, err := f.bookings.CoachHandleRequest(ctx, coachID, shifted.ID, model.StatusAccept, "ok")
		assert.ErrorIs(t, err, service.ErrBusinessRule)
		assert.Empty(t, f.eventTypes())
	})

	t.Run("cancelled session frees the slot", func(t *testing.T) {
		f := newFixture(t, service.DefaultCancellationPolicy())
		f.addBooking(t, model.Booking{CoachID: coachID, MemberID: 1, Status: model.StatusCancel, StartTime: slotStart, EndTime: slotEnd})
		other := f.addBooking(t, model.Booking{CoachID: coachID + 1, MemberID: 3, Status: model.StatusAccept, StartTime: slotStart, EndTime: slotEnd})
		pending := f.addBooking(t, model.Booking{CoachID: coachID, MemberID: 2, Status: model.StatusPending, StartTime: slotStart, EndTime: slotEnd})

		_, err := f.bookings.CoachHandleRequest(ctx, coachID, pending.ID, model.StatusAccept, "ok")
		require.NoError(t, err)
		assert.Equal(t, model.StatusAccept, f.store.AllBookings()[other.ID].Status)
	})

	t.Run("reject leaves other requests untouched", func(t *testing.T) {
		f := newFixture(t, service.DefaultCancellationPolicy())
		first := f.addBooking(t, model.Booking{CoachID: coachID, MemberID: 1, Status: model.StatusPending, StartTime: slotStart, EndTime: slotEnd})
		second := f.addBooking(t, model.Booking{CoachID: coachID, MemberID: 2, Status: model.StatusPending, StartTime: slotStart, EndTime: slotEnd})

		_, err := f.bookings.CoachHandleRequest(ctx, coachID, first.ID, model.StatusReject, "busy")
		require.NoError(t, err)

		all := f.store.AllBookings()
		assert.Equal(t, model.StatusReject, all[first.ID].Status)
		assert.Equal(t, model.StatusPending, all[second.ID].Status)
		assert.Equal(t, []string{model.EventBookingRejected}, f.eventTypes())
	})

	t.Run("guards", func(t *testing.T) {
		f := newFixture(t, service.DefaultCancellationPolicy())
		pending := f.addBooking(t, model.Booking{CoachID: coachID, MemberID: 1, Status: model.StatusPending, StartTime: slotStart, EndTime: slotEnd})
		handled := f.addBooking(t, model.Booking{CoachID: coachID, MemberID: 2, Status: model.StatusReject, StartTime: slotStart, EndTime: slotEnd})

		_, err := f.bookings.CoachHandleRequest(ctx, coachID, pending.ID, model.StatusAccept, "  ")
		assert.ErrorIs(t, err, service.ErrValidation)

		_, err = f.bookings.CoachHandleRequest(ctx, coachID, pending.ID, model.StatusCancel, "ok")
		assert.ErrorIs(t, err, service.ErrValidation)

		_, err = f.bookings.CoachHandleRequest(ctx, coachID+1, pending.ID, model.StatusAccept, "ok")
		assert.ErrorIs(t, err, service.ErrNotFound)

		_, err = f.bookings.CoachHandleRequest(ctx, coachID, handled.ID, model.StatusAccept, "ok")
		assert.ErrorIs(t, err, service.ErrBusinessRule)

		_, err = f.bookings.CoachHandleRequest(ctx, coachID, 999, model.StatusAccept, "ok")
		assert.ErrorIs(t, err, service.ErrNotFound)

		assert.Equal(t, model.StatusPending, f.store.AllBookings()[pending.ID].Status)
	})
}

func TestBookingService_WithdrawRequest(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, service.DefaultCancellationPolicy())

	pending := f.addBooking(t, model.Booking{CoachID: coachID, MemberID: memberID, Status: model.StatusPending, StartTime: at(2026, 10, 26, 10, 0), EndTime: at(2026, 10, 26, 11, 0)})
	accepted := f.addBooking(t, model.Booking{CoachID: coachID, MemberID: memberID, Status: model.StatusAccept, StartTime: at(2026, 10, 27, 10, 0), EndTime: at(2026, 10, 27, 11, 0)})

	t.Run("other member cannot withdraw", func(t *testing.T) {
		assert.ErrorIs(t, f.bookings.WithdrawRequest(ctx, memberID+1, pending.ID), service.ErrNotFound)
	})

	t.Run("accepted booking cannot be withdrawn", func(t *testing.T) {
		assert.ErrorIs(t, f.bookings.WithdrawRequest(ctx, memberID, accepted.ID), service.ErrValidation)
	})

	t.Run("pending request is deleted", func(t *testing.T) {
		require.NoError(t, f.bookings.WithdrawRequest(ctx, memberID, pending.ID))
		assert.NotContains(t, f.store.AllBookings(), pending.ID)
	})
}

func TestBookingService_CancelBooking(t *testing.T) {
	ctx := context.Background()

	t.Run("calendar policy allows cancelling before the session day", func(t *testing.T) {
		f := newFixture(t, service.DefaultCancellationPolicy())
		tomorrow := f.addBooking(t, model.Booking{CoachID: coachID, MemberID: memberID, Status: model.StatusAccept, StartTime: at(2026, 10, 22, 8, 0), EndTime: at(2026, 10, 22, 9, 0)})

		cancelled, err := f.bookings.CancelBooking(ctx, memberID, tomorrow.ID)
		require.NoError(t, err)

		assert.Equal(t, model.StatusCancel, cancelled.Status)
		require.NotNil(t, cancelled.CancelTime)
		assert.Equal(t, wednesday, *cancelled.CancelTime)
		assert.True(t, cancelled.MemberIsRead)
		assert.False(t, cancelled.CoachIsRead)
		assert.Equal(t, []string{model.EventBookingCancelled}, f.eventTypes())
	})

	t.Run("calendar policy refuses same day", func(t *testing.T) {
		f := newFixture(t, service.DefaultCancellationPolicy())
		today := f.addBooking(t, model.Booking{CoachID: coachID, MemberID: memberID, Status: model.StatusAccept, StartTime: at(2026, 10, 21, 20, 0), EndTime: at(2026, 10, 21, 21, 0)})

		_, err := f.bookings.CancelBooking(ctx, memberID, today.ID)
		assert.ErrorIs(t, err, service.ErrValidation)
		assert.Equal(t, model.StatusAccept, f.store.AllBookings()[today.ID].Status)
	})

	t.Run("notice policy measures time until start", func(t *testing.T) {
		f := newFixture(t, service.CancellationPolicy{Mode: service.CancelWithNotice, Notice: 6 * time.Hour})
		later := f.addBooking(t, model.Booking{CoachID: coachID, MemberID: memberID, Status: model.StatusAccept, StartTime: at(2026, 10, 21, 16, 0), EndTime: at(2026, 10, 21, 17, 0)})
		soon := f.addBooking(t, model.Booking{CoachID: coachID, MemberID: memberID, Status: model.StatusAccept, StartTime: at(2026, 10, 21, 15, 0), EndTime: at(2026, 10, 21, 16, 0)})

		_, err := f.bookings.CancelBooking(ctx, memberID, later.ID)
		require.NoError(t, err)

		_, err = f.bookings.CancelBooking(ctx, memberID, soon.ID)
		assert.ErrorIs(t, err, service.ErrValidation)
	})

	t.Run("only accepted bookings", func(t *testing.T) {
		f := newFixture(t, service.DefaultCancellationPolicy())
		pending := f.addBooking(t, model.Booking{CoachID: coachID, MemberID: memberID, Status: model.StatusPending, StartTime: at(2026, 10, 26, 8, 0), EndTime: at(2026, 10, 26, 9, 0)})

		_, err := f.bookings.CancelBooking(ctx, memberID, pending.ID)
		assert.ErrorIs(t, err, service.ErrValidation)

		_, err = f.bookings.CancelBooking(ctx, memberID+1, pending.ID)
		assert.ErrorIs(t, err, service.ErrNotFound)
		assert.ErrorIs(t, err, service.ErrBusinessRule)
	})
}

func TestCancellationPolicy(t *testing.T) {
	t.Run("parse", func(t *testing.T) {
		p, err := service.ParseCancellationPolicy("", 0)
		require.NoError(t, err)
		assert.Equal(t, service.CancelBeforeDay, p.Mode)

		p, err = service.ParseCancellationPolicy("notice", 2*time.Hour)
		require.NoError(t, err)
		assert.Equal(t, service.CancelWithNotice, p.Mode)

		_, err = service.ParseCancellationPolicy("notice", 0)
		assert.Error(t, err)

		_, err = service.ParseCancellationPolicy("never", time.Hour)
		assert.Error(t, err)
	})

	t.Run("calendar day follows location", func(t *testing.T) {
		loc, err := time.LoadLocation("Asia/Tokyo")
		require.NoError(t, err)
		p := service.DefaultCancellationPolicy()

		// 16:00 UTC 21.10 в Токио уже 01:00 22.10
		now := at(2026, 10, 21, 16, 0)
		start := at(2026, 10, 22, 10, 0)
		assert.True(t, p.Allows(start, now, time.UTC))
		assert.False(t, p.Allows(start, now, loc))
		assert.True(t, p.Allows(at(2026, 10, 23, 16, 0), now, loc))
	})
}

func TestBookingService_ReadAndCount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, service.DefaultCancellationPolicy())

	b := f.addBooking(t, model.Booking{CoachID: coachID, MemberID: memberID, Status: model.StatusPending, StartTime: at(2026, 10, 26, 10, 0), EndTime: at(2026, 10, 26, 11, 0), MemberIsRead: true})
	coach := model.Party{UserID: coachID, Role: model.RoleCoach}

	n, err := f.bookings.CountUnread(ctx, coach)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.ErrorIs(t, f.bookings.ReadRequest(ctx, model.Party{UserID: coachID + 1, Role: model.RoleCoach}, b.ID), service.ErrNotFound)
	assert.ErrorIs(t, f.bookings.ReadRequest(ctx, model.Party{UserID: coachID, Role: "admin"}, b.ID), service.ErrValidation)

	require.NoError(t, f.bookings.ReadRequest(ctx, coach, b.ID))

	n, err = f.bookings.CountUnread(ctx, coach)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestBookingService_GetSchedule(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, service.DefaultCancellationPolicy())

	mon := f.addBooking(t, model.Booking{CoachID: coachID, MemberID: memberID, Status: model.StatusAccept, StartTime: at(2026, 10, 19, 9, 0), EndTime: at(2026, 10, 19, 10, 0)})
	fri := f.addBooking(t, model.Booking{CoachID: coachID, MemberID: memberID, Status: model.StatusAccept, StartTime: at(2026, 10, 23, 18, 0), EndTime: at(2026, 10, 23, 19, 0)})
	fri2 := f.addBooking(t, model.Booking{CoachID: coachID, MemberID: memberID, Status: model.StatusAccept, StartTime: at(2026, 10, 23, 8, 0), EndTime: at(2026, 10, 23, 9, 0)})
	next := f.addBooking(t, model.Booking{CoachID: coachID, MemberID: 2, Status: model.StatusAccept, StartTime: at(2026, 10, 27, 12, 0), EndTime: at(2026, 10, 27, 13, 0)})
	f.addBooking(t, model.Booking{CoachID: coachID, MemberID: 3, Status: model.StatusPending, StartTime: at(2026, 10, 28, 12, 0), EndTime: at(2026, 10, 28, 13, 0)})
	f.addBooking(t, model.Booking{CoachID: coachID, MemberID: 3, Status: model.StatusAccept, StartTime: at(2026, 11, 2, 12, 0), EndTime: at(2026, 11, 2, 13, 0)})

	week, err := f.bookings.GetSchedule(ctx, model.Party{UserID: coachID, Role: model.RoleCoach})
	require.NoError(t, err)

	ids := func(entries []*model.ScheduleEntry) []int64 {
		var out []int64
		for _, e := range entries {
			out = append(out, e.BookingID)
		}
		return out
	}

	assert.Equal(t, []int64{fri.ID, fri2.ID, mon.ID}, ids(week.CurrentWeek.ListView))
	assert.Equal(t, []int64{fri.ID, fri2.ID}, ids(week.CurrentWeek.CalendarView[5]))
	assert.Equal(t, []int64{mon.ID}, ids(week.CurrentWeek.CalendarView[1]))
	assert.Equal(t, []int64{next.ID}, ids(week.NextWeek.ListView))
	assert.Equal(t, clock(t, "12:00"), week.NextWeek.ListView[0].StartTime)
	assert.Equal(t, "2026-10-27", week.NextWeek.ListView[0].Date)

	memberWeek, err := f.bookings.GetSchedule(ctx, model.Party{UserID: memberID, Role: model.RoleMember})
	require.NoError(t, err)
	assert.Len(t, memberWeek.CurrentWeek.ListView, 3)
	assert.Empty(t, memberWeek.NextWeek.ListView)
}

func TestBookingService_GetRequests(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, service.DefaultCancellationPolicy())
	slot := func(h int) (time.Time, time.Time) { return at(2026, 10, 26, h, 0), at(2026, 10, 26, h+1, 0) }

	s1, e1 := slot(9)
	older := f.addBooking(t, model.Booking{CoachID: coachID, MemberID: 1, Status: model.StatusPending, StartTime: s1, EndTime: e1, RequestTime: wednesday.Add(-2 * time.Hour)})
	s2, e2 := slot(10)
	newer := f.addBooking(t, model.Booking{CoachID: coachID, MemberID: 2, Status: model.StatusPending, StartTime: s2, EndTime: e2, RequestTime: wednesday.Add(-time.Hour)})
	s3, e3 := slot(11)
	read := f.addBooking(t, model.Booking{CoachID: coachID, MemberID: 3, Status: model.StatusAccept, StartTime: s3, EndTime: e3, RequestTime: wednesday, CoachIsRead: true})
	s4, e4 := slot(12)
	f.addBooking(t, model.Booking{CoachID: coachID, MemberID: 4, Status: model.StatusDelete, StartTime: s4, EndTime: e4})

	coach := model.Party{UserID: coachID, Role: model.RoleCoach}

	page, err := f.bookings.GetRequests(ctx, coach, 1, 10, nil)
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, []int64{newer.ID, older.ID, read.ID}, []int64{page.Items[0].ID, page.Items[1].ID, page.Items[2].ID})

	page, err = f.bookings.GetRequests(ctx, coach, 2, 2, nil)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, read.ID, page.Items[0].ID)

	page, err = f.bookings.GetRequests(ctx, coach, 1, 10, []model.RequestStatus{model.StatusAccept})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)

	_, err = f.bookings.GetRequests(ctx, coach, 0, 10, nil)
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = f.bookings.GetRequests(ctx, coach, 1, 10, []model.RequestStatus{model.StatusDelete})
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestBookingService_Unrecorded(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, service.DefaultCancellationPolicy())

	done := f.addBooking(t, model.Booking{CoachID: coachID, MemberID: 1, Status: model.StatusAccept, StartTime: at(2026, 10, 20, 9, 0), EndTime: at(2026, 10, 20, 10, 0)})
	f.addBooking(t, model.Booking{CoachID: coachID, MemberID: 2, Status: model.StatusAccept, StartTime: at(2026, 10, 21, 9, 30), EndTime: at(2026, 10, 21, 10, 30)})
	f.addBooking(t, model.Booking{CoachID: coachID, MemberID: 3, Status: model.StatusCancel, StartTime: at(2026, 10, 20, 11, 0), EndTime: at(2026, 10, 20, 12, 0)})
	f.addBooking(t, model.Booking{CoachID: coachID + 1, MemberID: 3, Status: model.StatusAccept, StartTime: at(2026, 10, 20, 11, 0), EndTime: at(2026, 10, 20, 12, 0)})
	running := f.addBooking(t, model.Booking{CoachID: coachID, MemberID: 4, Status: model.StatusAccept, StartTime: at(2026, 10, 21, 9, 45), EndTime: at(2026, 10, 21, 10, 45)})

	n, err := f.bookings.CountUnrecorded(ctx, coachID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	page, err := f.bookings.ListUnrecorded(ctx, coachID, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, done.ID, page.Items[0].ID)

	assert.ErrorIs(t, f.bookings.MarkRecorded(ctx, coachID, running.ID), service.ErrBusinessRule)
	assert.ErrorIs(t, f.bookings.MarkRecorded(ctx, coachID+1, done.ID), service.ErrNotFound)
	require.NoError(t, f.bookings.MarkRecorded(ctx, coachID, done.ID))

	n, err = f.bookings.CountUnrecorded(ctx, coachID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/Freeeeeet/coach_booking/internal/model"
	"github.com/Freeeeeet/coach_booking/internal/repository/memstore"
	"github.com/Freeeeeet/coach_booking/internal/service"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	coachID  int64 = 100
	memberID int64 = 1
)

// Среда, 21.10.2026 10:00 UTC. Следующий понедельник 26.10.2026.
var wednesday = time.Date(2026, 10, 21, 10, 0, 0, 0, time.UTC)

type fixture struct {
	store         *memstore.Store
	now           time.Time
	availability  *service.AvailabilityService
	bookings      *service.BookingService
	subscriptions *service.SubscriptionService
}

func newFixture(t *testing.T, policy service.CancellationPolicy) *fixture {
	t.Helper()

	store := memstore.New()
	logger := zap.NewNop()

	f := &fixture{store: store, now: wednesday}
	now := func() time.Time { return f.now }

	f.availability = service.NewAvailabilityService(store.Templates(), store.Bookings(), time.UTC, logger)
	f.availability.SetClock(now)

	f.bookings = service.NewBookingService(
		store,
		store.Bookings(),
		store.Subscriptions(),
		store.Outbox(),
		store,
		service.BookingSettings{Location: time.UTC, Cancellation: policy},
		logger,
	)
	f.bookings.SetClock(now)

	f.subscriptions = service.NewSubscriptionService(store, store.Subscriptions(), store.Outbox(), store, time.UTC, logger)
	f.subscriptions.SetClock(now)

	return f
}

func clock(t *testing.T, s string) model.ClockTime {
	t.Helper()
	c, err := model.ParseClockTime(s)
	require.NoError(t, err)
	return c
}

func clockRef(t *testing.T, s string) *model.ClockTime {
	t.Helper()
	c := clock(t, s)
	return &c
}

func (f *fixture) subscribe(t *testing.T, member, coach int64) {
	t.Helper()
	err := f.store.Subscriptions().Create(context.Background(), &model.Subscription{
		MemberID:    member,
		CoachID:     coach,
		Status:      model.StatusAccept,
		RequestTime: f.now.Add(-48 * time.Hour),
	})
	require.NoError(t, err)
}

func (f *fixture) addBooking(t *testing.T, b model.Booking) *model.Booking {
	t.Helper()
	if b.RequestTime.IsZero() {
		b.RequestTime = f.now
	}
	require.NoError(t, f.store.Bookings().Create(context.Background(), &b))
	return &b
}

func (f *fixture) eventTypes() []string {
	var types []string
	for _, evt := range f.store.Events() {
		types = append(types, evt.EventType)
	}
	return types
}

func at(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
}

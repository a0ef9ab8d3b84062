package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type stubRelay struct {
	calls   atomic.Int32
	pending atomic.Int32
	fail    atomic.Bool
}

func (r *stubRelay) RunOnce(context.Context) (int, error) {
	r.calls.Add(1)
	if r.fail.Load() {
		return 0, errors.New("db is down")
	}
	if r.pending.Load() > 0 {
		r.pending.Add(-1)
		return 1, nil
	}
	return 0, nil
}

func TestScheduler_DrainsOutbox(t *testing.T) {
	relay := &stubRelay{}
	relay.pending.Store(3)

	s := NewScheduler(relay, 5*time.Millisecond, zap.NewNop())
	s.Start(context.Background())

	assert.Eventually(t, func() bool { return relay.pending.Load() == 0 }, time.Second, 5*time.Millisecond)
	s.Stop()
	s.Stop()

	calls := relay.calls.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, calls, relay.calls.Load(), "no runs after stop")
}

func TestScheduler_SurvivesErrors(t *testing.T) {
	relay := &stubRelay{}
	relay.fail.Store(true)

	ctx, cancel := context.WithCancel(context.Background())
	s := NewScheduler(relay, 5*time.Millisecond, zap.NewNop())
	s.Start(ctx)

	assert.Eventually(t, func() bool { return relay.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()
	s.Stop()
}

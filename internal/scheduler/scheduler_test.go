package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func counting(t *testing.T, interval time.Duration) (*Scheduler, *atomic.Int64) {
	t.Helper()

	var calls atomic.Int64
	s, err := New("test", interval, func(context.Context) { calls.Add(1) })
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	t.Cleanup(func() { s.Stop() })
	return s, &calls
}

// eventually polls cond until it holds or the timeout elapses.
func eventually(t *testing.T, timeout time.Duration, what string, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timeout waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestNew_RejectsInvalidArgs(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		interval time.Duration
		fn       func(context.Context)
	}{
		{"zero interval", 0, func(context.Context) {}},
		{"negative interval", -time.Second, func(context.Context) {}},
		{"nil tick", time.Second, nil},
	}

	for _, tc := range cases {
		s, err := New("poller", tc.interval, tc.fn)
		if err == nil || s != nil {
			t.Fatalf("%s: expected error and nil scheduler, got %v %v", tc.name, s, err)
		}
	}
}

func TestScheduler_Lifecycle(t *testing.T) {
	s, calls := counting(t, time.Hour)

	if s.IsRunning() {
		t.Fatalf("expected stopped scheduler after New")
	}
	if s.Stop() {
		t.Fatalf("expected Stop() false before Start()")
	}

	for round := 0; round < 2; round++ {
		if !s.Start() {
			t.Fatalf("round %d: expected Start() true", round)
		}
		if s.Start() {
			t.Fatalf("round %d: expected second Start() false", round)
		}

		want := int64(round + 1)
		eventually(t, time.Second, "immediate tick", func() bool { return calls.Load() >= want })

		if !s.Stop() || s.IsRunning() {
			t.Fatalf("round %d: expected Stop() to stop the loop", round)
		}
	}
}

func TestScheduler_TicksOnIntervalAndNotAfterStop(t *testing.T) {
	s, calls := counting(t, 10*time.Millisecond)

	s.Start()
	eventually(t, time.Second, "interval ticks", func() bool { return calls.Load() >= 3 })
	s.Stop()

	stopped := calls.Load()
	time.Sleep(60 * time.Millisecond)
	if calls.Load() != stopped {
		t.Fatalf("expected no ticks after Stop; before=%d after=%d", stopped, calls.Load())
	}
}

func TestScheduler_Trigger(t *testing.T) {
	s, calls := counting(t, time.Hour)

	if s.Trigger() {
		t.Fatalf("expected Trigger() false while stopped")
	}

	s.Start()
	eventually(t, time.Second, "immediate tick", func() bool { return calls.Load() == 1 })

	if !s.Trigger() {
		t.Fatalf("expected Trigger() true while running")
	}
	eventually(t, time.Second, "triggered tick", func() bool { return calls.Load() == 2 })

	eventually(t, time.Second, "stats", func() bool { return s.Stats().Ticks == 2 })
	if s.Stats().LastTick.IsZero() {
		t.Fatalf("expected LastTick to be set, got %+v", s.Stats())
	}
}

func TestScheduler_RecoversFromPanic(t *testing.T) {
	var calls atomic.Int64
	s, err := New("test", 10*time.Millisecond, func(context.Context) {
		if calls.Add(1) == 1 {
			panic("boom")
		}
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer s.Stop()

	s.Start()
	eventually(t, time.Second, "ticks after panic", func() bool { return calls.Load() >= 3 })

	// The third tick may still be running; the panicking first one is counted.
	if s.Stats().Ticks < 2 {
		t.Fatalf("expected panicking tick to be counted, got %+v", s.Stats())
	}
}

func TestScheduler_StopCancelsTickContext(t *testing.T) {
	entered := make(chan struct{})
	var canceled atomic.Bool

	s, err := New("test", time.Hour, func(ctx context.Context) {
		close(entered)
		<-ctx.Done()
		canceled.Store(true)
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	s.Start()
	select {
	case <-entered:
	case <-time.After(time.Second):
		t.Fatalf("tick never started")
	}

	// Stop waits for the blocked tick, which only returns once canceled.
	s.Stop()
	if !canceled.Load() {
		t.Fatalf("expected tick context canceled by Stop()")
	}
}

func TestScheduler_Interval(t *testing.T) {
	t.Parallel()

	s, err := New("poller", 3*time.Second, func(context.Context) {})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if s.Interval() != 3*time.Second {
		t.Fatalf("expected interval 3s, got %v", s.Interval())
	}
}

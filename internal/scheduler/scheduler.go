package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Stats summarizes the ticks run since the scheduler was created.
type Stats struct {
	Ticks        int64         `json:"ticks"`
	LastTick     time.Time     `json:"lastTick"`
	LastDuration time.Duration `json:"lastDuration"`
}

// Scheduler calls a tick function right after Start, then on every interval
// and on every Trigger, until Stop. Ticks never overlap and a panicking tick
// does not stop the loop.
type Scheduler struct {
	name     string
	interval time.Duration
	tickFn   func(context.Context)
	log      *slog.Logger

	running atomic.Bool
	kick    chan struct{}

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	statsMu sync.Mutex
	stats   Stats
}

func New(name string, interval time.Duration, tickFn func(context.Context)) (*Scheduler, error) {
	if interval <= 0 {
		return nil, errors.New("interval must be > 0")
	}
	if tickFn == nil {
		return nil, errors.New("tickFn must not be nil")
	}
	return &Scheduler{
		name:     name,
		interval: interval,
		tickFn:   tickFn,
		log:      slog.Default().With("scheduler", name),
		kick:     make(chan struct{}, 1),
	}, nil
}

func (s *Scheduler) WithLogger(l *slog.Logger) *Scheduler {
	s.log = l.With("scheduler", s.name)
	return s
}

// Start launches the loop. It reports false when already running.
func (s *Scheduler) Start() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running.Load() {
		return false
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running.Store(true)

	go s.run(ctx, s.done)
	return true
}

// Stop cancels the loop and waits for an in-flight tick to return.
func (s *Scheduler) Stop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running.Load() {
		return false
	}

	s.cancel()
	<-s.done
	s.running.Store(false)

	s.log.Info("scheduler stopped")
	return true
}

// Trigger asks for a tick ahead of schedule. Requests made while one is
// already pending are coalesced; it is a no-op when stopped.
func (s *Scheduler) Trigger() bool {
	if !s.running.Load() {
		return false
	}
	select {
	case s.kick <- struct{}{}:
	default:
	}
	return true
}

func (s *Scheduler) IsRunning() bool {
	return s.running.Load()
}

func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

func (s *Scheduler) Stats() Stats {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	return s.stats
}

func (s *Scheduler) run(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info("scheduler started", "interval", s.interval.String())
	s.safeTick(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-s.kick:
			ticker.Reset(s.interval)
		}
		s.safeTick(ctx)
	}
}

func (s *Scheduler) safeTick(ctx context.Context) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("scheduler tick panic recovered", "panic", r)
		}
		s.record(start, time.Since(start))
	}()

	s.tickFn(ctx)
	s.log.Debug("scheduler tick completed", "duration_ms", time.Since(start).Milliseconds())
}

func (s *Scheduler) record(at time.Time, d time.Duration) {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	s.stats.Ticks++
	s.stats.LastTick = at
	s.stats.LastDuration = d
}

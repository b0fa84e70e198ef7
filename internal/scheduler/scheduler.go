package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/LeventeLantos/sms-dispatch/internal/logger"
)

// Scheduler runs a job immediately on Start and then once per interval
// until Stop. A panicking job is logged and counted; the loop keeps going.
type Scheduler struct {
	interval time.Duration
	job      func(context.Context)
	log      *logger.Logger

	running      atomic.Bool
	runs         atomic.Int64
	panics       atomic.Int64
	lastRun      atomic.Int64
	lastDuration atomic.Int64

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// Snapshot is what the reconciler endpoints report.
type Snapshot struct {
	Running        bool       `json:"running"`
	Interval       string     `json:"interval"`
	Runs           int64      `json:"runs"`
	Panics         int64      `json:"panics"`
	LastRunAt      *time.Time `json:"last_run_at"`
	LastDurationMS int64      `json:"last_duration_ms"`
}

func New(interval time.Duration, log *logger.Logger, job func(context.Context)) (*Scheduler, error) {
	if interval <= 0 {
		return nil, errors.New("interval must be > 0")
	}
	if job == nil {
		return nil, errors.New("job must not be nil")
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Scheduler{
		interval: interval,
		job:      job,
		log:      log.With("component", "scheduler"),
		done:     make(chan struct{}),
	}, nil
}

// Start reports false when the scheduler is already running.
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

	go s.loop(ctx, s.done)

	s.log.Info("scheduler started", "interval", s.interval.String())
	return true
}

func (s *Scheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.runOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

// Stop cancels the job context and waits for an in-flight run to return.
// It reports false when the scheduler was not running.
func (s *Scheduler) Stop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running.Load() {
		return false
	}

	s.cancel()
	<-s.done
	s.running.Store(false)

	s.log.Info("scheduler stopped", "runs", s.runs.Load())
	return true
}

func (s *Scheduler) IsRunning() bool {
	return s.running.Load()
}

func (s *Scheduler) Snapshot() Snapshot {
	snap := Snapshot{
		Running:        s.running.Load(),
		Interval:       s.interval.String(),
		Runs:           s.runs.Load(),
		Panics:         s.panics.Load(),
		LastDurationMS: s.lastDuration.Load(),
	}
	if ns := s.lastRun.Load(); ns != 0 {
		t := time.Unix(0, ns).UTC()
		snap.LastRunAt = &t
	}
	return snap
}

func (s *Scheduler) runOnce(ctx context.Context) {
	start := time.Now()
	s.lastRun.Store(start.UnixNano())
	s.runs.Add(1)

	defer func() {
		elapsed := time.Since(start).Milliseconds()
		s.lastDuration.Store(elapsed)
		if r := recover(); r != nil {
			s.panics.Add(1)
			s.log.Error("scheduler job panic recovered", "panic", r)
			return
		}
		s.log.Debug("scheduler run completed", "duration_ms", elapsed)
	}()

	s.job(ctx)
}

package scheduler

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/roteirods-byte/Saida-Posicional/internal/logger"
)

// AlignedScheduler runs a task on wall-clock boundaries of Interval, shifted
// by Offset. Scheduled ticks and manual kicks are served by the same
// goroutine, so runs never overlap.
type AlignedScheduler struct {
	Name           string
	Interval       time.Duration
	Offset         time.Duration
	RunImmediately bool

	ctx   context.Context
	clock func() time.Time
	kicks chan struct{}
}

func NewAlignedScheduler(ctx context.Context, interval, offset time.Duration) *AlignedScheduler {
	s := &AlignedScheduler{Interval: interval, Offset: offset, ctx: ctx}
	s.fillDefaults()
	return s
}

func (s *AlignedScheduler) fillDefaults() {
	if s.ctx == nil {
		s.ctx = context.Background()
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	if s.kicks == nil {
		s.kicks = make(chan struct{}, 1)
	}
	if s.Name == "" {
		s.Name = "scheduler"
	}
}

// Kick requests an extra run once the current one, if any, finishes.
// Pending kicks are merged.
func (s *AlignedScheduler) Kick() {
	if s == nil || s.kicks == nil {
		return
	}
	select {
	case s.kicks <- struct{}{}:
	default:
	}
}

// Start blocks until the context is cancelled.
func (s *AlignedScheduler) Start(task func()) {
	if s == nil {
		return
	}
	s.fillDefaults()
	switch {
	case task == nil:
		logger.Warnf("%s: no task, not starting", s.Name)
		return
	case s.Interval <= 0:
		logger.Warnf("%s: interval %s must be positive, not starting", s.Name, s.Interval)
		return
	case s.Offset < 0:
		logger.Warnf("%s: offset %s is negative, using 0", s.Name, s.Offset)
		s.Offset = 0
	}

	wakeAt, wait := s.nextWake(s.clock())
	logger.Infof("%s: every %s (offset %s, run_immediately=%v), first run %s in %s",
		s.Name, s.Interval, s.Offset, s.RunImmediately,
		wakeAt.Format(time.RFC3339), wait.Truncate(time.Second))
	if s.RunImmediately {
		s.safeRun(task)
	}
	for s.waitTurn() {
		s.safeRun(task)
	}
	logger.Infof("%s: stopped", s.Name)
}

// waitTurn sleeps until the next aligned wake-up or a kick. It reports false
// once the context is done.
func (s *AlignedScheduler) waitTurn() bool {
	if s.ctx.Err() != nil {
		return false
	}
	wakeAt, wait := s.nextWake(s.clock())
	if wait <= 0 {
		return true
	}
	logger.Debugf("%s: sleeping until %s", s.Name, wakeAt.Format(time.RFC3339))
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-s.ctx.Done():
		return false
	case <-s.kicks:
		logger.Infof("%s: kicked", s.Name)
		return true
	case <-timer.C:
		return true
	}
}

func (s *AlignedScheduler) safeRun(task func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("%s: task panic: %v\n%s", s.Name, r, debug.Stack())
		}
	}()
	task()
}

// nextWake returns the next Interval boundary after now plus Offset. An
// Offset of a whole Interval or more wraps around.
func (s *AlignedScheduler) nextWake(now time.Time) (wakeAt time.Time, wait time.Duration) {
	now = now.UTC()
	boundary := now.Truncate(s.Interval).Add(s.Interval)
	wakeAt = boundary.Add(s.Offset % s.Interval)
	return wakeAt, wakeAt.Sub(now)
}

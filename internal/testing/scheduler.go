package testing

import (
	"sync"
	"time"
)

// FakeTimer is a scheduled call that only runs when fired.
type FakeTimer struct {
	Delay time.Duration

	mu      sync.Mutex
	f       func()
	stopped bool
	fired   bool
}

// Stop cancels the timer. Reports whether it was still pending.
func (t *FakeTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	pending := !t.stopped && !t.fired
	t.stopped = true
	return pending
}

// Fire runs the scheduled call on the calling goroutine unless the timer was stopped or already fired.
func (t *FakeTimer) Fire() bool {
	t.mu.Lock()
	if t.stopped || t.fired {
		t.mu.Unlock()
		return false
	}
	t.fired = true
	f := t.f
	t.mu.Unlock()

	f()
	return true
}

// Stopped reports whether Stop was called.
func (t *FakeTimer) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

// FakeScheduler records scheduled calls instead of running them.
//
// Scheduled timers are also published on a buffered channel so tests can wait for them without holding locks.
type FakeScheduler struct {
	mu     sync.Mutex
	timers []*FakeTimer
	ch     chan *FakeTimer
}

// NewFakeScheduler returns an empty [FakeScheduler].
func NewFakeScheduler() *FakeScheduler {
	return &FakeScheduler{ch: make(chan *FakeTimer, 64)}
}

// Schedule records f to run after d.
func (s *FakeScheduler) Schedule(d time.Duration, f func()) *FakeTimer {
	t := &FakeTimer{Delay: d, f: f}

	s.mu.Lock()
	s.timers = append(s.timers, t)
	s.mu.Unlock()

	select {
	case s.ch <- t:
	default:
	}
	return t
}

// Next waits up to timeout for the next scheduled timer. Returns nil on timeout.
func (s *FakeScheduler) Next(timeout time.Duration) *FakeTimer {
	select {
	case t := <-s.ch:
		return t
	case <-time.After(timeout):
		return nil
	}
}

// Timers returns every timer scheduled so far.
func (s *FakeScheduler) Timers() []*FakeTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*FakeTimer(nil), s.timers...)
}

// Delays returns the delay of every timer scheduled so far.
func (s *FakeScheduler) Delays() []time.Duration {
	timers := s.Timers()
	delays := make([]time.Duration, len(timers))
	for i, t := range timers {
		delays[i] = t.Delay
	}
	return delays
}

package main

import (
	"context"
	"sync"
	"time"
)

// Dispatcher queues work for the interactive thread. Background tasks and
// timers Post closures; the game loop runs them with Drain.
type Dispatcher struct {
	queue chan func()
	done  chan struct{}
	once  sync.Once
}

func NewDispatcher(size int) *Dispatcher {
	return &Dispatcher{
		queue: make(chan func(), size),
		done:  make(chan struct{}),
	}
}

// Post blocks until fn is queued, ctx is done or the dispatcher is closed.
func (d *Dispatcher) Post(ctx context.Context, fn func()) bool {
	select {
	case d.queue <- fn:
		return true
	case <-ctx.Done():
		return false
	case <-d.done:
		return false
	}
}

// Drain runs the closures queued so far and returns how many ran.
// Closures posted while draining run on the next call.
func (d *Dispatcher) Drain() int {
	n := len(d.queue)
	for i := 0; i < n; i++ {
		select {
		case fn := <-d.queue:
			fn()
		default:
			return i
		}
	}
	return n
}

// Close unblocks pending and future Posts.
func (d *Dispatcher) Close() {
	d.once.Do(func() { close(d.done) })
}

// Timer is a single-shot timer whose callback runs on the interactive
// thread. Scheduling replaces any pending fire; a fire that lost a race
// with Stop or Schedule is dropped.
type Timer struct {
	d   *Dispatcher
	mu  sync.Mutex
	t   *time.Timer
	seq uint64
}

func (d *Dispatcher) NewTimer() *Timer {
	return &Timer{d: d}
}

// Schedule stops any pending fire and runs fn after delay.
func (t *Timer) Schedule(delay time.Duration, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.seq++
	seq := t.seq
	if t.t != nil {
		t.t.Stop()
	}
	t.t = time.AfterFunc(delay, func() {
		t.d.Post(context.Background(), func() { t.fire(seq, fn) })
	})
}

func (t *Timer) fire(seq uint64, fn func()) {
	t.mu.Lock()
	if seq != t.seq {
		t.mu.Unlock()
		return
	}
	t.t = nil
	t.mu.Unlock()
	fn()
}

// Stop cancels the pending fire, if any.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seq++
	if t.t != nil {
		t.t.Stop()
		t.t = nil
	}
}

// Pending reports whether a fire is scheduled.
func (t *Timer) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.t != nil
}

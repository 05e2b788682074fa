package services

import (
	"sync"
	"time"
)

type pendingCall struct {
	timer *time.Timer
	fn    func()
}

// Debouncer delays a call per key and replaces it when the key is triggered
// again before the delay runs out.
type Debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	pending map[string]*pendingCall
	stopped bool
	running sync.WaitGroup
}

func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay, pending: make(map[string]*pendingCall)}
}

// Trigger schedules fn for key. It reports false once the debouncer is stopped.
func (d *Debouncer) Trigger(key string, fn func()) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return false
	}
	if prev, ok := d.pending[key]; ok && prev.timer.Stop() {
		d.running.Done()
	}
	p := &pendingCall{fn: fn}
	d.running.Add(1)
	p.timer = time.AfterFunc(d.delay, func() { d.fire(key, p) })
	d.pending[key] = p
	return true
}

func (d *Debouncer) fire(key string, p *pendingCall) {
	defer d.running.Done()
	d.mu.Lock()
	current := d.pending[key] == p
	if current {
		delete(d.pending, key)
	}
	d.mu.Unlock()
	if current {
		p.fn()
	}
}

func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Flush runs every pending call now, in the caller's goroutine.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	var calls []func()
	for key, p := range d.pending {
		if p.timer.Stop() {
			delete(d.pending, key)
			calls = append(calls, p.fn)
			d.running.Done()
		}
	}
	d.mu.Unlock()
	for _, fn := range calls {
		fn()
	}
}

// Stop refuses new calls, flushes the pending ones and waits for calls
// already in flight.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()
	d.Flush()
	d.running.Wait()
}

package cache

import (
	"sync"
	"time"
)

// DefaultDebounceWindow is the quiescence window for suggestion requests.
const DefaultDebounceWindow = 150 * time.Millisecond

type pending[T any] struct {
	timer *time.Timer
	ch    chan T
}

// Debouncer coalesces rapid-fire calls on the same logical channel: each call
// resets that channel's quiescence timer, and only the last call's work
// function runs. A superseded caller's result channel is closed without a
// value ever being sent on it.
type Debouncer[T any] struct {
	mu      sync.Mutex
	window  time.Duration
	pending map[string]*pending[T]
	closed  bool
}

// NewDebouncer creates a debouncer with the given quiescence window.
// Non-positive windows fall back to DefaultDebounceWindow.
func NewDebouncer[T any](window time.Duration) *Debouncer[T] {
	if window <= 0 {
		window = DefaultDebounceWindow
	}
	return &Debouncer[T]{
		window:  window,
		pending: make(map[string]*pending[T]),
	}
}

// Trigger schedules fn to run after the quiescence window elapses with no
// further Trigger call on the same channel. The returned channel yields fn's
// result if this call survives, and is closed without a value if a later
// call supersedes it or the debouncer is closed.
func (d *Debouncer[T]) Trigger(channel string, fn func() T) <-chan T {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		ch := make(chan T)
		close(ch)
		return ch
	}

	if prev, ok := d.pending[channel]; ok {
		prev.timer.Stop()
		close(prev.ch)
	}

	p := &pending[T]{ch: make(chan T, 1)}
	p.timer = time.AfterFunc(d.window, func() {
		d.fire(channel, p, fn)
	})
	d.pending[channel] = p
	return p.ch
}

func (d *Debouncer[T]) fire(channel string, p *pending[T], fn func() T) {
	d.mu.Lock()
	if d.closed || d.pending[channel] != p {
		// Superseded between timer expiry and lock acquisition; the
		// superseding Trigger already closed our channel.
		d.mu.Unlock()
		return
	}
	delete(d.pending, channel)
	d.mu.Unlock()

	p.ch <- fn()
	close(p.ch)
}

// Close cancels all pending calls and closes their channels. Trigger calls
// after Close return an already-closed channel.
func (d *Debouncer[T]) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true
	for channel, p := range d.pending {
		p.timer.Stop()
		close(p.ch)
		delete(d.pending, channel)
	}
}

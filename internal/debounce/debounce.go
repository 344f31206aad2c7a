// Package debounce filters spurious repeated edges on a single input line.
package debounce

import "time"

// Filter accepts at most one edge per quiet window on one input line. It is
// called from the line's event-handler goroutine only and must stay
// non-blocking: the whole decision is one monotonic time comparison.
//
// Each line gets its own Filter; the per-line clocks are independent and are
// never shared across lines.
type Filter struct {
	window time.Duration
	last   time.Time
}

// New creates a filter whose clock starts at now, so an edge arriving within
// one window of startup is rejected.
func New(window time.Duration, now time.Time) *Filter {
	return &Filter{window: window, last: now}
}

// Accept reports whether an edge observed at now should be acted on. The
// boundary is inclusive: exactly one window since the last accepted edge
// accepts. On acceptance the clock advances to now; rejection changes
// nothing.
func (f *Filter) Accept(now time.Time) bool {
	if now.Sub(f.last) < f.window {
		return false
	}
	f.last = now
	return true
}

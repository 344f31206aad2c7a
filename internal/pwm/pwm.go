// Package pwm renders a brightness level as a duty-cycled square wave on a
// digital output line, in software.
package pwm

import (
	"context"
	"runtime"
	"time"

	"libdb.so/dimmerd/internal/brightness"
	"libdb.so/dimmerd/internal/hwio"
)

// Engine is a perpetually self-rescheduling task that times output-line
// transitions to approximate a level/max duty cycle. It never sleeps; each
// iteration does one time comparison and yields, so the achievable PWM
// resolution is bounded by how often the scheduler lets the loop run
// relative to the period.
//
// Engine only ever reads the brightness store; it is never a writer.
type Engine struct {
	levels *brightness.Store
	out    hwio.Output
	period time.Duration

	// PWM clock: the line level the engine last drove and when it last
	// flipped. Touched from the engine goroutine only.
	on       bool
	lastFlip time.Time

	// Overridable for tests.
	now   func() time.Time
	yield func()
}

// New creates an engine driving out from levels with the given period. The
// transition clock starts at "now" and the line is assumed LOW.
func New(levels *brightness.Store, out hwio.Output, period time.Duration) *Engine {
	return &Engine{
		levels:   levels,
		out:      out,
		period:   period,
		lastFlip: time.Now(),
		now:      time.Now,
		yield:    runtime.Gosched,
	}
}

// Run drives the output until ctx is canceled. Once Run returns, no further
// writes to the output occur.
func (e *Engine) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		e.step(e.now())
		e.yield()
	}
}

// step is one scheduling quantum of the engine.
func (e *Engine) step(now time.Time) {
	level := e.levels.Level()
	max := e.levels.Max()

	// 0% and 100% are not part of the oscillation math: force the line
	// and skip the dwell timing entirely. The write is unconditional, as
	// is re-arming on the next iteration.
	if level == 0 || level == max {
		e.on = level != 0
		e.out.Set(e.on)
		return
	}

	// Integer truncation here is intentional: brightness has exactly
	// max+1 perceptual steps.
	var dwell time.Duration
	if e.on {
		dwell = e.period * time.Duration(level) / time.Duration(max)
	} else {
		dwell = e.period - e.period*time.Duration(level)/time.Duration(max)
	}

	if now.Sub(e.lastFlip) >= dwell {
		e.on = !e.on
		e.out.Set(e.on)
		e.lastFlip = now
	}
}

// Package hwio declares the hardware collaborator surface the daemon drives:
// a provider of digital lines with edge interrupts. The core never talks to
// the GPIO character device directly; it only sees these interfaces.
package hwio

import (
	"time"

	"github.com/pkg/errors"
)

// Startup errors. Line setup is the only fallible part of the system; once
// the daemon is running there are no recoverable or fatal errors.
var (
	// ErrInvalidLine means a configured line offset does not exist on the
	// chip.
	ErrInvalidLine = errors.New("invalid line identifier")
	// ErrLineAcquisition means the chip refused to hand over a line.
	ErrLineAcquisition = errors.New("line acquisition failed")
	// ErrInterruptRegistration means edge reporting could not be set up on
	// an input line.
	ErrInterruptRegistration = errors.New("interrupt registration failed")
)

// Output is a digital output line. Set is called from the PWM engine's
// goroutine only.
type Output interface {
	// Set drives the line HIGH (true) or LOW (false).
	Set(on bool)
}

// EdgeHandler is called once per rising edge with the observation time. It
// runs on the provider's event goroutine and must not block: a handler may
// only touch pre-allocated state and hand further work off elsewhere.
type EdgeHandler func(now time.Time)

// Provider acquires lines from the host platform. All acquisition happens
// during startup; Close releases everything that was acquired, whether
// startup completed or not.
type Provider interface {
	// RequestOutput acquires offset as an output line driven LOW.
	RequestOutput(offset int) (Output, error)
	// RequestRisingEdge acquires offset as an input line and registers
	// handler for its rising edges.
	RequestRisingEdge(offset int, handler EdgeHandler) error
	// Close releases every line acquired so far. No handler runs and no
	// output write is possible after Close returns.
	Close() error
}

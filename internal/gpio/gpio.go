// Package gpio binds the daemon to the Linux GPIO character device. It is
// glue: the only logic here is offset validation and rollback of partially
// acquired lines.
package gpio

import (
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"github.com/warthog618/gpiod"
	"libdb.so/dimmerd/internal/hwio"
)

// Chip wraps a GPIO character device chip and tracks every requested line so
// that a failed startup releases all of them, not just some.
type Chip struct {
	chip   *gpiod.Chip
	logger *slog.Logger
	lines  []*gpiod.Line
}

var _ hwio.Provider = (*Chip)(nil)

// Open opens the named chip, e.g. "gpiochip0".
func Open(name string, logger *slog.Logger) (*Chip, error) {
	chip, err := gpiod.NewChip(name)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open gpio chip %q", name)
	}
	return &Chip{chip: chip, logger: logger}, nil
}

func (c *Chip) validate(offset int) error {
	if offset < 0 || offset >= c.chip.Lines() {
		return errors.Wrapf(hwio.ErrInvalidLine,
			"offset %d not on chip %s (%d lines)", offset, c.chip.Name, c.chip.Lines())
	}
	return nil
}

// RequestOutput implements hwio.Provider. The line starts LOW.
func (c *Chip) RequestOutput(offset int) (hwio.Output, error) {
	if err := c.validate(offset); err != nil {
		return nil, err
	}

	line, err := c.chip.RequestLine(offset, gpiod.AsOutput(0))
	if err != nil {
		return nil, errors.Wrapf(hwio.ErrLineAcquisition, "offset %d: %s", offset, err)
	}
	c.lines = append(c.lines, line)

	return &outputLine{line: line, logger: c.logger}, nil
}

// RequestRisingEdge implements hwio.Provider. The handler runs on the
// chip's event goroutine with the wall-clock observation time.
//
// The kernel's own per-line debounce is deliberately left off: edge
// filtering is the daemon's job and has its own acceptance semantics.
func (c *Chip) RequestRisingEdge(offset int, handler hwio.EdgeHandler) error {
	if err := c.validate(offset); err != nil {
		return err
	}

	line, err := c.chip.RequestLine(offset,
		gpiod.WithRisingEdge,
		gpiod.WithEventHandler(func(gpiod.LineEvent) {
			handler(time.Now())
		}))
	if err != nil {
		return errors.Wrapf(hwio.ErrInterruptRegistration, "offset %d: %s", offset, err)
	}
	c.lines = append(c.lines, line)

	return nil
}

// Close releases every acquired line and then the chip itself. Event
// handlers no longer fire once their line is closed.
func (c *Chip) Close() error {
	var firstErr error
	for i := len(c.lines) - 1; i >= 0; i-- {
		if err := c.lines[i].Close(); err != nil && firstErr == nil {
			firstErr = errors.Wrap(err, "failed to close line")
		}
	}
	c.lines = nil

	if err := c.chip.Close(); err != nil && firstErr == nil {
		firstErr = errors.Wrap(err, "failed to close chip")
	}
	return firstErr
}

// outputLine adapts a gpiod line to hwio.Output. Steady-state writes cannot
// meaningfully fail, so errors are logged rather than propagated.
type outputLine struct {
	line   *gpiod.Line
	logger *slog.Logger
}

func (o *outputLine) Set(on bool) {
	v := 0
	if on {
		v = 1
	}
	if err := o.line.SetValue(v); err != nil {
		o.logger.Warn(
			"failed to write output line",
			"offset", o.line.Offset(),
			"error", err)
	}
}

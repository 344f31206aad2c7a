// Package dimmerd drives a single dimmable light from two momentary
// push-buttons. Button edges are debounced, fed through a small saturating
// state machine that steps a shared brightness level, and a software PWM
// engine continuously renders that level on the light's output line.
package dimmerd

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"libdb.so/dimmerd/internal/brightness"
	"libdb.so/dimmerd/internal/debounce"
	"libdb.so/dimmerd/internal/gpio"
	"libdb.so/dimmerd/internal/hwio"
	"libdb.so/dimmerd/internal/pwm"
)

// debounceWindow is the quiet window between accepted edges on the same
// button. It is fixed, not configured.
const debounceWindow = 200 * time.Millisecond

// Daemon is the dimmer control loop.
type Daemon struct {
	cfg    *Config
	logger *slog.Logger

	levels  *brightness.Store
	machine *brightness.Machine

	// pending is the most recently accepted button event; a new edge
	// overwrites an unconsumed one. kick coalesces state machine runs:
	// edges accepted while a run is already pending collapse into it.
	pending brightness.Slot
	kick    chan struct{}
}

// NewDaemon creates a new dimmer daemon.
func NewDaemon(cfg *Config, logger *slog.Logger) (*Daemon, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	levels := brightness.NewStore(cfg.MaxLevel)
	return &Daemon{
		cfg:     cfg,
		logger:  logger,
		levels:  levels,
		machine: brightness.NewMachine(levels),
		kick:    make(chan struct{}, 1),
	}, nil
}

// Run acquires the configured lines and drives the light until the given
// context is canceled. All lines are released on return, after both loops
// have fully stopped.
func (d *Daemon) Run(ctx context.Context) error {
	chip, err := gpio.Open(d.cfg.Chip, d.logger)
	if err != nil {
		return err
	}
	return d.run(ctx, chip)
}

func (d *Daemon) run(ctx context.Context, lines hwio.Provider) error {
	// Both loops are awaited by errg.Wait below, so this releases the
	// lines only after no task can touch them anymore. It also rolls
	// back partial acquisition when any request below fails.
	defer lines.Close()

	out, err := lines.RequestOutput(d.cfg.LightLine)
	if err != nil {
		return errors.Wrap(err, "light line")
	}
	if err := d.watchButton(lines, d.cfg.UpLine, brightness.Increase); err != nil {
		return errors.Wrap(err, "up button")
	}
	if err := d.watchButton(lines, d.cfg.DownLine, brightness.Decrease); err != nil {
		return errors.Wrap(err, "down button")
	}

	engine := pwm.New(d.levels, out, time.Duration(d.cfg.Period))

	d.logger.Info(
		"dimmer running",
		"max_level", d.levels.Max(),
		"period", time.Duration(d.cfg.Period))

	errg, ctx := errgroup.WithContext(ctx)
	errg.Go(func() error {
		return engine.Run(ctx)
	})
	errg.Go(func() error {
		return d.updateLoop(ctx)
	})

	return errg.Wait()
}

// watchButton registers ev for offset's rising edges behind a fresh debounce
// filter. The handler runs in interrupt context: it touches only the
// filter's clock and the pending slot, then defers the actual brightness
// update to the update loop.
func (d *Daemon) watchButton(lines hwio.Provider, offset int, ev brightness.Event) error {
	filter := debounce.New(debounceWindow, time.Now())
	return lines.RequestRisingEdge(offset, func(now time.Time) {
		if !filter.Accept(now) {
			return
		}
		d.pending.Put(ev)
		d.queueUpdate()
	})
}

// queueUpdate schedules one state machine pass. Requests made while a pass
// is already pending are dropped; the pass will consume whichever event is
// latest when it runs.
func (d *Daemon) queueUpdate() {
	select {
	case d.kick <- struct{}{}:
	default:
	}
}

func (d *Daemon) updateLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-d.kick:
			level, state := d.machine.Apply(d.pending.Get())
			d.logger.Info(
				"brightness changed",
				"percent", d.levels.Percent(),
				"level", level,
				"state", state)
		}
	}
}

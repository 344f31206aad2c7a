// Package brightness holds the shared brightness level and the state machine
// that mutates it. The level is written only by the state machine and read
// concurrently by the PWM engine, so it lives behind an atomic.
package brightness

import "sync/atomic"

// State classifies the brightness level against its configured maximum.
type State uint8

const (
	// Off means the level is at its floor (0).
	Off State = iota
	// On means the level is strictly between the floor and the ceiling.
	On
	// Max means the level is at its ceiling.
	Max

	numStates = iota
)

func (s State) String() string {
	switch s {
	case Off:
		return "off"
	case On:
		return "on"
	case Max:
		return "max"
	default:
		return "invalid"
	}
}

// Event is a debounced button edge. None is the zero value and never changes
// the level.
type Event uint8

const (
	// None is the absence of a pending edge.
	None Event = iota
	// Increase asks for one more unit of brightness.
	Increase
	// Decrease asks for one less unit of brightness.
	Decrease

	numEvents = iota
)

func (e Event) String() string {
	switch e {
	case None:
		return "none"
	case Increase:
		return "increase"
	case Decrease:
		return "decrease"
	default:
		return "invalid"
	}
}

// Store is the shared brightness level. Increments and decrements come from
// the state machine only; the PWM engine merely reads. Individual reads and
// writes are atomic, which is all the two contexts need.
type Store struct {
	level atomic.Int32
	max   int32
}

// NewStore creates a store with level 0. A negative max is clamped to 0.
func NewStore(max int) *Store {
	if max < 0 {
		max = 0
	}
	return &Store{max: int32(max)}
}

// Level returns the current brightness level, always in [0, Max()].
func (s *Store) Level() int { return int(s.level.Load()) }

// Max returns the configured maximum level.
func (s *Store) Max() int { return int(s.max) }

// State computes the saturation state from the current level.
func (s *Store) State() State {
	switch s.level.Load() {
	case 0:
		return Off
	case s.max:
		return Max
	default:
		return On
	}
}

// Percent reports the level as a truncated percentage of the maximum.
// A zero maximum reports 0%.
func (s *Store) Percent() int {
	if s.max == 0 {
		return 0
	}
	return 100 * int(s.level.Load()) / int(s.max)
}

func (s *Store) increment() { s.level.Add(1) }
func (s *Store) decrement() { s.level.Add(-1) }

// Slot is the pending-event cell. Each accepted edge overwrites whatever was
// there before; if two edges land before the state machine runs, the earlier
// one is lost. Last event wins.
type Slot struct {
	v atomic.Int32
}

// Put records e as the pending event, replacing any previous one.
func (s *Slot) Put(e Event) { s.v.Store(int32(e)) }

// Get returns the most recently recorded event.
func (s *Slot) Get() Event { return Event(s.v.Load()) }

type action uint8

const (
	actNone action = iota
	actIncrement
	actDecrement
)

// transitions is the saturation policy. The level itself is never clamped:
// increment is absent exactly in the Max row and decrement exactly in the
// Off row, so the level cannot leave [0, max].
var transitions = [numStates][numEvents]action{
	Off: {None: actNone, Increase: actIncrement, Decrease: actNone},
	On:  {None: actNone, Increase: actIncrement, Decrease: actDecrement},
	Max: {None: actNone, Increase: actNone, Decrease: actDecrement},
}

// Machine applies debounced button events to a Store. It caches the
// saturation state and recomputes it after every pass. Apply must only be
// called from one goroutine; the machine is the store's sole writer.
type Machine struct {
	store *Store
	state State
}

// NewMachine creates a machine over store, classifying its current level.
func NewMachine(store *Store) *Machine {
	return &Machine{store: store, state: store.State()}
}

// State returns the cached saturation state.
func (m *Machine) State() State { return m.state }

// Apply runs one state machine pass for the given event and returns the
// resulting level and state. With a zero maximum the floor and the ceiling
// coincide and every event degenerates to a no-op.
func (m *Machine) Apply(e Event) (level int, state State) {
	if m.store.Max() == 0 {
		return m.store.Level(), m.state
	}

	switch transitions[m.state][e] {
	case actIncrement:
		m.store.increment()
	case actDecrement:
		m.store.decrement()
	}

	m.state = m.store.State()
	return m.store.Level(), m.state
}

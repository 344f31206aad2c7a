package brightness

import "testing"

func TestStoreClampsNegativeMax(t *testing.T) {
	s := NewStore(-3)
	if s.Max() != 0 {
		t.Fatalf("expected negative max clamped to 0, got %d", s.Max())
	}
}

func TestStoreState(t *testing.T) {
	s := NewStore(5)
	if st := s.State(); st != Off {
		t.Fatalf("expected Off at level 0, got %v", st)
	}

	s.increment()
	if st := s.State(); st != On {
		t.Fatalf("expected On at level 1, got %v", st)
	}

	for i := 0; i < 4; i++ {
		s.increment()
	}
	if st := s.State(); st != Max {
		t.Fatalf("expected Max at level 5, got %v", st)
	}
}

func TestStorePercentTruncates(t *testing.T) {
	s := NewStore(5)
	s.increment()
	s.increment()
	if p := s.Percent(); p != 40 {
		t.Fatalf("expected 40%%, got %d%%", p)
	}

	s.increment() // level 3 -> 60%
	if p := s.Percent(); p != 60 {
		t.Fatalf("expected 60%%, got %d%%", p)
	}
}

func TestStorePercentZeroMax(t *testing.T) {
	s := NewStore(0)
	if p := s.Percent(); p != 0 {
		t.Fatalf("expected 0%% with zero max, got %d%%", p)
	}
}

func TestMachineSaturatesAtMax(t *testing.T) {
	const max = 5
	s := NewStore(max)
	m := NewMachine(s)

	// More Increase events than levels; the extras must be no-ops.
	for i := 0; i < max+3; i++ {
		m.Apply(Increase)
	}
	if s.Level() != max {
		t.Fatalf("expected level %d after saturating, got %d", max, s.Level())
	}
	if m.State() != Max {
		t.Fatalf("expected state Max, got %v", m.State())
	}
}

func TestMachineSaturatesAtFloor(t *testing.T) {
	s := NewStore(5)
	m := NewMachine(s)

	m.Apply(Increase)
	for i := 0; i < 4; i++ {
		m.Apply(Decrease)
	}
	if s.Level() != 0 {
		t.Fatalf("expected level 0 after saturating down, got %d", s.Level())
	}
	if m.State() != Off {
		t.Fatalf("expected state Off, got %v", m.State())
	}
}

func TestMachineScenario(t *testing.T) {
	// Five ups from off reach max, further ups do nothing, five downs
	// return to off.
	s := NewStore(5)
	m := NewMachine(s)

	for i := 1; i <= 5; i++ {
		level, _ := m.Apply(Increase)
		if level != i {
			t.Fatalf("after %d ups expected level %d, got %d", i, i, level)
		}
	}
	if m.State() != Max {
		t.Fatalf("expected Max after 5 ups, got %v", m.State())
	}

	if level, _ := m.Apply(Increase); level != 5 {
		t.Fatalf("expected saturated level 5, got %d", level)
	}

	for i := 4; i >= 0; i-- {
		level, _ := m.Apply(Decrease)
		if level != i {
			t.Fatalf("expected level %d on the way down, got %d", i, level)
		}
	}
	if m.State() != Off {
		t.Fatalf("expected Off after 5 downs, got %v", m.State())
	}
}

func TestTransitionTableTotality(t *testing.T) {
	// Every (state, event) pair maps to exactly one defined action, and
	// the two saturating pairs are no-ops.
	for st := Off; st < numStates; st++ {
		for ev := None; ev < numEvents; ev++ {
			act := transitions[st][ev]
			if act != actNone && act != actIncrement && act != actDecrement {
				t.Fatalf("undefined action for (%v, %v)", st, ev)
			}
			if ev == None && act != actNone {
				t.Fatalf("None must be a no-op in state %v", st)
			}
		}
	}
	if transitions[Off][Decrease] != actNone {
		t.Fatal("Off+Decrease must be a no-op")
	}
	if transitions[Max][Increase] != actNone {
		t.Fatal("Max+Increase must be a no-op")
	}
}

func TestMachineZeroMaxDegenerates(t *testing.T) {
	s := NewStore(0)
	m := NewMachine(s)

	for _, ev := range []Event{Increase, Decrease, None, Increase} {
		level, _ := m.Apply(ev)
		if level != 0 {
			t.Fatalf("expected level pinned at 0 with zero max, got %d after %v", level, ev)
		}
	}
}

func TestMachineIgnoresNone(t *testing.T) {
	s := NewStore(5)
	m := NewMachine(s)

	m.Apply(Increase)
	level, state := m.Apply(None)
	if level != 1 || state != On {
		t.Fatalf("None changed state: level=%d state=%v", level, state)
	}
}

func TestSlotLastEventWins(t *testing.T) {
	var slot Slot
	if ev := slot.Get(); ev != None {
		t.Fatalf("expected empty slot to read None, got %v", ev)
	}

	slot.Put(Increase)
	slot.Put(Decrease)
	if ev := slot.Get(); ev != Decrease {
		t.Fatalf("expected last event to win, got %v", ev)
	}
}

package automaton

import (
	"sync/atomic"

	"stutterclock-go/x/mathx"
)

// Counters holds one visit counter per macro-state. The interrupt context is the
// only writer; any context may read. Each access is a single sequentially
// consistent atomic operation and there is no cross-counter snapshot isolation.
type Counters struct {
	c [MacroStates]atomic.Uint32
}

// Record counts one transition landing on macro.
func (c *Counters) Record(macro uint8) {
	c.c[macro&(MacroStates-1)].Add(1)
}

func (c *Counters) Load(macro uint8) uint32 {
	return c.c[macro&(MacroStates-1)].Load()
}

// Snapshot loads the four counters one after another.
func (c *Counters) Snapshot() Snapshot {
	var s Snapshot
	for i := range s.Counts {
		s.Counts[i] = c.c[i].Load()
	}
	return s
}

// Snapshot is a copy of the counters taken by a reader.
type Snapshot struct {
	Counts [MacroStates]uint32
}

// Total is the number of macro transitions observed.
func (s Snapshot) Total() uint64 {
	var t uint64
	for _, v := range s.Counts {
		t += uint64(v)
	}
	return t
}

// RatioMilli returns 4*count0/total in thousandths, rounded to nearest with
// exact ties to even.
// ok is false while no transition has been counted.
func (s Snapshot) RatioMilli() (milli uint64, ok bool) {
	total := s.Total()
	if total == 0 {
		return 0, false
	}
	return mathx.RoundDivEven(MacroStates*1000*uint64(s.Counts[0]), total), true
}

// Ratio is RatioMilli as a float, 0 when undefined.
func (s Snapshot) Ratio() float64 {
	total := s.Total()
	if total == 0 {
		return 0
	}
	return MacroStates * float64(s.Counts[0]) / float64(total)
}

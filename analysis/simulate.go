package analysis

import (
	"sort"

	"stutterclock-go/automaton"
	"stutterclock-go/errcode"
)

// Options configure a simulated run. The zero Seed selects the default seed;
// DefaultOptions matches the hardware.
type Options struct {
	Seed        uint16
	Mode        automaton.Mode
	Table       *automaton.Table // overrides Mode when set
	SubstepBits uint8
}

// Result covers one chunk of firings.
type Result struct {
	Firings    uint32
	Ticks      uint32
	Snapshot   automaton.Snapshot // transitions counted in this chunk only
	RatioMilli uint64
	// Intervals is a histogram of firings between consecutive ticks.
	Intervals map[uint32]uint32
}

func DefaultOptions() Options {
	return Options{Seed: automaton.DefaultSeed, SubstepBits: automaton.SubstepBits}
}

// ExpectedTicks is the tick count of an ideal clock over the same firings.
func (r Result) ExpectedTicks(substepBits uint8) int64 {
	return int64(r.Firings >> (substepBits + 2))
}

// Excess is origin visits above the ideal count; positive means running fast.
func (r Result) Excess(substepBits uint8) int64 {
	return int64(r.Snapshot.Counts[0]) - r.ExpectedTicks(substepBits)
}

// IntervalKeys lists the observed intervals in ascending order.
func (r Result) IntervalKeys() []uint32 {
	keys := make([]uint32, 0, len(r.Intervals))
	for k := range r.Intervals {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

type nopPin struct{}

func (nopPin) Set(bool) {}

// Simulator drives a real Automaton with inert outputs. Successive Run calls
// continue the same walk.
type Simulator struct {
	auto     *automaton.Automaton
	counters *automaton.Counters
	k        uint8

	prev      automaton.Snapshot
	sinceTick uint32
	seenTick  bool
}

func NewSimulator(o Options) (*Simulator, error) {
	opts := []automaton.Option{automaton.WithMode(o.Mode), automaton.WithSubstepBits(o.SubstepBits)}
	if o.Seed != 0 {
		opts = append(opts, automaton.WithSeed(o.Seed))
	}
	if o.Table != nil {
		opts = append(opts, automaton.WithTable(o.Table))
	}
	counters := &automaton.Counters{}
	inbox := &automaton.Handoff[automaton.Handles]{}
	if err := inbox.Put(automaton.Handles{Indicator: nopPin{}, ActuatorA: nopPin{}, ActuatorB: nopPin{}}); err != nil {
		return nil, err
	}
	a, err := automaton.New(counters, inbox, opts...)
	if err != nil {
		return nil, errcode.Wrap(errcode.Of(err), "analysis.NewSimulator", err)
	}
	return &Simulator{auto: a, counters: counters, k: a.SubstepBits()}, nil
}

func (s *Simulator) SubstepBits() uint8 { return s.k }

// Run fires the automaton the given number of times.
func (s *Simulator) Run(firings uint32) Result {
	r := Result{Firings: firings, Intervals: map[uint32]uint32{}}
	ticks := s.auto.Ticks()
	for i := uint32(0); i < firings; i++ {
		s.auto.Fire()
		s.sinceTick++
		if t := s.auto.Ticks(); t != ticks {
			ticks = t
			r.Ticks++
			// The first tick has no predecessor to measure from.
			if s.seenTick {
				r.Intervals[s.sinceTick]++
			}
			s.seenTick = true
			s.sinceTick = 0
		}
	}
	cur := s.counters.Snapshot()
	for i := range cur.Counts {
		r.Snapshot.Counts[i] = cur.Counts[i] - s.prev.Counts[i]
	}
	s.prev = cur
	r.RatioMilli, _ = r.Snapshot.RatioMilli()
	return r
}

// Simulate is a single run from reset.
func Simulate(o Options, firings uint32) (Result, error) {
	s, err := NewSimulator(o)
	if err != nil {
		return Result{}, err
	}
	return s.Run(firings), nil
}

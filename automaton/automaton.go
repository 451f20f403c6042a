// Package automaton implements the interrupt-side clock walk: a 16-bit LFSR feeds
// a four-state weighted random walk, transitions are counted in shared atomics and
// the escapement pulses the outputs whenever the walk re-enters the origin.
//
// Everything except Counters and the observation accessors on Automaton belongs to
// the interrupt context. Fire never blocks and never allocates.
package automaton

import (
	"sync/atomic"

	"stutterclock-go/errcode"
)

// TimerAck acknowledges the periodic interrupt at the peripheral.
type TimerAck interface {
	ClearInterrupt()
}

// Handles are built by the setup context and owned by the interrupt context after
// the first firing.
type Handles struct {
	Timer     TimerAck
	Indicator Pin
	ActuatorA Pin
	ActuatorB Pin
}

func (h Handles) outputs() Outputs {
	return Outputs{Indicator: h.Indicator, ActuatorA: h.ActuatorA, ActuatorB: h.ActuatorB}
}

// Validate rejects handles with a missing output line. Call it before Put: the
// interrupt context does not check again.
func (h Handles) Validate() error {
	if h.Indicator == nil || h.ActuatorA == nil || h.ActuatorB == nil {
		return errcode.New(errcode.InvalidParams, "automaton.Handles", "missing output pin")
	}
	return nil
}

// Automaton is the per-interrupt state machine.
type Automaton struct {
	// interrupt context only
	rng     LFSR
	engine  *Engine
	esc     Escapement
	handles Handles
	owned   bool
	inbox   *Handoff[Handles]

	counters *Counters

	// published for the idle context
	position atomic.Uint32
	ticks    atomic.Uint32
	firings  atomic.Uint32
}

// New wires an automaton to its counters and to the handoff the setup context
// will fill. Handles may be installed before or after New.
func New(counters *Counters, inbox *Handoff[Handles], opts ...Option) (*Automaton, error) {
	if counters == nil || inbox == nil {
		return nil, errcode.New(errcode.InvalidParams, "automaton.New", "nil counters or handoff")
	}
	o := options{seed: DefaultSeed, table: &Stutter, k: SubstepBits}
	for _, opt := range opts {
		opt(&o)
	}
	rng, err := NewLFSR(o.seed)
	if err != nil {
		return nil, errcode.Wrap(errcode.Of(err), "automaton.New", err)
	}
	eng, err := NewEngine(o.table, o.k)
	if err != nil {
		return nil, err
	}
	return &Automaton{
		rng:      rng,
		engine:   eng,
		inbox:    inbox,
		counters: counters,
	}, nil
}

// Fire runs one interrupt period: draw, claim, acknowledge, advance, count, drive.
// The generator advances on every call, including calls before the handles exist.
func (a *Automaton) Fire() {
	draw := a.rng.Next4()
	a.firings.Add(1)

	if !a.owned {
		h, ok := a.inbox.Claim()
		if !ok {
			return
		}
		a.handles = h
		a.owned = true
	}

	if a.handles.Timer != nil {
		a.handles.Timer.ClearInterrupt()
	}

	if next, moved := a.engine.Advance(draw); moved {
		a.counters.Record(next)
	}

	if a.esc.Drive(a.engine.AtOrigin(), a.handles.outputs()) {
		a.ticks.Add(1)
	}
	a.position.Store(a.engine.State())
}

// Position is the macro-state and substep after the latest firing.
func (a *Automaton) Position() (macro, substep uint8) {
	s := a.position.Load()
	k := a.engine.SubstepBits()
	return uint8(s >> k), uint8(s & (1<<k - 1))
}

// Ticks counts tick events since reset.
func (a *Automaton) Ticks() uint32 { return a.ticks.Load() }

// Firings counts calls to Fire since reset.
func (a *Automaton) Firings() uint32 { return a.firings.Load() }

// SubstepBits reports the dwell depth the automaton was built with.
func (a *Automaton) SubstepBits() uint8 { return a.engine.SubstepBits() }

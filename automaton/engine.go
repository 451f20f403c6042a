package automaton

import "stutterclock-go/errcode"

const (
	// SubstepBits is the default substep depth: two firings per macro dwell.
	SubstepBits = 1
	// MaxSubstepBits bounds the dwell at sixteen firings.
	MaxSubstepBits = 4
)

// Engine advances the packed walk state macro<<k | substep.
type Engine struct {
	table *Table
	k     uint8
	state uint32
}

func NewEngine(t *Table, k uint8) (*Engine, error) {
	if t == nil {
		return nil, errcode.InvalidTable
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if k > MaxSubstepBits {
		return nil, errcode.New(errcode.InvalidParams, "automaton.NewEngine", "substep bits > 4")
	}
	return &Engine{table: t, k: k}, nil
}

// Advance performs one firing worth of progress. A macro transition is taken only
// when the substep wraps; the row is the macro-state held before this increment and
// the column is draw. No other input influences the result.
func (e *Engine) Advance(draw uint8) (next uint8, transitioned bool) {
	e.state++
	if e.state&e.substepMask() != 0 {
		return e.Macro(), false
	}
	// state is now (m+1)<<k for the previous macro m in 0..3, so row >= 0.
	row := (e.state >> e.k) - 1
	next = e.table[row][draw&(Draws-1)]
	e.state = uint32(next) << e.k
	return next, true
}

func (e *Engine) substepMask() uint32 { return 1<<e.k - 1 }

// State is the packed value.
func (e *Engine) State() uint32      { return e.state }
func (e *Engine) Macro() uint8       { return uint8(e.state >> e.k) }
func (e *Engine) Substep() uint8     { return uint8(e.state & e.substepMask()) }
func (e *Engine) SubstepBits() uint8 { return e.k }

// AtOrigin reports macro 0, substep 0: the tick position.
func (e *Engine) AtOrigin() bool { return e.state == 0 }

package automaton

import "stutterclock-go/errcode"

const (
	// MacroStates is the number of positions on the ring.
	MacroStates = 4
	// Draws is the number of distinct 4-bit draws.
	Draws = 16
)

// Table maps (current macro-state, draw) to the next macro-state.
// The share of columns holding a value is that transition's probability in sixteenths.
type Table [MacroStates][Draws]uint8

// Stutter is the weighted walk driven on the hardware:
//
//	from 0: 1/16 stay, 14/16 -> 1, 1/16 -> 3
//	from 1: 1/16 -> 0, 1/16 stay, 13/16 -> 2, 1/16 -> 3
//	from 2: 2/16 stay, 14/16 -> 3
//	from 3: 14/16 -> 0, 1/16 -> 1, 1/16 -> 2
var Stutter = Table{
	{0, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 3},
	{0, 1, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 3},
	{2, 2, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3},
	{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 2},
}

// Steady always advances one position around the ring.
var Steady = Table{
	{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1},
	{2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2},
	{3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3},
	{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
}

// Validate reports an out-of-range next state.
func (t *Table) Validate() error {
	for r := range t {
		for c := range t[r] {
			if t[r][c] >= MacroStates {
				return errcode.InvalidTable
			}
		}
	}
	return nil
}

// Weights counts, per row, how many of the sixteen draws lead to each next state.
func (t *Table) Weights() [MacroStates][MacroStates]uint8 {
	var w [MacroStates][MacroStates]uint8
	for r := range t {
		for _, next := range t[r] {
			w[r][next&(MacroStates-1)]++
		}
	}
	return w
}

// Probabilities is Weights scaled to [0,1].
func (t *Table) Probabilities() [MacroStates][MacroStates]float64 {
	var p [MacroStates][MacroStates]float64
	w := t.Weights()
	for r := range w {
		for c := range w[r] {
			p[r][c] = float64(w[r][c]) / Draws
		}
	}
	return p
}

// Mode selects which table drives the walk. It is fixed at setup.
type Mode uint8

const (
	ModeStutter Mode = iota
	ModeSteady
)

func (m Mode) String() string {
	switch m {
	case ModeSteady:
		return "steady"
	default:
		return "stutter"
	}
}

// ParseMode accepts "stutter" (or empty) and "steady".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "stutter":
		return ModeStutter, nil
	case "steady":
		return ModeSteady, nil
	}
	return ModeStutter, errcode.InvalidMode
}

// Table returns the table for the mode.
func (m Mode) Table() *Table {
	if m == ModeSteady {
		return &Steady
	}
	return &Stutter
}

package automaton

type options struct {
	seed  uint16
	table *Table
	k     uint8
}

type Option func(*options)

// WithSeed sets the LFSR seed (default DefaultSeed). Zero is rejected by New.
func WithSeed(seed uint16) Option {
	return func(o *options) {
		o.seed = seed
	}
}

// WithMode selects the stutter (default) or steady table.
func WithMode(m Mode) Option {
	return func(o *options) {
		o.table = m.Table()
	}
}

// WithTable overrides the transition table.
func WithTable(t *Table) Option {
	return func(o *options) {
		o.table = t
	}
}

// WithSubstepBits sets the dwell to 2^k firings per macro-state (default 1).
func WithSubstepBits(k uint8) Option {
	return func(o *options) {
		o.k = k
	}
}

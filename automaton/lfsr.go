package automaton

import "stutterclock-go/errcode"

const (
	// DefaultSeed is the reset value of the register.
	DefaultSeed uint16 = 0xACE1
	// TapMask is the Galois feedback polynomial x^16 + x^14 + x^13 + x^11 + 1.
	TapMask uint16 = 0xB400
)

// LFSR is a 16-bit Galois linear-feedback shift register.
// The zero register is absorbing, so construction refuses a zero seed.
type LFSR struct {
	reg uint16
}

func NewLFSR(seed uint16) (LFSR, error) {
	if seed == 0 {
		return LFSR{}, errcode.ZeroSeed
	}
	return LFSR{reg: seed}, nil
}

// Step shifts once and returns the bit that fell out.
func (l *LFSR) Step() uint8 {
	lsb := l.reg & 1
	l.reg >>= 1
	if lsb != 0 {
		l.reg ^= TapMask
	}
	return uint8(lsb)
}

// Next4 shifts four times and returns the extracted bits, first bit most significant.
func (l *LFSR) Next4() uint8 {
	var v uint8
	for i := 0; i < 4; i++ {
		v = v<<1 | l.Step()
	}
	return v
}

func (l *LFSR) Register() uint16 { return l.reg }

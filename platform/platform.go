// Package platform supplies the hardware collaborators of the clock: three output
// lines, a periodic interrupt, a status transport, a wait-for-interrupt primitive
// and an optional status pixel. factories_host.go backs them with fakes for host
// builds and tests; factories_rp2xxx.go drives RP2040 peripherals.
package platform

import (
	"image/color"
	"time"

	"stutterclock-go/automaton"
	"stutterclock-go/errcode"
	"stutterclock-go/report"
	"stutterclock-go/types"
)

// OutputPin is a push-pull output, configured low by Setup.
type OutputPin interface {
	Set(level bool)
	Get() bool
	Number() int
}

// ActuatorDriveMilliamps is the pad current for both actuator lines. Outputs
// otherwise keep the pad default (4 mA on RP2040).
const ActuatorDriveMilliamps = 2

// driveLimiter is implemented by outputs whose pad current can be reduced.
type driveLimiter interface {
	SetDriveMilliamps(ma uint8)
}

func limitActuators(b *Board) {
	for _, p := range []OutputPin{b.ActuatorA, b.ActuatorB} {
		if d, ok := p.(driveLimiter); ok {
			d.SetDriveMilliamps(ActuatorDriveMilliamps)
		}
	}
}

// PeriodicTimer fires handler once per period from interrupt context.
// Firings never overlap.
type PeriodicTimer interface {
	Start(handler func()) error
	Stop()
	ClearInterrupt()
	Period() time.Duration
}

// StatusPixel shows the walk position on an RGB LED. Idle context only.
type StatusPixel interface {
	Show(macro uint8, tick bool) error
}

// Board is the result of platform setup. After Handles() has been passed to the
// interrupt context the setup context must not touch the pins or timer again.
type Board struct {
	Name      string
	Indicator OutputPin
	ActuatorA OutputPin
	ActuatorB OutputPin
	Timer     PeriodicTimer
	Transport report.Transport
	Waker     report.Waker
	Pixel     StatusPixel // nil when the board has none
}

func (b *Board) Handles() automaton.Handles {
	return automaton.Handles{
		Timer:     b.Timer,
		Indicator: b.Indicator,
		ActuatorA: b.ActuatorA,
		ActuatorB: b.ActuatorB,
	}
}

// ValidatePins rejects out-of-range or shared pin assignments.
func ValidatePins(p types.PinMap, maxPin int) error {
	used := map[int]string{}
	for _, a := range []struct {
		name string
		n    int
	}{
		{"indicator", p.Indicator},
		{"actuator_a", p.ActuatorA},
		{"actuator_b", p.ActuatorB},
		{"pixel", p.Pixel},
	} {
		if a.name == "pixel" && a.n < 0 {
			continue
		}
		if a.n < 0 || a.n > maxPin {
			return errcode.New(errcode.UnknownPin, "platform.ValidatePins", a.name)
		}
		if other, dup := used[a.n]; dup {
			return errcode.New(errcode.PinInUse, "platform.ValidatePins", a.name+" shares a pin with "+other)
		}
		used[a.n] = a.name
	}
	return nil
}

// Palette colours per macro-state; a tick shows white.
var Palette = [automaton.MacroStates]color.RGBA{
	{R: 0x60, G: 0x60, B: 0x60, A: 0xFF},
	{R: 0xFF, A: 0xFF},
	{G: 0xFF, A: 0xFF},
	{B: 0xFF, A: 0xFF},
}

var tickColour = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}

// StateColour is the colour for a walk position, scaled by brightness/255.
func StateColour(macro uint8, tick bool, brightness uint8) color.RGBA {
	c := Palette[macro&(automaton.MacroStates-1)]
	if tick {
		c = tickColour
	}
	scale := func(v uint8) uint8 { return uint8(uint16(v) * uint16(brightness) / 255) }
	return color.RGBA{R: scale(c.R), G: scale(c.G), B: scale(c.B), A: 0xFF}
}

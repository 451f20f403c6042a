//go:build rp2040

// boardtest walks the clock outputs through a fixed sequence so the wiring can
// be checked with a meter or by eye before the clock is run.
package main

import (
	"time"

	"stutterclock-go/automaton"
	"stutterclock-go/platform"
	"stutterclock-go/services/config"
)

// ---------- Configuration ----------

const (
	// Sequencing timing
	stepDelay  = 300 * time.Millisecond
	pulseWidth = 125 * time.Millisecond
	dwell      = 2 * time.Second

	// Cycles: 0 = loop forever
	cyclesToRun = 0
)

var profile = config.DefaultProfile

func main() {
	time.Sleep(2 * time.Second)
	println("[boardtest] boot, profile", profile)

	cfg, err := config.Load(profile)
	if err != nil {
		fail("config", err)
	}
	b, err := platform.Setup(cfg)
	if err != nil {
		fail("platform", err)
	}

	for cycle := 1; cyclesToRun == 0 || cycle <= cyclesToRun; cycle++ {
		println("[boardtest] cycle", cycle)

		for _, step := range []struct {
			name string
			pin  platform.OutputPin
		}{
			{"indicator", b.Indicator},
			{"actuator_a", b.ActuatorA},
			{"actuator_b", b.ActuatorB},
		} {
			println("[boardtest]", step.name, "GP", step.pin.Number(), "high")
			step.pin.Set(true)
			time.Sleep(stepDelay)
			step.pin.Set(false)
			time.Sleep(stepDelay)
		}

		// Drive the coil the way the escapement does, one tick per second.
		var esc automaton.Escapement
		out := automaton.Outputs{Indicator: b.Indicator, ActuatorA: b.ActuatorA, ActuatorB: b.ActuatorB}
		for i := 0; i < 4; i++ {
			esc.Drive(true, out)
			println("[boardtest] tick, tock =", esc.Tock())
			time.Sleep(pulseWidth)
			esc.Drive(false, out)
			time.Sleep(time.Second - pulseWidth)
		}

		if b.Pixel != nil {
			for m := uint8(0); m < automaton.MacroStates; m++ {
				if err := b.Pixel.Show(m, false); err != nil {
					println("[boardtest] pixel error:", err.Error())
				}
				time.Sleep(stepDelay)
			}
			_ = b.Pixel.Show(0, true)
		}
		time.Sleep(dwell)
	}
	println("[boardtest] done")
}

func fail(stage string, err error) {
	for {
		println("[boardtest]", stage, "error:", err.Error())
		time.Sleep(5 * time.Second)
	}
}

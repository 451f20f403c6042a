package automaton

// Pin is a digital output line.
type Pin interface {
	Set(level bool)
}

// Outputs are the three lines driven on every firing.
type Outputs struct {
	Indicator Pin
	ActuatorA Pin
	ActuatorB Pin
}

// Escapement turns the walk position into pin levels. Each time the walk sits at
// the origin it pulses the indicator and strikes one actuator, alternating sides.
type Escapement struct {
	tock bool
}

// Drive writes all three lines and reports whether this firing was a tick.
func (e *Escapement) Drive(atOrigin bool, out Outputs) bool {
	if !atOrigin {
		out.Indicator.Set(false)
		out.ActuatorA.Set(false)
		out.ActuatorB.Set(false)
		return false
	}
	out.Indicator.Set(true)
	e.tock = !e.tock
	if e.tock {
		out.ActuatorA.Set(false)
		out.ActuatorB.Set(true)
	} else {
		out.ActuatorA.Set(true)
		out.ActuatorB.Set(false)
	}
	return true
}

// Tock is the flag value after the most recent tick.
func (e *Escapement) Tock() bool { return e.tock }

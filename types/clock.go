package types

// ------------------------
// Board profile
// ------------------------

// BoardConfig is everything the setup context needs to bring the clock up.
// It is read once at boot; nothing in it changes while the clock runs.
type BoardConfig struct {
	Name      string          `json:"name" yaml:"name"`
	PeriodMs  uint32          `json:"period_ms" yaml:"period_ms"`             // interrupt period, 125 on hardware
	Dwell     uint8           `json:"dwell,omitempty" yaml:"dwell"`           // firings per macro-state: 1,2,4,8,16 (default 2)
	Mode      string          `json:"mode,omitempty" yaml:"mode"`             // "stutter" | "steady"
	Seed      uint16          `json:"seed,omitempty" yaml:"seed"`             // 0 => default seed
	SeedLabel string          `json:"seed_label,omitempty" yaml:"seed_label"` // host only: derive seed from a label
	Pins      PinMap          `json:"pins" yaml:"pins"`
	Transport TransportConfig `json:"transport" yaml:"transport"`
	MonitorS  uint32          `json:"monitor_s,omitempty" yaml:"monitor_s"` // host monitor log interval, seconds
}

// PinMap assigns GPIO numbers. Pixel < 0 disables the status pixel.
type PinMap struct {
	Indicator int `json:"indicator" yaml:"indicator"`
	ActuatorA int `json:"actuator_a" yaml:"actuator_a"`
	ActuatorB int `json:"actuator_b" yaml:"actuator_b"`
	Pixel     int `json:"pixel" yaml:"pixel"`
}

// ------------------------
// Clock telemetry (bus payloads)
// ------------------------

// StatsValue mirrors one reported status line.
type StatsValue struct {
	RatioMilli uint64    `json:"ratio_milli"`
	Counts     [4]uint32 `json:"counts"`
	Total      uint64    `json:"total"`
	TSms       int64     `json:"ts_ms"`
}

// TickValue is published by the idle context after it sees new tick events.
type TickValue struct {
	Ticks   uint32 `json:"ticks"`   // cumulative tick events
	Firings uint32 `json:"firings"` // cumulative timer firings
	TSms    int64  `json:"ts_ms"`
}

// PositionValue answers clock/position/get.
type PositionValue struct {
	Macro   uint8 `json:"macro"`
	Substep uint8 `json:"substep"`
}

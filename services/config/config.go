package config

import (
	"context"

	"stutterclock-go/automaton"
	"stutterclock-go/bus"
	"stutterclock-go/errcode"
	"stutterclock-go/types"
	"stutterclock-go/x/mathx"
)

const (
	serviceName  = "config"
	configPrefix = "config"

	DefaultProfile  = "pico"
	DefaultPeriodMs = 125
	DefaultDwell    = 2
	DefaultMonitorS = 5
)

var (
	TopicClock   = bus.T(configPrefix, "clock")
	TopicMonitor = bus.T(configPrefix, "monitor")
)

// EmbeddedProfileLookup allows overriding how profiles are resolved.
var EmbeddedProfileLookup = embeddedProfile

// Load resolves a named profile, fills defaults, derives the seed and validates.
func Load(name string) (types.BoardConfig, error) {
	if name == "" {
		name = DefaultProfile
	}
	cfg, ok := EmbeddedProfileLookup(name)
	if !ok {
		return types.BoardConfig{}, errcode.New(errcode.UnknownBoard, "config.Load", name)
	}
	return Finish(cfg)
}

// Finish applies defaults to a decoded profile and validates it. An absent
// transport kind means the USB console.
func Finish(cfg types.BoardConfig) (types.BoardConfig, error) {
	if cfg.Dwell == 0 {
		cfg.Dwell = DefaultDwell
	}
	if cfg.Mode == "" {
		cfg.Mode = automaton.ModeStutter.String()
	}
	if cfg.Transport.Kind == "" {
		cfg.Transport.Kind = types.TransportUSB
	}
	if cfg.MonitorS == 0 {
		cfg.MonitorS = DefaultMonitorS
	}
	if cfg.Seed == 0 && cfg.SeedLabel != "" {
		s, err := SeedFromLabel(cfg.SeedLabel)
		if err != nil {
			return cfg, err
		}
		cfg.Seed = s
	}
	if cfg.Seed == 0 {
		cfg.Seed = automaton.DefaultSeed
	}
	return cfg, Validate(cfg)
}

// Validate rejects profiles the platform could not bring up.
func Validate(cfg types.BoardConfig) error {
	const op = "config.Validate"
	if cfg.PeriodMs == 0 {
		return errcode.New(errcode.InvalidParams, op, "period_ms must be > 0")
	}
	if _, err := SubstepBits(cfg.Dwell); err != nil {
		return err
	}
	if _, err := automaton.ParseMode(cfg.Mode); err != nil {
		return errcode.Wrap(errcode.InvalidMode, op, err)
	}
	switch cfg.Transport.Kind {
	case types.TransportUSB, types.TransportUART, types.TransportStdout, types.TransportNone:
	default:
		return errcode.New(errcode.Unsupported, op, "transport "+string(cfg.Transport.Kind))
	}
	p := cfg.Pins
	for _, pair := range [][2]int{
		{p.Indicator, p.ActuatorA}, {p.Indicator, p.ActuatorB}, {p.ActuatorA, p.ActuatorB},
		{p.Pixel, p.Indicator}, {p.Pixel, p.ActuatorA}, {p.Pixel, p.ActuatorB},
	} {
		if pair[0] >= 0 && pair[0] == pair[1] {
			return errcode.New(errcode.PinInUse, op, "pins must be distinct")
		}
	}
	return nil
}

// SubstepBits converts a dwell (firings per macro-state, a power of two) into the
// engine's substep bit count.
func SubstepBits(dwell uint8) (uint8, error) {
	if dwell == 0 || dwell&(dwell-1) != 0 || !mathx.Between(dwell, 1, 1<<automaton.MaxSubstepBits) {
		return 0, errcode.New(errcode.InvalidParams, "config.SubstepBits", "dwell must be 1, 2, 4, 8 or 16")
	}
	var k uint8
	for d := dwell; d > 1; d >>= 1 {
		k++
	}
	return k, nil
}

// Options turns a finished profile into automaton options.
func Options(cfg types.BoardConfig) ([]automaton.Option, error) {
	k, err := SubstepBits(cfg.Dwell)
	if err != nil {
		return nil, err
	}
	mode, err := automaton.ParseMode(cfg.Mode)
	if err != nil {
		return nil, err
	}
	return []automaton.Option{
		automaton.WithSeed(cfg.Seed),
		automaton.WithMode(mode),
		automaton.WithSubstepBits(k),
	}, nil
}

// -----------------------------------------------------------------------------
// Config Service
// -----------------------------------------------------------------------------

type Service struct {
	Name string
	cfg  types.BoardConfig
}

func NewService(cfg types.BoardConfig) *Service {
	return &Service{Name: serviceName, cfg: cfg}
}

// Publish puts the active profile and the monitor settings on the bus as
// retained messages.
func (s *Service) Publish(conn *bus.Connection) {
	conn.Publish(conn.NewMessage(TopicClock, s.cfg, true))
	conn.Publish(conn.NewMessage(TopicMonitor, map[string]any{
		"interval":       float64(s.cfg.MonitorS),
		"query_position": true,
	}, true))
}

// Start publishes once; retained messages make later subscribers see the profile.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) {
	if ctx.Err() != nil {
		return
	}
	s.Publish(conn)
	println("[config] profile", s.cfg.Name, "published")
}

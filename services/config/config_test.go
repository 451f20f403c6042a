package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"stutterclock-go/automaton"
	"stutterclock-go/bus"
	"stutterclock-go/errcode"
	"stutterclock-go/platform"
	"stutterclock-go/types"
)

func TestLoadEmbeddedProfiles(t *testing.T) {
	for _, name := range []string{"pico", "rp2040-zero", "pico-uart", "host", "host-steady"} {
		t.Run(name, func(t *testing.T) {
			cfg, err := Load(name)
			if err != nil {
				t.Fatalf("Load(%q): %v", name, err)
			}
			if cfg.Name != name || cfg.PeriodMs != 125 || cfg.Dwell != 2 || cfg.Seed == 0 {
				t.Fatalf("unexpected profile: %+v", cfg)
			}
		})
	}
}

func TestLoadDefaultsAndPixel(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Name != DefaultProfile || cfg.Pins.Pixel != -1 {
		t.Fatalf("default profile = %+v", cfg)
	}
	if cfg.Seed != automaton.DefaultSeed || cfg.Mode != "stutter" || cfg.MonitorS != DefaultMonitorS {
		t.Fatalf("defaults not applied: %+v", cfg)
	}

	zero, _ := Load("rp2040-zero")
	if zero.Pins.Pixel != 16 {
		t.Fatalf("rp2040-zero pixel = %d", zero.Pins.Pixel)
	}
	steady, _ := Load("host-steady")
	if steady.Mode != "steady" {
		t.Fatalf("host-steady mode = %q", steady.Mode)
	}
}

func TestLoadUnknownProfile(t *testing.T) {
	if _, err := Load("esp32"); errcode.Of(err) != errcode.UnknownBoard {
		t.Fatalf("err = %v, want unknown_board", err)
	}
}

func TestLookupOverride(t *testing.T) {
	old := EmbeddedProfileLookup
	EmbeddedProfileLookup = func(name string) (types.BoardConfig, bool) {
		return types.BoardConfig{
			Name:      name,
			PeriodMs:  10,
			Dwell:     8,
			Mode:      "steady",
			Seed:      0x1234,
			Pins:      types.PinMap{Indicator: 1, ActuatorA: 2, ActuatorB: 3, Pixel: -1},
			Transport: types.TransportConfig{Kind: types.TransportNone},
		}, true
	}
	t.Cleanup(func() { EmbeddedProfileLookup = old })

	cfg, err := Load("bench")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Seed != 0x1234 || cfg.Dwell != 8 {
		t.Fatalf("override ignored: %+v", cfg)
	}
	opts, err := Options(cfg)
	if err != nil || len(opts) != 3 {
		t.Fatalf("Options = %d, %v", len(opts), err)
	}
}

func TestValidate(t *testing.T) {
	base := types.BoardConfig{
		PeriodMs:  125,
		Dwell:     2,
		Mode:      "stutter",
		Pins:      types.PinMap{Indicator: 28, ActuatorA: 14, ActuatorB: 15, Pixel: -1},
		Transport: types.TransportConfig{Kind: types.TransportUSB},
	}
	cases := []struct {
		name string
		mut  func(*types.BoardConfig)
		want errcode.Code
	}{
		{"ok", func(*types.BoardConfig) {}, errcode.OK},
		{"zero period", func(c *types.BoardConfig) { c.PeriodMs = 0 }, errcode.InvalidParams},
		{"dwell 3", func(c *types.BoardConfig) { c.Dwell = 3 }, errcode.InvalidParams},
		{"dwell 32", func(c *types.BoardConfig) { c.Dwell = 32 }, errcode.InvalidParams},
		{"bad mode", func(c *types.BoardConfig) { c.Mode = "fast" }, errcode.InvalidMode},
		{"bad transport", func(c *types.BoardConfig) { c.Transport.Kind = "spi" }, errcode.Unsupported},
		{"dup pins", func(c *types.BoardConfig) { c.Pins.ActuatorB = 14 }, errcode.PinInUse},
		{"pixel on indicator", func(c *types.BoardConfig) { c.Pins.Pixel = 28 }, errcode.PinInUse},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := base
			c.mut(&cfg)
			if got := errcode.Of(Validate(cfg)); got != c.want {
				t.Fatalf("Validate = %q, want %q", got, c.want)
			}
		})
	}
}

func TestSubstepBits(t *testing.T) {
	for dwell, want := range map[uint8]uint8{1: 0, 2: 1, 4: 2, 8: 3, 16: 4} {
		if k, err := SubstepBits(dwell); err != nil || k != want {
			t.Errorf("SubstepBits(%d) = %d, %v; want %d", dwell, k, err, want)
		}
	}
	for _, dwell := range []uint8{0, 6, 64} {
		if _, err := SubstepBits(dwell); err == nil {
			t.Errorf("SubstepBits(%d) accepted", dwell)
		}
	}
}

func TestSeedFromLabel(t *testing.T) {
	a, _ := SeedFromLabel("bench-1")
	b, _ := SeedFromLabel("bench-1")
	c, _ := SeedFromLabel("bench-2")
	if a == 0 || a != b {
		t.Fatalf("seed not stable: %#x %#x", a, b)
	}
	if a == c {
		t.Fatalf("labels collide: %#x", a)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bench.yaml")
	raw := []byte("name: bench\nperiod_ms: 50\nseed_label: bench-1\npins:\n  indicator: 2\n  actuator_a: 3\n  actuator_b: 4\ntransport:\n  kind: stdout\n")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := SeedFromLabel("bench-1")
	if cfg.Seed != want || cfg.Dwell != DefaultDwell || cfg.Pins.Pixel != -1 {
		t.Fatalf("LoadFile = %+v", cfg)
	}

	if _, err := Decode([]byte("name: x\nperiod: 5\n")); errcode.Of(err) != errcode.InvalidParams {
		t.Fatalf("unknown key accepted: %v", err)
	}
	if _, err := LoadFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatal("missing file accepted")
	}
}

func TestServicePublishesRetained(t *testing.T) {
	cfg, err := Load("host")
	if err != nil {
		t.Fatal(err)
	}
	b := bus.NewBus(4)
	conn := b.NewConnection("test-config")
	NewService(cfg).Start(context.Background(), conn)

	sub := conn.Subscribe(bus.T(configPrefix, "#"))
	got := map[string]any{}
	deadline := time.After(300 * time.Millisecond)
	for len(got) < 2 {
		select {
		case m := <-sub.Channel():
			got[m.Topic.String()] = m.Payload
		case <-deadline:
			t.Fatalf("got %d retained messages, want 2", len(got))
		}
	}
	if p, ok := got["config/clock"].(types.BoardConfig); !ok || p.Name != "host" {
		t.Fatalf("config/clock payload = %#v", got["config/clock"])
	}
	if m, ok := got["config/monitor"].(map[string]any); !ok || m["interval"] != float64(5) {
		t.Fatalf("config/monitor payload = %#v", got["config/monitor"])
	}
}

func TestFinishDefaultsTransport(t *testing.T) {
	raw := []byte("name: bare\nperiod_ms: 125\npins:\n  indicator: 28\n  actuator_a: 14\n  actuator_b: 15\n")
	dec, err := Decode(raw)
	if err != nil {
		t.Fatal(err)
	}
	if dec.Transport.Kind != "" {
		t.Fatalf("decoded kind = %q", dec.Transport.Kind)
	}
	if err := Validate(dec); errcode.Of(err) != errcode.Unsupported {
		t.Fatalf("Validate(empty kind) = %v", err)
	}
	cfg, err := Finish(dec)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Transport.Kind != types.TransportUSB {
		t.Fatalf("kind = %q, want usb", cfg.Transport.Kind)
	}
	// Whatever Finish accepts, the platform must bring up.
	if _, err := platform.Setup(cfg); err != nil {
		t.Fatalf("Setup(finished profile): %v", err)
	}
}

//go:build rp2040

package config

import (
	"stutterclock-go/errcode"
	"stutterclock-go/types"
)

// Device builds carry their profiles as structs; there is no decoder on board.
var profiles = map[string]types.BoardConfig{
	// Raspberry Pi Pico: LED on GP28, coil on GP14/GP15, console on USB.
	"pico": {
		Name:      "pico",
		PeriodMs:  DefaultPeriodMs,
		Dwell:     DefaultDwell,
		Pins:      types.PinMap{Indicator: 28, ActuatorA: 14, ActuatorB: 15, Pixel: -1},
		Transport: types.TransportConfig{Kind: types.TransportUSB},
	},
	// Waveshare RP2040-Zero: on-board WS2812 on GP16.
	"rp2040-zero": {
		Name:      "rp2040-zero",
		PeriodMs:  DefaultPeriodMs,
		Dwell:     DefaultDwell,
		Pins:      types.PinMap{Indicator: 28, ActuatorA: 14, ActuatorB: 15, Pixel: 16},
		Transport: types.TransportConfig{Kind: types.TransportUSB},
	},
	// Same wiring, status on UART0 (GP0/GP1).
	"pico-uart": {
		Name:      "pico-uart",
		PeriodMs:  DefaultPeriodMs,
		Dwell:     DefaultDwell,
		Pins:      types.PinMap{Indicator: 28, ActuatorA: 14, ActuatorB: 15, Pixel: -1},
		Transport: types.TransportConfig{Kind: types.TransportUART, Bus: "uart0", Baud: 115200, TX: 0, RX: 1},
	},
}

func embeddedProfile(name string) (types.BoardConfig, bool) {
	cfg, ok := profiles[name]
	return cfg, ok
}

// SeedFromLabel is host only; device profiles carry a numeric seed.
func SeedFromLabel(string) (uint16, error) {
	return 0, errcode.New(errcode.Unsupported, "config.SeedFromLabel", "seed_label on device")
}

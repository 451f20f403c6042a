//go:build !rp2040

package config

import (
	"bytes"
	"embed"
	"encoding/binary"
	"os"

	"golang.org/x/crypto/sha3"
	"gopkg.in/yaml.v3"

	"stutterclock-go/automaton"
	"stutterclock-go/errcode"
	"stutterclock-go/types"
)

//go:embed profiles/*.yaml
var profileFS embed.FS

func embeddedProfile(name string) (types.BoardConfig, bool) {
	raw, err := profileFS.ReadFile("profiles/" + name + ".yaml")
	if err != nil {
		return types.BoardConfig{}, false
	}
	cfg, err := Decode(raw)
	if err != nil {
		println("Error: [config] embedded profile", name, err.Error())
		return types.BoardConfig{}, false
	}
	return cfg, true
}

// Decode parses one YAML profile. Unknown keys are rejected. An absent pixel
// means no pixel.
func Decode(raw []byte) (types.BoardConfig, error) {
	cfg := types.BoardConfig{Pins: types.PinMap{Pixel: -1}}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return types.BoardConfig{}, errcode.Wrap(errcode.InvalidParams, "config.Decode", err)
	}
	return cfg, nil
}

// LoadFile reads, finishes and validates a profile from disk.
func LoadFile(path string) (types.BoardConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return types.BoardConfig{}, errcode.Wrap(errcode.Error, "config.LoadFile", err)
	}
	cfg, err := Decode(raw)
	if err != nil {
		return cfg, err
	}
	return Finish(cfg)
}

// SeedFromLabel maps a label to a generator seed: the first two bytes of its
// SHAKE-256 digest, with zero replaced by the default seed.
func SeedFromLabel(label string) (uint16, error) {
	var out [2]byte
	sha3.ShakeSum256(out[:], []byte(label))
	s := binary.BigEndian.Uint16(out[:])
	if s == 0 {
		s = automaton.DefaultSeed
	}
	return s, nil
}

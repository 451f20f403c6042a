package errcode

import (
	"errors"
	"testing"
)

func TestOf(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"nil", nil, OK},
		{"bare code", ZeroSeed, ZeroSeed},
		{"wrapped", Wrap(InvalidTable, "automaton.New", cause), InvalidTable},
		{"with message", New(UnknownBoard, "config.Lookup", "pico3"), UnknownBoard},
		{"foreign", cause, Error},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Of(tt.err); got != tt.want {
				t.Fatalf("Of(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}

func TestEFormattingAndUnwrap(t *testing.T) {
	cause := errors.New("usb gone")
	err := Wrap(ShortWrite, "report.Step", cause)
	if got, want := err.Error(), "report.Step: short_write: usb gone"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, cause) {
		t.Fatal("errors.Is should see the wrapped cause")
	}
	if got, want := New(UnknownPin, "", "29").Error(), "unknown_pin: 29"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}

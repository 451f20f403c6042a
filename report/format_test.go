package report

import (
	"bytes"
	"testing"

	"stutterclock-go/automaton"
	"stutterclock-go/errcode"
)

func TestAppendLine(t *testing.T) {
	tests := []struct {
		name   string
		counts [4]uint32
		want   string
	}{
		{"half the time at origin", [4]uint32{5, 3, 1, 1}, "2.000 5 3 1 1 10\r\n"},
		{"uniform", [4]uint32{250, 250, 250, 250}, "1.000 250 250 250 250 1000\r\n"},
		{"rounded up", [4]uint32{2, 1, 0, 0}, "2.667 2 1 0 0 3\r\n"},
		{"tie rounds to even", [4]uint32{17, 16, 16, 15}, "1.062 17 16 16 15 64\r\n"},
		{"tie rounds up to even", [4]uint32{19, 16, 16, 13}, "1.188 19 16 16 13 64\r\n"},
		{"never at origin", [4]uint32{0, 4, 0, 0}, "0.000 0 4 0 0 4\r\n"},
		{"only origin", [4]uint32{9, 0, 0, 0}, "4.000 9 0 0 0 9\r\n"},
		{
			"counter ceiling",
			[4]uint32{4294967295, 4294967295, 4294967295, 4294967295},
			"1.000 4294967295 4294967295 4294967295 4294967295 17179869180\r\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AppendLine(nil, automaton.Snapshot{Counts: tt.counts})
			if err != nil {
				t.Fatal(err)
			}
			if string(got) != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
			if len(got) > MaxLineLen {
				t.Fatalf("line length %d exceeds MaxLineLen", len(got))
			}
		})
	}
}

func TestAppendLineNoData(t *testing.T) {
	dst := []byte("keep")
	got, err := AppendLine(dst, automaton.Snapshot{})
	if errcode.Of(err) != errcode.NoData {
		t.Fatalf("err = %v, want no_data", err)
	}
	if string(got) != "keep" {
		t.Fatalf("dst modified: %q", got)
	}
}

func TestAppendLineIsIdempotent(t *testing.T) {
	snap := automaton.Snapshot{Counts: [4]uint32{1021, 977, 1003, 999}}
	first, _ := AppendLine(nil, snap)
	for i := 0; i < 5; i++ {
		again, _ := AppendLine(make([]byte, 0, 8), snap)
		if !bytes.Equal(first, again) {
			t.Fatalf("call %d: %q != %q", i, again, first)
		}
	}
}

package automaton

import (
	"sync"
	"testing"

	"stutterclock-go/errcode"
)

func TestHandoffClaimsOnce(t *testing.T) {
	var h Handoff[int]
	if _, ok := h.Claim(); ok {
		t.Fatal("claim succeeded before put")
	}
	if err := h.Put(7); err != nil {
		t.Fatal(err)
	}
	if err := h.Put(8); errcode.Of(err) != errcode.AlreadyInstalled {
		t.Fatalf("second put err = %v", err)
	}
	v, ok := h.Claim()
	if !ok || v != 7 {
		t.Fatalf("claim = %d,%v", v, ok)
	}
	if _, ok := h.Claim(); ok {
		t.Fatal("second claim succeeded")
	}
	if !h.Claimed() {
		t.Fatal("Claimed() = false after claim")
	}
}

func TestHandoffConcurrentClaimers(t *testing.T) {
	var h Handoff[string]
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for !h.Claimed() {
				if _, ok := h.Claim(); ok {
					mu.Lock()
					wins++
					mu.Unlock()
				}
			}
		}()
	}
	if err := h.Put("pins"); err != nil {
		t.Fatal(err)
	}
	wg.Wait()
	if wins != 1 {
		t.Fatalf("%d claimers won, want 1", wins)
	}
}

func TestEscapementAlternates(t *testing.T) {
	var e Escapement
	led, a, b := &fakePin{}, &fakePin{}, &fakePin{}
	out := Outputs{Indicator: led, ActuatorA: a, ActuatorB: b}
	sides := []bool{}
	for i := 0; i < 6; i++ {
		if !e.Drive(true, out) {
			t.Fatal("Drive at origin did not tick")
		}
		if !led.level || a.level == b.level {
			t.Fatalf("tick %d: led=%v a=%v b=%v", i, led.level, a.level, b.level)
		}
		sides = append(sides, b.level)
		if e.Drive(false, out) {
			t.Fatal("Drive away from origin ticked")
		}
		if led.level || a.level || b.level {
			t.Fatal("outputs not released after the tick period")
		}
	}
	for i := 1; i < len(sides); i++ {
		if sides[i] == sides[i-1] {
			t.Fatalf("side repeated at tick %d", i)
		}
	}
	if !sides[0] {
		t.Fatal("first tick should strike B")
	}
}

func TestSnapshotRatio(t *testing.T) {
	s := Snapshot{Counts: [4]uint32{5, 3, 1, 1}}
	if s.Total() != 10 {
		t.Fatalf("total = %d", s.Total())
	}
	if m, ok := s.RatioMilli(); !ok || m != 2000 {
		t.Fatalf("RatioMilli = %d,%v want 2000,true", m, ok)
	}
	if s.Ratio() != 2.0 {
		t.Fatalf("Ratio = %v", s.Ratio())
	}
	if _, ok := (Snapshot{}).RatioMilli(); ok {
		t.Fatal("ratio defined with zero total")
	}
	// 4*1/3 = 1.3333 -> 1333; 4*2/3 = 2.6666 -> 2667
	if m, _ := (Snapshot{Counts: [4]uint32{1, 1, 1, 0}}).RatioMilli(); m != 1333 {
		t.Fatalf("RatioMilli(1/3) = %d", m)
	}
	if m, _ := (Snapshot{Counts: [4]uint32{2, 1, 0, 0}}).RatioMilli(); m != 2667 {
		t.Fatalf("RatioMilli(2/3) = %d", m)
	}
}

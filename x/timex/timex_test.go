package timex

import (
	"testing"
	"time"
)

func TestMs(t *testing.T) {
	if got := Ms(0); got != 0 {
		t.Fatalf("Ms(0) = %v", got)
	}
	if got := Ms(125); got != 125*time.Millisecond {
		t.Fatalf("Ms(125) = %v", got)
	}
}

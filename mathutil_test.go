// mathutil_test.go

package vtol

import (
	"testing"
	"time"
)

func TestClamp(t *testing.T) {
	cases := []struct{ v, lo, hi, want float64 }{
		{5, 0, 1, 1},
		{-5, 0, 1, 0},
		{0.5, 0, 1, 0.5},
	}
	for _, c := range cases {
		if got := clamp(c.v, c.lo, c.hi); got != c.want {
			t.Errorf("clamp(%v, %v, %v) = %v, want %v", c.v, c.lo, c.hi, got, c.want)
		}
	}
}

func TestLerpAndInvLerp(t *testing.T) {
	if got := lerp(0.0, 10.0, 0.5); got != 5 {
		t.Errorf("lerp(0, 10, 0.5) = %v, want 5", got)
	}
	if got := invLerp(0.0, 10.0, 5.0); got != 0.5 {
		t.Errorf("invLerp(0, 10, 5) = %v, want 0.5", got)
	}
}

func TestCapDt(t *testing.T) {
	if got := capDt(100 * time.Millisecond); got != 50*time.Millisecond {
		t.Errorf("capDt(100ms) = %v, want 50ms", got)
	}
	if got := capDt(-10 * time.Millisecond); got != 0 {
		t.Errorf("capDt(-10ms) = %v, want 0", got)
	}
	if got := capDt(10 * time.Millisecond); got != 10*time.Millisecond {
		t.Errorf("capDt(10ms) = %v, want unchanged", got)
	}
}

func TestTimestampArithmetic(t *testing.T) {
	a := Timestamp(1_000_000)
	b := a.Add(500 * time.Millisecond)
	if b.Sub(a) != 500*time.Millisecond {
		t.Errorf("Add/Sub round trip = %v, want 500ms", b.Sub(a))
	}
}

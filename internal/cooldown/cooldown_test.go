package cooldown

import (
	"fmt"
	"testing"
	"time"
)

func fakeClock(g *Gate) *time.Time {
	now := time.Unix(1000, 0)
	g.now = func() time.Time { return now }
	return &now
}

func TestAllowWithinWindow(t *testing.T) {
	g := New(50 * time.Millisecond)
	now := fakeClock(g)

	if !g.Allow("button:0") {
		t.Fatal("first trigger rejected")
	}
	*now = now.Add(10 * time.Millisecond)
	if g.Allow("button:0") {
		t.Error("bounce within 10ms allowed")
	}
	*now = now.Add(45 * time.Millisecond)
	if !g.Allow("button:0") {
		t.Error("trigger 55ms after the first rejected")
	}
}

func TestRejectedTriggerDoesNotExtendWindow(t *testing.T) {
	g := New(50 * time.Millisecond)
	now := fakeClock(g)

	g.Allow("k")
	*now = now.Add(40 * time.Millisecond)
	g.Allow("k") // rejected
	*now = now.Add(15 * time.Millisecond)
	if !g.Allow("k") {
		t.Error("window was extended by a rejected trigger")
	}
}

func TestAllowDifferentKeys(t *testing.T) {
	g := New(time.Second)
	fakeClock(g)
	if !g.Allow("button:0") || !g.Allow("button:1") || !g.Allow("gpio:17") {
		t.Error("distinct keys should not debounce each other")
	}
}

func TestZeroWindowAllowsAll(t *testing.T) {
	g := New(0)
	for i := 0; i < 3; i++ {
		if !g.Allow("k") {
			t.Fatalf("trigger %d rejected with zero window", i)
		}
	}
}

func TestReset(t *testing.T) {
	g := New(time.Hour)
	g.Allow("k")
	g.Reset("k")
	if !g.Allow("k") {
		t.Error("Allow after Reset = false")
	}
}

func TestPrune(t *testing.T) {
	g := New(time.Millisecond)
	now := fakeClock(g)
	for i := 0; i < pruneEvery-1; i++ {
		g.Allow(fmt.Sprintf("k%d", i))
	}
	*now = now.Add(time.Second)
	g.Allow("last")
	if n := len(g.last); n != 1 {
		t.Errorf("len(last) after prune = %d, want 1", n)
	}
}

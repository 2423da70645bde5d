package scheduler

import (
	"testing"
	"time"

	"github.com/rook-computer/weatherface/internal/clock"
)

func TestNextDelayIsPhaseLocked(t *testing.T) {
	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		offset time.Duration
		want   time.Duration
	}{
		{0, time.Second},
		{200 * time.Millisecond, 800 * time.Millisecond},
		{999 * time.Millisecond, time.Millisecond},
		{1500 * time.Millisecond, 500 * time.Millisecond},
	}
	for _, tc := range tests {
		if got := NextDelay(base.Add(tc.offset), time.Second); got != tc.want {
			t.Errorf("NextDelay(+%v) = %v, want %v", tc.offset, got, tc.want)
		}
	}
}

// harness feeds posted tokens straight back into Fire, the way an event loop would.
type harness struct {
	clock  *clock.Fake
	redraw *Redraw
	active bool
	fires  []time.Time
}

func newHarness(start time.Time) *harness {
	h := &harness{clock: clock.NewFake(start)}
	h.redraw = NewRedraw(h.clock, time.Second, func(token uint64) {
		if h.redraw.Fire(token, h.active) {
			h.fires = append(h.fires, h.clock.Now())
		}
	})
	return h
}

func TestFireRearmsOnSecondBoundary(t *testing.T) {
	start := time.Date(2024, 1, 1, 10, 0, 0, int(200*time.Millisecond), time.UTC)
	h := newHarness(start)
	h.active = true
	h.redraw.Update(true)

	h.clock.Advance(0)
	if len(h.fires) != 1 {
		t.Fatalf("expected immediate fire, got %d", len(h.fires))
	}
	deadline, ok := h.clock.NextDeadline()
	if !ok {
		t.Fatal("expected a re-armed timer")
	}
	if got := deadline.Sub(start); got != 800*time.Millisecond {
		t.Fatalf("next fire in %v, want 800ms", got)
	}

	h.clock.Advance(3 * time.Second)
	for _, at := range h.fires[1:] {
		if at.Nanosecond() != 0 {
			t.Fatalf("fire at %v is not on a second boundary", at)
		}
	}
	if len(h.fires) != 4 {
		t.Fatalf("expected 4 fires, got %d", len(h.fires))
	}
}

func TestUpdateInactiveStopsFiring(t *testing.T) {
	h := newHarness(time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC))
	h.active = true
	h.redraw.Update(true)
	h.clock.Advance(2 * time.Second)
	before := len(h.fires)

	h.active = false
	h.redraw.Update(false)
	h.clock.Advance(5 * time.Second)

	if len(h.fires) != before {
		t.Fatalf("timer kept firing after deactivation: %d -> %d", before, len(h.fires))
	}
	if h.redraw.Armed() || h.clock.Pending() != 0 {
		t.Fatal("expected no pending timer")
	}
}

func TestAtMostOnePendingFire(t *testing.T) {
	h := newHarness(time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC))
	h.active = true
	for i := 0; i < 5; i++ {
		h.redraw.Update(true)
	}
	if h.clock.Pending() != 1 {
		t.Fatalf("expected one pending timer, got %d", h.clock.Pending())
	}
	h.clock.Advance(0)
	if len(h.fires) != 1 {
		t.Fatalf("expected exactly one fire, got %d", len(h.fires))
	}
}

func TestStaleTokenIsIgnored(t *testing.T) {
	c := clock.NewFake(time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC))
	var tokens []uint64
	r := NewRedraw(c, time.Second, func(token uint64) { tokens = append(tokens, token) })

	r.Update(true)
	c.Advance(0)
	if len(tokens) != 1 {
		t.Fatalf("expected one posted token, got %d", len(tokens))
	}
	stale := tokens[0]

	// A state change between post and handling supersedes the delivered token.
	r.Update(true)
	if r.Fire(stale, true) {
		t.Fatal("stale token was accepted")
	}
	if !r.Armed() {
		t.Fatal("stale fire must not disturb the current timer")
	}
}

package scheduler

import (
	"time"

	"github.com/rook-computer/weatherface/internal/clock"
)

// InteractiveUpdateRate is the redraw period while the face is visible and
// interactive.
const InteractiveUpdateRate = time.Second

// Redraw is the single repeating redraw timer. It is not safe for concurrent
// use: every method must be called from the owner's event loop.
//
// A fire is delivered through post with the token it was armed with. Tokens
// from cleared timers are stale and Fire ignores them, so at most one fire is
// ever acted upon per arm.
type Redraw struct {
	clock  clock.Clock
	period time.Duration
	post   func(token uint64)

	token   uint64
	pending clock.Timer
}

// NewRedraw returns a Redraw that hands fires to post. post runs on the
// clock's timer goroutine and must not block; if the owner is gone it should
// drop the fire.
func NewRedraw(c clock.Clock, period time.Duration, post func(token uint64)) *Redraw {
	if c == nil {
		c = clock.Real()
	}
	if period <= 0 {
		period = InteractiveUpdateRate
	}
	return &Redraw{clock: c, period: period, post: post}
}

// NextDelay returns the delay until the next multiple of period on the wall
// clock. A fire at ms=200 within the second yields 800ms.
func NextDelay(now time.Time, period time.Duration) time.Duration {
	periodMs := period.Milliseconds()
	if periodMs <= 0 {
		return period
	}
	return time.Duration(periodMs-now.UnixMilli()%periodMs) * time.Millisecond
}

// Update clears any pending fire and, when active, arms an immediate one.
func (r *Redraw) Update(active bool) {
	r.Clear()
	if active {
		r.arm(0)
	}
}

// Clear cancels the pending fire, if any.
func (r *Redraw) Clear() {
	r.token++
	if r.pending != nil {
		r.pending.Stop()
		r.pending = nil
	}
}

// Fire handles a delivered token. It reports whether the token is current,
// in which case the caller should redraw. When still active the next fire is
// armed on the next period boundary.
func (r *Redraw) Fire(token uint64, active bool) bool {
	if token != r.token {
		return false
	}
	r.pending = nil
	if active {
		r.arm(NextDelay(r.clock.Now(), r.period))
	}
	return true
}

// Armed reports whether a fire is pending.
func (r *Redraw) Armed() bool { return r.pending != nil }

func (r *Redraw) arm(delay time.Duration) {
	r.token++
	token := r.token
	post := r.post
	r.pending = r.clock.AfterFunc(delay, func() {
		if post != nil {
			post(token)
		}
	})
}

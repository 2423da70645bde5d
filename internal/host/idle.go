package host

import (
	"sync"
	"time"

	"github.com/rook-computer/weatherface/internal/clock"
)

// Idle moves the face into ambient mode after a period without activity and
// back out on the next activity. A zero timeout disables it.
type Idle struct {
	clock      clock.Clock
	timeout    time.Duration
	setAmbient func(bool)

	mu      sync.Mutex
	timer   clock.Timer
	gen     uint64
	ambient bool
	stopped bool
}

func NewIdle(c clock.Clock, timeout time.Duration, setAmbient func(bool)) *Idle {
	if c == nil {
		c = clock.Real()
	}
	return &Idle{clock: c, timeout: timeout, setAmbient: setAmbient}
}

// Start arms the idle timer.
func (i *Idle) Start() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.stopped = false
	i.armLocked()
}

// Activity leaves ambient mode if needed and restarts the idle period.
func (i *Idle) Activity() {
	i.mu.Lock()
	if i.stopped {
		i.mu.Unlock()
		return
	}
	wake := i.ambient
	i.ambient = false
	i.armLocked()
	i.mu.Unlock()

	if wake {
		i.setAmbient(false)
	}
}

// SetTimeout changes the idle period and restarts it.
func (i *Idle) SetTimeout(d time.Duration) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.timeout = d
	if !i.stopped && !i.ambient {
		i.armLocked()
	}
}

func (i *Idle) Stop() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.stopped = true
	i.gen++
	if i.timer != nil {
		i.timer.Stop()
		i.timer = nil
	}
}

// Observe records an ambient change made elsewhere, such as by the engine's
// host, so the next activity wakes the face. Entering ambient stops the idle
// timer and leaving it restarts the period.
func (i *Idle) Observe(ambient bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.stopped || i.ambient == ambient {
		return
	}
	i.ambient = ambient
	if !ambient {
		i.armLocked()
		return
	}
	i.gen++
	if i.timer != nil {
		i.timer.Stop()
		i.timer = nil
	}
}

// Ambient reports whether the face is in ambient as far as Idle knows.
func (i *Idle) Ambient() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.ambient
}

func (i *Idle) armLocked() {
	i.gen++
	if i.timer != nil {
		i.timer.Stop()
		i.timer = nil
	}
	if i.timeout <= 0 {
		return
	}
	gen := i.gen
	i.timer = i.clock.AfterFunc(i.timeout, func() { i.expire(gen) })
}

func (i *Idle) expire(gen uint64) {
	i.mu.Lock()
	if gen != i.gen || i.stopped || i.ambient {
		i.mu.Unlock()
		return
	}
	i.ambient = true
	i.timer = nil
	i.mu.Unlock()

	i.setAmbient(true)
}

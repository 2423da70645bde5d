package input

import (
	"context"
	"time"
)

type TapType int

const (
	// Touch is a finger down.
	Touch TapType = iota
	// TouchCancel is a touch that ended without a tap.
	TouchCancel
	// Tap is a finger lifted after a touch.
	Tap
)

func (t TapType) String() string {
	switch t {
	case Touch:
		return "touch"
	case TouchCancel:
		return "touch-cancel"
	case Tap:
		return "tap"
	default:
		return "unknown"
	}
}

// TapEvent is one touch-panel interaction in panel coordinates.
type TapEvent struct {
	Type TapType
	X, Y int
	Time time.Time
}

// Source produces tap events until stopped.
type Source interface {
	Start(ctx context.Context) error
	Stop() error
	Taps() <-chan TapEvent
}

type NoopSource struct{ ch chan TapEvent }

func NewNoopSource() *NoopSource { return &NoopSource{ch: make(chan TapEvent)} }

func (n *NoopSource) Start(ctx context.Context) error { return nil }
func (n *NoopSource) Stop() error                     { return nil }
func (n *NoopSource) Taps() <-chan TapEvent           { return n.ch }

//go:build !linux

package input

import "context"

type logger interface {
	Infof(string, string, ...interface{})
	Errorf(string, string, ...interface{})
}

// EvdevSource is only backed by devices on Linux.
type EvdevSource struct {
	Logger logger
	OnExit func()
	ch     chan TapEvent
}

func NewEvdevSource(log logger, onExit func()) *EvdevSource {
	return &EvdevSource{Logger: log, OnExit: onExit, ch: make(chan TapEvent)}
}

func (s *EvdevSource) Start(ctx context.Context) error {
	if s.Logger != nil {
		s.Logger.Infof("input", "evdev input not supported on this platform")
	}
	return nil
}

func (s *EvdevSource) Stop() error           { return nil }
func (s *EvdevSource) Taps() <-chan TapEvent { return s.ch }

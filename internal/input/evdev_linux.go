//go:build linux

package input

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

type logger interface {
	Infof(string, string, ...interface{})
	Errorf(string, string, ...interface{})
}

// EvdevSource reads touch events from Linux evdev devices under
// /dev/input/event*. Pressing F4 on any device calls OnExit once.
type EvdevSource struct {
	Glob   string
	Logger logger
	OnExit func()

	ch     chan TapEvent
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

func NewEvdevSource(log logger, onExit func()) *EvdevSource {
	return &EvdevSource{Glob: "/dev/input/event*", Logger: log, OnExit: onExit, ch: make(chan TapEvent, 16)}
}

func (s *EvdevSource) Taps() <-chan TapEvent { return s.ch }

// Start is best-effort: if no input devices are available, it logs and
// returns nil.
func (s *EvdevSource) Start(ctx context.Context) error {
	paths, err := filepath.Glob(s.Glob)
	if err != nil || len(paths) == 0 {
		if s.Logger != nil {
			s.Logger.Infof("input", "no evdev devices found")
		}
		return nil
	}
	ctx, s.cancel = context.WithCancel(ctx)
	for _, path := range paths {
		s.wg.Add(1)
		go s.read(ctx, path)
	}
	return nil
}

func (s *EvdevSource) Stop() error {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	return nil
}

func (s *EvdevSource) triggerExit() {
	s.once.Do(func() {
		if s.Logger != nil {
			s.Logger.Infof("input", "F4 pressed: exiting")
		}
		if s.OnExit != nil {
			s.OnExit()
		}
	})
}

func (s *EvdevSource) read(ctx context.Context, path string) {
	defer s.wg.Done()

	// input_event = timeval + u16 type + u16 code + s32 value.
	tvSize := int(binary.Size(unix.Timeval{}))
	eventSize := tvSize + 2 + 2 + 4

	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return
	}
	f := os.NewFile(uintptr(fd), path)
	defer func() {
		_ = f.Close()
	}()

	var decoder Decoder
	buf := make([]byte, eventSize*64)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		pollFds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		_, pollErr := unix.Poll(pollFds, 250)
		if pollErr != nil {
			if pollErr == unix.EINTR {
				continue
			}
			// Device might have gone away.
			return
		}
		if pollFds[0].Revents&unix.POLLIN == 0 {
			continue
		}

		n, readErr := unix.Read(fd, buf)
		if readErr != nil {
			if readErr == unix.EAGAIN || readErr == unix.EINTR {
				continue
			}
			return
		}

		for off := 0; off+eventSize <= n; off += eventSize {
			ev, ok := ParseRawEvent(buf[off:off+eventSize], tvSize)
			if !ok {
				continue
			}
			if ev.Time.IsZero() {
				ev.Time = time.Now()
			}
			tap, hasTap, exit := decoder.Feed(ev)
			if exit {
				s.triggerExit()
				continue
			}
			if hasTap {
				select {
				case s.ch <- tap:
				case <-ctx.Done():
					return
				default:
					// Consumer is behind; taps only force a redraw.
				}
			}
		}
	}
}

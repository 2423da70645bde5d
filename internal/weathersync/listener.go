package weathersync

import (
	"context"
	"errors"
	"sync"

	"github.com/rook-computer/weatherface/internal/datalayer"
)

// Sink receives complete weather updates. It is called from data-layer
// delivery goroutines and must hand the update off without blocking long.
type Sink interface {
	WeatherChanged(u Update)
}

// Listener keeps one data-layer connection open between Start and Stop and
// forwards complete /weather updates to its sink.
type Listener struct {
	dialer Dialer
	sink   Sink
	logger Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	running sync.WaitGroup
}

func NewListener(dialer Dialer, sink Sink, logger Logger) *Listener {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Listener{dialer: dialer, sink: sink, logger: logger}
}

// Start connects in the background and registers for changes. After the
// connection is up the current /weather item, if any, is delivered once.
// Calling Start while started does nothing.
func (l *Listener) Start(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.running.Add(1)
	go l.run(ctx)
}

// Stop unregisters and closes the connection. It does not wait for a dial in
// progress; use Wait for that.
func (l *Listener) Stop() {
	l.mu.Lock()
	cancel := l.cancel
	l.cancel = nil
	l.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Wait blocks until every started connection has been torn down.
func (l *Listener) Wait() {
	l.running.Wait()
}

func (l *Listener) run(ctx context.Context) {
	defer l.running.Done()

	dialCtx, cancel := context.WithTimeout(ctx, ConnectTimeout)
	conn, err := l.dialer.Dial(dialCtx)
	cancel()
	if err != nil {
		if ctx.Err() == nil {
			l.logger.Errorf("weather", "connect failed: %v", err)
		}
		return
	}
	defer conn.Close()

	sub := &subscription{listener: l}
	if err := conn.AddListener(sub); err != nil {
		l.logger.Errorf("weather", "add listener failed: %v", err)
		return
	}
	defer conn.RemoveListener(sub)
	l.logger.Infof("weather", "listening on %s", Path)

	item, err := conn.DataItem(ctx, Path)
	switch {
	case err == nil:
		l.handle([]datalayer.Event{{Type: datalayer.Changed, Item: item}})
	case errors.Is(err, datalayer.ErrNotFound):
	default:
		if ctx.Err() == nil {
			l.logger.Errorf("weather", "initial sync failed: %v", err)
		}
	}

	<-ctx.Done()
	l.logger.Infof("weather", "listener stopped")
}

func (l *Listener) handle(events []datalayer.Event) {
	for _, ev := range events {
		if ev.Item.Path != Path {
			continue
		}
		if ev.Type != datalayer.Changed {
			l.logger.Infof("weather", "ignoring %s event, keeping last-known weather", ev.Type)
			continue
		}
		u, ok := ParseUpdate(ev.Item)
		if !ok {
			l.logger.Infof("weather", "ignoring partial update, keys=%v", ev.Item.Data.Keys())
			continue
		}
		l.sink.WeatherChanged(u)
	}
}

// subscription is registered per connection so a restarted listener never
// shares a registration with the previous connection.
type subscription struct {
	listener *Listener
}

func (s *subscription) OnDataChanged(events []datalayer.Event) {
	s.listener.handle(events)
}

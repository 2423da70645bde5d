package datalayer

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// Conn is a connection to a data node.
type Conn interface {
	AddListener(l Listener) error
	RemoveListener(l Listener)
	DataItem(ctx context.Context, path string) (DataItem, error)
	OpenAsset(ctx context.Context, asset Asset) (io.ReadCloser, error)
	Close() error
}

type conn struct {
	node *Node

	mu         sync.Mutex
	closed     bool
	deliveries map[Listener]*delivery
}

// AddListener registers l on this connection. Registering the same
// listener twice has no effect. Listeners must be comparable.
func (c *conn) AddListener(l Listener) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if _, ok := c.deliveries[l]; ok {
		return nil
	}
	d := newDelivery(l)
	c.deliveries[l] = d
	go d.run()
	return nil
}

func (c *conn) RemoveListener(l Listener) {
	c.mu.Lock()
	d, ok := c.deliveries[l]
	delete(c.deliveries, l)
	c.mu.Unlock()
	if ok {
		d.stop()
	}
}

func (c *conn) DataItem(ctx context.Context, path string) (DataItem, error) {
	if err := c.check(ctx); err != nil {
		return DataItem{}, err
	}
	item, ok := c.node.DataItem(path)
	if !ok {
		return DataItem{}, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return item, nil
}

func (c *conn) OpenAsset(ctx context.Context, asset Asset) (io.ReadCloser, error) {
	if err := c.check(ctx); err != nil {
		return nil, err
	}
	return c.node.openAsset(asset.Digest)
}

// Close detaches the connection and stops delivery to its listeners.
// Events still queued for them are dropped.
func (c *conn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	deliveries := c.deliveries
	c.deliveries = nil
	c.mu.Unlock()

	c.node.detach(c)
	for _, d := range deliveries {
		d.stop()
	}
	return nil
}

func (c *conn) check(ctx context.Context) error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return ErrClosed
	}
	return ctx.Err()
}

func (c *conn) snapshot() []*delivery {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*delivery, 0, len(c.deliveries))
	for _, d := range c.deliveries {
		out = append(out, d)
	}
	return out
}

// delivery runs one listener's callbacks on its own goroutine.
type delivery struct {
	listener Listener
	queue    chan []Event
	done     chan struct{}
	once     sync.Once
}

func newDelivery(l Listener) *delivery {
	return &delivery{
		listener: l,
		queue:    make(chan []Event, deliveryQueueSize),
		done:     make(chan struct{}),
	}
}

func (d *delivery) run() {
	for {
		select {
		case <-d.done:
			return
		case events := <-d.queue:
			select {
			case <-d.done:
				return
			default:
			}
			d.listener.OnDataChanged(events)
		}
	}
}

func (d *delivery) send(events []Event) {
	select {
	case d.queue <- events:
	case <-d.done:
	}
}

func (d *delivery) stop() {
	d.once.Do(func() { close(d.done) })
}

package render

import "context"

// Renderer paints frames onto some surface.
type Renderer interface {
	Start(ctx context.Context) error
	Stop() error
	Draw(frame Frame) error
}

// Stub implementation
type NoopRenderer struct{}

func (n *NoopRenderer) Start(ctx context.Context) error { return nil }
func (n *NoopRenderer) Stop() error                     { return nil }
func (n *NoopRenderer) Draw(frame Frame) error          { return nil }

// Multi fans a frame out to several renderers. The first error is returned
// after every renderer had its turn.
type Multi []Renderer

func (m Multi) Start(ctx context.Context) error {
	for _, r := range m {
		if err := r.Start(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (m Multi) Stop() error {
	var first error
	for _, r := range m {
		if err := r.Stop(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (m Multi) Draw(frame Frame) error {
	var first error
	for _, r := range m {
		if err := r.Draw(frame); err != nil && first == nil {
			first = err
		}
	}
	return first
}

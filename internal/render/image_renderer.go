package render

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"sync"
)

// ImageRenderer keeps the most recent frame in memory so it can be served
// as a PNG. Draw and PNG may be called from different goroutines.
type ImageRenderer struct {
	Width  int
	Height int
	Logger Logger

	painter *Painter

	mu     sync.RWMutex
	latest *image.RGBA
	frame  Frame
}

func NewImageRenderer(width, height int) *ImageRenderer {
	return &ImageRenderer{Width: width, Height: height}
}

func (r *ImageRenderer) Start(ctx context.Context) error {
	r.painter = NewPainter(r.Width, r.Height, r.Logger)
	return nil
}

func (r *ImageRenderer) Stop() error { return nil }

func (r *ImageRenderer) Draw(frame Frame) error {
	if r.painter == nil {
		r.painter = NewPainter(r.Width, r.Height, r.Logger)
	}
	canvas := r.painter.Paint(frame)
	copied := image.NewRGBA(canvas.Bounds())
	copy(copied.Pix, canvas.Pix)

	r.mu.Lock()
	r.latest = copied
	r.frame = frame
	r.mu.Unlock()
	return nil
}

// Latest returns the last painted image and its frame, or nil before the
// first draw. The image must not be modified.
func (r *ImageRenderer) Latest() (*image.RGBA, Frame) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.latest, r.frame
}

// PNG encodes the last painted image. Before the first draw it returns
// (nil, nil).
func (r *ImageRenderer) PNG() ([]byte, error) {
	img, _ := r.Latest()
	if img == nil {
		return nil, nil
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

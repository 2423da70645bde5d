package render

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync/atomic"

	fb "github.com/gonutz/framebuffer"
)

// FBRenderer renders to the Linux framebuffer using an offscreen logical canvas.
type FBRenderer struct {
	Device  string
	Width   int
	Height  int
	Logger  Logger
	Debug   bool
	fbDev   *fb.Device
	painter *Painter
	running atomic.Bool
}

func NewFBRenderer() *FBRenderer {
	return &FBRenderer{Device: "/dev/fb0", Width: CanvasWidth, Height: CanvasHeight}
}

func (r *FBRenderer) Start(ctx context.Context) error {
	dev, err := fb.Open(r.Device)
	if err != nil {
		return err
	}
	r.fbDev = dev
	if r.Logger != nil {
		bounds := dev.Bounds()
		r.Logger.Infof("fb", "framebuffer open, bounds=%dx%d", bounds.Dx(), bounds.Dy())
	}

	r.painter = NewPainter(r.Width, r.Height, r.Logger)
	r.running.Store(true)
	return nil
}

func (r *FBRenderer) Stop() error {
	r.running.Store(false)
	if r.fbDev != nil {
		r.fbDev.Close()
		r.fbDev = nil
	}
	return nil
}

// Draw paints the frame and copies it to the framebuffer.
func (r *FBRenderer) Draw(frame Frame) error {
	if !r.running.Load() || r.fbDev == nil {
		return errors.New("framebuffer not started")
	}
	canvas := r.painter.Paint(frame)
	if err := blitToFB(r.fbDev, canvas); err != nil {
		return err
	}
	if r.Logger != nil && r.Debug {
		r.Logger.Infof("fb", "frame drawn, ambient=%v time=%s", frame.Ambient, frame.Time.Text)
	}
	return nil
}

// Helper: blit canvas to framebuffer via nearest-neighbor scaling.
func blitToFB(dev *fb.Device, canvas *image.RGBA) error {
	if dev == nil {
		return nil
	}
	bounds := dev.Bounds()
	fbWidth := bounds.Dx()
	fbHeight := bounds.Dy()
	canvasWidth := canvas.Bounds().Dx()
	canvasHeight := canvas.Bounds().Dy()
	if fbWidth == 0 || fbHeight == 0 || canvasWidth == 0 || canvasHeight == 0 {
		return nil
	}
	for y := 0; y < fbHeight; y++ {
		sy := (y * canvasHeight) / fbHeight
		for x := 0; x < fbWidth; x++ {
			sx := (x * canvasWidth) / fbWidth
			pixel := canvas.RGBAAt(sx, sy)
			dev.Set(bounds.Min.X+x, bounds.Min.Y+y, color.RGBA{R: pixel.R, G: pixel.G, B: pixel.B, A: 0xFF})
		}
	}
	return nil
}

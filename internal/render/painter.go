package render

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/rook-computer/weatherface/internal/render/layout"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Painter paints frames onto an offscreen RGBA canvas. It is not safe for
// concurrent use.
type Painter struct {
	fonts  Fonts
	canvas *image.RGBA
	logger Logger
}

func NewPainter(width, height int, logger Logger) *Painter {
	if width <= 0 || height <= 0 {
		width, height = CanvasWidth, CanvasHeight
	}
	return &Painter{
		fonts:  LoadFonts(height, logger),
		canvas: image.NewRGBA(image.Rect(0, 0, width, height)),
		logger: logger,
	}
}

// Canvas returns the canvas of the last Paint. It is overwritten by the next
// Paint.
func (p *Painter) Canvas() *image.RGBA { return p.canvas }

type textRun struct {
	text string
	face font.Face
}

// Paint draws frame and returns the canvas.
func (p *Painter) Paint(frame Frame) *image.RGBA {
	if frame.Width > 0 && frame.Height > 0 {
		bounds := p.canvas.Bounds()
		if bounds.Dx() != frame.Width || bounds.Dy() != frame.Height {
			p.canvas = image.NewRGBA(image.Rect(0, 0, frame.Width, frame.Height))
			p.fonts = LoadFonts(frame.Height, p.logger)
		}
	}

	bounds := p.canvas.Bounds()
	draw.Draw(p.canvas, bounds, &image.Uniform{C: frame.Background}, image.Point{}, draw.Src)

	inner := layout.Inset(bounds, bounds.Dx()/16)
	bands := layout.Rows(inner, 8, 3, 9)
	timeBand, dateBand, weatherBand := bands[0], bands[1], bands[2]

	t := frame.Time
	p.drawRuns(timeBand, []textRun{
		{text: t.Text[:t.BoldEnd], face: p.fonts.TimeBold},
		{text: t.Text[t.BoldEnd:], face: p.fonts.TimeRegular},
	}, t.Color, t.AntiAlias)
	p.drawRuns(dateBand, []textRun{{text: frame.Date.Text, face: p.fonts.Date}}, frame.Date.Color, frame.Date.AntiAlias)

	var highRect, lowRect image.Rectangle
	if frame.ShowIcon && frame.Icon != nil {
		cols := layout.Columns(weatherBand, 1, 1, 1)
		p.drawIcon(layout.Inset(cols[0], 4), frame.Icon)
		highRect, lowRect = cols[1], cols[2]
	} else {
		// Without an icon the temperatures take the whole row.
		cols := layout.Columns(weatherBand, 1, 1)
		highRect, lowRect = cols[0], cols[1]
	}
	p.drawRuns(highRect, []textRun{{text: frame.High.Text, face: p.fonts.Temp}}, frame.High.Color, frame.High.AntiAlias)
	p.drawRuns(lowRect, []textRun{{text: frame.Low.Text, face: p.fonts.Temp}}, frame.Low.Color, frame.Low.AntiAlias)

	return p.canvas
}

// drawRuns centers the runs inside rect. Glyphs are rendered into an alpha
// mask first; without anti-aliasing the mask is reduced to 1 bit.
func (p *Painter) drawRuns(rect image.Rectangle, runs []textRun, c color.RGBA, antiAlias bool) {
	if rect.Empty() {
		return
	}
	width, ascent, descent := 0, 0, 0
	for _, run := range runs {
		if run.text == "" {
			continue
		}
		width += font.MeasureString(run.face, run.text).Ceil()
		metrics := run.face.Metrics()
		ascent = max(ascent, metrics.Ascent.Ceil())
		descent = max(descent, metrics.Descent.Ceil())
	}
	if width == 0 {
		return
	}

	x := rect.Min.X + (rect.Dx()-width)/2
	baseline := rect.Min.Y + (rect.Dy()-(ascent+descent))/2 + ascent

	mask := image.NewAlpha(rect)
	drawer := &font.Drawer{Dst: mask, Src: image.Opaque, Dot: fixed.P(x, baseline)}
	for _, run := range runs {
		if run.text == "" {
			continue
		}
		drawer.Face = run.face
		drawer.DrawString(run.text)
	}
	if !antiAlias {
		threshold(mask)
	}
	draw.DrawMask(p.canvas, rect, &image.Uniform{C: c}, image.Point{}, mask, rect.Min, draw.Over)
}

func (p *Painter) drawIcon(rect image.Rectangle, icon image.Image) {
	src := icon.Bounds()
	if src.Empty() || rect.Empty() {
		return
	}
	dst := layout.FitAspect(rect, src.Dx(), src.Dy())
	xdraw.ApproxBiLinear.Scale(p.canvas, dst, icon, src, xdraw.Over, nil)
}

// threshold reduces an alpha mask to fully opaque or fully transparent
// pixels, which is what low-bit ambient displays can show.
func threshold(mask *image.Alpha) {
	for i, a := range mask.Pix {
		if a >= 0x80 {
			mask.Pix[i] = 0xFF
		} else {
			mask.Pix[i] = 0
		}
	}
}

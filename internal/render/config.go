package render

import (
	"fmt"
	"image/color"
)

// Default colors. Accent is the interactive background.
var (
	Accent            = color.RGBA{R: 0x03, G: 0xA9, B: 0xF4, A: 0xFF} // #03a9f4
	AmbientBackground = color.RGBA{A: 0xFF}
	Foreground        = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	SecondaryText     = color.RGBA{R: 0xB3, G: 0xE5, B: 0xFC, A: 0xFF} // #b3e5fc

	// Logical canvas size; scaled to the framebuffer.
	CanvasWidth  = 320
	CanvasHeight = 320
)

// Theme is the set of colors and canvas dimensions a frame is built with.
type Theme struct {
	Accent            color.RGBA
	AmbientBackground color.RGBA
	Foreground        color.RGBA
	SecondaryText     color.RGBA
	Width             int
	Height            int
}

func DefaultTheme() Theme {
	return Theme{
		Accent:            Accent,
		AmbientBackground: AmbientBackground,
		Foreground:        Foreground,
		SecondaryText:     SecondaryText,
		Width:             CanvasWidth,
		Height:            CanvasHeight,
	}
}

// HexColor formats c as "#rrggbb", dropping alpha.
func HexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

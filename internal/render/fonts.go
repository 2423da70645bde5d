package render

import (
	"github.com/golang/freetype/truetype"
	"github.com/rook-computer/weatherface/internal/assets"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
)

// Logger matches the component-tagged logger used across the face.
type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

// Fonts holds the faces a Painter draws with. Faces are not safe for
// concurrent use; a Fonts value belongs to one Painter.
type Fonts struct {
	TimeRegular font.Face
	TimeBold    font.Face
	Date        font.Face
	Temp        font.Face
}

// LoadFonts builds faces scaled to a canvas of the given height from the
// embedded Go fonts.
func LoadFonts(canvasHeight int, logger Logger) Fonts {
	if canvasHeight <= 0 {
		canvasHeight = CanvasHeight
	}
	h := float64(canvasHeight)
	return Fonts{
		TimeRegular: loadFace("regular", assets.RegularTTF, h*0.16, logger),
		TimeBold:    loadFace("bold", assets.BoldTTF, h*0.16, logger),
		Date:        loadFace("regular", assets.RegularTTF, h*0.06, logger),
		Temp:        loadFace("regular", assets.RegularTTF, h*0.09, logger),
	}
}

// loadFace parses data as TrueType first, then as OpenType (CFF outlines),
// and falls back to the fixed bitmap face.
func loadFace(name string, data []byte, size float64, logger Logger) font.Face {
	tt, err := truetype.Parse(data)
	if err == nil {
		return truetype.NewFace(tt, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull})
	}
	if logger != nil {
		logger.Errorf("font", "truetype parse of %s failed, trying opentype: %v", name, err)
	}

	otf, err := opentype.Parse(data)
	if err != nil {
		if logger != nil {
			logger.Errorf("font", "opentype parse of %s failed, using basicfont: %v", name, err)
		}
		return basicfont.Face7x13
	}
	face, err := opentype.NewFace(otf, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		if logger != nil {
			logger.Errorf("font", "opentype face %s failed, using basicfont: %v", name, err)
		}
		return basicfont.Face7x13
	}
	return face
}

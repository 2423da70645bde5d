package render

import (
	"image"
	"image/color"
	"time"

	"github.com/rook-computer/weatherface/internal/state"
	"github.com/rook-computer/weatherface/internal/timefmt"
)

// TextField is one line of text on the face.
type TextField struct {
	Text string
	// BoldEnd is the byte offset where the bold prefix ends; 0 means no bold.
	BoldEnd   int
	AntiAlias bool
	Color     color.RGBA
}

// Frame is everything needed to paint one draw of the face.
type Frame struct {
	Time       TextField
	Date       TextField
	High       TextField
	Low        TextField
	Icon       image.Image
	ShowIcon   bool
	Background color.RGBA
	Ambient    bool
	Width      int
	Height     int
	At         time.Time
}

// TextFields returns the four text fields in paint order.
func (f Frame) TextFields() []TextField {
	return []TextField{f.Time, f.Date, f.High, f.Low}
}

// BuildFrame derives a frame from the face state, the weather snapshot and
// the current time. It reads its arguments only.
func BuildFrame(face state.FaceState, weather state.WeatherSnapshot, now time.Time, theme Theme, formatter timefmt.Formatter) Frame {
	ambient := face.Ambient
	antiAlias := face.AntiAlias()

	timeText := formatter.Time(now, ambient)

	background := theme.Accent
	secondary := theme.SecondaryText
	if ambient {
		background = theme.AmbientBackground
		secondary = theme.Foreground
	}

	return Frame{
		Time:       TextField{Text: timeText.Text, BoldEnd: timeText.BoldEnd, AntiAlias: antiAlias, Color: theme.Foreground},
		Date:       TextField{Text: formatter.DateString(now), AntiAlias: antiAlias, Color: secondary},
		High:       TextField{Text: weather.HighTemp, AntiAlias: antiAlias, Color: theme.Foreground},
		Low:        TextField{Text: weather.LowTemp, AntiAlias: antiAlias, Color: secondary},
		Icon:       weather.Icon,
		ShowIcon:   !ambient && weather.Icon != nil,
		Background: background,
		Ambient:    ambient,
		Width:      theme.Width,
		Height:     theme.Height,
		At:         now,
	}
}

// Package timefmt formats the clock and date strings shown on the face.
package timefmt

import (
	"strings"
	"time"
)

const (
	FullTimeLayout  = "15:04:05"
	ShortTimeLayout = "15:04"
	DateLayout      = "Mon Jan 02 2006"
)

// TimeText is a formatted time with the byte range [0, BoldEnd) drawn bold.
type TimeText struct {
	Text    string
	BoldEnd int
}

// Hour returns the bold leading portion.
func (t TimeText) Hour() string { return t.Text[:t.BoldEnd] }

// Rest returns the text after the bold portion.
func (t TimeText) Rest() string { return t.Text[t.BoldEnd:] }

// Formatter holds the layouts used for interactive and ambient rendering.
// The zero value is not usable; start from Default.
type Formatter struct {
	Full     string
	Short    string
	Date     string
	Location *time.Location
}

func Default() Formatter {
	return Formatter{Full: FullTimeLayout, Short: ShortTimeLayout, Date: DateLayout}
}

// Time formats now with the short layout in ambient mode and the full layout
// otherwise. The bold range ends at the first ':'; layouts without one get no
// bold range.
func (f Formatter) Time(now time.Time, ambient bool) TimeText {
	layout := f.Full
	if ambient {
		layout = f.Short
	}
	text := f.in(now).Format(layout)
	end := strings.IndexByte(text, ':')
	if end < 0 {
		end = 0
	}
	return TimeText{Text: text, BoldEnd: end}
}

func (f Formatter) DateString(now time.Time) string {
	return f.in(now).Format(f.Date)
}

func (f Formatter) in(now time.Time) time.Time {
	if f.Location != nil {
		return now.In(f.Location)
	}
	return now
}

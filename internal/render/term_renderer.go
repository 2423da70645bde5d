package render

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// TermRenderer prints a text rendition of each frame. It is meant for
// development; icons are shown as a marker only.
type TermRenderer struct {
	Out   io.Writer
	Clear bool
	Width int

	mu sync.Mutex
}

func NewTermRenderer(out io.Writer) *TermRenderer {
	if out == nil {
		out = os.Stdout
	}
	return &TermRenderer{Out: out, Width: 28}
}

func (r *TermRenderer) Start(ctx context.Context) error { return nil }
func (r *TermRenderer) Stop() error                     { return nil }

func (r *TermRenderer) Draw(frame Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := RenderText(frame, r.Width)
	if r.Clear {
		out = "\x1b[H\x1b[2J" + out
	}
	_, err := fmt.Fprintln(r.Out, out)
	return err
}

// RenderText lays the frame out as styled terminal text.
func RenderText(frame Frame, width int) string {
	background := lipgloss.Color(HexColor(frame.Background))
	base := lipgloss.NewStyle().Background(background)

	timeStyle := base.Foreground(lipgloss.Color(HexColor(frame.Time.Color)))
	t := frame.Time
	timeLine := timeStyle.Bold(true).Render(t.Text[:t.BoldEnd]) + timeStyle.Render(t.Text[t.BoldEnd:])

	dateLine := base.Foreground(lipgloss.Color(HexColor(frame.Date.Color))).Render(frame.Date.Text)

	weather := base.Foreground(lipgloss.Color(HexColor(frame.High.Color))).Render(frame.High.Text)
	if frame.Low.Text != "" {
		weather += base.Render("  ") + base.Foreground(lipgloss.Color(HexColor(frame.Low.Color))).Render(frame.Low.Text)
	}
	if frame.ShowIcon {
		weather = base.Render("[*] ") + weather
	}

	return base.
		Width(width).
		Padding(1, 2).
		Align(lipgloss.Center).
		Render(lipgloss.JoinVertical(lipgloss.Center, timeLine, dateLine, "", weather))
}

// Package config loads the face configuration from a TOML file.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/rook-computer/weatherface/internal/render"
	"github.com/rook-computer/weatherface/internal/timefmt"
)

const (
	EnvConfigPath  = "WEATHERFACE_CONFIG"
	EnvTimezone    = "WEATHERFACE_TZ"
	EnvIdleTimeout = "WEATHERFACE_IDLE_TIMEOUT"
	EnvLowBit      = "WEATHERFACE_LOW_BIT"
)

type Config struct {
	Timezone       string  `toml:"timezone"`
	IdleTimeoutSec int     `toml:"idle_timeout_sec"` // 0 disables idle-to-ambient
	LowBitAmbient  bool    `toml:"low_bit_ambient"`
	Display        Display `toml:"display"`
	Format         Format  `toml:"format"`
	Theme          Theme   `toml:"theme"`
}

type Display struct {
	Device string `toml:"device"` // framebuffer device (default /dev/fb0)
	Width  int    `toml:"width"`  // logical canvas width
	Height int    `toml:"height"` // logical canvas height
}

type Format struct {
	Time        string `toml:"time"`         // interactive time layout
	AmbientTime string `toml:"ambient_time"` // ambient time layout
	Date        string `toml:"date"`
}

// Theme colors are "#rrggbb" strings.
type Theme struct {
	Accent            string `toml:"accent"`
	AmbientBackground string `toml:"ambient_background"`
	Foreground        string `toml:"foreground"`
	SecondaryText     string `toml:"secondary_text"`
}

func Defaults() *Config {
	return &Config{
		IdleTimeoutSec: 15,
		Display:        Display{Device: "/dev/fb0", Width: render.CanvasWidth, Height: render.CanvasHeight},
		Format: Format{
			Time:        timefmt.FullTimeLayout,
			AmbientTime: timefmt.ShortTimeLayout,
			Date:        timefmt.DateLayout,
		},
		Theme: Theme{
			Accent:            render.HexColor(render.Accent),
			AmbientBackground: render.HexColor(render.AmbientBackground),
			Foreground:        render.HexColor(render.Foreground),
			SecondaryText:     render.HexColor(render.SecondaryText),
		},
	}
}

// Load decodes path over the defaults. An empty path yields the defaults.
// Read and parse errors return the defaults together with the error.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Defaults(), fmt.Errorf("read config: %w", err)
	}
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return Defaults(), fmt.Errorf("parse config: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

// LoadDotEnv loads .env files into the process environment. Missing files
// are not an error.
func LoadDotEnv(paths ...string) error {
	var existing []string
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// ApplyEnv overrides file settings with WEATHERFACE_* variables.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	var errs []error
	if tz := getenv(EnvTimezone); tz != "" {
		c.Timezone = tz
	}
	if raw := getenv(EnvIdleTimeout); raw != "" {
		d, err := time.ParseDuration(raw)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("%s: %w", EnvIdleTimeout, err))
		case d < 0 || d%time.Second != 0:
			errs = append(errs, fmt.Errorf("%s: %q must be a whole number of seconds", EnvIdleTimeout, raw))
		default:
			c.IdleTimeoutSec = int(d / time.Second)
		}
	}
	if raw := getenv(EnvLowBit); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvLowBit, err))
		} else {
			c.LowBitAmbient = b
		}
	}
	c.normalize()
	return errors.Join(errs...)
}

func (c *Config) IdleTimeout() time.Duration {
	return time.Duration(c.IdleTimeoutSec) * time.Second
}

// Formatter builds the time formatter. An unknown timezone falls back to the
// local zone and is reported.
func (c *Config) Formatter() (timefmt.Formatter, error) {
	f := timefmt.Formatter{Full: c.Format.Time, Short: c.Format.AmbientTime, Date: c.Format.Date}
	if c.Timezone == "" {
		return f, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return f, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	f.Location = loc
	return f, nil
}

// RenderTheme converts the theme to render colors. Invalid colors keep their
// defaults and are reported.
func (c *Config) RenderTheme() (render.Theme, error) {
	theme := render.DefaultTheme()
	theme.Width = c.Display.Width
	theme.Height = c.Display.Height

	var errs []error
	set := func(name, raw string, dst *color.RGBA) {
		parsed, err := ParseHexColor(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("theme.%s: %w", name, err))
			return
		}
		*dst = parsed
	}
	set("accent", c.Theme.Accent, &theme.Accent)
	set("ambient_background", c.Theme.AmbientBackground, &theme.AmbientBackground)
	set("foreground", c.Theme.Foreground, &theme.Foreground)
	set("secondary_text", c.Theme.SecondaryText, &theme.SecondaryText)
	return theme, errors.Join(errs...)
}

// normalize clamps and validates config values after decoding.
func (c *Config) normalize() {
	d := Defaults()
	if c.IdleTimeoutSec < 0 {
		c.IdleTimeoutSec = 0
	}
	if c.Display.Device == "" {
		c.Display.Device = d.Display.Device
	}
	c.Display.Width = clampInt(c.Display.Width, 64, 2048, d.Display.Width)
	c.Display.Height = clampInt(c.Display.Height, 64, 2048, d.Display.Height)
	if strings.TrimSpace(c.Format.Time) == "" {
		c.Format.Time = d.Format.Time
	}
	if strings.TrimSpace(c.Format.AmbientTime) == "" {
		c.Format.AmbientTime = d.Format.AmbientTime
	}
	if strings.TrimSpace(c.Format.Date) == "" {
		c.Format.Date = d.Format.Date
	}
}

func clampInt(v, lo, hi, def int) int {
	if v == 0 {
		return def
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ParseHexColor parses "#rrggbb" or "#rgb".
func ParseHexColor(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xFF}, nil
}

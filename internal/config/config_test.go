package config

import (
	"context"
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rook-computer/weatherface/internal/render"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadEmptyPathIsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if *cfg != *Defaults() {
		t.Fatalf("cfg = %+v", cfg)
	}
	theme, err := cfg.RenderTheme()
	if err != nil || theme != render.DefaultTheme() {
		t.Fatalf("theme = %+v, %v", theme, err)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "face.toml")
	writeFile(t, path, `
timezone = "UTC"
low_bit_ambient = true

[display]
width = 10000

[format]
time = "15.04.05"

[theme]
accent = "#ff0000"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.LowBitAmbient || cfg.Timezone != "UTC" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.Display.Width != 2048 || cfg.Display.Height != render.CanvasHeight {
		t.Fatalf("display = %+v", cfg.Display)
	}
	if cfg.Format.Time != "15.04.05" || cfg.Format.AmbientTime != "15:04" {
		t.Fatalf("format = %+v", cfg.Format)
	}
	theme, err := cfg.RenderTheme()
	if err != nil {
		t.Fatalf("theme: %v", err)
	}
	if theme.Accent != (color.RGBA{R: 0xFF, A: 0xFF}) || theme.Foreground != render.Foreground {
		t.Fatalf("theme = %+v", theme)
	}
	f, err := cfg.Formatter()
	if err != nil || f.Location != time.UTC {
		t.Fatalf("formatter = %+v, %v", f, err)
	}
}

func TestLoadErrorsReturnDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if !errors.Is(err, os.ErrNotExist) || cfg == nil {
		t.Fatalf("missing file: %v", err)
	}

	path := filepath.Join(t.TempDir(), "bad.toml")
	writeFile(t, path, "timezone = ")
	cfg, err = Load(path)
	if err == nil || *cfg != *Defaults() {
		t.Fatalf("parse error: cfg=%+v err=%v", cfg, err)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{EnvIdleTimeout: "30s", EnvLowBit: "true", EnvTimezone: "Europe/Berlin"}
	cfg := Defaults()
	if err := cfg.ApplyEnv(func(k string) string { return env[k] }); err != nil {
		t.Fatalf("apply env: %v", err)
	}
	if cfg.IdleTimeout() != 30*time.Second || !cfg.LowBitAmbient || cfg.Timezone != "Europe/Berlin" {
		t.Fatalf("cfg = %+v", cfg)
	}

	for _, raw := range []string{"500ms", "1500ms", "-5s"} {
		env[EnvIdleTimeout] = raw
		cfg := Defaults()
		if err := cfg.ApplyEnv(func(k string) string { return env[k] }); err == nil {
			t.Fatalf("%s accepted", raw)
		}
		if cfg.IdleTimeout() != Defaults().IdleTimeout() {
			t.Fatalf("%s changed the timeout to %v", raw, cfg.IdleTimeout())
		}
	}

	env[EnvIdleTimeout] = "0s"
	cfg = Defaults()
	if err := cfg.ApplyEnv(func(k string) string { return env[k] }); err != nil || cfg.IdleTimeout() != 0 {
		t.Fatalf("0s: timeout=%v err=%v", cfg.IdleTimeout(), err)
	}

	env[EnvIdleTimeout] = "soon"
	if err := Defaults().ApplyEnv(func(k string) string { return env[k] }); err == nil {
		t.Fatalf("invalid duration accepted")
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.RGBA
		ok   bool
	}{
		{in: "#03A9F4", want: color.RGBA{R: 0x03, G: 0xA9, B: 0xF4, A: 0xFF}, ok: true},
		{in: "fff", want: color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}, ok: true},
		{in: "#12345"},
		{in: "#zzzzzz"},
	}
	for _, tc := range tests {
		got, err := ParseHexColor(tc.in)
		if (err == nil) != tc.ok || got != tc.want {
			t.Fatalf("ParseHexColor(%q) = %v, %v", tc.in, got, err)
		}
	}
}

func TestHexColorRoundTrip(t *testing.T) {
	for _, c := range []color.RGBA{render.Accent, render.AmbientBackground, render.SecondaryText} {
		got, err := ParseHexColor(render.HexColor(c))
		if err != nil || got != c {
			t.Fatalf("round trip %v = %v, %v", c, got, err)
		}
	}
	if got := render.HexColor(render.Accent); got != "#03a9f4" {
		t.Fatalf("HexColor = %q", got)
	}
}

func TestInvalidThemeColorKeepsDefault(t *testing.T) {
	cfg := Defaults()
	cfg.Theme.Accent = "blue"
	theme, err := cfg.RenderTheme()
	if err == nil || theme.Accent != render.Accent {
		t.Fatalf("theme = %+v, err = %v", theme, err)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := LoadDotEnv(filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("missing .env: %v", err)
	}
	path := filepath.Join(dir, "test.env")
	writeFile(t, path, "WEATHERFACE_TEST_DOTENV=loaded\n")
	t.Cleanup(func() { os.Unsetenv("WEATHERFACE_TEST_DOTENV") })
	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := os.Getenv("WEATHERFACE_TEST_DOTENV"); got != "loaded" {
		t.Fatalf("env = %q", got)
	}
}

func TestWatchReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "face.toml")
	writeFile(t, path, `[theme]
accent = "#000001"
`)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan *Config, 4)
	if err := Watch(ctx, path, func(c *Config) { changes <- c }, nil); err != nil {
		t.Fatalf("watch: %v", err)
	}
	writeFile(t, path, `[theme]
accent = "#000002"
`)

	select {
	case cfg := <-changes:
		if cfg.Theme.Accent != "#000002" {
			t.Fatalf("reloaded accent = %q", cfg.Theme.Accent)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("no reload")
	}
}

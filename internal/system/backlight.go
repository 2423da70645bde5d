package system

import (
	"context"
	"fmt"
	"strings"
)

const backlightScript = "backlight.sh"

// SetBacklight dims the panel for ambient mode or restores full brightness.
func SetBacklight(ctx context.Context, r Runner, dim bool) error {
	mode := "bright"
	if dim {
		mode = "dim"
	}
	_, stderr, err := r.Run(ctx, backlightScript, mode)
	if err != nil {
		return fmt.Errorf("backlight %s failed: %w: %s", mode, err, strings.TrimSpace(stderr))
	}
	return nil
}

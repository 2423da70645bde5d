//go:build !linux

package system

type logger interface {
	Infof(string, string, ...interface{})
	Errorf(string, string, ...interface{})
}

// EnterGraphics is a no-op without Linux virtual terminals.
func EnterGraphics(l logger) error { return nil }

func RestoreText(l logger) error { return nil }

//go:build unix

package system

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// RedirectOutput points file descriptors 1 and 2 at path, appending. Output
// written by the runtime itself, such as panic traces, follows.
func RedirectOutput(path string) error {
	if path == "" {
		return nil
	}
	fd, err := unix.Open(path, unix.O_WRONLY|unix.O_CREAT|unix.O_APPEND|unix.O_CLOEXEC, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer unix.Close(fd)
	for _, target := range []int{unix.Stdout, unix.Stderr} {
		if err := unix.Dup2(fd, target); err != nil {
			return fmt.Errorf("dup2 onto fd %d: %w", target, err)
		}
	}
	return nil
}

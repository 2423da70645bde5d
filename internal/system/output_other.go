//go:build !unix

package system

import "os"

// RedirectOutput replaces os.Stdout and os.Stderr with path. Runtime panic
// output is not captured on these platforms.
func RedirectOutput(path string) error {
	if path == "" {
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	os.Stdout = f
	os.Stderr = f
	return nil
}

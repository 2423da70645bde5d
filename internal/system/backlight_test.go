package system

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type scriptedRunner struct {
	calls  [][]string
	stderr string
	err    error
}

func (r *scriptedRunner) Run(ctx context.Context, cmd string, args ...string) (string, string, error) {
	r.calls = append(r.calls, append([]string{cmd}, args...))
	return "", r.stderr, r.err
}

func TestSetBacklight(t *testing.T) {
	r := &scriptedRunner{}
	if err := SetBacklight(context.Background(), r, true); err != nil {
		t.Fatalf("dim: %v", err)
	}
	if err := SetBacklight(context.Background(), r, false); err != nil {
		t.Fatalf("bright: %v", err)
	}
	want := []string{"backlight.sh dim", "backlight.sh bright"}
	for i, call := range r.calls {
		if got := strings.Join(call, " "); got != want[i] {
			t.Fatalf("call %d = %q, want %q", i, got, want[i])
		}
	}
}

func TestSetBacklightError(t *testing.T) {
	cause := errors.New("exit 1")
	r := &scriptedRunner{stderr: "no such device\n", err: cause}
	err := SetBacklight(context.Background(), r, true)
	if !errors.Is(err, cause) {
		t.Fatalf("err = %v, want wrapped %v", err, cause)
	}
	if !strings.Contains(err.Error(), "no such device") {
		t.Fatalf("stderr missing from %q", err)
	}
}

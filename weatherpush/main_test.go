package main

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rook-computer/weatherface/internal/datalayer"
	"github.com/rook-computer/weatherface/internal/weathersync"
	"github.com/rook-computer/weatherface/internal/web"
)

func newTestFace(t *testing.T) (*datalayer.Node, string) {
	t.Helper()
	node := datalayer.NewNode()
	srv := httptest.NewServer(web.NewDefaultMux("", web.APIV1Deps{Data: node}))
	t.Cleanup(srv.Close)
	return node, srv.URL
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSetWithoutIcon(t *testing.T) {
	node, addr := newTestFace(t)

	if _, err := runCommand(t, "--addr", addr, "set", "--high", "25°", "--low", "16°"); err != nil {
		t.Fatalf("set: %v", err)
	}
	item, ok := node.DataItem(weathersync.Path)
	if !ok {
		t.Fatalf("weather item missing")
	}
	update, complete := weathersync.ParseUpdate(item)
	if !complete {
		t.Fatalf("update incomplete: %+v", item.Data)
	}
	if update.HighTemp != "25°" || update.LowTemp != "16°" || update.HasIcon {
		t.Fatalf("update = %+v", update)
	}
}

func TestSetWithIconUploadsAsset(t *testing.T) {
	node, addr := newTestFace(t)

	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatalf("encode: %v", err)
	}
	iconPath := filepath.Join(t.TempDir(), "sunny.png")
	if err := os.WriteFile(iconPath, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write icon: %v", err)
	}

	out, err := runCommand(t, "--addr", addr, "set", "--high", "30°", "--low", "20°", "--icon", iconPath)
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	item, _ := node.DataItem(weathersync.Path)
	update, complete := weathersync.ParseUpdate(item)
	if !complete || !update.HasIcon {
		t.Fatalf("update = %+v complete=%v", update, complete)
	}
	if !strings.Contains(out, update.Icon.Digest) {
		t.Fatalf("output %q does not name digest %s", out, update.Icon.Digest)
	}
}

func TestSetRequiresBothTemperatures(t *testing.T) {
	_, addr := newTestFace(t)
	if _, err := runCommand(t, "--addr", addr, "set", "--high", "25°"); err == nil {
		t.Fatalf("expected error without --low")
	}
}

func TestDelete(t *testing.T) {
	node, addr := newTestFace(t)

	if _, err := runCommand(t, "--addr", addr, "delete"); err == nil || !strings.Contains(err.Error(), "404") {
		t.Fatalf("delete of missing item err = %v", err)
	}
	node.PutDataItem(weathersync.Path, datalayer.DataMap{Strings: map[string]string{weathersync.KeyHighTemp: "1°"}})
	if _, err := runCommand(t, "--addr", addr, "delete"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := node.DataItem(weathersync.Path); ok {
		t.Fatalf("item still present")
	}
}

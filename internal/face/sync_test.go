package face

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rook-computer/weatherface/internal/datalayer"
	"github.com/rook-computer/weatherface/internal/weathersync"
)

// stallDialer passes dials through to the node until stalled; stalled dials
// block until their context ends.
type stallDialer struct {
	node    *datalayer.Node
	stalled atomic.Bool
	entered chan struct{}
}

func (d *stallDialer) Dial(ctx context.Context) (datalayer.Conn, error) {
	if !d.stalled.Load() {
		return d.node.Dial(ctx)
	}
	d.entered <- struct{}{}
	<-ctx.Done()
	return nil, ctx.Err()
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func weatherItem(high, low string, icon *datalayer.Asset) datalayer.DataMap {
	m := datalayer.DataMap{Strings: map[string]string{weathersync.KeyHighTemp: high, weathersync.KeyLowTemp: low}}
	if icon != nil {
		m.Assets = map[string]datalayer.Asset{weathersync.KeyIcon: *icon}
	}
	return m
}

func TestWeatherPushReachesFace(t *testing.T) {
	node := datalayer.NewNode()
	h := newHarness(Options{Dialer: node})
	h.engine.SetVisible(true)
	h.engine.SetAmbient(true)
	h.drain()
	t.Cleanup(func() {
		h.engine.Destroy()
		h.drain()
	})
	h.waitFor(t, func() bool { return node.Connections() == 1 })

	node.PutDataItem(weathersync.Path, datalayer.DataMap{Strings: map[string]string{weathersync.KeyHighTemp: "30°"}})
	icon := node.PutAsset(encodePNG(t, 3, 3))
	node.PutDataItem(weathersync.Path, weatherItem("25°", "16°", &icon))

	h.waitFor(t, func() bool {
		w := h.engine.Store().Snapshot().Weather
		return w.Icon != nil
	})
	w := h.engine.Store().Snapshot().Weather
	if w.HighTemp != "25°" || w.LowTemp != "16°" || w.IconRef != icon.Digest {
		t.Fatalf("weather = %+v", w)
	}
	if w.Icon.Bounds().Dx() != 3 {
		t.Fatalf("icon bounds = %v", w.Icon.Bounds())
	}
	if frame := h.renderer.last(); frame.High.Text != "25°" || frame.Icon == nil {
		t.Fatalf("last frame = %+v", frame)
	}
}

func TestIconFetchTimeoutKeepsIcon(t *testing.T) {
	node := datalayer.NewNode()
	dialer := &stallDialer{node: node, entered: make(chan struct{}, 1)}
	h := newHarness(Options{})
	h.engine.icons = weathersync.NewIconFetcher(dialer, h.clock)
	h.engine.SetVisible(true)
	h.engine.SetAmbient(true)
	h.drain()

	first := node.PutAsset(encodePNG(t, 2, 2))
	h.engine.WeatherChanged(withIcon("1", "2", first.Digest))
	h.waitFor(t, func() bool { return h.engine.Store().Snapshot().Weather.Icon != nil })
	icon := h.engine.Store().Snapshot().Weather.Icon

	dialer.stalled.Store(true)
	second := node.PutAsset(encodePNG(t, 5, 5))
	h.engine.WeatherChanged(withIcon("3", "4", second.Digest))
	h.drain()
	select {
	case <-dialer.entered:
	case <-time.After(2 * time.Second):
		t.Fatalf("icon fetch never dialed")
	}

	h.clock.Advance(weathersync.ConnectTimeout)
	h.waitFor(t, func() bool { return h.logger.contains(weathersync.ErrConnectTimeout.Error()) })

	w := h.engine.Store().Snapshot().Weather
	if w.Icon != icon {
		t.Fatalf("icon replaced after timeout")
	}
	if w.HighTemp != "3" || w.LowTemp != "4" {
		t.Fatalf("temperatures = %q / %q", w.HighTemp, w.LowTemp)
	}
}

package weathersync

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rook-computer/weatherface/internal/clock"
	"github.com/rook-computer/weatherface/internal/datalayer"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 0xFF, A: 0xFF})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

// gatedDialer counts dials and holds each one until released or the dial
// context ends.
type gatedDialer struct {
	node    *datalayer.Node
	dials   atomic.Int32
	entered chan struct{}
	release chan struct{}
}

func newGatedDialer(node *datalayer.Node) *gatedDialer {
	return &gatedDialer{node: node, entered: make(chan struct{}, 16), release: make(chan struct{})}
}

func (d *gatedDialer) Dial(ctx context.Context) (datalayer.Conn, error) {
	d.dials.Add(1)
	d.entered <- struct{}{}
	select {
	case <-d.release:
		return d.node.Dial(ctx)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func fetchNow(t *testing.T, f *IconFetcher, asset datalayer.Asset) IconResult {
	t.Helper()
	ch := make(chan IconResult, 1)
	f.FetchAsync(context.Background(), asset, func(r IconResult) { ch <- r })
	return waitResult(t, ch)
}

func waitResult(t *testing.T, ch chan IconResult) IconResult {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(2 * time.Second):
		t.Fatalf("no icon result")
		return IconResult{}
	}
}

func TestFetchDecodesIcon(t *testing.T) {
	node := datalayer.NewNode()
	asset := node.PutAsset(pngBytes(t))

	r := fetchNow(t, NewIconFetcher(node, nil), asset)
	if r.Err != nil {
		t.Fatalf("fetch: %v", r.Err)
	}
	if r.Ref != asset.Digest || r.Icon == nil || r.Icon.Bounds().Dx() != 4 {
		t.Fatalf("result = %+v", r)
	}
}

func TestFetchUnknownAsset(t *testing.T) {
	r := fetchNow(t, NewIconFetcher(datalayer.NewNode(), nil), datalayer.Asset{Digest: "nope"})
	if !errors.Is(r.Err, datalayer.ErrUnknownAsset) || r.Icon != nil {
		t.Fatalf("result = %+v", r)
	}
}

func TestFetchDecodeFailure(t *testing.T) {
	node := datalayer.NewNode()
	asset := node.PutAsset([]byte("not an image"))
	r := fetchNow(t, NewIconFetcher(node, nil), asset)
	if r.Err == nil || r.Icon != nil {
		t.Fatalf("result = %+v", r)
	}
}

func TestFetchRejectsOversizedIcon(t *testing.T) {
	// A blank 6000x6000 PNG compresses to a few tens of kilobytes.
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 6000, 6000))); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if buf.Len() > maxIconBytes {
		t.Fatalf("test image is %d bytes, want it under the byte cap", buf.Len())
	}
	node := datalayer.NewNode()
	asset := node.PutAsset(buf.Bytes())

	r := fetchNow(t, NewIconFetcher(node, nil), asset)
	if !errors.Is(r.Err, ErrIconTooLarge) || r.Icon != nil {
		t.Fatalf("result = %+v, want ErrIconTooLarge", r)
	}
}

func TestDecodeIconLimit(t *testing.T) {
	encode := func(w, h int) []byte {
		var buf bytes.Buffer
		if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, w, h))); err != nil {
			t.Fatalf("encode: %v", err)
		}
		return buf.Bytes()
	}
	if _, err := decodeIcon(encode(512, 512)); err != nil {
		t.Fatalf("512x512: %v", err)
	}
	if _, err := decodeIcon(encode(513, 512)); !errors.Is(err, ErrIconTooLarge) {
		t.Fatalf("513x512 err = %v", err)
	}
	if _, err := decodeIcon(bytes.Repeat([]byte{0}, maxIconBytes+1)); err == nil {
		t.Fatalf("garbage decoded")
	}
}

func TestFetchTimesOutAfterConnectTimeout(t *testing.T) {
	node := datalayer.NewNode()
	asset := node.PutAsset(pngBytes(t))
	dialer := newGatedDialer(node)
	fake := clock.NewFake(time.Date(2016, 5, 3, 12, 0, 0, 0, time.UTC))
	f := NewIconFetcher(dialer, fake)

	results := make(chan IconResult, 1)
	f.FetchAsync(context.Background(), asset, func(r IconResult) { results <- r })
	<-dialer.entered

	fake.Advance(ConnectTimeout - time.Millisecond)
	select {
	case r := <-results:
		t.Fatalf("fetch finished before the timeout: %+v", r)
	case <-time.After(20 * time.Millisecond):
	}

	fake.Advance(time.Millisecond)
	r := waitResult(t, results)
	if !errors.Is(r.Err, ErrConnectTimeout) || r.Icon != nil {
		t.Fatalf("result = %+v, want connect timeout", r)
	}
}

func TestConcurrentFetchesShareOneDial(t *testing.T) {
	node := datalayer.NewNode()
	asset := node.PutAsset(pngBytes(t))
	dialer := newGatedDialer(node)
	f := NewIconFetcher(dialer, nil)

	results := make(chan IconResult, 2)
	f.FetchAsync(context.Background(), asset, func(r IconResult) { results <- r })
	f.FetchAsync(context.Background(), asset, func(r IconResult) { results <- r })
	<-dialer.entered
	close(dialer.release)

	for i := 0; i < 2; i++ {
		r := waitResult(t, results)
		if r.Err != nil || r.Icon == nil || !r.Shared {
			t.Fatalf("result %d = %+v", i, r)
		}
	}
	if n := dialer.dials.Load(); n != 1 {
		t.Fatalf("dials = %d, want 1", n)
	}
}

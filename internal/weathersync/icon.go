package weathersync

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"time"

	"github.com/rook-computer/weatherface/internal/clock"
	"github.com/rook-computer/weatherface/internal/datalayer"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/singleflight"
)

// Icons larger than this in bytes or pixels are rejected before decoding.
const (
	maxIconBytes  = 1 << 20
	maxIconPixels = 512 * 512
)

var (
	ErrConnectTimeout = errors.New("connect timeout")
	ErrIconTooLarge   = errors.New("icon too large")
)

// IconResult is the outcome of one icon fetch.
type IconResult struct {
	Ref  string
	Icon image.Image
	Err  error
	// Shared is set when the result was produced for another caller too.
	Shared bool
}

// IconFetcher resolves icon assets to images. Concurrent fetches of the same
// asset share one connection and one decode.
type IconFetcher struct {
	dialer  Dialer
	clock   clock.Clock
	timeout time.Duration
	group   singleflight.Group
}

func NewIconFetcher(dialer Dialer, c clock.Clock) *IconFetcher {
	if c == nil {
		c = clock.Real()
	}
	return &IconFetcher{dialer: dialer, clock: c, timeout: ConnectTimeout}
}

// FetchAsync starts a fetch and calls done with the result on another
// goroutine.
func (f *IconFetcher) FetchAsync(ctx context.Context, asset datalayer.Asset, done func(IconResult)) {
	ch := f.group.DoChan(asset.Digest, func() (interface{}, error) {
		return f.load(ctx, asset)
	})
	go func() {
		r := <-ch
		done(result(asset, r.Val, r.Err, r.Shared))
	}()
}

func result(asset datalayer.Asset, v interface{}, err error, shared bool) IconResult {
	r := IconResult{Ref: asset.Digest, Err: err, Shared: shared}
	if img, ok := v.(image.Image); ok {
		r.Icon = img
	}
	return r
}

func (f *IconFetcher) load(ctx context.Context, asset datalayer.Asset) (image.Image, error) {
	dialCtx, cancel := context.WithCancelCause(ctx)
	timer := f.clock.AfterFunc(f.timeout, func() { cancel(ErrConnectTimeout) })
	conn, err := f.dialer.Dial(dialCtx)
	timer.Stop()
	defer cancel(nil)
	if err != nil {
		if cause := context.Cause(dialCtx); errors.Is(cause, ErrConnectTimeout) {
			return nil, fmt.Errorf("dial after %s: %w", f.timeout, ErrConnectTimeout)
		}
		return nil, fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	rc, err := conn.OpenAsset(ctx, asset)
	if err != nil {
		return nil, fmt.Errorf("open asset: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxIconBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read asset: %w", err)
	}
	if len(data) > maxIconBytes {
		return nil, fmt.Errorf("decode icon: over %d bytes: %w", maxIconBytes, ErrIconTooLarge)
	}
	return decodeIcon(data)
}

// decodeIcon checks the header dimensions before decoding so a small,
// highly compressed file cannot expand into a huge image.
func decodeIcon(data []byte) (image.Image, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode icon: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > maxIconPixels {
		return nil, fmt.Errorf("decode icon: %dx%d: %w", cfg.Width, cfg.Height, ErrIconTooLarge)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode icon: %w", err)
	}
	return img, nil
}

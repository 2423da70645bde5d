package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rook-computer/weatherface/internal/datalayer"
	"github.com/rook-computer/weatherface/internal/face"
	"github.com/rook-computer/weatherface/internal/input"
	"github.com/rook-computer/weatherface/internal/render"
)

type SimFaults struct {
	// DialDelayMs delays every data-layer dial; above 2000 icon fetches time out.
	DialDelayMs int64 `json:"dialDelayMs"`
	DialFail    bool  `json:"dialFail"`
	// DecodeFail serves garbage for every asset.
	DecodeFail bool `json:"decodeFail"`
}

// SimControl plays the watch platform for the simulator: it forwards
// lifecycle changes to the engine and injects data-layer faults.
type SimControl struct {
	// OnTap, when set, sees every simulated tap before the engine does.
	OnTap func()

	engine *face.Engine
	node   *datalayer.Node
	frames *render.ImageRenderer
	faults struct {
		mu sync.RWMutex
		v  SimFaults
	}
	lowBit struct {
		mu sync.Mutex
		v  bool
	}
}

func NewSimControl(node *datalayer.Node, frames *render.ImageRenderer) *SimControl {
	return &SimControl{node: node, frames: frames}
}

// Attach sets the engine driven by the control. It must be called before
// serving requests.
func (c *SimControl) Attach(engine *face.Engine) { c.engine = engine }

func (c *SimControl) Faults() SimFaults {
	c.faults.mu.RLock()
	defer c.faults.mu.RUnlock()
	return c.faults.v
}

func (c *SimControl) SetFaults(v SimFaults) {
	c.faults.mu.Lock()
	c.faults.v = v
	c.faults.mu.Unlock()
}

func (c *SimControl) SetLowBit(v bool) {
	c.lowBit.mu.Lock()
	c.lowBit.v = v
	c.lowBit.mu.Unlock()
	c.engine.SetProperties(face.Properties{LowBitAmbient: v})
}

// Tap delivers a tap at x, y.
func (c *SimControl) Tap(x, y int) {
	if c.OnTap != nil {
		c.OnTap()
	}
	c.engine.Tap(input.TapEvent{Type: input.Tap, X: x, Y: y, Time: time.Now()})
}

// Reset clears faults and data and returns the face to visible interactive.
func (c *SimControl) Reset() {
	c.SetFaults(SimFaults{})
	c.node.Reset()
	c.SetLowBit(false)
	c.engine.SetAmbient(false)
	c.engine.SetVisible(true)
}

// Dial implements weathersync.Dialer with the configured faults applied.
func (c *SimControl) Dial(ctx context.Context) (datalayer.Conn, error) {
	faults := c.Faults()
	if faults.DialDelayMs > 0 {
		timer := time.NewTimer(time.Duration(faults.DialDelayMs) * time.Millisecond)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	if faults.DialFail {
		return nil, errors.New("simulated dial failure")
	}
	conn, err := c.node.Dial(ctx)
	if err != nil {
		return nil, err
	}
	if faults.DecodeFail {
		return garbageAssets{conn}, nil
	}
	return conn, nil
}

type garbageAssets struct {
	datalayer.Conn
}

func (g garbageAssets) OpenAsset(ctx context.Context, asset datalayer.Asset) (io.ReadCloser, error) {
	rc, err := g.Conn.OpenAsset(ctx, asset)
	if err != nil {
		return nil, err
	}
	_ = rc.Close()
	return io.NopCloser(strings.NewReader("simulated corrupt asset")), nil
}

func registerSimEndpoints(mux *http.ServeMux, control *SimControl) {
	boolRoute := func(prefix string, apply func(bool)) {
		mux.HandleFunc(prefix, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				writeSimError(w, http.StatusMethodNotAllowed, "method not allowed")
				return
			}
			raw := strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/")
			v, err := strconv.ParseBool(raw)
			if err != nil {
				writeSimError(w, http.StatusBadRequest, fmt.Sprintf("expected a boolean, got %q", raw))
				return
			}
			apply(v)
			writeSimJSON(w, http.StatusOK, map[string]any{"ok": true, "value": v})
		})
	}
	boolRoute("/sim/visible/", func(v bool) { control.engine.SetVisible(v) })
	boolRoute("/sim/ambient/", func(v bool) { control.engine.SetAmbient(v) })
	boolRoute("/sim/lowbit/", control.SetLowBit)

	mux.HandleFunc("/sim/tap", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeSimError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		var pos struct {
			X int `json:"x"`
			Y int `json:"y"`
		}
		if err := json.NewDecoder(r.Body).Decode(&pos); err != nil && !errors.Is(err, io.EOF) {
			writeSimError(w, http.StatusBadRequest, "invalid json")
			return
		}
		control.Tap(pos.X, pos.Y)
		writeSimJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	mux.HandleFunc("/sim/reset", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeSimError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		control.Reset()
		writeSimJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	mux.HandleFunc("/sim/frame.png", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeSimError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		png, err := control.frames.PNG()
		if err != nil {
			writeSimError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if png == nil {
			writeSimError(w, http.StatusNotFound, "no frame drawn yet")
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write(png)
	})

	mux.HandleFunc("/sim/faults", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeSimJSON(w, http.StatusOK, control.Faults())
			return
		case http.MethodPost:
			var patch struct {
				DialDelayMs *int64 `json:"dialDelayMs"`
				DialFail    *bool  `json:"dialFail"`
				DecodeFail  *bool  `json:"decodeFail"`
			}
			if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
				writeSimError(w, http.StatusBadRequest, "invalid json")
				return
			}
			current := control.Faults()
			if patch.DialDelayMs != nil {
				current.DialDelayMs = *patch.DialDelayMs
			}
			if patch.DialFail != nil {
				current.DialFail = *patch.DialFail
			}
			if patch.DecodeFail != nil {
				current.DecodeFail = *patch.DecodeFail
			}
			control.SetFaults(current)
			writeSimJSON(w, http.StatusOK, current)
			return
		default:
			writeSimError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
	})
}

func writeSimJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSimError(w http.ResponseWriter, status int, message string) {
	writeSimJSON(w, status, map[string]any{"error": message})
}

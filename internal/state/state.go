package state

import (
	"image"
	"sync"
	"time"
)

type Phase int

const (
	Hidden Phase = iota
	VisibleInteractive
	VisibleAmbient
)

func (p Phase) String() string {
	switch p {
	case Hidden:
		return "hidden"
	case VisibleInteractive:
		return "interactive"
	case VisibleAmbient:
		return "ambient"
	default:
		return "unknown"
	}
}

// FaceState is the lifecycle state of the watch face.
type FaceState struct {
	Visible       bool
	Ambient       bool
	LowBitAmbient bool
}

func (f FaceState) Phase() Phase {
	switch {
	case !f.Visible:
		return Hidden
	case f.Ambient:
		return VisibleAmbient
	default:
		return VisibleInteractive
	}
}

// TimerActive reports whether the per-second redraw timer should run.
func (f FaceState) TimerActive() bool { return f.Visible && !f.Ambient }

// AntiAlias reports whether text is drawn anti-aliased. Low-bit displays get
// crisp 1-bit text while ambient.
func (f FaceState) AntiAlias() bool { return !(f.Ambient && f.LowBitAmbient) }

// WeatherSnapshot is the last-known weather. An empty snapshot renders as
// blank text and no icon.
type WeatherSnapshot struct {
	HighTemp  string
	LowTemp   string
	Icon      image.Image
	IconRef   string
	UpdatedAt time.Time
}

func (w WeatherSnapshot) HasTemperatures() bool { return w.HighTemp != "" || w.LowTemp != "" }

type State struct {
	Face    FaceState
	Weather WeatherSnapshot
	Frames  int64
}

// Store publishes engine state to readers on other goroutines. The engine
// loop is its only writer.
type Store struct {
	mu    sync.RWMutex
	state State
}

func NewStore() *Store {
	return &Store{}
}

func (store *Store) Snapshot() State {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return store.state
}

func (store *Store) UpdateFace(face FaceState) {
	store.mu.Lock()
	store.state.Face = face
	store.mu.Unlock()
}

// ReplaceTemperatures swaps both temperatures at once. The icon is kept until
// a fetch for iconRef completes.
func (store *Store) ReplaceTemperatures(high, low, iconRef string, at time.Time) {
	store.mu.Lock()
	store.state.Weather.HighTemp = high
	store.state.Weather.LowTemp = low
	store.state.Weather.IconRef = iconRef
	store.state.Weather.UpdatedAt = at
	store.mu.Unlock()
}

func (store *Store) SetIcon(icon image.Image) {
	store.mu.Lock()
	store.state.Weather.Icon = icon
	store.mu.Unlock()
}

func (store *Store) CountFrame() {
	store.mu.Lock()
	store.state.Frames++
	store.mu.Unlock()
}

func (store *Store) Reset() {
	store.mu.Lock()
	store.state = State{}
	store.mu.Unlock()
}

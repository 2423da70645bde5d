// Package face runs the watch face: lifecycle state, the per-second redraw
// timer, weather updates and icon fetches, all serialized on one event loop.
package face

import (
	"context"
	"sync"

	"github.com/rook-computer/weatherface/internal/clock"
	"github.com/rook-computer/weatherface/internal/datalayer"
	"github.com/rook-computer/weatherface/internal/input"
	"github.com/rook-computer/weatherface/internal/render"
	"github.com/rook-computer/weatherface/internal/scheduler"
	"github.com/rook-computer/weatherface/internal/state"
	"github.com/rook-computer/weatherface/internal/timefmt"
	"github.com/rook-computer/weatherface/internal/weathersync"
)

const defaultQueueSize = 64

type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

type noopLogger struct{}

func (noopLogger) Infof(string, string, ...interface{})  {}
func (noopLogger) Errorf(string, string, ...interface{}) {}

// WeatherListener is started while the face is visible.
type WeatherListener interface {
	Start(ctx context.Context)
	Stop()
	// Wait blocks until the listener's connection is torn down.
	Wait()
}

// IconFetcher resolves icon assets off the event loop.
type IconFetcher interface {
	FetchAsync(ctx context.Context, asset datalayer.Asset, done func(weathersync.IconResult))
}

// Properties are display capabilities reported by the host.
type Properties struct {
	LowBitAmbient bool
}

type Options struct {
	Clock     clock.Clock
	Renderer  render.Renderer
	Store     *state.Store
	Formatter timefmt.Formatter
	Theme     render.Theme
	Logger    Logger

	// Dialer connects to the data layer. When set and Listener or Icons is
	// nil, the weathersync implementations are built on it.
	Dialer   weathersync.Dialer
	Listener WeatherListener
	Icons    IconFetcher

	// AmbientHook runs on the loop after every ambient transition. It must
	// not block.
	AmbientHook func(ambient bool)

	QueueSize int
}

// Engine owns the face state. Exported methods only post events and are
// safe for concurrent use; handlers run on the goroutine calling Run.
type Engine struct {
	clock       clock.Clock
	renderer    render.Renderer
	store       *state.Store
	formatter   timefmt.Formatter
	theme       render.Theme
	logger      Logger
	listener    WeatherListener
	icons       IconFetcher
	ambientHook func(bool)

	events   chan func()
	done     chan struct{}
	doneOnce sync.Once

	// Loop-owned.
	ctx        context.Context
	face       state.FaceState
	redraw     *scheduler.Redraw
	created    bool
	destroyed  bool
	listening  bool
	latestIcon string
	loadedIcon string
}

func New(opts Options) *Engine {
	e := &Engine{
		clock:       opts.Clock,
		renderer:    opts.Renderer,
		store:       opts.Store,
		formatter:   opts.Formatter,
		theme:       opts.Theme,
		logger:      opts.Logger,
		listener:    opts.Listener,
		icons:       opts.Icons,
		ambientHook: opts.AmbientHook,
		ctx:         context.Background(),
		done:        make(chan struct{}),
	}
	if e.clock == nil {
		e.clock = clock.Real()
	}
	if e.renderer == nil {
		e.renderer = &render.NoopRenderer{}
	}
	if e.store == nil {
		e.store = state.NewStore()
	}
	if e.formatter == (timefmt.Formatter{}) {
		e.formatter = timefmt.Default()
	}
	if e.theme == (render.Theme{}) {
		e.theme = render.DefaultTheme()
	}
	if e.logger == nil {
		e.logger = noopLogger{}
	}
	if opts.Dialer != nil {
		if e.listener == nil {
			e.listener = weathersync.NewListener(opts.Dialer, e, e.logger)
		}
		if e.icons == nil {
			e.icons = weathersync.NewIconFetcher(opts.Dialer, e.clock)
		}
	}
	size := opts.QueueSize
	if size <= 0 {
		size = defaultQueueSize
	}
	e.events = make(chan func(), size)
	e.redraw = scheduler.NewRedraw(e.clock, scheduler.InteractiveUpdateRate, func(token uint64) {
		e.post(func() { e.onRedraw(token) })
	})
	return e
}

// Run processes events until ctx is done, then destroys the face and waits
// for the weather listener to disconnect. Events posted after the loop
// stopped are dropped.
func (e *Engine) Run(ctx context.Context) error {
	e.ctx = ctx
	defer e.doneOnce.Do(func() { close(e.done) })
	for {
		select {
		case <-ctx.Done():
			e.onDestroy()
			e.doneOnce.Do(func() { close(e.done) })
			if e.listener != nil {
				e.listener.Wait()
			}
			return nil
		case fn := <-e.events:
			fn()
		}
	}
}

// Done is closed once the loop has stopped taking events.
func (e *Engine) Done() <-chan struct{} { return e.done }

// Store returns the store the engine publishes its state to.
func (e *Engine) Store() *state.Store { return e.store }

func (e *Engine) post(fn func()) bool {
	select {
	case <-e.done:
		return false
	default:
	}
	select {
	case e.events <- fn:
		return true
	case <-e.done:
		return false
	}
}

func (e *Engine) Create()                 { e.post(e.onCreate) }
func (e *Engine) Destroy()                { e.post(e.onDestroy) }
func (e *Engine) SetVisible(visible bool) { e.post(func() { e.onVisibility(visible) }) }
func (e *Engine) SetAmbient(ambient bool) { e.post(func() { e.onAmbient(ambient) }) }
func (e *Engine) SetProperties(p Properties) {
	e.post(func() { e.onProperties(p) })
}

// TimeTick is the host's once-per-minute tick.
func (e *Engine) TimeTick()               { e.post(e.onTimeTick) }
func (e *Engine) Tap(tap input.TapEvent)  { e.post(func() { e.onTap(tap) }) }
func (e *Engine) SetTheme(t render.Theme) { e.post(func() { e.onTheme(t) }) }

// WeatherChanged implements weathersync.Sink.
func (e *Engine) WeatherChanged(u weathersync.Update) {
	e.post(func() { e.onWeather(u) })
}

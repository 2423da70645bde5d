package app

import (
	"context"
	"sync/atomic"

	"github.com/rook-computer/weatherface/internal/config"
	"github.com/rook-computer/weatherface/internal/face"
	"github.com/rook-computer/weatherface/internal/host"
	"github.com/rook-computer/weatherface/internal/input"
	"github.com/rook-computer/weatherface/internal/render"
	"github.com/rook-computer/weatherface/internal/system"
	"github.com/rook-computer/weatherface/internal/web"
	"golang.org/x/sync/errgroup"
)

// App runs the face engine together with the renderer, the web API, the
// input source and the host drivers.
type App struct {
	Engine *face.Engine
	Render render.Renderer
	Web    web.Server
	Input  input.Source
	Logger Logger

	// Optional host drivers.
	Ticker *host.MinuteTicker
	Idle   *host.Idle

	Properties face.Properties

	// Console switches the VT to graphics mode while running.
	Console bool

	// ConfigPath, when set, is watched and theme changes are applied live.
	ConfigPath string

	exitOnce atomic.Bool
	exitCh   chan error
}

func New(engine *face.Engine, renderer render.Renderer, webServer web.Server, source input.Source) *App {
	return &App{Engine: engine, Render: renderer, Web: webServer, Input: source, Logger: NoopLogger{}, exitCh: make(chan error, 1)}
}

// Exit requests the app to stop running.
func (app *App) Exit(err error) {
	if app.exitCh == nil {
		return
	}
	if !app.exitOnce.CompareAndSwap(false, true) {
		return
	}
	select {
	case app.exitCh <- err:
	default:
	}
}

// Start runs until ctx is done or Exit is called. The face is made visible
// once every subsystem is up and destroyed on the way out.
func (app *App) Start(ctx context.Context) error {
	if app.exitCh == nil {
		app.exitCh = make(chan error, 1)
	}
	app.exitOnce.Store(false)
	if app.Logger == nil {
		app.Logger = NoopLogger{}
	}
	if app.Render == nil {
		app.Render = &render.NoopRenderer{}
	}
	if app.Web == nil {
		app.Web = &web.NoopServer{}
	}
	if app.Input == nil {
		app.Input = input.NewNoopSource()
	}

	if err := app.Render.Start(ctx); err != nil {
		app.Logger.Errorf("app", "renderer start error: %v", err)
		return err
	}
	defer app.Render.Stop()

	if app.Console {
		_ = system.EnterGraphics(app.Logger)
		defer func() { _ = system.RestoreText(app.Logger) }()
	}

	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(loopCtx)
	g.Go(func() error { return app.Engine.Run(gctx) })
	wait := func() {
		if err := g.Wait(); err != nil {
			app.Logger.Errorf("app", "worker exited: %v", err)
		}
	}

	if err := app.Web.Start(gctx); err != nil {
		app.Logger.Errorf("web", "start error: %v", err)
		cancel()
		wait()
		return err
	}
	defer app.Web.Stop()

	if err := app.Input.Start(gctx); err != nil {
		app.Logger.Errorf("input", "start error: %v", err)
	}
	defer app.Input.Stop()
	g.Go(func() error {
		app.pumpTaps(gctx)
		return nil
	})

	if app.Ticker != nil {
		if err := app.Ticker.Start(); err != nil {
			app.Logger.Errorf("host", "minute ticker: %v", err)
		}
		defer app.Ticker.Stop()
	}
	if app.Idle != nil {
		app.Idle.Start()
		defer app.Idle.Stop()
	}
	if app.ConfigPath != "" {
		err := config.Watch(gctx, app.ConfigPath, app.applyConfig, app.Logger)
		if err != nil {
			app.Logger.Errorf("config", "watch disabled: %v", err)
		}
	}

	app.Engine.Create()
	app.Engine.SetProperties(app.Properties)
	app.Engine.SetVisible(true)
	app.Logger.Infof("app", "face running")

	var err error
	select {
	case <-ctx.Done():
		err = ctx.Err()
	case err = <-app.exitCh:
	}
	app.Engine.Destroy()
	cancel()
	wait()
	app.Logger.Infof("app", "face stopped")
	return err
}

func (app *App) Stop() error {
	app.Exit(nil)
	return nil
}

func (app *App) pumpTaps(ctx context.Context) {
	taps := app.Input.Taps()
	for {
		select {
		case <-ctx.Done():
			return
		case tap, ok := <-taps:
			if !ok {
				return
			}
			if app.Idle != nil && tap.Type != input.TouchCancel {
				app.Idle.Activity()
			}
			app.Engine.Tap(tap)
		}
	}
}

func (app *App) applyConfig(cfg *config.Config) {
	theme, err := cfg.RenderTheme()
	if err != nil {
		app.Logger.Errorf("config", "theme: %v", err)
	}
	app.Engine.SetTheme(theme)
	app.Engine.SetProperties(face.Properties{LowBitAmbient: cfg.LowBitAmbient})
	if app.Idle != nil {
		app.Idle.SetTimeout(cfg.IdleTimeout())
	}
}

// BacklightHook returns an ambient hook that dims the panel in ambient mode.
// The script runs off the engine loop.
func BacklightHook(ctx context.Context, runner system.Runner, logger Logger) func(ambient bool) {
	return func(ambient bool) {
		go func() {
			if err := system.SetBacklight(ctx, runner, ambient); err != nil {
				logger.Errorf("backlight", "%v", err)
			}
		}()
	}
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rook-computer/weatherface/internal/app"
	"github.com/rook-computer/weatherface/internal/clock"
	"github.com/rook-computer/weatherface/internal/config"
	"github.com/rook-computer/weatherface/internal/datalayer"
	"github.com/rook-computer/weatherface/internal/face"
	"github.com/rook-computer/weatherface/internal/host"
	"github.com/rook-computer/weatherface/internal/input"
	"github.com/rook-computer/weatherface/internal/render"
	"github.com/rook-computer/weatherface/internal/state"
	"github.com/rook-computer/weatherface/internal/system"
	"github.com/rook-computer/weatherface/internal/web"
)

func main() {
	fmt.Println("weatherface starting")

	// Flags
	debug := flag.Bool("debug", false, "enable debug logging to ./weatherface-debug.log")
	stdioLog := flag.String("stdio-log", "", "redirect stdout+stderr (including panics) to this file; also configurable via WEATHERFACE_STDIO_LOG")
	configPath := flag.String("config", os.Getenv(config.EnvConfigPath), "face config file (TOML)")
	term := flag.Bool("term", false, "mirror frames to the terminal")
	flag.Parse()

	// Best-effort: redirect all stdout/stderr output (including panic stack traces)
	// to a file so crashes are diagnosable even when the console is left in graphics mode.
	logPath := *stdioLog
	if logPath == "" {
		logPath = os.Getenv("WEATHERFACE_STDIO_LOG")
	}
	if logPath != "" {
		if err := system.RedirectOutput(logPath); err != nil {
			fmt.Println("stdio log redirect error:", err)
		}
	}

	var logger app.Logger = app.NoopLogger{}
	if *debug {
		f, err := os.OpenFile("./weatherface-debug.log", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err == nil {
			logger = app.NewFileLogger(f)
			logger.Infof("main", "debug logging enabled")
		} else {
			fmt.Println("debug log open error:", err)
		}
	}

	if err := config.LoadDotEnv(); err != nil {
		logger.Errorf("config", ".env: %v", err)
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Errorf("config", "%v; using defaults", err)
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		logger.Errorf("config", "%v", err)
	}
	theme, err := cfg.RenderTheme()
	if err != nil {
		logger.Errorf("config", "%v", err)
	}
	formatter, err := cfg.Formatter()
	if err != nil {
		logger.Errorf("config", "%v", err)
	}
	serverCfg, err := web.DefaultServerConfigFromEnv(":80")
	if err != nil {
		fmt.Println("server config error:", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fbr := render.NewFBRenderer()
	fbr.Device = cfg.Display.Device
	fbr.Logger = logger
	fbr.Debug = *debug
	var renderer render.Renderer = fbr
	if *term {
		renderer = render.Multi{fbr, render.NewTermRenderer(os.Stdout)}
	}

	node := datalayer.NewNode()
	store := state.NewStore()
	var engine *face.Engine
	idle := host.NewIdle(clock.Real(), cfg.IdleTimeout(), func(ambient bool) { engine.SetAmbient(ambient) })
	backlight := app.BacklightHook(ctx, system.ShellRunner{Sudo: true}, logger)
	engine = face.New(face.Options{
		Renderer:  renderer,
		Store:     store,
		Formatter: formatter,
		Theme:     theme,
		Logger:    logger,
		Dialer:    node,
		AmbientHook: func(ambient bool) {
			idle.Observe(ambient)
			backlight(ambient)
		},
	})

	server := newWebServer(serverCfg, node, store, logger)

	var a *app.App
	source := input.NewEvdevSource(logger, func() { a.Exit(nil) })
	a = app.New(engine, renderer, server, source)
	a.Logger = logger
	a.Console = true
	a.ConfigPath = *configPath
	a.Properties = face.Properties{LowBitAmbient: cfg.LowBitAmbient}
	a.Ticker = host.NewMinuteTicker(formatter.Location, engine.TimeTick, logger)
	a.Idle = idle

	if err := a.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Println("weatherface error:", err)
		os.Exit(1)
	}
	fmt.Println("weatherface stopped")
}

// newWebServer builds the phone-facing API server, including the pairing QR
// code that points back at it.
func newWebServer(cfg web.ServerConfig, node *datalayer.Node, store *state.Store, logger app.Logger) *web.HTTPServer {
	server := web.NewHTTPServer(cfg.ListenAddr)
	server.DevMode = cfg.DevMode
	server.Logger = logger
	server.Deps = web.APIV1Deps{Data: node, Face: store, PairingURL: cfg.PairingURL}
	return server
}

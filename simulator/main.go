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
	"github.com/rook-computer/weatherface/internal/config"
	"github.com/rook-computer/weatherface/internal/datalayer"
	"github.com/rook-computer/weatherface/internal/face"
	"github.com/rook-computer/weatherface/internal/host"
	"github.com/rook-computer/weatherface/internal/render"
	"github.com/rook-computer/weatherface/internal/state"
	"github.com/rook-computer/weatherface/internal/web"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Println(".env error:", err)
	}
	defaults, err := web.DefaultServerConfigFromEnv(":8080")
	if err != nil {
		fmt.Println("server config error:", err)
		os.Exit(2)
	}

	listenAddr := flag.String("listen", defaults.ListenAddr, "http listen address; also configurable via "+web.EnvListenAddr)
	devMode := flag.Bool("dev", defaults.DevMode, "enable dev mode; also configurable via "+web.EnvDevMode)
	staticDir := flag.String("static-dir", "", "serve static UI from this directory (optional); when empty, the embedded control page is served")
	configPath := flag.String("config", os.Getenv(config.EnvConfigPath), "face config file (TOML); watched for theme changes")
	term := flag.Bool("term", false, "also print every frame to the terminal")
	idleTimeout := flag.Duration("idle", 0, "enter ambient after this long without taps (0 disables)")
	quiet := flag.Bool("quiet", false, "disable logging to stdout")
	flag.Parse()

	var logger app.Logger = app.NewFileLogger(os.Stdout)
	if *quiet {
		logger = app.NoopLogger{}
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

	processCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	node := datalayer.NewNode()
	store := state.NewStore()
	frames := render.NewImageRenderer(theme.Width, theme.Height)
	frames.Logger = logger
	var renderer render.Renderer = frames
	if *term {
		renderer = render.Multi{frames, render.NewTermRenderer(os.Stdout)}
	}

	control := NewSimControl(node, frames)
	var engine *face.Engine
	idle := host.NewIdle(nil, *idleTimeout, func(ambient bool) { engine.SetAmbient(ambient) })
	engine = face.New(face.Options{
		AmbientHook: idle.Observe,
		Renderer:    renderer,
		Store:       store,
		Formatter:   formatter,
		Theme:       theme,
		Logger:      logger,
		Dialer:      control,
	})
	control.Attach(engine)
	control.OnTap = idle.Activity

	pairingURL := os.Getenv(web.EnvPairingURL)
	if pairingURL == "" {
		pairingURL = web.PairingURLFor(*listenAddr, "127.0.0.1")
	}
	deps := web.APIV1Deps{Data: node, Face: store, PairingURL: pairingURL}
	mux := web.NewDefaultMux(*staticDir, deps)
	registerSimEndpoints(mux, control)

	server := web.NewHTTPServer(*listenAddr)
	server.Handler = mux
	server.DevMode = *devMode
	server.Logger = logger

	a := app.New(engine, renderer, server, nil)
	a.Logger = logger
	a.Properties = face.Properties{LowBitAmbient: cfg.LowBitAmbient}
	a.Ticker = host.NewMinuteTicker(formatter.Location, engine.TimeTick, logger)
	a.ConfigPath = *configPath
	a.Idle = idle

	fmt.Println("weatherface simulator listening on", *listenAddr)
	fmt.Println("Control page: http://" + displayAddr(*listenAddr) + "/")
	fmt.Println("API: http://" + displayAddr(*listenAddr) + "/api/v1/")

	if err := a.Start(processCtx); failed(err) {
		fmt.Println("simulator error:", err)
		os.Exit(1)
	}
}

// failed reports whether err is more than the shutdown signal.
func failed(err error) bool {
	return err != nil && !errors.Is(err, context.Canceled)
}

func displayAddr(addr string) string {
	// Best-effort for display; don't attempt full URL parsing here.
	if len(addr) > 0 && addr[0] == ':' {
		return "127.0.0.1" + addr
	}
	if addr == "" {
		return "127.0.0.1:8080"
	}
	return addr
}

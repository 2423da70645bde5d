package web

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
)

const (
	EnvListenAddr = "WEATHERFACE_LISTEN"
	EnvDevMode    = "WEATHERFACE_DEV"
	EnvPairingURL = "WEATHERFACE_PAIRING_URL"
)

var hostname = os.Hostname

// ServerConfig contains settings for running the HTTP server.
//
// The intended defaults differ per binary:
// - real device: :80
// - simulator:   :8080
type ServerConfig struct {
	ListenAddr string
	DevMode    bool
	// PairingURL is the API address shown in the pairing QR code.
	PairingURL string
}

// DefaultServerConfigFromEnv reads the server settings from the environment,
// falling back to defaultListenAddr when no address is set.
func DefaultServerConfigFromEnv(defaultListenAddr string) (ServerConfig, error) {
	return serverConfigFromEnv(os.Getenv, defaultListenAddr)
}

func serverConfigFromEnv(getenv func(string) string, defaultListenAddr string) (ServerConfig, error) {
	listenAddr := getenv(EnvListenAddr)
	if listenAddr == "" {
		listenAddr = defaultListenAddr
	}

	devMode := false
	if raw := getenv(EnvDevMode); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return ServerConfig{}, fmt.Errorf("%s must be a boolean (got %q): %w", EnvDevMode, raw, err)
		}
		devMode = parsed
	}

	pairingURL := getenv(EnvPairingURL)
	if pairingURL == "" {
		host, err := hostname()
		if err != nil || host == "" {
			host = "localhost"
		} else if !strings.Contains(host, ".") {
			host += ".local"
		}
		pairingURL = PairingURLFor(listenAddr, host)
	}

	return ServerConfig{ListenAddr: listenAddr, DevMode: devMode, PairingURL: pairingURL}, nil
}

// PairingURLFor builds the API URL a phone reaches the face at. A listen
// address without a host, or bound to all interfaces, uses fallbackHost.
func PairingURLFor(listenAddr, fallbackHost string) string {
	host, port, err := net.SplitHostPort(listenAddr)
	if err != nil {
		host, port = listenAddr, ""
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = fallbackHost
	}
	if port != "" && port != "80" {
		host = net.JoinHostPort(host, port)
	}
	return "http://" + host + "/api/v1/"
}

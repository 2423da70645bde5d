package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rook-computer/weatherface/internal/app"
	"github.com/rook-computer/weatherface/internal/datalayer"
	"github.com/rook-computer/weatherface/internal/state"
	"github.com/rook-computer/weatherface/internal/web"
)

func TestDeviceServerServesPairingCode(t *testing.T) {
	cfg := web.ServerConfig{ListenAddr: ":80", PairingURL: web.PairingURLFor(":80", "watch.local")}
	server := newWebServer(cfg, datalayer.NewNode(), state.NewStore(), app.NoopLogger{})
	if server.Deps.PairingURL != "http://watch.local/api/v1/" {
		t.Fatalf("pairing url = %q", server.Deps.PairingURL)
	}

	rec := httptest.NewRecorder()
	web.NewDefaultMux(server.StaticDir, server.Deps).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/pairing.png", nil))
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("status = %d, type = %q", rec.Code, rec.Header().Get("Content-Type"))
	}
}

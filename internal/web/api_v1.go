package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rook-computer/weatherface/internal/datalayer"
	"github.com/rook-computer/weatherface/internal/render"
)

const (
	maxAssetBytes   = 1 << 20
	maxDataMapBytes = 64 << 10
	pairingQRSizePx = 256
)

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

type assetResponse struct {
	Digest string `json:"digest"`
}

type faceResponse struct {
	Visible       bool      `json:"visible"`
	Ambient       bool      `json:"ambient"`
	LowBitAmbient bool      `json:"lowBitAmbient"`
	Phase         string    `json:"phase"`
	HighTemp      string    `json:"highTemp"`
	LowTemp       string    `json:"lowTemp"`
	HasWeather    bool      `json:"hasWeather"`
	HasIcon       bool      `json:"hasIcon"`
	IconRef       string    `json:"iconRef,omitempty"`
	UpdatedAt     time.Time `json:"updatedAt,omitempty"`
	Frames        int64     `json:"frames"`
}

func apiV1RouterWithDeps(deps APIV1Deps) http.Handler {
	deps = deps.withDefaults()
	mux := http.NewServeMux()
	mux.HandleFunc("/data/", func(w http.ResponseWriter, r *http.Request) { handleData(w, r, deps) })
	mux.HandleFunc("/assets", func(w http.ResponseWriter, r *http.Request) { handleAssets(w, r, deps) })
	mux.HandleFunc("/face", func(w http.ResponseWriter, r *http.Request) { handleFace(w, r, deps) })
	mux.HandleFunc("/pairing.png", func(w http.ResponseWriter, r *http.Request) { handlePairing(w, r, deps) })
	return mux
}

// handleData serves /data/{path}. The item path is the URL path with the
// /data prefix removed, so /data/weather addresses "/weather".
func handleData(w http.ResponseWriter, r *http.Request, deps APIV1Deps) {
	itemPath := "/" + strings.Trim(strings.TrimPrefix(r.URL.Path, "/data/"), "/")
	if itemPath == "/" {
		writeAPIError(w, http.StatusNotFound, "not_found", "data path required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		item, ok := deps.Data.DataItem(itemPath)
		if !ok {
			writeAPIError(w, http.StatusNotFound, "not_found", "no data item at "+itemPath)
			return
		}
		writeJSON(w, http.StatusOK, item)
	case http.MethodPut:
		var data datalayer.DataMap
		dec := json.NewDecoder(io.LimitReader(r.Body, maxDataMapBytes))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&data); err != nil {
			writeAPIError(w, http.StatusBadRequest, "invalid_json", err.Error())
			return
		}
		item := deps.Data.PutDataItem(itemPath, data)
		writeJSON(w, http.StatusOK, item)
	case http.MethodDelete:
		if !deps.Data.DeleteDataItem(itemPath) {
			writeAPIError(w, http.StatusNotFound, "not_found", "no data item at "+itemPath)
			return
		}
		writeJSON(w, http.StatusOK, okResponse{OK: true})
	default:
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	}
}

func handleAssets(w http.ResponseWriter, r *http.Request, deps APIV1Deps) {
	if r.Method != http.MethodPost {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	if err := requireContentLength(r); err != nil {
		writeAPIError(w, http.StatusLengthRequired, "length_required", err.Error())
		return
	}
	if r.ContentLength > maxAssetBytes {
		writeAPIError(w, http.StatusRequestEntityTooLarge, "too_large", "asset exceeds 1 MiB")
		return
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, r.ContentLength))
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "read_failed", err.Error())
		return
	}
	if int64(len(data)) != r.ContentLength {
		writeAPIError(w, http.StatusBadRequest, "short_body", "body shorter than Content-Length")
		return
	}
	asset := deps.Data.PutAsset(data)
	writeJSON(w, http.StatusCreated, assetResponse{Digest: asset.Digest})
}

func handleFace(w http.ResponseWriter, r *http.Request, deps APIV1Deps) {
	if r.Method != http.MethodGet {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	snap := deps.Face.Snapshot()
	writeJSON(w, http.StatusOK, faceResponse{
		Visible:       snap.Face.Visible,
		Ambient:       snap.Face.Ambient,
		LowBitAmbient: snap.Face.LowBitAmbient,
		Phase:         snap.Face.Phase().String(),
		HighTemp:      snap.Weather.HighTemp,
		LowTemp:       snap.Weather.LowTemp,
		HasWeather:    snap.Weather.HasTemperatures(),
		HasIcon:       snap.Weather.Icon != nil,
		IconRef:       snap.Weather.IconRef,
		UpdatedAt:     snap.Weather.UpdatedAt,
		Frames:        snap.Frames,
	})
}

func handlePairing(w http.ResponseWriter, r *http.Request, deps APIV1Deps) {
	if r.Method != http.MethodGet {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	if deps.PairingURL == "" {
		writeAPIError(w, http.StatusNotFound, "not_configured", "pairing URL not configured")
		return
	}
	png, err := render.GenerateQRCodePNG(deps.PairingURL, pairingQRSizePx)
	if err != nil {
		writeAPIError(w, http.StatusInternalServerError, "qr_failed", err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

var errLengthRequired = errors.New("Content-Length header is required")

func requireContentLength(r *http.Request) error {
	// Reject chunked/unknown length so the body size is known up front.
	if r.ContentLength <= 0 {
		return errLengthRequired
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, apiError{Error: code, Message: message})
}

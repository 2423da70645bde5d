package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rook-computer/weatherface/internal/datalayer"
	"github.com/rook-computer/weatherface/internal/weathersync"
)

// client talks to a face's HTTP API.
type client struct {
	base string
	http *http.Client
}

func newClient(addr string, hc *http.Client) *client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &client{base: strings.TrimRight(addr, "/") + "/api/v1", http: hc}
}

func (c *client) uploadAsset(ctx context.Context, data []byte) (datalayer.Asset, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/assets", bytes.NewReader(data))
	if err != nil {
		return datalayer.Asset{}, err
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	var asset datalayer.Asset
	if err := c.do(req, http.StatusCreated, &asset); err != nil {
		return datalayer.Asset{}, fmt.Errorf("upload icon: %w", err)
	}
	return asset, nil
}

// putWeather writes the weather item. icon is left out when nil.
func (c *client) putWeather(ctx context.Context, high, low string, icon *datalayer.Asset) error {
	data := datalayer.DataMap{Strings: map[string]string{
		weathersync.KeyHighTemp: high,
		weathersync.KeyLowTemp:  low,
	}}
	if icon != nil {
		data.Assets = map[string]datalayer.Asset{weathersync.KeyIcon: *icon}
	}
	body, err := json.Marshal(data)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.dataURL(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if err := c.do(req, http.StatusOK, nil); err != nil {
		return fmt.Errorf("put weather: %w", err)
	}
	return nil
}

func (c *client) deleteWeather(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.dataURL(), nil)
	if err != nil {
		return err
	}
	if err := c.do(req, http.StatusOK, nil); err != nil {
		return fmt.Errorf("delete weather: %w", err)
	}
	return nil
}

func (c *client) dataURL() string {
	return c.base + "/data" + weathersync.Path
}

func (c *client) do(req *http.Request, want int, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != want {
		var apiErr struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("%s: %s", resp.Status, apiErr.Message)
		}
		return fmt.Errorf("%s", resp.Status)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

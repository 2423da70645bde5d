// Package weathersync turns data-layer events into weather updates and
// fetches weather icons.
package weathersync

import (
	"context"
	"time"

	"github.com/rook-computer/weatherface/internal/datalayer"
)

const (
	Path        = "/weather"
	KeyHighTemp = "temp_high"
	KeyLowTemp  = "temp_low"
	KeyIcon     = "weather_icon"

	// ConnectTimeout bounds dialing the data layer.
	ConnectTimeout = 2000 * time.Millisecond
)

// Dialer opens data-layer connections. *datalayer.Node implements it.
type Dialer interface {
	Dial(ctx context.Context) (datalayer.Conn, error)
}

type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

type noopLogger struct{}

func (noopLogger) Infof(string, string, ...interface{})  {}
func (noopLogger) Errorf(string, string, ...interface{}) {}

// Update is a complete weather push.
type Update struct {
	HighTemp string
	LowTemp  string
	Icon     datalayer.Asset
	HasIcon  bool
}

// ParseUpdate extracts an update from a changed item. It returns false when
// the item is for another path or lacks either temperature.
func ParseUpdate(item datalayer.DataItem) (Update, bool) {
	if item.Path != Path {
		return Update{}, false
	}
	high, okHigh := item.Data.String(KeyHighTemp)
	low, okLow := item.Data.String(KeyLowTemp)
	if !okHigh || !okLow {
		return Update{}, false
	}
	u := Update{HighTemp: high, LowTemp: low}
	if icon, ok := item.Data.Asset(KeyIcon); ok && icon.Digest != "" {
		u.Icon = icon
		u.HasIcon = true
	}
	return u, true
}

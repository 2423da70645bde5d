// Package datalayer is an in-process data-sync node. Items are keyed by
// path, blobs are stored as content-addressed assets, and every open
// connection can register listeners that receive change events in order.
package datalayer

import (
	"errors"
	"sort"
)

var (
	ErrUnknownAsset = errors.New("unknown asset")
	ErrNotFound     = errors.New("data item not found")
	ErrClosed       = errors.New("connection closed")
)

// Asset references a blob by the hex sha256 of its content.
type Asset struct {
	Digest string `json:"digest"`
}

// DataMap is the payload of a data item.
type DataMap struct {
	Strings map[string]string `json:"strings,omitempty"`
	Assets  map[string]Asset  `json:"assets,omitempty"`
}

func (m DataMap) String(key string) (string, bool) {
	v, ok := m.Strings[key]
	return v, ok
}

func (m DataMap) Asset(key string) (Asset, bool) {
	v, ok := m.Assets[key]
	return v, ok
}

// Keys returns all keys of the map, sorted.
func (m DataMap) Keys() []string {
	keys := make([]string, 0, len(m.Strings)+len(m.Assets))
	for k := range m.Strings {
		keys = append(keys, k)
	}
	for k := range m.Assets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (m DataMap) Clone() DataMap {
	out := DataMap{}
	if m.Strings != nil {
		out.Strings = make(map[string]string, len(m.Strings))
		for k, v := range m.Strings {
			out.Strings[k] = v
		}
	}
	if m.Assets != nil {
		out.Assets = make(map[string]Asset, len(m.Assets))
		for k, v := range m.Assets {
			out.Assets[k] = v
		}
	}
	return out
}

type DataItem struct {
	Path string  `json:"path"`
	Data DataMap `json:"data"`
}

type EventType int

const (
	Changed EventType = iota
	Deleted
)

func (t EventType) String() string {
	switch t {
	case Changed:
		return "changed"
	case Deleted:
		return "deleted"
	default:
		return "unknown"
	}
}

type Event struct {
	Type EventType
	Item DataItem
}

// Listener receives batches of events. Calls for one listener are never
// concurrent and arrive in the order the changes were made.
type Listener interface {
	OnDataChanged(events []Event)
}

package web

import (
	"github.com/rook-computer/weatherface/internal/datalayer"
	"github.com/rook-computer/weatherface/internal/state"
)

// DataStore is the part of the data node the API writes to.
// *datalayer.Node implements it.
type DataStore interface {
	PutDataItem(path string, data datalayer.DataMap) datalayer.DataItem
	DeleteDataItem(path string) bool
	DataItem(path string) (datalayer.DataItem, bool)
	PutAsset(data []byte) datalayer.Asset
}

// FaceStatus exposes the engine's published state. *state.Store implements it.
type FaceStatus interface {
	Snapshot() state.State
}

type APIV1Deps struct {
	Data DataStore
	Face FaceStatus
	// PairingURL is encoded in the pairing QR code. Empty disables it.
	PairingURL string
}

func (d APIV1Deps) withDefaults() APIV1Deps {
	out := d
	if out.Data == nil {
		out.Data = datalayer.NewNode()
	}
	if out.Face == nil {
		out.Face = state.NewStore()
	}
	return out
}

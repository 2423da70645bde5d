package datalayer

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"sync"
)

const deliveryQueueSize = 64

// Node holds the items and assets of one device and fans changes out to the
// listeners of every open connection.
type Node struct {
	mu     sync.RWMutex
	items  map[string]DataItem
	assets map[string][]byte
	conns  map[*conn]struct{}

	// publishMu keeps batches from concurrent writers in one order for
	// every listener.
	publishMu sync.Mutex
}

func NewNode() *Node {
	return &Node{
		items:  make(map[string]DataItem),
		assets: make(map[string][]byte),
		conns:  make(map[*conn]struct{}),
	}
}

// PutDataItem stores data under path and notifies listeners.
func (n *Node) PutDataItem(path string, data DataMap) DataItem {
	item := DataItem{Path: path, Data: data.Clone()}
	n.mu.Lock()
	n.items[path] = item
	n.mu.Unlock()
	n.publish([]Event{{Type: Changed, Item: item}})
	return item
}

// DeleteDataItem removes the item at path. It reports whether it existed;
// listeners are only notified if it did.
func (n *Node) DeleteDataItem(path string) bool {
	n.mu.Lock()
	item, ok := n.items[path]
	delete(n.items, path)
	n.mu.Unlock()
	if ok {
		n.publish([]Event{{Type: Deleted, Item: DataItem{Path: item.Path}}})
	}
	return ok
}

// PutAsset stores data and returns its reference. Storing the same bytes
// twice yields the same reference.
func (n *Node) PutAsset(data []byte) Asset {
	sum := sha256.Sum256(data)
	asset := Asset{Digest: hex.EncodeToString(sum[:])}
	n.mu.Lock()
	if _, ok := n.assets[asset.Digest]; !ok {
		n.assets[asset.Digest] = bytes.Clone(data)
	}
	n.mu.Unlock()
	return asset
}

// DataItem returns the item stored at path.
func (n *Node) DataItem(path string) (DataItem, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	item, ok := n.items[path]
	if !ok {
		return DataItem{}, false
	}
	item.Data = item.Data.Clone()
	return item, true
}

// Reset drops all items and assets. Open connections stay open.
func (n *Node) Reset() {
	n.mu.Lock()
	n.items = make(map[string]DataItem)
	n.assets = make(map[string][]byte)
	n.mu.Unlock()
}

// Dial opens a connection to the node.
func (n *Node) Dial(ctx context.Context) (Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	c := &conn{node: n, deliveries: make(map[Listener]*delivery)}
	n.mu.Lock()
	n.conns[c] = struct{}{}
	n.mu.Unlock()
	return c, nil
}

// Connections returns the number of open connections.
func (n *Node) Connections() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.conns)
}

func (n *Node) openAsset(digest string) (io.ReadCloser, error) {
	n.mu.RLock()
	data, ok := n.assets[digest]
	n.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAsset, digest)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (n *Node) publish(events []Event) {
	n.publishMu.Lock()
	defer n.publishMu.Unlock()

	n.mu.RLock()
	var targets []*delivery
	for c := range n.conns {
		targets = append(targets, c.snapshot()...)
	}
	n.mu.RUnlock()

	for _, d := range targets {
		d.send(events)
	}
}

func (n *Node) detach(c *conn) {
	n.mu.Lock()
	delete(n.conns, c)
	n.mu.Unlock()
}

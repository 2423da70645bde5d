package weathersync

import (
	"context"
	"testing"
	"time"

	"github.com/rook-computer/weatherface/internal/datalayer"
)

type sinkFunc func(Update)

func (f sinkFunc) WeatherChanged(u Update) { f(u) }

func startListener(t *testing.T, node *datalayer.Node) (*Listener, chan Update) {
	t.Helper()
	updates := make(chan Update, 16)
	l := NewListener(node, sinkFunc(func(u Update) { updates <- u }), nil)
	l.Start(context.Background())
	t.Cleanup(func() {
		l.Stop()
		l.Wait()
	})
	waitUntil(t, func() bool { return node.Connections() == 1 })
	return l, updates
}

func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met in time")
		}
		time.Sleep(time.Millisecond)
	}
}

func receive(t *testing.T, updates chan Update) Update {
	t.Helper()
	select {
	case u := <-updates:
		return u
	case <-time.After(2 * time.Second):
		t.Fatalf("no update received")
		return Update{}
	}
}

func weatherMap(high, low string) datalayer.DataMap {
	return datalayer.DataMap{Strings: map[string]string{KeyHighTemp: high, KeyLowTemp: low}}
}

func TestListenerInitialSync(t *testing.T) {
	node := datalayer.NewNode()
	node.PutDataItem(Path, weatherMap("25°", "16°"))

	_, updates := startListener(t, node)
	u := receive(t, updates)
	if u.HighTemp != "25°" || u.LowTemp != "16°" {
		t.Fatalf("initial update = %+v", u)
	}
}

func TestListenerForwardsOnlyCompleteWeather(t *testing.T) {
	node := datalayer.NewNode()
	_, updates := startListener(t, node)

	node.PutDataItem("/other", weatherMap("1", "2"))
	node.PutDataItem(Path, datalayer.DataMap{Strings: map[string]string{KeyHighTemp: "30°"}})
	node.DeleteDataItem(Path)
	node.PutDataItem(Path, weatherMap("20°", "10°"))

	u := receive(t, updates)
	if u.HighTemp != "20°" || u.LowTemp != "10°" {
		t.Fatalf("update = %+v", u)
	}
	select {
	case extra := <-updates:
		t.Fatalf("unexpected update %+v", extra)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestListenerStopClosesConnection(t *testing.T) {
	node := datalayer.NewNode()
	l, updates := startListener(t, node)

	l.Stop()
	l.Wait()
	if node.Connections() != 0 {
		t.Fatalf("connections after stop = %d", node.Connections())
	}

	node.PutDataItem(Path, weatherMap("1", "2"))
	select {
	case u := <-updates:
		t.Fatalf("update after stop: %+v", u)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestListenerStartTwiceDialsOnce(t *testing.T) {
	node := datalayer.NewNode()
	l, _ := startListener(t, node)
	l.Start(context.Background())
	time.Sleep(10 * time.Millisecond)
	if node.Connections() != 1 {
		t.Fatalf("connections = %d, want 1", node.Connections())
	}
}

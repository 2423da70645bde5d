package input

import (
	"encoding/binary"
	"testing"
	"time"
)

func feedAll(d *Decoder, events []RawEvent) (taps []TapEvent, exit bool) {
	for _, ev := range events {
		tap, ok, ex := d.Feed(ev)
		if ok {
			taps = append(taps, tap)
		}
		exit = exit || ex
	}
	return taps, exit
}

func TestDecoderTouchAndTap(t *testing.T) {
	var d Decoder
	taps, exit := feedAll(&d, []RawEvent{
		{Type: evKey, Code: btnTouch, Value: 1},
		{Type: evAbs, Code: absMTPositionX, Value: 120},
		{Type: evAbs, Code: absMTPositionY, Value: 80},
		{Type: evSyn, Code: synReport},
		{Type: evAbs, Code: absX, Value: 121},
		{Type: evSyn, Code: synReport},
		{Type: evKey, Code: btnTouch, Value: 0},
		{Type: evSyn, Code: synReport},
	})
	if exit {
		t.Fatalf("unexpected exit")
	}
	if len(taps) != 2 {
		t.Fatalf("taps = %+v", taps)
	}
	if taps[0].Type != Touch || taps[0].X != 120 || taps[0].Y != 80 {
		t.Fatalf("touch = %+v", taps[0])
	}
	if taps[1].Type != Tap || taps[1].X != 121 || taps[1].Y != 80 {
		t.Fatalf("tap = %+v", taps[1])
	}
}

func TestDecoderDroppedWhileTouchingCancels(t *testing.T) {
	var d Decoder
	taps, _ := feedAll(&d, []RawEvent{
		{Type: evKey, Code: btnTouch, Value: 1},
		{Type: evSyn, Code: synReport},
		{Type: evSyn, Code: synDropped},
		{Type: evKey, Code: btnTouch, Value: 0},
		{Type: evSyn, Code: synReport},
	})
	if len(taps) != 2 || taps[0].Type != Touch || taps[1].Type != TouchCancel {
		t.Fatalf("taps = %+v", taps)
	}
}

func TestDecoderF4Exits(t *testing.T) {
	var d Decoder
	_, exit := feedAll(&d, []RawEvent{{Type: evKey, Code: keyF4, Value: 0}})
	if exit {
		t.Fatalf("release of F4 should not exit")
	}
	_, exit = feedAll(&d, []RawEvent{{Type: evKey, Code: keyF4, Value: 1}})
	if !exit {
		t.Fatalf("press of F4 should exit")
	}
}

func TestParseRawEvent(t *testing.T) {
	rec := make([]byte, 24)
	binary.LittleEndian.PutUint64(rec[0:8], 1462278847)
	binary.LittleEndian.PutUint64(rec[8:16], 500000)
	binary.LittleEndian.PutUint16(rec[16:18], evKey)
	binary.LittleEndian.PutUint16(rec[18:20], btnTouch)
	binary.LittleEndian.PutUint32(rec[20:24], 1)

	ev, ok := ParseRawEvent(rec, 16)
	if !ok {
		t.Fatalf("record not parsed")
	}
	if ev.Type != evKey || ev.Code != btnTouch || ev.Value != 1 {
		t.Fatalf("event = %+v", ev)
	}
	want := time.Unix(1462278847, 500*int64(time.Millisecond))
	if !ev.Time.Equal(want) {
		t.Fatalf("time = %v, want %v", ev.Time, want)
	}
	if _, ok := ParseRawEvent(rec[:10], 16); ok {
		t.Fatalf("short record parsed")
	}
}

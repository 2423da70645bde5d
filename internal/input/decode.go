package input

import (
	"encoding/binary"
	"time"
)

// Linux input-event-codes.h
const (
	evSyn = 0x00
	evKey = 0x01
	evAbs = 0x03

	synReport  = 0
	synDropped = 3

	keyF4    = 62
	btnTouch = 0x14a

	absX           = 0x00
	absY           = 0x01
	absMTPositionX = 0x35
	absMTPositionY = 0x36
)

// RawEvent is one evdev input_event record.
type RawEvent struct {
	Time  time.Time
	Type  uint16
	Code  uint16
	Value int32
}

// ParseRawEvent decodes one little-endian input_event record whose timeval
// occupies tvSize bytes. Only 16 byte timevals carry a parsed time.
func ParseRawEvent(rec []byte, tvSize int) (RawEvent, bool) {
	if len(rec) < tvSize+8 {
		return RawEvent{}, false
	}
	ev := RawEvent{
		Type:  binary.LittleEndian.Uint16(rec[tvSize : tvSize+2]),
		Code:  binary.LittleEndian.Uint16(rec[tvSize+2 : tvSize+4]),
		Value: int32(binary.LittleEndian.Uint32(rec[tvSize+4 : tvSize+8])),
	}
	if tvSize == 16 {
		sec := int64(binary.LittleEndian.Uint64(rec[0:8]))
		usec := int64(binary.LittleEndian.Uint64(rec[8:16]))
		ev.Time = time.Unix(sec, usec*int64(time.Microsecond))
	}
	return ev, true
}

// Decoder turns a stream of raw events into taps. Touch state changes are
// reported at the next SYN_REPORT so the position of the same report is used.
type Decoder struct {
	x, y     int
	touching bool
	pending  *TapType
}

// Feed consumes one event. It returns a tap when a report completes a touch
// state change, and exit=true when F4 is pressed.
func (d *Decoder) Feed(ev RawEvent) (tap TapEvent, ok bool, exit bool) {
	switch ev.Type {
	case evKey:
		switch ev.Code {
		case keyF4:
			return TapEvent{}, false, ev.Value == 1
		case btnTouch:
			t := Tap
			if ev.Value == 1 {
				t = Touch
			}
			d.pending = &t
		}
	case evAbs:
		switch ev.Code {
		case absX, absMTPositionX:
			d.x = int(ev.Value)
		case absY, absMTPositionY:
			d.y = int(ev.Value)
		}
	case evSyn:
		switch ev.Code {
		case synDropped:
			d.pending = nil
			if d.touching {
				d.touching = false
				return TapEvent{Type: TouchCancel, X: d.x, Y: d.y, Time: ev.Time}, true, false
			}
		case synReport:
			if d.pending == nil {
				return TapEvent{}, false, false
			}
			t := *d.pending
			d.pending = nil
			if t == Tap && !d.touching {
				return TapEvent{}, false, false
			}
			d.touching = t == Touch
			return TapEvent{Type: t, X: d.x, Y: d.y, Time: ev.Time}, true, false
		}
	}
	return TapEvent{}, false, false
}

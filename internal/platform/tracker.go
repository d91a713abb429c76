package platform

import "inkpad/pkg/ink"

// PointerSample is the polled state of one pointer for one frame.
type PointerSample struct {
	Position  ink.Point
	Inside    bool
	Left      bool
	Right     bool
	Focused   bool
	Pressure  float32
	Timestamp uint64
}

// PointerTracker turns per-frame polled pointer state into the pressed,
// moved, released, exited and lost events a toolkit with callbacks delivers.
type PointerTracker struct {
	Device   DeviceType
	DeviceID uint32

	down    bool
	blocked bool
	inside  bool
	buttons Buttons
	last    ink.Point
	seen    bool
}

func NewPointerTracker(device DeviceType, id uint32) *PointerTracker {
	return &PointerTracker{Device: device, DeviceID: id}
}

// Down reports whether a press that started inside the canvas is still held.
func (t *PointerTracker) Down() bool { return t.down }

func (t *PointerTracker) Update(s PointerSample) []*PointerEvent {
	var out []*PointerEvent
	held := s.Left || s.Right
	moved := !t.seen || s.Position != t.last
	t.seen = true
	t.last = s.Position
	if !held {
		t.blocked = false
	}

	switch {
	case t.down && !s.Focused:
		t.down = false
		out = append(out, t.event(PointerLost, s))
	case !t.down && held:
		// A press that began off the canvas stays ignored until every button is up.
		if t.blocked || !s.Inside {
			t.blocked = true
			break
		}
		t.down, t.inside = true, true
		t.buttons = 0
		if s.Left {
			t.buttons |= ButtonLeft
		}
		if s.Right {
			t.buttons |= ButtonRight
		}
		out = append(out, t.event(PointerPressed, s))
	case t.down && held:
		if !moved {
			break
		}
		if t.inside && !s.Inside {
			t.inside = false
			out = append(out, t.event(PointerExited, s))
		} else if s.Inside {
			t.inside = true
		}
		out = append(out, t.event(PointerMoved, s))
	case t.down && !held:
		t.down = false
		out = append(out, t.event(PointerReleased, s))
	default:
		if moved && s.Inside && t.Device == DevicePen {
			out = append(out, t.event(PointerHovered, s))
		}
	}
	return out
}

// Cancel ends a held press as lost, for example when the toolkit drops the touch.
func (t *PointerTracker) Cancel() *PointerEvent {
	if !t.down {
		return nil
	}
	t.down = false
	return t.event(PointerLost, PointerSample{Position: t.last})
}

func (t *PointerTracker) event(kind PointerKind, s PointerSample) *PointerEvent {
	return &PointerEvent{
		Kind:      kind,
		DeviceID:  t.DeviceID,
		Device:    t.Device,
		Raw:       s.Position,
		Position:  s.Position,
		Pressure:  s.Pressure,
		Timestamp: s.Timestamp,
		Buttons:   t.buttons,
	}
}

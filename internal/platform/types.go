package platform

import (
	"image"

	"inkpad/pkg/ink"
)

type WindowConfig struct {
	Title    string
	WidthPx  int
	HeightPx int
}

type EventType int

const (
	EventUnknown EventType = iota
	EventClose
	EventResize
	EventKeyDown
	EventPointer
)

type Event struct {
	Type    EventType
	Width   int
	Height  int
	Key     string
	Pointer *PointerEvent
}

type PointerKind int

const (
	PointerPressed PointerKind = iota
	PointerMoved
	PointerReleased
	PointerExited
	PointerLost
	PointerHovered
)

func (k PointerKind) String() string {
	switch k {
	case PointerPressed:
		return "pressed"
	case PointerMoved:
		return "moved"
	case PointerReleased:
		return "released"
	case PointerExited:
		return "exited"
	case PointerLost:
		return "lost"
	case PointerHovered:
		return "hovered"
	}
	return "unknown"
}

type DeviceType int

const (
	DeviceMouse DeviceType = iota
	DevicePen
	DeviceTouch
)

type Buttons uint8

const (
	ButtonLeft Buttons = 1 << iota
	ButtonRight
	ButtonMiddle
	ButtonBarrel
	ButtonEraser
)

// Usage names one HID usage on a pointer device.
type Usage struct {
	Page uint16
	ID   uint16
}

// UsageReader exposes the HID usages reported with a pointer sample.
// Implementations backed by device drivers may panic on a vanished device.
type UsageReader interface {
	HasUsage(u Usage) bool
	UsageValue(u Usage) int32
}

// UsageMap is a UsageReader over a fixed set of values.
type UsageMap map[Usage]int32

func (m UsageMap) HasUsage(u Usage) bool {
	_, ok := m[u]
	return ok
}

func (m UsageMap) UsageValue(u Usage) int32 { return m[u] }

// PointerEvent is one decoded pointer sample. Raw is the device position and
// Position the same point in canvas coordinates. Handlers set Handled to stop
// default processing.
type PointerEvent struct {
	Kind      PointerKind
	DeviceID  uint32
	Device    DeviceType
	Raw       ink.Point
	Position  ink.Point
	Pressure  float32
	Timestamp uint64
	Buttons   Buttons
	Usages    UsageReader
	Handled   bool
}

func (e *PointerEvent) RightButton() bool { return e.Buttons&ButtonRight != 0 }

// InkPoint converts the sample to a stroke point in canvas coordinates.
func (e *PointerEvent) InkPoint() ink.InkPoint {
	return ink.InkPoint{Point: e.Position, Pressure: e.Pressure, Timestamp: e.Timestamp}
}

type Platform interface {
	Name() string
	CreateWindow(cfg WindowConfig) (Window, error)
}

type Window interface {
	PollEvents() []Event
	SizePx() (int, int)
	Scale() float32
	Present(frame image.Image) error
	SetTitle(title string)
	Close()
}

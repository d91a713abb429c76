package replay

import (
	"fmt"
	"image"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"inkpad/internal/platform"
	"inkpad/internal/stylus"
	"inkpad/pkg/ink"
)

// Step is one scripted input. Kind is a pointer kind ("pressed", "moved", ...)
// or "key", in which case Key names the command to send.
type Step struct {
	Kind     string      `toml:"kind"`
	X        float64     `toml:"x"`
	Y        float64     `toml:"y"`
	Device   string      `toml:"device"`
	Pressure float32     `toml:"pressure"`
	Right    bool        `toml:"right"`
	Stylus   *int32      `toml:"stylus"`
	Key      string      `toml:"key"`
	Repeat   int         `toml:"repeat"`
	To       *[2]float64 `toml:"to"`
}

type Script struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Steps  []Step `toml:"step"`
}

func LoadScript(path string) (*Script, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScript(b)
}

func ParseScript(b []byte) (*Script, error) {
	var s Script
	if err := toml.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("parse replay script: %w", err)
	}
	for i, st := range s.Steps {
		if st.Kind == "key" {
			if st.Key == "" {
				return nil, fmt.Errorf("step %d: key step without key", i)
			}
			continue
		}
		if _, ok := pointerKind(st.Kind); !ok {
			return nil, fmt.Errorf("step %d: unknown kind %q", i, st.Kind)
		}
	}
	return &s, nil
}

// Events expands the script into the event stream a window would deliver. A
// moved step with To and Repeat interpolates Repeat samples up to To.
func (s *Script) Events() []platform.Event {
	var out []platform.Event
	ts := uint64(0)
	for _, st := range s.Steps {
		if st.Kind == "key" {
			out = append(out, platform.Event{Type: platform.EventKeyDown, Key: st.Key})
			continue
		}
		kind, _ := pointerKind(st.Kind)
		for _, p := range st.samples() {
			ts += 8
			ev := &platform.PointerEvent{
				Kind:      kind,
				DeviceID:  1,
				Device:    device(st.Device),
				Raw:       p,
				Position:  p,
				Pressure:  st.Pressure,
				Timestamp: ts,
				Buttons:   platform.ButtonLeft,
			}
			if st.Right {
				ev.Buttons = platform.ButtonRight
			}
			if st.Stylus != nil {
				ev.Usages = platform.UsageMap{stylus.WirelessID: *st.Stylus}
			}
			out = append(out, platform.Event{Type: platform.EventPointer, Pointer: ev})
		}
	}
	return out
}

func (st Step) samples() []ink.Point {
	from := ink.Pt(st.X, st.Y)
	if st.To == nil || st.Repeat <= 1 {
		return []ink.Point{from}
	}
	to := ink.Pt(st.To[0], st.To[1])
	out := make([]ink.Point, st.Repeat)
	for i := range out {
		f := float64(i) / float64(st.Repeat-1)
		out[i] = ink.Pt(from.X+(to.X-from.X)*f, from.Y+(to.Y-from.Y)*f)
	}
	return out
}

func pointerKind(s string) (platform.PointerKind, bool) {
	for k := platform.PointerPressed; k <= platform.PointerHovered; k++ {
		if strings.EqualFold(s, k.String()) {
			return k, true
		}
	}
	return 0, false
}

func device(s string) platform.DeviceType {
	switch strings.ToLower(s) {
	case "pen":
		return platform.DevicePen
	case "touch":
		return platform.DeviceTouch
	default:
		return platform.DeviceMouse
	}
}

// Backend serves windows that replay a script, batchSize events per poll.
type Backend struct {
	script    *Script
	batchSize int
}

func New(script *Script, batchSize int) *Backend {
	if batchSize <= 0 {
		batchSize = 1
	}
	return &Backend{script: script, batchSize: batchSize}
}

func (b *Backend) Name() string { return "replay" }

func (b *Backend) CreateWindow(cfg platform.WindowConfig) (platform.Window, error) {
	w, h := cfg.WidthPx, cfg.HeightPx
	if b.script.Width > 0 && b.script.Height > 0 {
		w, h = b.script.Width, b.script.Height
	}
	return &Window{
		title:  cfg.Title,
		w:      w,
		h:      h,
		scale:  1.0,
		events: b.script.Events(),
		batch:  b.batchSize,
	}, nil
}

type Window struct {
	title  string
	w      int
	h      int
	scale  float32
	closed bool

	events []platform.Event
	batch  int
	frames int
	last   image.Image
}

// PollEvents returns the next batch, then a close event once the script ran out.
func (w *Window) PollEvents() []platform.Event {
	if w.closed || len(w.events) == 0 {
		w.closed = true
		return []platform.Event{{Type: platform.EventClose}}
	}
	n := min(w.batch, len(w.events))
	out := w.events[:n]
	w.events = w.events[n:]
	return out
}

func (w *Window) SizePx() (int, int) { return w.w, w.h }
func (w *Window) Scale() float32     { return w.scale }
func (w *Window) Title() string      { return w.title }
func (w *Window) SetTitle(title string) {
	w.title = title
}

func (w *Window) Present(frame image.Image) error {
	w.frames++
	w.last = frame
	return nil
}

func (w *Window) Frames() int            { return w.frames }
func (w *Window) LastFrame() image.Image { return w.last }
func (w *Window) Close()                 { w.closed = true }

package session

import (
	"slices"
	"sync"

	"inkpad/internal/canvas"
	"inkpad/pkg/ink"
)

// LiveLayer holds ink that is still being drawn or has been handed to the
// model but not yet released by the dry synchronizer.
type LiveLayer struct {
	mu         sync.Mutex
	mode       canvas.ProcessingMode
	attrs      ink.DrawingAttributes
	current    []ink.InkPoint
	collecting bool
	drying     []*ink.Stroke
}

func NewLiveLayer(attrs ink.DrawingAttributes) *LiveLayer {
	return &LiveLayer{attrs: attrs}
}

func (l *LiveLayer) SetProcessingMode(m canvas.ProcessingMode) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.mode = m
	if m == canvas.ProcessingModeNone {
		l.current, l.collecting = nil, false
	}
}

func (l *LiveLayer) Inking() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.mode == canvas.ProcessingModeInking
}

func (l *LiveLayer) Attributes() ink.DrawingAttributes {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.attrs
}

// SetAttributes applies to the next stroke; a stroke in progress keeps its attributes.
func (l *LiveLayer) SetAttributes(a ink.DrawingAttributes) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.attrs = a
}

func (l *LiveLayer) Collecting() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.collecting
}

func (l *LiveLayer) begin(p ink.InkPoint) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.current = append(l.current[:0], p)
	l.collecting = true
}

func (l *LiveLayer) add(p ink.InkPoint) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.collecting {
		l.current = append(l.current, p)
	}
}

// finish turns the collected samples into a stroke that stays visible on the
// live layer until EndDry.
func (l *LiveLayer) finish() *ink.Stroke {
	l.mu.Lock()
	defer l.mu.Unlock()
	pts := l.current
	l.current, l.collecting = nil, false
	s, err := ink.NewStroke(pts, l.attrs)
	if err != nil {
		return nil
	}
	l.drying = append(l.drying, s)
	return s
}

func (l *LiveLayer) cancel() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.current, l.collecting = nil, false
}

func (l *LiveLayer) EndDry() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.drying = nil
}

func (l *LiveLayer) Drying() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.drying)
}

// Draw paints drying strokes and the stroke in progress.
func (l *LiveLayer) Draw(d canvas.Drawer) {
	l.mu.Lock()
	drying := slices.Clone(l.drying)
	var current *ink.Stroke
	if len(l.current) > 0 {
		current, _ = ink.NewStroke(l.current, l.attrs)
	}
	l.mu.Unlock()

	for _, s := range drying {
		d.DrawStroke(s, false)
	}
	if current != nil {
		d.DrawStroke(current, false)
	}
}

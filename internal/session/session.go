package session

import (
	"inkpad/internal/canvas"
	"inkpad/internal/platform"
	"inkpad/internal/stylus"
	"inkpad/pkg/ink"
)

const DefaultEraserSize = 30

// dragSlop widens the selection box for the drag hit test so a box with no
// height or width can still be grabbed.
const dragSlop = 2

// Dryer takes finished strokes from the live layer and returns the copies
// the model should own.
type Dryer interface {
	BeginDry(strokes []*ink.Stroke) []*ink.Stroke
}

type Options struct {
	EraserSize float64
}

// Session turns pointer events into canvas model calls and keeps the state
// of the gesture in progress.
type Session struct {
	model  *canvas.Model
	dryer  Dryer
	live   *LiveLayer
	styli  *stylus.Registry
	eraser float64

	mode canvas.Mode

	erasing   bool
	lastPoint ink.Point

	lasso       []ink.Point
	lassoActive bool

	dragging   bool
	dragOffset ink.Point
	lastDrag   ink.Point

	clickedOutside bool
	toolbarAtPress bool
}

func New(model *canvas.Model, dryer Dryer, live *LiveLayer, styli *stylus.Registry, opts Options) *Session {
	size := opts.EraserSize
	if size <= 0 {
		size = DefaultEraserSize
	}
	if styli == nil {
		styli = stylus.NewRegistry()
	}
	return &Session{
		model:  model,
		dryer:  dryer,
		live:   live,
		styli:  styli,
		eraser: size,
		mode:   model.Mode(),
	}
}

func (s *Session) EraserSize() float64 { return s.eraser }

// Erasing reports whether an eraser sweep is in progress.
func (s *Session) Erasing() bool { return s.erasing }

func (s *Session) Dragging() bool { return s.dragging }

// Reset drops any gesture in progress.
func (s *Session) Reset() {
	s.erasing = false
	s.lasso, s.lassoActive = nil, false
	s.dragging = false
	s.clickedOutside, s.toolbarAtPress = false, false
	if s.live != nil {
		s.live.cancel()
	}
	s.model.SetLasso(nil)
	s.model.SetHotRect(ink.Empty)
}

func (s *Session) Handle(ev *platform.PointerEvent) {
	if ev == nil {
		return
	}
	if mode := s.model.Mode(); mode != s.mode {
		s.Reset()
		s.mode = mode
	}
	switch ev.Kind {
	case platform.PointerPressed:
		s.pressed(ev)
	case platform.PointerMoved:
		s.moved(ev)
	case platform.PointerReleased:
		s.released(ev)
	case platform.PointerExited:
		if s.erasing {
			ev.Handled = true
		}
	case platform.PointerLost:
		if s.erasing {
			ev.Handled = true
		}
		s.Reset()
	case platform.PointerHovered:
		s.hovered(ev)
	}
}

func (s *Session) pressed(ev *platform.PointerEvent) {
	if ev.RightButton() && ev.Device == platform.DeviceMouse {
		s.model.SetContextToolbarVisible(true)
		ev.Handled = true
		return
	}
	toolbarVisible := s.model.ContextToolbarVisible()
	pos := ev.Position

	switch s.mode {
	case canvas.ModeErasing:
		s.lastPoint = pos
		s.erasing = true
		ev.Handled = true
	case canvas.ModeLasso:
		if r, ok := s.model.SelectionRect(); ok {
			if r.Inflate(dragSlop).Contains(pos) {
				s.dragging = true
				s.lastDrag = pos
				s.dragOffset = pos.Sub(r.TopLeft())
			} else {
				s.clickedOutside = true
				s.toolbarAtPress = toolbarVisible
			}
		} else {
			s.model.ClearSelection()
			s.lasso = []ink.Point{pos}
			s.lassoActive = true
			s.model.SetLasso(s.lasso)
		}
		ev.Handled = true
	default:
		if s.live != nil && s.live.Inking() {
			s.live.begin(ev.InkPoint())
		}
	}

	if toolbarVisible {
		s.model.SetContextToolbarVisible(false)
	}
}

func (s *Session) moved(ev *platform.PointerEvent) {
	pos := ev.Position
	switch s.mode {
	case canvas.ModeErasing:
		if !s.erasing {
			return
		}
		hot := ink.RectCentered(pos, s.eraser, s.eraser)
		s.model.SetHotRect(hot)
		s.model.Erase(hot)
		s.lastPoint = pos
		ev.Handled = true
	case canvas.ModeLasso:
		if s.lassoActive && s.insideCanvas(pos) {
			s.lasso = append(s.lasso, pos)
			s.model.SetLasso(s.lasso)
		}
		if s.dragging {
			s.drag(pos)
		}
		ev.Handled = true
	default:
		if s.live != nil {
			s.live.add(ev.InkPoint())
		}
	}
}

func (s *Session) drag(pos ink.Point) {
	r, ok := s.model.SelectionRect()
	if !ok {
		s.dragging = false
		return
	}
	topLeft := pos.Sub(s.dragOffset)
	candidate := ink.R(topLeft.X, topLeft.Y, r.Width, r.Height)
	if !s.model.Bounds().ContainsRect(candidate) {
		return
	}
	if _, moved := s.model.MoveSelection(pos.Sub(s.lastDrag)); moved {
		s.lastDrag = pos
	}
}

func (s *Session) released(ev *platform.PointerEvent) {
	pos := ev.Position
	switch s.mode {
	case canvas.ModeErasing:
		if s.erasing {
			ev.Handled = true
		}
		s.erasing = false
		s.model.SetHotRect(ink.Empty)
	case canvas.ModeLasso:
		switch {
		case s.dragging:
			s.dragging = false
		case s.clickedOutside:
			if !s.toolbarAtPress {
				s.model.ClearSelection()
			}
			s.clickedOutside, s.toolbarAtPress = false, false
		case s.lassoActive:
			s.lasso = append(s.lasso, pos)
			s.model.SelectWithPolyLine(s.lasso)
			s.lasso, s.lassoActive = nil, false
			s.model.SetLasso(nil)
		}
		ev.Handled = true
	default:
		if s.live == nil || !s.live.Collecting() {
			return
		}
		s.live.add(ev.InkPoint())
		st := s.live.finish()
		if st == nil {
			return
		}
		strokes := []*ink.Stroke{st}
		if s.dryer != nil {
			strokes = s.dryer.BeginDry(strokes)
		}
		s.model.CommitStrokes(strokes)
	}
}

func (s *Session) hovered(ev *platform.PointerEvent) {
	id := stylus.IDOf(ev.Usages)
	if id == stylus.UnknownID || s.live == nil {
		return
	}
	s.styli.Touch(id)
	if attrs, ok := s.styli.Lookup(id); ok {
		s.live.SetAttributes(attrs)
	}
}

// RememberStylus stores the current live attributes for the pen that produced ev.
func (s *Session) RememberStylus(ev *platform.PointerEvent) {
	if ev == nil || s.live == nil {
		return
	}
	s.styli.Remember(stylus.IDOf(ev.Usages), s.live.Attributes())
}

func (s *Session) insideCanvas(p ink.Point) bool {
	w, h := s.model.Size()
	return p.X > 0 && p.Y > 0 && p.X < w && p.Y < h
}

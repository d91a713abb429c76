package ink

import (
	"errors"
	"fmt"
	"slices"
)

var ErrNothingSelected = errors.New("ink: nothing selected")

// Selection is a set of selected stroke ids. The zero value is empty and ready to use.
type Selection struct {
	ids map[StrokeID]struct{}
}

func NewSelection() *Selection { return &Selection{} }

func (s *Selection) Add(id StrokeID) {
	if s.ids == nil {
		s.ids = make(map[StrokeID]struct{})
	}
	s.ids[id] = struct{}{}
}

func (s *Selection) Remove(id StrokeID) {
	if s != nil {
		delete(s.ids, id)
	}
}

func (s *Selection) Has(id StrokeID) bool {
	if s == nil {
		return false
	}
	_, ok := s.ids[id]
	return ok
}

func (s *Selection) Len() int {
	if s == nil {
		return 0
	}
	return len(s.ids)
}

func (s *Selection) Clear() {
	if s != nil {
		clear(s.ids)
	}
}

// IDs returns the selected ids in no particular order.
func (s *Selection) IDs() []StrokeID {
	if s == nil {
		return nil
	}
	out := make([]StrokeID, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	return out
}

// Container groups the strokes of one gesture or one paste. Member order is
// the insertion order and stays stable between mutations.
type Container struct {
	strokes []*Stroke
}

func NewContainer(strokes ...*Stroke) *Container {
	c := &Container{}
	for _, s := range strokes {
		c.AddStroke(s)
	}
	return c
}

func (c *Container) AddStroke(s *Stroke) {
	if s == nil || s.Len() == 0 {
		return
	}
	c.strokes = append(c.strokes, s)
}

// GetStrokes returns a snapshot of the member strokes.
func (c *Container) GetStrokes() []*Stroke {
	return slices.Clone(c.strokes)
}

func (c *Container) Len() int      { return len(c.strokes) }
func (c *Container) IsEmpty() bool { return len(c.strokes) == 0 }

func (c *Container) RemoveStroke(id StrokeID) bool {
	i := slices.IndexFunc(c.strokes, func(s *Stroke) bool { return s.id == id })
	if i < 0 {
		return false
	}
	c.strokes = slices.Delete(c.strokes, i, i+1)
	return true
}

func (c *Container) BoundingRect() Rect {
	r := Empty
	for _, s := range c.strokes {
		r = Union(r, s.BoundingRect())
	}
	return r
}

// SelectedRect is the union box of the members present in sel.
func (c *Container) SelectedRect(sel *Selection) Rect {
	r := Empty
	for _, s := range c.strokes {
		if sel.Has(s.id) {
			r = Union(r, s.BoundingRect())
		}
	}
	return r
}

func (c *Container) deselectAll(sel *Selection) {
	for _, s := range c.strokes {
		sel.Remove(s.id)
	}
}

// SelectWithLine replaces this container's share of sel with the strokes that
// touch segment p1-p2. A zero-length segment selects nothing, so it doubles
// as a way to clear the container's selection.
func (c *Container) SelectWithLine(sel *Selection, p1, p2 Point) Rect {
	c.deselectAll(sel)
	r := Empty
	for _, s := range c.strokes {
		if s.HitsSegment(p1, p2) {
			sel.Add(s.id)
			r = Union(r, s.BoundingRect())
		}
	}
	return r
}

// SelectWithPolyLine replaces this container's share of sel with the strokes
// that have a sample inside the closed polygon pts.
func (c *Container) SelectWithPolyLine(sel *Selection, pts []Point) Rect {
	c.deselectAll(sel)
	if len(pts) < 3 {
		return Empty
	}
	r := Empty
	for _, s := range c.strokes {
		if s.InsidePolygon(pts) {
			sel.Add(s.id)
			r = Union(r, s.BoundingRect())
		}
	}
	return r
}

// MoveSelected translates the selected members by delta and returns their
// box after the move, or Empty when none are selected.
func (c *Container) MoveSelected(sel *Selection, delta Point) Rect {
	r := Empty
	for _, s := range c.strokes {
		if !sel.Has(s.id) {
			continue
		}
		s.Translate(delta)
		r = Union(r, s.BoundingRect())
	}
	return r
}

// DeleteSelected removes the selected members, drops their ids from sel and
// returns how many were removed.
func (c *Container) DeleteSelected(sel *Selection) int {
	n := 0
	c.strokes = slices.DeleteFunc(c.strokes, func(s *Stroke) bool {
		if !sel.Has(s.id) {
			return false
		}
		sel.Remove(s.id)
		n++
		return true
	})
	return n
}

func (c *Container) selected(sel *Selection) []*Stroke {
	var out []*Stroke
	for _, s := range c.strokes {
		if sel.Has(s.id) {
			out = append(out, s)
		}
	}
	return out
}

func (c *Container) CopySelected(sel *Selection) ([]byte, error) {
	return c.CopySelectedWithOptions(sel, EncodeOptions{})
}

func (c *Container) CopySelectedWithOptions(sel *Selection, opts EncodeOptions) ([]byte, error) {
	strokes := c.selected(sel)
	if len(strokes) == 0 {
		return nil, ErrNothingSelected
	}
	return EncodeStrokes(strokes, opts)
}

// Paste decodes payload, moves the strokes so their box starts at target and
// adds them. It returns the box the strokes now occupy.
func (c *Container) Paste(payload []byte, target Point) (Rect, error) {
	strokes, err := DecodeStrokes(payload)
	if err != nil {
		return Empty, fmt.Errorf("paste: %w", err)
	}
	r := Empty
	for _, s := range strokes {
		r = Union(r, s.BoundingRect())
	}
	if r.IsEmpty() {
		return Empty, nil
	}
	delta := target.Sub(r.TopLeft())
	for _, s := range strokes {
		s.Translate(delta)
		c.AddStroke(s)
	}
	return r.Offset(delta), nil
}

// EraseWithRect carves hot out of every member it touches. For each stroke the
// first sample inside hot (scanning forward) and the last one (scanning
// backward) bound the removed run; the samples before and after survive as new
// strokes with the same attributes. It reports whether anything changed.
func (c *Container) EraseWithRect(hot Rect) bool {
	if hot.IsEmpty() || !Intersects(c.BoundingRect(), hot) {
		return false
	}
	changed := false
	next := make([]*Stroke, 0, len(c.strokes))
	for _, s := range slices.Clone(c.strokes) {
		if !Intersects(s.BoundingRect(), hot) {
			next = append(next, s)
			continue
		}
		first := s.firstInside(hot)
		if first < 0 {
			next = append(next, s)
			continue
		}
		last := s.lastInside(hot)
		changed = true
		if head, _ := s.SplitAt(first); head != nil {
			next = append(next, head)
		}
		if _, tail := s.SplitAt(last); tail != nil {
			next = append(next, tail)
		}
		Logger().Debug("ink: erase split", "stroke", s.id, "first", first, "last", last, "points", s.Len())
	}
	c.strokes = next
	return changed
}

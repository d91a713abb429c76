package ink

import (
	"errors"
	"image/color"

	"github.com/google/uuid"
	"github.com/jbeda/geom"
)

type StrokeID = uuid.UUID

type PenTip uint8

const (
	PenTipCircle PenTip = iota
	PenTipRectangle
)

func (t PenTip) String() string {
	switch t {
	case PenTipRectangle:
		return "rectangle"
	default:
		return "circle"
	}
}

func isValidPenTip(t PenTip) bool {
	return t == PenTipCircle || t == PenTipRectangle
}

type DrawingAttributes struct {
	Color       color.RGBA
	Width       float64
	Tip         PenTip
	Highlighter bool
}

func DefaultDrawingAttributes() DrawingAttributes {
	return DrawingAttributes{
		Color: color.RGBA{A: 0xFF},
		Width: 2,
		Tip:   PenTipCircle,
	}
}

// InkPoint is a sampled position. Pressure and Timestamp ride along untouched
// through every geometric operation.
type InkPoint struct {
	Point
	Pressure  float32
	Timestamp uint64
}

var ErrEmptyStroke = errors.New("ink: stroke has no points")

// Stroke is an ordered run of samples with fixed drawing attributes.
type Stroke struct {
	id     StrokeID
	points []InkPoint
	attrs  DrawingAttributes

	bounds      Rect
	boundsValid bool
}

func NewStroke(points []InkPoint, attrs DrawingAttributes) (*Stroke, error) {
	if len(points) == 0 {
		return nil, ErrEmptyStroke
	}
	return newStroke(append([]InkPoint(nil), points...), attrs), nil
}

// newStroke takes ownership of points.
func newStroke(points []InkPoint, attrs DrawingAttributes) *Stroke {
	return &Stroke{id: uuid.New(), points: points, attrs: attrs}
}

func (s *Stroke) ID() StrokeID                  { return s.id }
func (s *Stroke) Len() int                      { return len(s.points) }
func (s *Stroke) Attributes() DrawingAttributes { return s.attrs }

// Points returns a copy of the samples.
func (s *Stroke) Points() []InkPoint {
	return append([]InkPoint(nil), s.points...)
}

func (s *Stroke) Point(i int) InkPoint { return s.points[i] }

// Clone returns an independent copy with a fresh id.
func (s *Stroke) Clone() *Stroke {
	c := newStroke(s.Points(), s.attrs)
	c.bounds, c.boundsValid = s.bounds, s.boundsValid
	return c
}

// BoundingRect returns the min/max box over all samples. A single sample
// yields a zero-area rectangle at that location.
func (s *Stroke) BoundingRect() Rect {
	if s.boundsValid {
		return s.bounds
	}
	if len(s.points) == 0 {
		return Empty
	}
	c := s.points[0].coord()
	g := geom.Rect{Min: c, Max: c}
	for _, p := range s.points[1:] {
		g.ExpandToContainCoord(p.coord())
	}
	s.bounds = rectFromGeom(g)
	s.boundsValid = true
	return s.bounds
}

// SplitAt drops the sample at index and returns the samples before it and
// after it as new strokes. Either side is nil when it would be empty; an
// out-of-range index yields (nil, nil).
func (s *Stroke) SplitAt(index int) (prefix, suffix *Stroke) {
	if index < 0 || index >= len(s.points) {
		return nil, nil
	}
	return s.Slice(0, index), s.Slice(index+1, len(s.points))
}

// Slice returns samples [from, to) as a new stroke, or nil when the range is empty.
func (s *Stroke) Slice(from, to int) *Stroke {
	if from < 0 {
		from = 0
	}
	if to > len(s.points) {
		to = len(s.points)
	}
	if from >= to {
		return nil
	}
	return newStroke(append([]InkPoint(nil), s.points[from:to]...), s.attrs)
}

func (s *Stroke) Translate(d Point) {
	if d == (Point{}) {
		return
	}
	for i := range s.points {
		s.points[i].Point = s.points[i].Add(d)
	}
	s.boundsValid = false
}

// HitsSegment reports whether the stroke polyline touches segment p1-p2.
func (s *Stroke) HitsSegment(p1, p2 Point) bool {
	if p1 == p2 {
		return false
	}
	if !Intersects(s.BoundingRect(), RectFromPoints(p1, p2)) {
		return false
	}
	return SegmentHitsPolyline(p1, p2, s.polyline())
}

// InsidePolygon reports whether any sample lies inside poly.
func (s *Stroke) InsidePolygon(poly []Point) bool {
	if len(poly) < 3 {
		return false
	}
	if !Intersects(s.BoundingRect(), RectFromPoints(poly...)) {
		return false
	}
	for _, p := range s.points {
		if PolygonContains(poly, p.Point) {
			return true
		}
	}
	return false
}

// firstInside and lastInside return -1 when no sample lies inside r.
func (s *Stroke) firstInside(r Rect) int {
	for i, p := range s.points {
		if r.Contains(p.Point) {
			return i
		}
	}
	return -1
}

func (s *Stroke) lastInside(r Rect) int {
	for i := len(s.points) - 1; i >= 0; i-- {
		if r.Contains(s.points[i].Point) {
			return i
		}
	}
	return -1
}

func (s *Stroke) polyline() []Point {
	out := make([]Point, len(s.points))
	for i, p := range s.points {
		out[i] = p.Point
	}
	return out
}

package ink

import (
	"math"

	"github.com/jbeda/geom"
)

// Point is a position in logical canvas units.
type Point struct {
	X float64
	Y float64
}

func Pt(x, y float64) Point { return Point{X: x, Y: y} }

func (p Point) Add(q Point) Point { return pointFromCoord(p.coord().Plus(q.coord())) }
func (p Point) Sub(q Point) Point { return pointFromCoord(p.coord().Minus(q.coord())) }

// Distance returns the euclidean distance between p and q.
func (p Point) Distance(q Point) float64 { return p.coord().DistanceFrom(q.coord()) }

func (p Point) coord() geom.Coord { return geom.Coord{X: p.X, Y: p.Y} }

func pointFromCoord(c geom.Coord) Point { return Point{X: c.X, Y: c.Y} }

// Rect is an axis-aligned rectangle. The zero-area rectangle at a real
// location is a valid, non-empty Rect; only Empty reports IsEmpty.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Empty is the rectangle that contains nothing and is the identity of Union.
var Empty = Rect{
	X:      math.Inf(1),
	Y:      math.Inf(1),
	Width:  math.Inf(-1),
	Height: math.Inf(-1),
}

// R builds a rectangle, normalizing negative sizes so the result is never Empty.
func R(x, y, w, h float64) Rect {
	if w < 0 {
		x += w
		w = -w
	}
	if h < 0 {
		y += h
		h = -h
	}
	return Rect{X: x, Y: y, Width: w, Height: h}
}

// RectFromPoints returns the bounding rectangle of pts, or Empty when pts is empty.
func RectFromPoints(pts ...Point) Rect {
	if len(pts) == 0 {
		return Empty
	}
	c := pts[0].coord()
	g := geom.Rect{Min: c, Max: c}
	for _, p := range pts[1:] {
		g.ExpandToContainCoord(p.coord())
	}
	return rectFromGeom(g)
}

// RectCentered returns a w by h rectangle centered on c.
func RectCentered(c Point, w, h float64) Rect {
	return R(c.X-w/2, c.Y-h/2, w, h)
}

func rectFromGeom(g geom.Rect) Rect {
	return Rect{X: g.Min.X, Y: g.Min.Y, Width: g.Width(), Height: g.Height()}
}

func (r Rect) geom() geom.Rect {
	return geom.Rect{
		Min: geom.Coord{X: r.X, Y: r.Y},
		Max: geom.Coord{X: r.X + r.Width, Y: r.Y + r.Height},
	}
}

func (r Rect) IsEmpty() bool { return r.Width < 0 || r.Height < 0 }

func (r Rect) Left() float64   { return r.X }
func (r Rect) Top() float64    { return r.Y }
func (r Rect) Right() float64  { return r.X + r.Width }
func (r Rect) Bottom() float64 { return r.Y + r.Height }

func (r Rect) TopLeft() Point { return Point{X: r.X, Y: r.Y} }

// Contains reports closed containment: points on the boundary are inside.
func (r Rect) Contains(p Point) bool {
	if r.IsEmpty() {
		return false
	}
	return p.X >= r.X && p.X <= r.Right() && p.Y >= r.Y && p.Y <= r.Bottom()
}

// ContainsRect reports whether o lies entirely within r, boundary inclusive.
func (r Rect) ContainsRect(o Rect) bool {
	if r.IsEmpty() || o.IsEmpty() {
		return false
	}
	return o.X >= r.X && o.Y >= r.Y && o.Right() <= r.Right() && o.Bottom() <= r.Bottom()
}

// Offset returns r translated by d. Empty stays Empty.
func (r Rect) Offset(d Point) Rect {
	if r.IsEmpty() {
		return Empty
	}
	return Rect{X: r.X + d.X, Y: r.Y + d.Y, Width: r.Width, Height: r.Height}
}

// Inflate grows r by d on every side. Empty stays Empty.
func (r Rect) Inflate(d float64) Rect {
	if r.IsEmpty() {
		return Empty
	}
	return R(r.X-d, r.Y-d, r.Width+2*d, r.Height+2*d)
}

// Corners returns the rectangle outline as a closed polygon (first point repeated).
func (r Rect) Corners() []Point {
	if r.IsEmpty() {
		return nil
	}
	return []Point{
		{r.X, r.Y},
		{r.Right(), r.Y},
		{r.Right(), r.Bottom()},
		{r.X, r.Bottom()},
		{r.X, r.Y},
	}
}

// Intersect returns the clipped overlap of a and b. Rectangles that only touch
// along an edge produce a zero-area, non-empty result.
func Intersect(a, b Rect) Rect {
	if a.IsEmpty() || b.IsEmpty() {
		return Empty
	}
	left := math.Max(a.X, b.X)
	top := math.Max(a.Y, b.Y)
	right := math.Min(a.Right(), b.Right())
	bottom := math.Min(a.Bottom(), b.Bottom())
	if right < left || bottom < top {
		return Empty
	}
	return Rect{X: left, Y: top, Width: right - left, Height: bottom - top}
}

// Intersects reports whether the clipped intersection of a and b is not Empty.
func Intersects(a, b Rect) bool {
	return !Intersect(a, b).IsEmpty()
}

// Union returns the smallest rectangle containing a and b.
func Union(a, b Rect) Rect {
	if a.IsEmpty() {
		return b
	}
	if b.IsEmpty() {
		return a
	}
	g := a.geom()
	g.ExpandToContainRect(b.geom())
	return rectFromGeom(g)
}

// orientation returns >0 when c is counter-clockwise of a->b, <0 when clockwise
// and 0 when collinear.
func orientation(a, b, c Point) float64 {
	ab := b.coord().Minus(a.coord())
	ac := c.coord().Minus(a.coord())
	return ab.X*ac.Y - ab.Y*ac.X
}

func onSegment(a, b, p Point) bool {
	return p.X >= math.Min(a.X, b.X) && p.X <= math.Max(a.X, b.X) &&
		p.Y >= math.Min(a.Y, b.Y) && p.Y <= math.Max(a.Y, b.Y)
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// SegmentsIntersect reports whether the closed segments a-b and c-d share a point.
func SegmentsIntersect(a, b, c, d Point) bool {
	if !Intersects(RectFromPoints(a, b), RectFromPoints(c, d)) {
		return false
	}
	o1 := sign(orientation(a, b, c))
	o2 := sign(orientation(a, b, d))
	o3 := sign(orientation(c, d, a))
	o4 := sign(orientation(c, d, b))
	if o1 != o2 && o3 != o4 {
		return true
	}
	switch {
	case o1 == 0 && onSegment(a, b, c):
		return true
	case o2 == 0 && onSegment(a, b, d):
		return true
	case o3 == 0 && onSegment(c, d, a):
		return true
	case o4 == 0 && onSegment(c, d, b):
		return true
	}
	return false
}

// SegmentHitsPolyline reports whether segment p1-p2 touches the open polyline
// pts. A single-point polyline is hit when the point lies on the segment.
func SegmentHitsPolyline(p1, p2 Point, pts []Point) bool {
	switch len(pts) {
	case 0:
		return false
	case 1:
		return orientation(p1, p2, pts[0]) == 0 && onSegment(p1, p2, pts[0])
	}
	for i := 1; i < len(pts); i++ {
		if SegmentsIntersect(p1, p2, pts[i-1], pts[i]) {
			return true
		}
	}
	return false
}

// PolygonContains runs an even-odd ray cast against the implicitly closed
// polygon poly. Points lying on an edge count as inside. Polygons with fewer
// than three vertices contain nothing.
func PolygonContains(poly []Point, p Point) bool {
	n := len(poly)
	if n < 3 {
		return false
	}
	inside := false
	j := n - 1
	for i := 0; i < n; i++ {
		a, b := poly[i], poly[j]
		if orientation(a, b, p) == 0 && onSegment(a, b, p) {
			return true
		}
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := a.X + (p.Y-a.Y)*(b.X-a.X)/(b.Y-a.Y)
			if p.X < x {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

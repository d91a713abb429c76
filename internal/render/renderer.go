package render

import (
	"image"
	"image/color"
	"io"

	"github.com/gogpu/gg"

	"inkpad/internal/canvas"
	"inkpad/pkg/ink"
)

var (
	selectionColor = color.RGBA{R: 0x00, G: 0x78, B: 0xD7, A: 0xFF}
	selectedHalo   = color.RGBA{R: 0x99, G: 0xC9, B: 0xF0, A: 0xFF}
	lassoColor     = color.RGBA{R: 0x55, G: 0x55, B: 0x55, A: 0xFF}
	hotRectColor   = color.RGBA{R: 0xD1, G: 0x34, B: 0x38, A: 0xFF}
)

// highlighterAlpha caps the opacity of highlighter strokes.
const highlighterAlpha = 0x80

// Layer is anything that can replay its content into a Drawer.
type Layer interface {
	Draw(d canvas.Drawer)
}

// Renderer rasterizes canvas frames. It implements canvas.Drawer.
type Renderer struct {
	dc *gg.Context
}

func NewRenderer(w, h int) *Renderer {
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	return &Renderer{dc: gg.NewContext(w, h)}
}

func (r *Renderer) Size() (int, int) { return r.dc.Width(), r.dc.Height() }

func (r *Renderer) Resize(w, h int) error {
	return r.dc.Resize(max(w, 1), max(h, 1))
}

// BeginFrame clears the surface to the page color.
func (r *Renderer) BeginFrame() {
	r.dc.ClearWithColor(gg.White)
}

// Render clears the surface and draws the layers bottom to top.
func (r *Renderer) Render(layers ...Layer) image.Image {
	r.BeginFrame()
	for _, l := range layers {
		if l != nil {
			l.Draw(r)
		}
	}
	return r.Image()
}

func (r *Renderer) DrawStroke(s *ink.Stroke, selected bool) {
	if s == nil || s.Len() == 0 {
		return
	}
	attrs := s.Attributes()
	width := attrs.Width
	if width <= 0 {
		width = 1
	}
	if selected {
		r.strokePolyline(s, width+4, selectedHalo, attrs.Tip)
	}
	c := attrs.Color
	if attrs.Highlighter && c.A > highlighterAlpha {
		c.A = highlighterAlpha
	}
	r.strokePolyline(s, width, c, attrs.Tip)
}

func (r *Renderer) strokePolyline(s *ink.Stroke, width float64, c color.RGBA, tip ink.PenTip) {
	dc := r.dc
	dc.SetColor(c)
	if s.Len() == 1 {
		p := s.Point(0)
		if tip == ink.PenTipRectangle {
			dc.DrawRectangle(p.X-width/2, p.Y-width/2, width, width)
		} else {
			dc.DrawCircle(p.X, p.Y, width/2)
		}
		r.check("fill dot", dc.Fill())
		return
	}
	dc.SetLineWidth(width)
	if tip == ink.PenTipRectangle {
		dc.SetLineCap(gg.LineCapSquare)
		dc.SetLineJoin(gg.LineJoinMiter)
	} else {
		dc.SetLineCap(gg.LineCapRound)
		dc.SetLineJoin(gg.LineJoinRound)
	}
	first := s.Point(0)
	dc.MoveTo(first.X, first.Y)
	for i := 1; i < s.Len(); i++ {
		p := s.Point(i)
		dc.LineTo(p.X, p.Y)
	}
	r.check("stroke", dc.Stroke())
}

func (r *Renderer) DrawSelection(rect ink.Rect) {
	if rect.IsEmpty() {
		return
	}
	dc := r.dc
	dc.SetColor(selectionColor)
	dc.SetLineWidth(1)
	dc.SetLineCap(gg.LineCapButt)
	dc.SetDash(5, 2)
	dc.DrawRectangle(rect.X, rect.Y, rect.Width, rect.Height)
	r.check("selection", dc.Stroke())
	dc.ClearDash()
}

func (r *Renderer) DrawLasso(pts []ink.Point) {
	if len(pts) < 2 {
		return
	}
	dc := r.dc
	dc.SetColor(lassoColor)
	dc.SetLineWidth(1)
	dc.SetLineCap(gg.LineCapButt)
	dc.SetDash(5, 2)
	dc.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		dc.LineTo(p.X, p.Y)
	}
	r.check("lasso", dc.Stroke())
	dc.ClearDash()
}

func (r *Renderer) DrawHotRect(rect ink.Rect) {
	if rect.IsEmpty() {
		return
	}
	dc := r.dc
	dc.SetColor(hotRectColor)
	dc.SetLineWidth(1)
	dc.DrawRectangle(rect.X, rect.Y, rect.Width, rect.Height)
	r.check("hot rect", dc.Stroke())
}

func (r *Renderer) Image() image.Image { return r.dc.Image() }

func (r *Renderer) EncodePNG(w io.Writer) error { return r.dc.EncodePNG(w) }

func (r *Renderer) SavePNG(path string) error { return r.dc.SavePNG(path) }

func (r *Renderer) Close() error { return r.dc.Close() }

func (r *Renderer) check(op string, err error) {
	if err != nil {
		ink.Logger().Warn("render: draw failed", "op", op, "err", err)
	}
}

package ui

import (
	"inkpad/internal/canvas"
	"inkpad/internal/render"
	"inkpad/pkg/ink"
)

type Action string

const (
	ActionPen       Action = "pen"
	ActionEraser    Action = "eraser"
	ActionLasso     Action = "lasso"
	ActionCopy      Action = "copy"
	ActionCut       Action = "cut"
	ActionPaste     Action = "paste"
	ActionDelete    Action = "delete"
	ActionEraseAll  Action = "erase_all"
	ActionExport    Action = "export"
	ActionCopyImage Action = "copy_image"
)

type Button struct {
	Action  Action
	Label   string
	X       int
	Y       int
	W       int
	H       int
	Active  bool
	Enabled bool
}

func (b Button) Contains(x, y int) bool {
	return x >= b.X && y >= b.Y && x < b.X+b.W && y < b.Y+b.H
}

// State is the part of the canvas the chrome reflects.
type State struct {
	Mode           canvas.Mode
	HasSelection   bool
	Selection      ink.Rect
	ContextToolbar bool
	HoverX         int
	HoverY         int
}

// MeasureFunc returns the pixel width of a label.
type MeasureFunc func(label string) int

type Layout struct {
	ToolbarH  int
	StatusH   int
	CanvasX   int
	CanvasY   int
	CanvasW   int
	CanvasH   int
	StatusBar int
	Buttons   []Button
	Context   []Button
}

// ButtonAt reports the enabled button under (x, y). The context toolbar is
// checked first since it floats over the canvas.
func (l Layout) ButtonAt(x, y int) (Action, bool) {
	for _, set := range [][]Button{l.Context, l.Buttons} {
		for _, b := range set {
			if b.Enabled && b.Contains(x, y) {
				return b.Action, true
			}
		}
	}
	return "", false
}

// InCanvas reports whether the window pixel lies on the drawing surface.
func (l Layout) InCanvas(x, y int) bool {
	return x >= l.CanvasX && y >= l.CanvasY && x < l.CanvasX+l.CanvasW && y < l.CanvasY+l.CanvasH
}

// ToCanvas maps a window position to canvas coordinates.
func (l Layout) ToCanvas(x, y float64) ink.Point {
	return ink.Pt(x-float64(l.CanvasX), y-float64(l.CanvasY))
}

func ComputeLayout(w, h int, theme Theme, scale float32, st State, measure MeasureFunc) Layout {
	if scale <= 0 {
		scale = 1
	}
	if measure == nil {
		measure = func(s string) int { return len(s) * 7 }
	}

	dp := func(v int) int { return int(float32(v) * scale) }

	toolbarH := dp(theme.ToolbarHeightDp)
	statusH := dp(theme.StatusHeightDp)
	canvasY := toolbarH
	canvasH := h - canvasY - statusH
	if canvasH < 0 {
		canvasH = 0
	}

	l := Layout{
		ToolbarH:  toolbarH,
		StatusH:   statusH,
		CanvasX:   0,
		CanvasY:   canvasY,
		CanvasW:   w,
		CanvasH:   canvasH,
		StatusBar: h - statusH,
	}

	tools := []Button{
		{Action: ActionPen, Label: "Pen", Active: st.Mode == canvas.ModeDrawing, Enabled: true},
		{Action: ActionEraser, Label: "Eraser", Active: st.Mode == canvas.ModeErasing, Enabled: true},
		{Action: ActionLasso, Label: "Lasso", Active: st.Mode == canvas.ModeLasso, Enabled: true},
		{Action: ActionCopy, Label: "Copy", Enabled: st.HasSelection},
		{Action: ActionCut, Label: "Cut", Enabled: st.HasSelection},
		{Action: ActionPaste, Label: "Paste", Enabled: true},
		{Action: ActionDelete, Label: "Delete", Enabled: st.HasSelection},
		{Action: ActionEraseAll, Label: "Erase All", Enabled: true},
		{Action: ActionExport, Label: "Export PNG", Enabled: true},
		{Action: ActionCopyImage, Label: "Copy Image", Enabled: true},
	}
	pad := dp(theme.ButtonPadDp)
	gap := dp(theme.ButtonGapDp)
	minW := dp(theme.ButtonMinDp)
	x := gap
	y := dp(5)
	bh := max(toolbarH-dp(10), 1)
	for _, b := range tools {
		b.W = max(measure(b.Label)+pad*2, minW)
		b.X, b.Y, b.H = x, y, bh
		l.Buttons = append(l.Buttons, b)
		x += b.W + gap
	}

	if st.ContextToolbar && st.HasSelection && !st.Selection.IsEmpty() {
		l.Context = contextButtons(l, st.Selection, pad, gap, minW, bh, measure)
	}
	return l
}

// contextButtons lays out the selection toolbar just under the selection box,
// kept inside the canvas area.
func contextButtons(l Layout, sel ink.Rect, pad, gap, minW, bh int, measure MeasureFunc) []Button {
	items := []Button{
		{Action: ActionCopy, Label: "Copy", Enabled: true},
		{Action: ActionCut, Label: "Cut", Enabled: true},
		{Action: ActionDelete, Label: "Delete", Enabled: true},
	}
	total := gap
	for i := range items {
		items[i].W = max(measure(items[i].Label)+pad*2, minW)
		total += items[i].W + gap
	}
	x := l.CanvasX + int(sel.X)
	y := l.CanvasY + int(sel.Bottom()) + gap
	if x+total > l.CanvasX+l.CanvasW {
		x = l.CanvasX + l.CanvasW - total
	}
	if y+bh+gap*2 > l.CanvasY+l.CanvasH {
		y = l.CanvasY + int(sel.Y) - bh - gap*3
	}
	x = max(x, l.CanvasX)
	y = max(y, l.CanvasY)
	x += gap
	for i := range items {
		items[i].X, items[i].Y, items[i].H = x, y+gap, bh
		x += items[i].W + gap
	}
	return items
}

// DrawShell paints the toolbar, the page and the status bar. Labels are drawn
// by the caller on top, since the frame buffer carries no text.
func DrawShell(fb *render.FrameBuffer, theme Theme, scale float32, st State, measure MeasureFunc) Layout {
	layout := ComputeLayout(fb.W, fb.H, theme, scale, st, measure)

	fb.Clear(theme.AppBackground)

	fb.FillRect(0, 0, fb.W, layout.ToolbarH, theme.Toolbar)
	fb.HLine(0, layout.ToolbarH-1, fb.W, theme.Border)
	for _, b := range layout.Buttons {
		drawButton(fb, theme, b, st)
	}

	fb.FillRect(layout.CanvasX, layout.CanvasY, layout.CanvasW, layout.CanvasH, theme.Page)

	fb.FillRect(0, layout.StatusBar, fb.W, layout.StatusH, theme.StatusBar)
	fb.StrokeRect(0, layout.StatusBar, fb.W, layout.StatusH, 1, theme.Border)
	return layout
}

// DrawContextToolbar paints the floating selection toolbar. It runs after the
// canvas frame is composited so the toolbar stays on top of the ink.
func DrawContextToolbar(fb *render.FrameBuffer, theme Theme, layout Layout, st State) {
	if len(layout.Context) == 0 {
		return
	}
	first, last := layout.Context[0], layout.Context[len(layout.Context)-1]
	x, y := first.X-4, first.Y-4
	w, h := last.X+last.W+4-x, first.H+8
	fb.FillRect(x+2, y+2, w, h, theme.Shadow)
	fb.FillRect(x, y, w, h, theme.Toolbar)
	fb.StrokeRect(x, y, w, h, 1, theme.Border)
	for _, b := range layout.Context {
		drawButton(fb, theme, b, st)
	}
}

func drawButton(fb *render.FrameBuffer, theme Theme, b Button, st State) {
	bg := theme.Button
	switch {
	case !b.Enabled:
		bg = theme.ButtonDisabled
	case b.Active:
		bg = theme.ButtonActive
	case b.Contains(st.HoverX, st.HoverY):
		bg = theme.ButtonHover
	}
	fb.FillRect(b.X, b.Y, b.W, b.H, bg)
	fb.StrokeRect(b.X, b.Y, b.W, b.H, 1, theme.Border)
	if b.Active {
		fb.FillRect(b.X, b.Y+b.H-2, b.W, 2, theme.Accent)
	}
}

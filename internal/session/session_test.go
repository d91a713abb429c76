package session

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkpad/internal/canvas"
	"inkpad/internal/dry"
	"inkpad/internal/platform"
	"inkpad/internal/stylus"
	"inkpad/pkg/ink"
)

type harness struct {
	model *canvas.Model
	live  *LiveLayer
	sync  *dry.Synchronizer
	sess  *Session
	styli *stylus.Registry
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	live := NewLiveLayer(ink.DefaultDrawingAttributes())
	sync := dry.New(live, 2)
	model := canvas.New(canvas.Options{Width: 500, Height: 500, Presenter: live, Dry: sync})
	styli := stylus.NewRegistry()
	return &harness{
		model: model,
		live:  live,
		sync:  sync,
		styli: styli,
		sess:  New(model, sync, live, styli, Options{EraserSize: 10}),
	}
}

func (h *harness) send(kind platform.PointerKind, x, y float64) *platform.PointerEvent {
	ev := &platform.PointerEvent{
		Kind:     kind,
		Device:   platform.DevicePen,
		Raw:      ink.Pt(x, y),
		Position: ink.Pt(x, y),
		Pressure: 0.5,
		Buttons:  platform.ButtonLeft,
	}
	h.sess.Handle(ev)
	return ev
}

func (h *harness) gesture(pts ...ink.Point) {
	h.send(platform.PointerPressed, pts[0].X, pts[0].Y)
	for _, p := range pts[1 : len(pts)-1] {
		h.send(platform.PointerMoved, p.X, p.Y)
	}
	last := pts[len(pts)-1]
	h.send(platform.PointerReleased, last.X, last.Y)
}

type nopDrawer struct{}

func (nopDrawer) DrawStroke(*ink.Stroke, bool) {}
func (nopDrawer) DrawSelection(ink.Rect)       {}
func (nopDrawer) DrawLasso([]ink.Point)        {}
func (nopDrawer) DrawHotRect(ink.Rect)         {}

type lassoRecorder struct {
	nopDrawer
	lassos [][]ink.Point
}

func (r *lassoRecorder) DrawLasso(pts []ink.Point) { r.lassos = append(r.lassos, pts) }

func TestDrawingCommitsThroughDrySynchronizer(t *testing.T) {
	h := newHarness(t)
	h.gesture(ink.Pt(10, 10), ink.Pt(20, 20), ink.Pt(30, 30))

	require.Equal(t, 1, h.model.Len())
	assert.Equal(t, 1, h.sync.Pending())
	assert.Equal(t, 1, h.live.Drying())
	assert.False(t, h.live.Collecting())

	h.model.Draw(nopDrawer{})
	assert.Equal(t, 1, h.live.Drying(), "live copy stays until the countdown ends")
	h.model.Draw(nopDrawer{})
	assert.Equal(t, 0, h.live.Drying())
	assert.Equal(t, 0, h.sync.Pending())
	assert.Equal(t, 1, h.model.Len())
}

func TestEraserSweepSplitsStroke(t *testing.T) {
	h := newHarness(t)
	h.gesture(ink.Pt(0, 100), ink.Pt(10, 100), ink.Pt(20, 100), ink.Pt(30, 100), ink.Pt(40, 100))
	require.Equal(t, 1, h.model.StrokeCount())

	h.model.EnterMode(canvas.ModeErasing)
	press := h.send(platform.PointerPressed, 20, 80)
	assert.True(t, press.Handled)
	assert.Equal(t, 1, h.model.StrokeCount(), "pressing alone does not erase")

	h.send(platform.PointerMoved, 20, 100)
	assert.Equal(t, 2, h.model.StrokeCount())
	_, hot := h.model.HotRect()
	assert.True(t, hot)

	h.send(platform.PointerReleased, 20, 100)
	_, hot = h.model.HotRect()
	assert.False(t, hot)
	assert.False(t, h.sess.Erasing())
}

func TestEraserExitKeepsSweepAndLostStopsIt(t *testing.T) {
	h := newHarness(t)
	h.model.EnterMode(canvas.ModeErasing)
	h.send(platform.PointerPressed, 5, 5)

	exited := h.send(platform.PointerExited, 5, 5)
	assert.True(t, exited.Handled)
	assert.True(t, h.sess.Erasing())

	lost := h.send(platform.PointerLost, 5, 5)
	assert.True(t, lost.Handled)
	assert.False(t, h.sess.Erasing())

	again := h.send(platform.PointerExited, 5, 5)
	assert.False(t, again.Handled)
	assert.False(t, h.sess.Erasing())
}

func TestLassoSelectsAndSkipsOutsidePoints(t *testing.T) {
	h := newHarness(t)
	h.gesture(ink.Pt(50, 50), ink.Pt(60, 60))
	h.gesture(ink.Pt(300, 300), ink.Pt(310, 310))

	h.model.EnterMode(canvas.ModeLasso)
	h.send(platform.PointerPressed, 20, 20)
	h.send(platform.PointerMoved, 100, 20)
	h.send(platform.PointerMoved, 900, 900) // outside the canvas, dropped
	h.send(platform.PointerMoved, 100, 100)
	h.send(platform.PointerReleased, 20, 100)

	r, ok := h.model.SelectionRect()
	require.True(t, ok)
	assert.Equal(t, ink.R(50, 50, 10, 10), r)
	assert.Equal(t, 1, h.model.SelectedCount())
}

func selectFirst(t *testing.T, h *harness) ink.Rect {
	t.Helper()
	h.gesture(ink.Pt(50, 50), ink.Pt(100, 100))
	h.model.EnterMode(canvas.ModeLasso)
	h.gesture(ink.Pt(10, 10), ink.Pt(200, 10), ink.Pt(200, 200), ink.Pt(10, 200))
	r, ok := h.model.SelectionRect()
	require.True(t, ok)
	return r
}

func TestDragMovesSelectionAndClampsAtEdge(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, ink.R(50, 50, 50, 50), selectFirst(t, h))

	h.send(platform.PointerPressed, 75, 75)
	require.True(t, h.sess.Dragging())

	h.send(platform.PointerMoved, 85, 95)
	r, _ := h.model.SelectionRect()
	assert.Equal(t, ink.R(60, 70, 50, 50), r)

	// Would push the box past the right edge: refused, anchor kept.
	h.send(platform.PointerMoved, 490, 95)
	r, _ = h.model.SelectionRect()
	assert.Equal(t, ink.R(60, 70, 50, 50), r)

	h.send(platform.PointerMoved, 95, 95)
	r, _ = h.model.SelectionRect()
	assert.Equal(t, ink.R(70, 70, 50, 50), r, "delta is measured from the last accepted point")

	h.send(platform.PointerReleased, 95, 95)
	assert.False(t, h.sess.Dragging())
	for _, c := range h.model.Containers() {
		assert.True(t, h.model.Bounds().ContainsRect(c.BoundingRect()))
	}
}

func TestClickOutsideClearsSelection(t *testing.T) {
	h := newHarness(t)
	selectFirst(t, h)

	h.send(platform.PointerPressed, 400, 400)
	_, ok := h.model.SelectionRect()
	assert.True(t, ok, "selection survives until release")
	h.send(platform.PointerReleased, 400, 400)
	_, ok = h.model.SelectionRect()
	assert.False(t, ok)
}

func TestClickOutsideWithToolbarOnlyDismissesToolbar(t *testing.T) {
	h := newHarness(t)
	selectFirst(t, h)

	right := &platform.PointerEvent{Kind: platform.PointerPressed, Device: platform.DeviceMouse, Position: ink.Pt(75, 75), Buttons: platform.ButtonRight}
	h.sess.Handle(right)
	require.True(t, right.Handled)
	require.True(t, h.model.ContextToolbarVisible())

	h.send(platform.PointerPressed, 400, 400)
	assert.False(t, h.model.ContextToolbarVisible())
	h.send(platform.PointerReleased, 400, 400)
	_, ok := h.model.SelectionRect()
	assert.True(t, ok, "the click dismissed the toolbar and must keep the selection")

	h.send(platform.PointerPressed, 400, 400)
	h.send(platform.PointerReleased, 400, 400)
	_, ok = h.model.SelectionRect()
	assert.False(t, ok)
}

func TestHoverAppliesRememberedStylusAttributes(t *testing.T) {
	h := newHarness(t)
	usages := platform.UsageMap{stylus.WirelessID: 12}
	red := ink.DrawingAttributes{Color: color.RGBA{R: 0xFF, A: 0xFF}, Width: 8, Tip: ink.PenTipCircle}

	h.live.SetAttributes(red)
	h.sess.RememberStylus(&platform.PointerEvent{Usages: usages})
	h.live.SetAttributes(ink.DefaultDrawingAttributes())

	h.sess.Handle(&platform.PointerEvent{Kind: platform.PointerHovered, Device: platform.DevicePen, Usages: usages})
	assert.Equal(t, red, h.live.Attributes())

	h.gesture(ink.Pt(1, 1), ink.Pt(2, 2))
	got := h.model.Containers()[0].GetStrokes()[0].Attributes()
	assert.Equal(t, red, got)

	h.live.SetAttributes(ink.DefaultDrawingAttributes())
	h.sess.Handle(&platform.PointerEvent{Kind: platform.PointerHovered, Usages: platform.UsageMap{}})
	assert.Equal(t, ink.DefaultDrawingAttributes(), h.live.Attributes())
}

func TestModeChangeAbandonsGesture(t *testing.T) {
	h := newHarness(t)
	h.model.EnterMode(canvas.ModeLasso)
	h.send(platform.PointerPressed, 10, 10)
	h.send(platform.PointerMoved, 50, 10)

	h.model.EnterMode(canvas.ModeDrawing)
	h.send(platform.PointerReleased, 50, 50)
	_, ok := h.model.SelectionRect()
	assert.False(t, ok)
	assert.Equal(t, 0, h.model.Len())
}

func TestLostMidLassoDropsLassoAndNextLassoCommits(t *testing.T) {
	h := newHarness(t)
	h.gesture(ink.Pt(50, 50), ink.Pt(100, 100))
	h.model.EnterMode(canvas.ModeLasso)

	h.send(platform.PointerPressed, 10, 10)
	h.send(platform.PointerMoved, 200, 10)
	rec := &lassoRecorder{}
	h.model.Draw(rec)
	require.Len(t, rec.lassos, 1)

	h.send(platform.PointerLost, 200, 10)
	rec = &lassoRecorder{}
	h.model.Draw(rec)
	assert.Empty(t, rec.lassos, "lost pointer must hide the lasso")

	h.send(platform.PointerReleased, 200, 10)
	_, ok := h.model.SelectionRect()
	assert.False(t, ok, "release after a lost pointer selects nothing")

	h.gesture(ink.Pt(10, 10), ink.Pt(200, 10), ink.Pt(200, 200), ink.Pt(10, 200))
	assert.Equal(t, 1, h.model.SelectedCount())
	rec = &lassoRecorder{}
	h.model.Draw(rec)
	assert.Empty(t, rec.lassos)
}

func TestLostMidClickOutsideDoesNotSwallowNextLasso(t *testing.T) {
	h := newHarness(t)
	selectFirst(t, h)

	h.send(platform.PointerPressed, 400, 400)
	h.send(platform.PointerLost, 400, 400)
	_, ok := h.model.SelectionRect()
	assert.True(t, ok, "a lost click is not a click")

	h.model.ClearSelection()
	h.gesture(ink.Pt(10, 10), ink.Pt(200, 10), ink.Pt(200, 200), ink.Pt(10, 200))
	assert.Equal(t, 1, h.model.SelectedCount())
	r, ok := h.model.SelectionRect()
	require.True(t, ok)
	assert.Equal(t, ink.R(50, 50, 50, 50), r)
}

func TestFlatSelectionCanBeDragged(t *testing.T) {
	h := newHarness(t)
	h.gesture(ink.Pt(50, 100), ink.Pt(75, 100), ink.Pt(100, 100))
	h.model.EnterMode(canvas.ModeLasso)
	h.gesture(ink.Pt(10, 10), ink.Pt(200, 10), ink.Pt(200, 200), ink.Pt(10, 200))
	r, ok := h.model.SelectionRect()
	require.True(t, ok)
	require.Equal(t, ink.R(50, 100, 50, 0), r)

	h.send(platform.PointerPressed, 75, 101.5)
	require.True(t, h.sess.Dragging(), "a press just off a flat box grabs it")
	h.send(platform.PointerMoved, 85, 121.5)
	h.send(platform.PointerReleased, 85, 121.5)

	r, _ = h.model.SelectionRect()
	assert.Equal(t, ink.R(60, 120, 50, 0), r)
	assert.Equal(t, 1, h.model.SelectedCount())

	h.send(platform.PointerPressed, 75, 130)
	assert.False(t, h.sess.Dragging())
	h.send(platform.PointerReleased, 75, 130)
	_, ok = h.model.SelectionRect()
	assert.False(t, ok)
}

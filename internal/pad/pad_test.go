package pad

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkpad/internal/canvas"
	"inkpad/internal/config"
	"inkpad/internal/platform"
	"inkpad/internal/platform/replay"
	"inkpad/internal/stylus"
	"inkpad/pkg/ink"
)

const drawSelectCopyPaste = `
width = 200
height = 150

[[step]]
kind = "pressed"
device = "pen"
x = 20.0
y = 20.0
pressure = 0.5

[[step]]
kind = "moved"
device = "pen"
x = 20.0
y = 20.0
to = [60.0, 60.0]
repeat = 5

[[step]]
kind = "released"
device = "pen"
x = 60.0
y = 60.0

[[step]]
kind = "key"
key = "lasso"

[[step]]
kind = "pressed"
x = 5.0
y = 5.0

[[step]]
kind = "moved"
x = 100.0
y = 5.0

[[step]]
kind = "moved"
x = 100.0
y = 100.0

[[step]]
kind = "moved"
x = 5.0
y = 100.0

[[step]]
kind = "released"
x = 5.0
y = 100.0

[[step]]
kind = "key"
key = "copy"

[[step]]
kind = "key"
key = "paste"
`

func newPad(t *testing.T, w, h int) *Pad {
	t.Helper()
	cfg := config.Default()
	cfg.Canvas.Width, cfg.Canvas.Height = w, h
	p := New(Options{Config: cfg})
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func inkNear(img image.Image, x, y int) bool {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			c := color.RGBAModel.Convert(img.At(x+dx, y+dy)).(color.RGBA)
			if c.R < 0xC0 {
				return true
			}
		}
	}
	return false
}

func TestRunReplaysDrawSelectCopyPaste(t *testing.T) {
	script, err := replay.ParseScript([]byte(drawSelectCopyPaste))
	require.NoError(t, err)
	win, err := replay.New(script, 2).CreateWindow(platform.WindowConfig{Title: "test"})
	require.NoError(t, err)

	p := newPad(t, 10, 10)
	frames, err := Run(context.Background(), win, p, 0)
	require.NoError(t, err)
	assert.Positive(t, frames)

	w, h := p.Model().Size()
	assert.Equal(t, 200.0, w)
	assert.Equal(t, 150.0, h)

	assert.Equal(t, 2, p.Model().Len())
	assert.Equal(t, 2, p.Model().StrokeCount())
	assert.Equal(t, canvas.ModeLasso, p.Model().Mode())

	sel, ok := p.Model().SelectionRect()
	require.True(t, ok, "pasted strokes are selected")
	assert.Equal(t, ink.Pt(5, 100), sel.TopLeft())
	assert.Equal(t, 1, p.Model().SelectedCount())

	last := win.(*replay.Window).LastFrame()
	require.NotNil(t, last)
	assert.True(t, inkNear(last, 40, 40))
	assert.False(t, inkNear(last, 150, 20))
}

func TestRunStopsAtFrameLimit(t *testing.T) {
	script := &replay.Script{Width: 50, Height: 50}
	for i := 0; i < 10; i++ {
		script.Steps = append(script.Steps, replay.Step{Kind: "hovered", X: 1, Y: 1})
	}
	win, err := replay.New(script, 1).CreateWindow(platform.WindowConfig{})
	require.NoError(t, err)

	frames, err := Run(context.Background(), win, newPad(t, 50, 50), 3)
	assert.ErrorIs(t, err, ErrTooManyFrames)
	assert.Equal(t, 3, frames)
}

func TestRunHonoursContext(t *testing.T) {
	win, err := replay.New(&replay.Script{}, 1).CreateWindow(platform.WindowConfig{WidthPx: 20, HeightPx: 20})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Run(ctx, win, newPad(t, 20, 20), 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCommandsAdjustPen(t *testing.T) {
	p := newPad(t, 100, 100)

	require.NoError(t, p.Command("color:#ff0000ff"))
	assert.Equal(t, color.RGBA{R: 0xFF, A: 0xFF}, p.Attributes().Color)

	for i := 0; i < 10; i++ {
		require.NoError(t, p.Command(CmdWiderPen))
	}
	assert.Equal(t, float64(maxPenWidth), p.Attributes().Width)
	for i := 0; i < 20; i++ {
		require.NoError(t, p.Command(CmdNarrowPen))
	}
	assert.Equal(t, minPenWidth, p.Attributes().Width)

	require.NoError(t, p.Command(CmdTip))
	assert.Equal(t, ink.PenTipRectangle, p.Attributes().Tip)
	require.NoError(t, p.Command(CmdHighlight))
	assert.True(t, p.Attributes().Highlighter)

	assert.Error(t, p.Command("color:nope"))
	assert.ErrorIs(t, p.Command("fly"), ErrUnknownCommand)
}

func TestPasteFromEmptyClipboardIsQuiet(t *testing.T) {
	p := newPad(t, 100, 100)
	assert.NoError(t, p.Command(CmdPaste))
	assert.Equal(t, 0, p.Model().Len())
	assert.NoError(t, p.Command(CmdCopy), "copy without a selection does nothing")
}

func TestPenAttributesAreRememberedPerStylus(t *testing.T) {
	p := newPad(t, 100, 100)
	pen := func(kind platform.PointerKind, id int32) {
		p.HandlePointer(&platform.PointerEvent{
			Kind:     kind,
			Device:   platform.DevicePen,
			Position: ink.Pt(10, 10),
			Usages:   platform.UsageMap{stylus.WirelessID: id},
		})
	}

	pen(platform.PointerHovered, 7)
	require.NoError(t, p.Command("color:#00ff00ff"))
	assert.True(t, p.Styli().Known(7))

	pen(platform.PointerHovered, 9)
	require.NoError(t, p.Command("color:#0000ffff"))

	pen(platform.PointerHovered, 7)
	assert.Equal(t, color.RGBA{G: 0xFF, A: 0xFF}, p.Attributes().Color)
	pen(platform.PointerHovered, 9)
	assert.Equal(t, color.RGBA{B: 0xFF, A: 0xFF}, p.Attributes().Color)
}

func TestEscapeClearsSelectionAndToolbar(t *testing.T) {
	p := newPad(t, 100, 100)
	p.Model().CommitStrokes([]*ink.Stroke{mustLine(t, 10, 10, 30, 30)})
	p.Model().EnterMode(canvas.ModeLasso)
	p.Model().SelectWithPolyLine([]ink.Point{ink.Pt(0, 0), ink.Pt(50, 0), ink.Pt(50, 50), ink.Pt(0, 50)})
	p.Model().SetContextToolbarVisible(true)

	require.NoError(t, p.Command(CmdEscape))
	_, ok := p.Model().SelectionRect()
	assert.False(t, ok)
	assert.False(t, p.Model().ContextToolbarVisible())
}

func TestExportPNGHasCanvasSize(t *testing.T) {
	p := newPad(t, 80, 60)
	p.Model().CommitStrokes([]*ink.Stroke{mustLine(t, 10, 30, 70, 30)})

	var buf bytes.Buffer
	require.NoError(t, p.ExportPNG(&buf))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(80, 60), img.Bounds().Size())
	assert.True(t, inkNear(img, 40, 30))
}

func TestSavePNGWritesDrawingToFile(t *testing.T) {
	p := newPad(t, 80, 60)
	p.Model().CommitStrokes([]*ink.Stroke{mustLine(t, 40, 5, 40, 55)})

	path := filepath.Join(t.TempDir(), "out.png")
	require.NoError(t, p.SavePNG(path))
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(80, 60), img.Bounds().Size())
	assert.True(t, inkNear(img, 40, 30))

	assert.Error(t, p.SavePNG(filepath.Join(t.TempDir(), "missing", "out.png")))
}

func mustLine(t *testing.T, x0, y0, x1, y1 float64) *ink.Stroke {
	t.Helper()
	s, err := ink.NewStroke([]ink.InkPoint{{Point: ink.Pt(x0, y0)}, {Point: ink.Pt(x1, y1)}}, ink.DefaultDrawingAttributes())
	require.NoError(t, err)
	return s
}

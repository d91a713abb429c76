package app

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"inkpad/internal/canvas"
	"inkpad/internal/config"
	"inkpad/internal/pad"
	"inkpad/internal/platform"
	"inkpad/internal/render"
	"inkpad/internal/ui"
	"inkpad/pkg/ink"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/sqweek/dialog"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

type fontKey struct {
	size  int
	bold  bool
	scale int
}

type fontBank struct {
	regular *opentype.Font
	bold    *opentype.Font
	cache   map[fontKey]font.Face
}

func newFontBank() fontBank {
	bank := fontBank{cache: map[fontKey]font.Face{}}
	reg, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return bank
	}
	bol, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return bank
	}
	bank.regular = reg
	bank.bold = bol
	return bank
}

// Device ids keep touch pointers apart from the mouse in events.
const (
	mouseDeviceID = 1
	touchDeviceID = 2
)

var paletteKeys = []ebiten.Key{ebiten.Key1, ebiten.Key2, ebiten.Key3, ebiten.Key4, ebiten.Key5, ebiten.Key6}

type App struct {
	cfg   config.Config
	theme ui.Theme
	pad   *pad.Pad

	frameBuffer *render.FrameBuffer
	canvas      *ebiten.Image
	layout      ui.Layout

	fonts      fontBank
	uiScales   []float32
	uiScaleIdx int
	status     string
	started    time.Time

	mouse         *platform.PointerTracker
	touch         *platform.PointerTracker
	touchID       ebiten.TouchID
	touchActive   bool
	touchIDs      []ebiten.TouchID
	mouseCaptured bool
	touchCaptured bool

	palette []string

	screenW int
	screenH int
}

func New(cfg config.Config) *App {
	return &App{
		cfg:      cfg,
		theme:    ui.DefaultTheme(),
		pad:      pad.New(pad.Options{Config: cfg, Clipboard: systemClipboard{}}),
		fonts:    newFontBank(),
		uiScales: []float32{1.0, 1.25, 1.5, 2.0},
		status:   "Ready",
		started:  time.Now(),
		mouse:    platform.NewPointerTracker(platform.DeviceMouse, mouseDeviceID),
		touch:    platform.NewPointerTracker(platform.DeviceTouch, touchDeviceID),
		palette:  []string{"#000000ff", "#0057b8ff", "#a31515ff", "#117a37ff", "#7a2db8ff", "#e67e22ff"},
	}
}

func (a *App) Run() error {
	defer a.pad.Close()
	chrome := a.theme.ToolbarHeightDp + a.theme.StatusHeightDp
	ebiten.SetWindowTitle("inkpad")
	ebiten.SetWindowSize(a.cfg.Canvas.Width, a.cfg.Canvas.Height+chrome)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSizeLimits(640, 400, -1, -1)
	if err := ebiten.RunGame(a); err != nil {
		return fmt.Errorf("run game loop: %w", err)
	}
	return nil
}

func (a *App) Update() error {
	ctrl := ebiten.IsKeyPressed(ebiten.KeyControl) || ebiten.IsKeyPressed(ebiten.KeyMeta)
	shift := ebiten.IsKeyPressed(ebiten.KeyShift)
	if ctrl && inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}
	a.handleKeys(ctrl, shift)

	mx, my := ebiten.CursorPosition()
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		if act, ok := a.layout.ButtonAt(mx, my); ok {
			a.invokeAction(act)
			a.mouseCaptured = true
		}
	}
	if a.mouseCaptured {
		if !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
			a.mouseCaptured = false
		}
	} else {
		a.feed(a.mouse, platform.PointerSample{
			Position:  a.layout.ToCanvas(float64(mx), float64(my)),
			Inside:    a.layout.InCanvas(mx, my),
			Left:      ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft),
			Right:     ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight),
			Focused:   ebiten.IsFocused(),
			Pressure:  0.5,
			Timestamp: a.timestamp(),
		})
	}
	a.updateTouch()
	return nil
}

// updateTouch follows the first finger down until it lifts. Further fingers
// are ignored.
func (a *App) updateTouch() {
	if !a.touchActive {
		a.touchIDs = inpututil.AppendJustPressedTouchIDs(a.touchIDs[:0])
		if len(a.touchIDs) == 0 {
			return
		}
		a.touchID, a.touchActive = a.touchIDs[0], true
		x, y := ebiten.TouchPosition(a.touchID)
		if act, ok := a.layout.ButtonAt(x, y); ok {
			a.invokeAction(act)
			a.touchCaptured = true
		}
	}

	released := inpututil.IsTouchJustReleased(a.touchID)
	var x, y int
	if released {
		x, y = inpututil.TouchPositionInPreviousTick(a.touchID)
		a.touchActive = false
	} else {
		x, y = ebiten.TouchPosition(a.touchID)
	}
	if a.touchCaptured {
		a.touchCaptured = !released
		return
	}
	a.feed(a.touch, platform.PointerSample{
		Position:  a.layout.ToCanvas(float64(x), float64(y)),
		Inside:    a.layout.InCanvas(x, y),
		Left:      !released,
		Focused:   ebiten.IsFocused(),
		Pressure:  1,
		Timestamp: a.timestamp(),
	})
}

func (a *App) feed(t *platform.PointerTracker, s platform.PointerSample) {
	for _, ev := range t.Update(s) {
		a.pad.HandlePointer(ev)
	}
}

func (a *App) timestamp() uint64 {
	return uint64(time.Since(a.started).Milliseconds())
}

func (a *App) handleKeys(ctrl, shift bool) {
	switch {
	case ctrl && shift && inpututil.IsKeyJustPressed(ebiten.KeyC):
		a.invokeAction(ui.ActionCopyImage)
	case ctrl && inpututil.IsKeyJustPressed(ebiten.KeyC):
		a.invokeAction(ui.ActionCopy)
	case ctrl && inpututil.IsKeyJustPressed(ebiten.KeyX):
		a.invokeAction(ui.ActionCut)
	case ctrl && inpututil.IsKeyJustPressed(ebiten.KeyV):
		a.invokeAction(ui.ActionPaste)
	case ctrl && inpututil.IsKeyJustPressed(ebiten.KeyE):
		a.invokeAction(ui.ActionExport)
	case ctrl && shift && inpututil.IsKeyJustPressed(ebiten.KeyDelete):
		a.invokeAction(ui.ActionEraseAll)
	case ctrl && (inpututil.IsKeyJustPressed(ebiten.KeyEqual) || inpututil.IsKeyJustPressed(ebiten.KeyKPAdd)):
		a.bumpUIScale(1)
	case ctrl && (inpututil.IsKeyJustPressed(ebiten.KeyMinus) || inpututil.IsKeyJustPressed(ebiten.KeyKPSubtract)):
		a.bumpUIScale(-1)
	case ctrl:
		// remaining keys are plain shortcuts
	case inpututil.IsKeyJustPressed(ebiten.KeyDelete), inpututil.IsKeyJustPressed(ebiten.KeyBackspace):
		a.invokeAction(ui.ActionDelete)
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		a.command(pad.CmdEscape, "Selection cleared")
	case inpututil.IsKeyJustPressed(ebiten.KeyP):
		a.invokeAction(ui.ActionPen)
	case inpututil.IsKeyJustPressed(ebiten.KeyE):
		a.invokeAction(ui.ActionEraser)
	case inpututil.IsKeyJustPressed(ebiten.KeyL):
		a.invokeAction(ui.ActionLasso)
	case inpututil.IsKeyJustPressed(ebiten.KeyBracketRight):
		a.command(pad.CmdWiderPen, "")
	case inpututil.IsKeyJustPressed(ebiten.KeyBracketLeft):
		a.command(pad.CmdNarrowPen, "")
	case inpututil.IsKeyJustPressed(ebiten.KeyH):
		a.command(pad.CmdHighlight, "")
	case inpututil.IsKeyJustPressed(ebiten.KeyT):
		a.command(pad.CmdTip, "")
	default:
		for i, k := range paletteKeys {
			if i < len(a.palette) && inpututil.IsKeyJustPressed(k) {
				a.command("color:"+a.palette[i], "")
				return
			}
		}
	}
}

func (a *App) invokeAction(act ui.Action) {
	switch act {
	case ui.ActionPen:
		a.command(pad.CmdPen, "Pen")
	case ui.ActionEraser:
		a.command(pad.CmdEraser, "Eraser")
	case ui.ActionLasso:
		a.command(pad.CmdLasso, "Lasso select")
	case ui.ActionCopy:
		a.command(pad.CmdCopy, "Copied selection")
	case ui.ActionCut:
		a.command(pad.CmdCut, "Cut selection")
	case ui.ActionPaste:
		a.command(pad.CmdPaste, "Pasted")
	case ui.ActionDelete:
		a.command(pad.CmdDelete, "Deleted selection")
	case ui.ActionEraseAll:
		a.command(pad.CmdEraseAll, "Canvas cleared")
	case ui.ActionExport:
		if err := a.exportPNG(); err != nil {
			a.status = "Export failed: " + err.Error()
			dialog.Message("%s", err.Error()).Title("Export failed").Error()
		}
	case ui.ActionCopyImage:
		if err := copyImage(a.pad); err != nil {
			a.status = "Copy image failed: " + err.Error()
			return
		}
		a.status = "Copied drawing as image"
	}
}

func (a *App) command(name, okStatus string) {
	if err := a.pad.Command(name); err != nil {
		a.status = fmt.Sprintf("%s failed: %v", name, err)
		ink.Logger().Warn("app: command failed", "name", name, "err", err)
		return
	}
	if okStatus != "" {
		a.status = okStatus
	}
}

func (a *App) exportPNG() error {
	path, err := dialog.File().Filter("PNG image", "png").Title("Export PNG").Save()
	if errors.Is(err, dialog.ErrCancelled) {
		a.status = "Export cancelled"
		return nil
	}
	if err != nil {
		return err
	}
	path = filepath.Clean(path)
	if !strings.EqualFold(filepath.Ext(path), ".png") {
		path += ".png"
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := a.pad.ExportPNG(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	a.status = "Exported " + filepath.Base(path)
	return nil
}

func (a *App) bumpUIScale(delta int) {
	next := a.uiScaleIdx + delta
	if next < 0 || next >= len(a.uiScales) {
		return
	}
	a.uiScaleIdx = next
	a.status = fmt.Sprintf("UI scale %.0f%%", a.uiScales[a.uiScaleIdx]*100)
}

func (a *App) uiState() ui.State {
	m := a.pad.Model()
	sel, hasSel := m.SelectionRect()
	mx, my := ebiten.CursorPosition()
	return ui.State{
		Mode:           m.Mode(),
		HasSelection:   hasSel,
		Selection:      sel,
		ContextToolbar: m.ContextToolbarVisible(),
		HoverX:         mx,
		HoverY:         my,
	}
}

func (a *App) Draw(screen *ebiten.Image) {
	w, h := screen.Bounds().Dx(), screen.Bounds().Dy()
	if a.frameBuffer == nil || a.frameBuffer.W != w || a.frameBuffer.H != h {
		a.frameBuffer = render.NewFrameBuffer(w, h)
		a.canvas = ebiten.NewImage(w, h)
	}

	labelFace := a.uiFace(12, false)
	activeFace := a.uiFace(12, true)
	statusFace := a.uiFace(11, false)
	measure := func(s string) int { return a.measureString(activeFace, s) }

	st := a.uiState()
	scale := a.uiScales[a.uiScaleIdx]
	layout := ui.DrawShell(a.frameBuffer, a.theme, scale, st, measure)
	a.layout = layout

	a.pad.Resize(layout.CanvasW, layout.CanvasH)
	a.frameBuffer.DrawImage(a.pad.Frame(), layout.CanvasX, layout.CanvasY)
	ui.DrawContextToolbar(a.frameBuffer, a.theme, layout, st)

	a.canvas.WritePixels(a.frameBuffer.Pixels)
	screen.DrawImage(a.canvas, nil)

	a.drawEraserCursor(screen, st)
	a.drawButtonLabels(screen, layout.Buttons, labelFace, activeFace)
	a.drawButtonLabels(screen, layout.Context, labelFace, activeFace)

	m := a.pad.Model()
	attrs := a.pad.Attributes()
	pen := fmt.Sprintf("#%02x%02x%02x %.1fpx %s", attrs.Color.R, attrs.Color.G, attrs.Color.B, attrs.Width, attrs.Tip)
	if attrs.Highlighter {
		pen += " highlighter"
	}
	statusLeft := fmt.Sprintf("[ %s ] [ Strokes %d ] [ Selected %d ] [ Pen %s ]", m.Mode(), m.StrokeCount(), m.SelectedCount(), pen)
	baseline := layout.StatusBar + layout.StatusH - int(8*scale)
	text.Draw(screen, statusLeft, statusFace, 12, baseline, a.theme.StatusText)
	text.Draw(screen, a.status, statusFace, max(w/2, 12+a.measureString(statusFace, statusLeft)+24), baseline, a.theme.StatusText)
}

// drawEraserCursor outlines the eraser footprint under the pointer.
func (a *App) drawEraserCursor(screen *ebiten.Image, st ui.State) {
	if st.Mode != canvas.ModeErasing || !a.layout.InCanvas(st.HoverX, st.HoverY) {
		return
	}
	half := a.pad.Session().EraserSize() / 2
	x0, y0 := float64(st.HoverX)-half, float64(st.HoverY)-half
	x1, y1 := x0+half*2, y0+half*2
	c := color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xFF}
	ebitenutil.DrawLine(screen, x0, y0, x1, y0, c)
	ebitenutil.DrawLine(screen, x1, y0, x1, y1, c)
	ebitenutil.DrawLine(screen, x1, y1, x0, y1, c)
	ebitenutil.DrawLine(screen, x0, y1, x0, y0, c)
}

func (a *App) drawButtonLabels(screen *ebiten.Image, buttons []ui.Button, face, activeFace font.Face) {
	for _, b := range buttons {
		f := face
		if b.Active {
			f = activeFace
		}
		clr := a.theme.Label
		if !b.Enabled {
			clr = a.theme.LabelDisabled
		}
		tw := a.measureString(f, b.Label)
		ascent := f.Metrics().Ascent.Ceil()
		x := b.X + (b.W-tw)/2
		y := b.Y + (b.H+ascent)/2 - 1
		text.Draw(screen, b.Label, f, x, y, clr)
	}
}

func (a *App) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	a.screenW = max(outsideWidth, 1)
	a.screenH = max(outsideHeight, 1)
	return a.screenW, a.screenH
}

func (a *App) measureString(face font.Face, s string) int {
	if face == nil || s == "" {
		return 0
	}
	adv := font.MeasureString(face, s)
	px := (int(adv) + 32) >> 6
	if px < 0 {
		px = 0
	}
	return px
}

// uiFace returns a cached face for the UI, scaling by current UI scale.
func (a *App) uiFace(size int, bold bool) font.Face {
	scale := a.uiScales[a.uiScaleIdx]
	key := fontKey{size: size, bold: bold, scale: int(math.Round(float64(scale * 1000)))}
	if f, ok := a.fonts.cache[key]; ok {
		return f
	}
	base := a.fonts.regular
	if bold {
		base = a.fonts.bold
	}
	if base == nil {
		return basicfont.Face7x13
	}
	opts := &opentype.FaceOptions{Size: float64(size) * float64(scale), DPI: 72, Hinting: font.HintingFull}
	face, err := opentype.NewFace(base, opts)
	if err != nil {
		return basicfont.Face7x13
	}
	a.fonts.cache[key] = face
	return face
}

// Package pad wires the canvas model, input session, dry-ink synchronizer
// and renderer into one drawing surface driven by platform events.
package pad

import (
	"errors"
	"fmt"
	"image"
	"io"
	"strconv"
	"strings"

	"inkpad/internal/canvas"
	"inkpad/internal/config"
	"inkpad/internal/dry"
	"inkpad/internal/platform"
	"inkpad/internal/render"
	"inkpad/internal/session"
	"inkpad/internal/stylus"
	"inkpad/pkg/ink"
)

// Commands accepted by Command. Key steps in replay scripts use the same names.
const (
	CmdPen       = "pen"
	CmdEraser    = "eraser"
	CmdLasso     = "lasso"
	CmdCopy      = "copy"
	CmdCut       = "cut"
	CmdPaste     = "paste"
	CmdDelete    = "delete"
	CmdEraseAll  = "erase_all"
	CmdEscape    = "escape"
	CmdWiderPen  = "width+"
	CmdNarrowPen = "width-"
	CmdHighlight = "highlighter"
	CmdTip       = "tip"

	// colorPrefix selects a pen color, as in "color:#ff0000ff".
	colorPrefix = "color:"
)

const (
	minPenWidth = 0.5
	maxPenWidth = 64
)

var ErrUnknownCommand = errors.New("pad: unknown command")

type Options struct {
	Config    config.Config
	Clipboard ink.Clipboard
}

// Pad is one drawing surface. It is driven from a single goroutine.
type Pad struct {
	model    *canvas.Model
	live     *session.LiveLayer
	dry      *dry.Synchronizer
	session  *session.Session
	styli    *stylus.Registry
	renderer *render.Renderer

	lastPos ink.Point
	lastPen *platform.PointerEvent
}

func New(opts Options) *Pad {
	cfg := opts.Config
	w, h := cfg.Canvas.Width, cfg.Canvas.Height
	live := session.NewLiveLayer(cfg.DrawingAttributes())
	sync := dry.New(live, cfg.Dry.Delay)
	model := canvas.New(canvas.Options{
		Width:     float64(w),
		Height:    float64(h),
		Clipboard: opts.Clipboard,
		Presenter: live,
		Dry:       sync,
		Compress:  cfg.Clipboard.Compress,
	})
	styli := stylus.NewRegistry()
	return &Pad{
		model:    model,
		live:     live,
		dry:      sync,
		session:  session.New(model, sync, live, styli, session.Options{EraserSize: cfg.Eraser.Size}),
		styli:    styli,
		renderer: render.NewRenderer(w, h),
		lastPos:  ink.Pt(canvas.PasteMarginX, canvas.PasteMarginX),
	}
}

func (p *Pad) Model() *canvas.Model              { return p.model }
func (p *Pad) Session() *session.Session         { return p.session }
func (p *Pad) Live() *session.LiveLayer          { return p.live }
func (p *Pad) Dry() *dry.Synchronizer            { return p.dry }
func (p *Pad) Styli() *stylus.Registry           { return p.styli }
func (p *Pad) Renderer() *render.Renderer        { return p.renderer }
func (p *Pad) LastPosition() ink.Point           { return p.lastPos }
func (p *Pad) Close() error                      { return p.renderer.Close() }
func (p *Pad) Attributes() ink.DrawingAttributes { return p.live.Attributes() }

// Resize changes the drawing surface. Strokes keep their coordinates.
func (p *Pad) Resize(w, h int) {
	cw, ch := p.model.Size()
	if int(cw) == w && int(ch) == h {
		return
	}
	p.model.SetSize(float64(w), float64(h))
	if err := p.renderer.Resize(w, h); err != nil {
		ink.Logger().Warn("pad: resize renderer", "err", err)
	}
}

// HandleEvent applies one platform event and reports whether the window asked
// to close.
func (p *Pad) HandleEvent(ev platform.Event) (closed bool, err error) {
	switch ev.Type {
	case platform.EventClose:
		return true, nil
	case platform.EventResize:
		p.Resize(ev.Width, ev.Height)
	case platform.EventKeyDown:
		return false, p.Command(ev.Key)
	case platform.EventPointer:
		p.HandlePointer(ev.Pointer)
	}
	return false, nil
}

func (p *Pad) HandlePointer(ev *platform.PointerEvent) {
	if ev == nil {
		return
	}
	if ev.Kind != platform.PointerExited && ev.Kind != platform.PointerLost {
		p.lastPos = ev.Position
	}
	if ev.Device == platform.DevicePen && ev.Usages != nil {
		p.lastPen = ev
	}
	p.session.Handle(ev)
}

// SetAttributes changes the pen for the next stroke and remembers it for the
// stylus that was last seen.
func (p *Pad) SetAttributes(a ink.DrawingAttributes) {
	p.live.SetAttributes(a)
	if p.lastPen != nil {
		p.session.RememberStylus(p.lastPen)
	}
}

// Command runs a named toolbar or keyboard command. Pasting from an empty
// clipboard is not an error.
func (p *Pad) Command(name string) error {
	name = strings.TrimSpace(strings.ToLower(name))
	ink.Logger().Debug("pad: command", "name", name)
	switch name {
	case CmdPen:
		p.model.EnterMode(canvas.ModeDrawing)
	case CmdEraser:
		p.model.EnterMode(canvas.ModeErasing)
	case CmdLasso:
		p.model.EnterMode(canvas.ModeLasso)
	case CmdCopy:
		if p.model.SelectedCount() == 0 {
			return nil
		}
		return p.model.Copy()
	case CmdCut:
		if p.model.SelectedCount() == 0 {
			return nil
		}
		return p.model.Cut()
	case CmdPaste:
		_, err := p.model.Paste(p.lastPos)
		return canvas.IgnoreEmptyClipboard(err)
	case CmdDelete:
		p.model.Delete()
	case CmdEraseAll:
		p.model.EraseAll()
	case CmdEscape:
		p.model.SetContextToolbarVisible(false)
		p.model.ClearSelection()
	case CmdWiderPen, CmdNarrowPen:
		a := p.live.Attributes()
		if name == CmdWiderPen {
			a.Width *= 2
		} else {
			a.Width /= 2
		}
		a.Width = min(max(a.Width, minPenWidth), maxPenWidth)
		p.SetAttributes(a)
	case CmdHighlight:
		a := p.live.Attributes()
		a.Highlighter = !a.Highlighter
		p.SetAttributes(a)
	case CmdTip:
		a := p.live.Attributes()
		if a.Tip == ink.PenTipCircle {
			a.Tip = ink.PenTipRectangle
		} else {
			a.Tip = ink.PenTipCircle
		}
		p.SetAttributes(a)
	default:
		if hex, ok := strings.CutPrefix(name, colorPrefix); ok {
			c, err := config.ParseColor(hex)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			a := p.live.Attributes()
			a.Color = c
			p.SetAttributes(a)
			return nil
		}
		return fmt.Errorf("%w: %s", ErrUnknownCommand, strconv.Quote(name))
	}
	return nil
}

// Frame renders the committed ink and the live layer on top. Each call counts
// as one presented frame for the dry synchronizer.
func (p *Pad) Frame() image.Image {
	return p.renderer.Render(p.model, p.live)
}

// ExportPNG writes the current drawing as PNG without overlays that belong to
// the gesture in progress.
func (p *Pad) ExportPNG(w io.Writer) error {
	r := p.exportRenderer()
	defer r.Close()
	if err := r.EncodePNG(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// SavePNG is ExportPNG to a file.
func (p *Pad) SavePNG(path string) error {
	r := p.exportRenderer()
	defer r.Close()
	if err := r.SavePNG(path); err != nil {
		return fmt.Errorf("save png %s: %w", path, err)
	}
	return nil
}

func (p *Pad) exportRenderer() *render.Renderer {
	r := render.NewRenderer(p.renderer.Size())
	r.BeginFrame()
	for _, c := range p.model.Containers() {
		for _, s := range c.GetStrokes() {
			r.DrawStroke(s, false)
		}
	}
	return r
}

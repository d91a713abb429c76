package canvas

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"inkpad/pkg/ink"
)

type Mode int

const (
	ModeDrawing Mode = iota
	ModeErasing
	ModeLasso
)

func (m Mode) String() string {
	switch m {
	case ModeErasing:
		return "erasing"
	case ModeLasso:
		return "lasso"
	default:
		return "drawing"
	}
}

// ProcessingMode tells the live ink presenter what to do with raw input.
type ProcessingMode int

const (
	// ProcessingModeInking lets the presenter turn input into live strokes.
	ProcessingModeInking ProcessingMode = iota
	// ProcessingModeNone passes input through untouched.
	ProcessingModeNone
)

type Presenter interface {
	SetProcessingMode(ProcessingMode)
}

// DryTicker is driven once per drawn frame.
type DryTicker interface {
	Rendered()
	Tick() bool
}

// Drawer receives one frame of canvas content.
type Drawer interface {
	DrawStroke(s *ink.Stroke, selected bool)
	DrawSelection(r ink.Rect)
	DrawLasso(pts []ink.Point)
	DrawHotRect(r ink.Rect)
}

// PasteMarginX keeps pasted content off the right edge.
const PasteMarginX = 5

type Options struct {
	Width     float64
	Height    float64
	Clipboard ink.Clipboard
	Presenter Presenter
	Dry       DryTicker
	Compress  bool
}

// Model owns the drawing: an ordered container list (later is on top), the
// tool mode and the current selection.
type Model struct {
	mu sync.RWMutex

	containers []*ink.Container
	mode       Mode
	selection  *ink.Selection
	selRect    ink.Rect
	hasSel     bool
	lasso      []ink.Point
	hot        ink.Rect
	hasHot     bool

	width          float64
	height         float64
	toolbarVisible bool
	hasPasted      bool

	clipboard ink.Clipboard
	presenter Presenter
	dry       DryTicker
	encode    ink.EncodeOptions
}

func New(opts Options) *Model {
	cb := opts.Clipboard
	if cb == nil {
		cb = &ink.MemoryClipboard{}
	}
	m := &Model{
		selection: ink.NewSelection(),
		selRect:   ink.Empty,
		hot:       ink.Empty,
		width:     opts.Width,
		height:    opts.Height,
		clipboard: cb,
		presenter: opts.Presenter,
		dry:       opts.Dry,
		encode:    ink.EncodeOptions{Compression: opts.Compress},
	}
	if m.presenter != nil {
		m.presenter.SetProcessingMode(ProcessingModeInking)
	}
	return m
}

func (m *Model) Mode() Mode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.mode
}

// EnterMode switches the tool. Erasing and Lasso take raw input away from the
// presenter; Drawing hands it back. Entering Lasso drops the current selection
// unless the last action was a paste.
func (m *Model) EnterMode(mode Mode) {
	m.mu.Lock()
	prev := m.mode
	if prev == mode {
		m.mu.Unlock()
		return
	}
	if prev == ModeErasing {
		m.hot, m.hasHot = ink.Empty, false
	}
	if prev == ModeLasso {
		m.lasso = nil
	}
	m.mode = mode
	if mode == ModeLasso {
		if !m.hasPasted {
			m.clearSelectionLocked()
		}
		m.hasPasted = false
	}
	presenter := m.presenter
	m.mu.Unlock()

	if presenter != nil {
		switch mode {
		case ModeErasing, ModeLasso:
			presenter.SetProcessingMode(ProcessingModeNone)
		default:
			presenter.SetProcessingMode(ProcessingModeInking)
		}
	}
	ink.Logger().Info("canvas: mode change", "from", prev, "to", mode)
}

func (m *Model) Size() (float64, float64) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.width, m.height
}

func (m *Model) SetSize(w, h float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.width, m.height = w, h
}

// Bounds is the canvas area in canvas coordinates.
func (m *Model) Bounds() ink.Rect {
	w, h := m.Size()
	return ink.R(0, 0, w, h)
}

// Containers returns a snapshot of the container list.
func (m *Model) Containers() []*ink.Container {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.containers)
}

func (m *Model) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.containers)
}

func (m *Model) StrokeCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, c := range m.containers {
		n += c.Len()
	}
	return n
}

// CommitStrokes stores a finished gesture as a new container on top.
func (m *Model) CommitStrokes(strokes []*ink.Stroke) {
	c := ink.NewContainer()
	for _, s := range strokes {
		if s != nil {
			c.AddStroke(s.Clone())
		}
	}
	if c.IsEmpty() {
		return
	}
	m.mu.Lock()
	m.containers = append(m.containers, c)
	m.mu.Unlock()
	ink.Logger().Debug("canvas: committed", "strokes", c.Len())
}

// Erase runs one eraser step with hot as the hit region. Containers left
// without strokes are dropped.
func (m *Model) Erase(hot ink.Rect) bool {
	if hot.IsEmpty() {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	changed := false
	next := make([]*ink.Container, 0, len(m.containers))
	for _, c := range slices.Clone(m.containers) {
		if c.EraseWithRect(hot) {
			changed = true
		}
		if !c.IsEmpty() {
			next = append(next, c)
		}
	}
	if changed {
		m.containers = next
		m.refreshSelectionLocked()
	}
	return changed
}

func (m *Model) EraseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.containers = nil
	m.clearSelectionLocked()
	ink.Logger().Info("canvas: erased all")
}

// SelectWithPolyLine selects every stroke with a sample inside the closed
// polygon pts and returns the selection box, or Empty.
func (m *Model) SelectWithPolyLine(pts []ink.Point) ink.Rect {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selection.Clear()
	r := ink.Empty
	for _, c := range m.containers {
		r = ink.Union(r, c.SelectWithPolyLine(m.selection, pts))
	}
	m.lasso = nil
	m.hasPasted = false
	m.setSelectionLocked(r)
	ink.Logger().Debug("canvas: lasso", "points", len(pts), "selected", m.selection.Len())
	return r
}

func (m *Model) SelectionRect() (ink.Rect, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.selRect, m.hasSel
}

func (m *Model) SelectedCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.selection.Len()
}

// IsSelected reports whether stroke id is part of the current selection.
func (m *Model) IsSelected(id ink.StrokeID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.selection.Has(id)
}

func (m *Model) ClearSelection() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearSelectionLocked()
}

// MoveSelection shifts the selected strokes by delta. The move is refused as a
// whole when the selection box would leave the canvas.
func (m *Model) MoveSelection(delta ink.Point) (ink.Rect, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.hasSel {
		return ink.Empty, false
	}
	bounds := ink.R(0, 0, m.width, m.height)
	if !bounds.ContainsRect(m.selRect.Offset(delta)) {
		return m.selRect, false
	}
	r := ink.Empty
	for _, c := range m.containers {
		r = ink.Union(r, c.MoveSelected(m.selection, delta))
	}
	m.setSelectionLocked(r)
	return r, true
}

// Copy writes the selected strokes to the clipboard.
func (m *Model) Copy() error {
	m.mu.RLock()
	payload, err := m.copyLocked()
	m.mu.RUnlock()
	if err != nil {
		return err
	}
	if err := m.clipboard.WritePayload(payload); err != nil {
		return fmt.Errorf("write clipboard: %w", err)
	}
	ink.Logger().Info("canvas: copied", "bytes", len(payload))
	return nil
}

func (m *Model) copyLocked() ([]byte, error) {
	group := ink.NewContainer()
	for _, c := range m.containers {
		for _, s := range c.GetStrokes() {
			if m.selection.Has(s.ID()) {
				group.AddStroke(s)
			}
		}
	}
	return group.CopySelectedWithOptions(m.selection, m.encode)
}

// Cut is Copy followed by Delete.
func (m *Model) Cut() error {
	if err := m.Copy(); err != nil {
		return err
	}
	m.Delete()
	return nil
}

// Delete removes the selected strokes and returns how many went away.
func (m *Model) Delete() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	next := m.containers[:0]
	for _, c := range m.containers {
		n += c.DeleteSelected(m.selection)
		if !c.IsEmpty() {
			next = append(next, c)
		}
	}
	clear(m.containers[len(next):])
	m.containers = next
	m.clearSelectionLocked()
	return n
}

// Paste places the clipboard strokes as near target as the canvas allows and
// selects them.
func (m *Model) Paste(target ink.Point) (ink.Rect, error) {
	payload, err := m.clipboard.ReadPayload()
	if err != nil {
		return ink.Empty, err
	}

	info, err := ink.InspectPayload(payload)
	if err != nil {
		ink.Logger().Warn("canvas: rejected clipboard payload", "err", err)
		return ink.Empty, err
	}
	if info.StrokeCount == 0 {
		return ink.Empty, nil
	}

	sizing := ink.NewContainer()
	size, err := sizing.Paste(payload, target)
	if err != nil {
		ink.Logger().Warn("canvas: rejected clipboard payload", "err", err, "strokes", info.StrokeCount)
		return ink.Empty, err
	}

	fitted := FitPastePoint(target, size.Width, size.Height, m.Bounds())
	c := ink.NewContainer()
	used, err := c.Paste(payload, fitted)
	if err != nil {
		return ink.Empty, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.selection.Clear()
	m.containers = append(m.containers, c)
	r := c.SelectWithPolyLine(m.selection, used.Corners())
	m.setSelectionLocked(r)
	m.hasPasted = true
	ink.Logger().Info("canvas: pasted", "strokes", c.Len(), "at", fitted)
	return used, nil
}

// FitPastePoint moves target so a w by h box starting there stays inside
// bounds, never going left of or above the bounds origin.
func FitPastePoint(target ink.Point, w, h float64, bounds ink.Rect) ink.Point {
	x, y := target.X, target.Y
	if x+w > bounds.Right() {
		x = bounds.Right() - w - PasteMarginX
	}
	if y+h > bounds.Bottom() {
		y = bounds.Bottom() - h
	}
	x = max(x, bounds.X)
	y = max(y, bounds.Y)
	return ink.Pt(x, y)
}

func (m *Model) SetHotRect(r ink.Rect) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hot, m.hasHot = r, !r.IsEmpty()
}

func (m *Model) HotRect() (ink.Rect, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hot, m.hasHot
}

// SetLasso replaces the in-progress lasso shown to the user. nil hides it.
func (m *Model) SetLasso(pts []ink.Point) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lasso = slices.Clone(pts)
}

func (m *Model) ContextToolbarVisible() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.toolbarVisible
}

func (m *Model) SetContextToolbarVisible(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.toolbarVisible = v
}

// Draw renders one frame: strokes in list order, then the selection box, the
// lasso and, while erasing, the hot rect.
func (m *Model) Draw(d Drawer) {
	m.mu.RLock()
	for _, c := range m.containers {
		for _, s := range c.GetStrokes() {
			d.DrawStroke(s, m.selection.Has(s.ID()))
		}
	}
	if m.hasSel {
		d.DrawSelection(m.selRect)
	}
	if len(m.lasso) > 0 {
		d.DrawLasso(slices.Clone(m.lasso))
	}
	if m.mode == ModeErasing && m.hasHot {
		d.DrawHotRect(m.hot)
	}
	dry := m.dry
	m.mu.RUnlock()

	if dry != nil {
		dry.Rendered()
		dry.Tick()
	}
}

func (m *Model) setSelectionLocked(r ink.Rect) {
	if r.IsEmpty() {
		m.selRect, m.hasSel = ink.Empty, false
		return
	}
	m.selRect, m.hasSel = r, true
}

func (m *Model) clearSelectionLocked() {
	m.selection.Clear()
	m.setSelectionLocked(ink.Empty)
	m.hasPasted = false
}

// refreshSelectionLocked drops ids of strokes that no longer exist and
// recomputes the selection box.
func (m *Model) refreshSelectionLocked() {
	if m.selection.Len() == 0 {
		return
	}
	live := ink.NewSelection()
	for _, c := range m.containers {
		for _, s := range c.GetStrokes() {
			if m.selection.Has(s.ID()) {
				live.Add(s.ID())
			}
		}
	}
	r := ink.Empty
	for _, c := range m.containers {
		r = ink.Union(r, c.SelectedRect(live))
	}
	m.selection = live
	m.setSelectionLocked(r)
}

// IgnoreEmptyClipboard maps a paste from an empty clipboard to success.
func IgnoreEmptyClipboard(err error) error {
	if errors.Is(err, ink.ErrClipboardEmpty) {
		return nil
	}
	return err
}

package widgets

import (
	"image"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"github.com/charmbracelet/log"

	"github.com/piwi3910/SlabLayout/internal/editor"
	"github.com/piwi3910/SlabLayout/internal/model"
	"github.com/piwi3910/SlabLayout/internal/render"
)

// Editor is the part of an editing session the canvas draws and drives.
type Editor interface {
	Material() model.Material
	Shapes() []model.DrawableShape
	Highlighted() string
	PointerDown(id string, pointer model.Vector, mods editor.Modifiers)
	PointerMove(pointer model.Vector)
	PointerUp()
	PointerLeave()
}

// LayoutCanvas shows the sheet and its pieces and turns mouse input into
// editor gestures: a plain drag moves a piece, ctrl (or cmd) scales it and
// alt rotates it.
type LayoutCanvas struct {
	widget.BaseWidget

	editor  Editor
	names   map[string]string
	active  bool
	lastErr string

	// Logger receives render failures. Nil uses the default logger.
	Logger *log.Logger

	// OnCommit runs after a gesture ends.
	OnCommit func()
	// OnSecondaryTap runs on a right click over a piece.
	OnSecondaryTap func(id string, at fyne.Position)
}

var (
	_ desktop.Mouseable = (*LayoutCanvas)(nil)
	_ desktop.Hoverable = (*LayoutCanvas)(nil)
	_ fyne.Draggable    = (*LayoutCanvas)(nil)
)

func NewLayoutCanvas(ed Editor) *LayoutCanvas {
	lc := &LayoutCanvas{editor: ed}
	lc.ExtendBaseWidget(lc)
	return lc
}

// SetNames sets the labels drawn on pieces, keyed by instance id.
func (lc *LayoutCanvas) SetNames(names map[string]string) {
	lc.names = names
	lc.Refresh()
}

func (lc *LayoutCanvas) CreateRenderer() fyne.WidgetRenderer {
	r := &layoutCanvasRenderer{lc: lc}
	r.raster = canvas.NewRaster(func(w, h int) image.Image {
		img, err := render.Image(render.Scene{
			Material:    lc.editor.Material(),
			Shapes:      lc.editor.Shapes(),
			Highlighted: lc.editor.Highlighted(),
		}, w, h)
		lc.reportRenderError(err)
		return img
	})
	r.rebuild()
	return r
}

// reportRenderError logs err once until a different error or a clean frame.
func (lc *LayoutCanvas) reportRenderError(err error) {
	if err == nil {
		lc.lastErr = ""
		return
	}
	if err.Error() == lc.lastErr {
		return
	}
	lc.lastErr = err.Error()
	logger := lc.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger.Warn("layout render incomplete", "err", err)
}

// pixelScale is the number of output pixels per canvas unit.
func (lc *LayoutCanvas) pixelScale() float64 {
	if app := fyne.CurrentApp(); app != nil {
		if c := app.Driver().CanvasForObject(lc); c != nil {
			return float64(c.Scale())
		}
	}
	return 1
}

// viewport is the raster's viewport expressed in canvas units.
func (lc *LayoutCanvas) viewport() render.Viewport {
	s := lc.pixelScale()
	size := lc.Size()
	vp := render.Fit(lc.editor.Material(), float64(size.Width)*s, float64(size.Height)*s)
	return render.Viewport{Scale: vp.Scale / s, OffsetX: vp.OffsetX / s, OffsetY: vp.OffsetY / s}
}

// ToModel converts a position on the canvas into sheet millimetres.
func (lc *LayoutCanvas) ToModel(pos fyne.Position) model.Vector {
	return lc.viewport().ToModel(float64(pos.X), float64(pos.Y))
}

func modifiers(m fyne.KeyModifier) editor.Modifiers {
	return editor.Modifiers{
		Scale:  m&(fyne.KeyModifierControl|fyne.KeyModifierSuper) != 0,
		Rotate: m&fyne.KeyModifierAlt != 0,
	}
}

func (lc *LayoutCanvas) MouseDown(ev *desktop.MouseEvent) {
	p := lc.ToModel(ev.Position)
	id := render.PieceAt(lc.editor.Shapes(), p)

	if ev.Button == desktop.MouseButtonSecondary {
		if id != "" && lc.OnSecondaryTap != nil {
			lc.OnSecondaryTap(id, ev.AbsolutePosition)
		}
		return
	}
	if id == "" {
		return
	}
	lc.editor.PointerDown(id, p, modifiers(ev.Modifier))
	lc.active = true
}

func (lc *LayoutCanvas) MouseUp(*desktop.MouseEvent) {
	lc.finish(false)
}

func (lc *LayoutCanvas) MouseIn(*desktop.MouseEvent) {}

func (lc *LayoutCanvas) MouseMoved(ev *desktop.MouseEvent) {
	lc.move(ev.Position)
}

func (lc *LayoutCanvas) MouseOut() {
	lc.finish(true)
}

func (lc *LayoutCanvas) Dragged(ev *fyne.DragEvent) {
	lc.move(ev.Position)
}

func (lc *LayoutCanvas) DragEnd() {
	lc.finish(false)
}

func (lc *LayoutCanvas) move(pos fyne.Position) {
	if !lc.active {
		return
	}
	lc.editor.PointerMove(lc.ToModel(pos))
	lc.Refresh()
}

func (lc *LayoutCanvas) finish(left bool) {
	if !lc.active {
		return
	}
	lc.active = false
	if left {
		lc.editor.PointerLeave()
	} else {
		lc.editor.PointerUp()
	}
	lc.Refresh()
	if lc.OnCommit != nil {
		lc.OnCommit()
	}
}

type layoutCanvasRenderer struct {
	lc      *LayoutCanvas
	raster  *canvas.Raster
	labels  []fyne.CanvasObject
	objects []fyne.CanvasObject
}

func (r *layoutCanvasRenderer) rebuild() {
	r.labels = r.labels[:0]
	vp := r.lc.viewport()
	for _, d := range r.lc.editor.Shapes() {
		if d.Shape == nil {
			continue
		}
		name := r.lc.names[d.ID()]
		if name == "" {
			name = model.Describe(d.Shape)
		}
		text := canvas.NewText(name, color.Black)
		text.TextSize = 10
		text.Alignment = fyne.TextAlignCenter

		lo, hi := model.Bounds(d.Shape)
		if (hi.X-lo.X)*vp.Scale < float64(text.MinSize().Width) {
			continue
		}
		x, y := vp.ToScreen(d.Shape.Center())
		ts := text.MinSize()
		text.Resize(ts)
		text.Move(fyne.NewPos(float32(x)-ts.Width/2, float32(y)-ts.Height/2))
		r.labels = append(r.labels, text)
	}
	r.objects = append([]fyne.CanvasObject{r.raster}, r.labels...)
}

func (r *layoutCanvasRenderer) Layout(size fyne.Size) {
	r.raster.Resize(size)
	r.raster.Move(fyne.NewPos(0, 0))
	r.rebuild()
}

func (r *layoutCanvasRenderer) MinSize() fyne.Size {
	return fyne.NewSize(400, 300)
}

func (r *layoutCanvasRenderer) Refresh() {
	r.rebuild()
	r.raster.Refresh()
}

func (r *layoutCanvasRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *layoutCanvasRenderer) Destroy()                     {}

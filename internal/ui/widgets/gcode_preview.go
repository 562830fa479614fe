package widgets

import (
	"image/color"
	"math"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/piwi3910/SlabLayout/internal/gcode"
	"github.com/piwi3910/SlabLayout/internal/model"
	"github.com/piwi3910/SlabLayout/internal/render"
)

// Toolpath colors for different move types.
var (
	colorRapid   = color.NRGBA{R: 255, G: 60, B: 60, A: 200}   // Red for rapid moves
	colorFeed    = color.NRGBA{R: 30, G: 120, B: 255, A: 230}  // Blue for cutting moves
	colorPlunge  = color.NRGBA{R: 50, G: 200, B: 50, A: 220}   // Green for plunge
	colorRetract = color.NRGBA{R: 180, G: 180, B: 0, A: 180}   // Yellow for retract
	colorSheet   = color.NRGBA{R: 230, G: 210, B: 175, A: 255} // Light wood for stock
	colorOutline = color.NRGBA{R: 100, G: 130, B: 180, A: 200}
)

// arcSegmentLength is the longest straight segment used to draw an arc, in mm.
const arcSegmentLength = 5.0

// GCodePreview draws the toolpath of a program over the sheet it cuts.
// Moves are in machine coordinates (y up, origin at the sheet's lower left).
type GCodePreview struct {
	widget.BaseWidget
	moves     []gcode.Move
	material  model.Material
	shapes    []model.DrawableShape
	maxWidth  float32
	maxHeight float32
}

func NewGCodePreview(moves []gcode.Move, l model.Layout, maxW, maxH float32) *GCodePreview {
	gp := &GCodePreview{
		moves:     moves,
		material:  l.Material,
		shapes:    l.Shapes,
		maxWidth:  maxW,
		maxHeight: maxH,
	}
	gp.ExtendBaseWidget(gp)
	return gp
}

func (gp *GCodePreview) CreateRenderer() fyne.WidgetRenderer {
	r := &gcodePreviewRenderer{gp: gp}
	r.rebuild()
	return r
}

func (gp *GCodePreview) viewport() render.Viewport {
	return render.Fit(gp.material, float64(gp.maxWidth), float64(gp.maxHeight))
}

// toScreen maps a machine coordinate onto the widget.
func (gp *GCodePreview) toScreen(vp render.Viewport, x, y float64) fyne.Position {
	sx, sy := vp.ToScreen(model.V(x, gp.material.Height-y))
	return fyne.NewPos(float32(sx), float32(sy))
}

type gcodePreviewRenderer struct {
	gp      *GCodePreview
	objects []fyne.CanvasObject
}

func (r *gcodePreviewRenderer) rebuild() {
	r.objects = nil
	gp := r.gp
	if gp.material.Width <= 0 || gp.material.Height <= 0 {
		return
	}
	vp := gp.viewport()

	x0, y0 := vp.ToScreen(model.Vector{})
	bg := canvas.NewRectangle(colorSheet)
	bg.StrokeColor = color.NRGBA{R: 80, G: 80, B: 80, A: 255}
	bg.StrokeWidth = 2
	bg.Resize(fyne.NewSize(float32(gp.material.Width*vp.Scale), float32(gp.material.Height*vp.Scale)))
	bg.Move(fyne.NewPos(float32(x0), float32(y0)))
	r.objects = append(r.objects, bg)

	for _, d := range gp.shapes {
		r.drawOutline(vp, d.Shape)
	}

	for _, m := range gp.moves {
		from := gp.toScreen(vp, m.FromX, m.FromY)
		to := gp.toScreen(vp, m.ToX, m.ToY)
		xyDist := math.Hypot(m.ToX-m.FromX, m.ToY-m.FromY)

		switch m.Type {
		case gcode.MoveRapid:
			if xyDist < 0.01 {
				continue
			}
			r.drawDashed(from, to, colorRapid)
		case gcode.MoveFeed:
			if xyDist < 0.01 {
				continue
			}
			r.line(from, to, colorFeed, 2)
		case gcode.MoveArc:
			r.drawArc(vp, m)
		case gcode.MovePlunge:
			r.marker(from, colorPlunge, 4)
		case gcode.MoveRetract:
			if xyDist < 0.01 {
				r.marker(from, colorRetract, 3)
			} else {
				r.line(from, to, colorRetract, 1)
			}
		}
	}
}

func (r *gcodePreviewRenderer) line(from, to fyne.Position, col color.Color, width float32) {
	l := canvas.NewLine(col)
	l.StrokeWidth = width
	l.Position1 = from
	l.Position2 = to
	r.objects = append(r.objects, l)
}

func (r *gcodePreviewRenderer) marker(at fyne.Position, col color.Color, size float32) {
	c := canvas.NewCircle(col)
	c.Resize(fyne.NewSize(size, size))
	c.Move(fyne.NewPos(at.X-size/2, at.Y-size/2))
	r.objects = append(r.objects, c)
}

// drawDashed draws a rapid move as 6 px dashes with 4 px gaps.
func (r *gcodePreviewRenderer) drawDashed(from, to fyne.Position, col color.Color) {
	dx, dy := to.X-from.X, to.Y-from.Y
	length := float32(math.Hypot(float64(dx), float64(dy)))
	if length < 8 {
		r.line(from, to, col, 1)
		return
	}
	const dash, gap = 6, 4
	nx, ny := dx/length, dy/length
	for cursor := float32(0); cursor < length; cursor += dash + gap {
		end := min(cursor+dash, length)
		r.line(
			fyne.NewPos(from.X+nx*cursor, from.Y+ny*cursor),
			fyne.NewPos(from.X+nx*end, from.Y+ny*end),
			col, 1)
	}
}

// drawArc flattens a G2/G3 move into short feed lines.
func (r *gcodePreviewRenderer) drawArc(vp render.Viewport, m gcode.Move) {
	cx, cy := m.FromX+m.I, m.FromY+m.J
	radius := math.Hypot(m.I, m.J)
	start := math.Atan2(m.FromY-cy, m.FromX-cx)
	sweep := m.Length() / math.Max(radius, 1e-9)
	if m.Clockwise {
		sweep = -sweep
	}

	n := max(8, int(math.Ceil(math.Abs(sweep)*radius/arcSegmentLength)))
	prev := r.gp.toScreen(vp, m.FromX, m.FromY)
	for i := 1; i <= n; i++ {
		a := start + sweep*float64(i)/float64(n)
		next := r.gp.toScreen(vp, cx+radius*math.Cos(a), cy+radius*math.Sin(a))
		r.line(prev, next, colorFeed, 2)
		prev = next
	}
}

// drawOutline draws a piece's outline in layout coordinates.
func (r *gcodePreviewRenderer) drawOutline(vp render.Viewport, s model.Shape) {
	switch sh := s.(type) {
	case *model.Circle:
		x, y := vp.ToScreen(sh.Position)
		rad := float32(sh.CanonicalRadius() * vp.Scale)
		c := canvas.NewCircle(color.Transparent)
		c.StrokeColor = colorOutline
		c.StrokeWidth = 1.5
		c.Resize(fyne.NewSize(2*rad, 2*rad))
		c.Move(fyne.NewPos(float32(x)-rad, float32(y)-rad))
		r.objects = append(r.objects, c)
	case *model.Polygon:
		verts := model.TransformedVertices(sh)
		for i := range verts {
			ax, ay := vp.ToScreen(verts[i])
			bx, by := vp.ToScreen(verts[(i+1)%len(verts)])
			r.line(fyne.NewPos(float32(ax), float32(ay)), fyne.NewPos(float32(bx), float32(by)), colorOutline, 1.5)
		}
	}
}

func (r *gcodePreviewRenderer) Layout(size fyne.Size)        {}
func (r *gcodePreviewRenderer) Refresh()                     { r.rebuild() }
func (r *gcodePreviewRenderer) Destroy()                     {}
func (r *gcodePreviewRenderer) Objects() []fyne.CanvasObject { return r.objects }

func (r *gcodePreviewRenderer) MinSize() fyne.Size {
	return fyne.NewSize(r.gp.maxWidth, r.gp.maxHeight)
}

// RenderGCodePreview builds the preview of code over l's sheet with a line
// of program statistics below it.
func RenderGCodePreview(l model.Layout, code string) fyne.CanvasObject {
	moves := gcode.ParseGCode(code)
	stats := gcode.Summarize(moves)

	info := widget.NewLabel(fmtStats(stats))
	return container.NewBorder(nil, info, nil, nil, NewGCodePreview(moves, l, 700, 450))
}

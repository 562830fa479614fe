// Package render rasterizes a sheet and its placed pieces. The editor canvas
// and the PNG export both draw through it so that what is saved matches
// what was seen.
package render

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/gogpu/gg"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/piwi3910/SlabLayout/internal/model"
)

var (
	colorBackground = color.NRGBA{R: 245, G: 245, B: 245, A: 255}
	colorSheet      = color.NRGBA{R: 230, G: 210, B: 175, A: 255}
	colorSheetEdge  = color.NRGBA{R: 80, G: 80, B: 80, A: 255}
	colorHighlight  = color.NRGBA{R: 220, G: 30, B: 30, A: 255}
)

// Padding is the empty border in pixels kept around the sheet.
const Padding = 10.0

// Viewport maps sheet millimetres onto pixels. Both axes use the same scale
// and the y axis points down in both spaces.
type Viewport struct {
	Scale   float64
	OffsetX float64
	OffsetY float64
}

// Fit returns the largest viewport showing all of m inside a w x h area,
// centred, with Padding on the tighter side.
func Fit(m model.Material, w, h float64) Viewport {
	if m.Width <= 0 || m.Height <= 0 || w <= 2*Padding || h <= 2*Padding {
		return Viewport{Scale: 1}
	}
	scale := math.Min((w-2*Padding)/m.Width, (h-2*Padding)/m.Height)
	return Viewport{
		Scale:   scale,
		OffsetX: (w - m.Width*scale) / 2,
		OffsetY: (h - m.Height*scale) / 2,
	}
}

// ToScreen converts a sheet point to pixels.
func (v Viewport) ToScreen(p model.Vector) (x, y float64) {
	return v.OffsetX + p.X*v.Scale, v.OffsetY + p.Y*v.Scale
}

// ToModel converts a pixel position back to sheet millimetres.
func (v Viewport) ToModel(x, y float64) model.Vector {
	if v.Scale == 0 {
		return model.Vector{}
	}
	return model.V((x-v.OffsetX)/v.Scale, (y-v.OffsetY)/v.Scale)
}

// Scene is everything drawn in one frame.
type Scene struct {
	Material    model.Material
	Shapes      []model.DrawableShape
	Highlighted string
}

// painter wraps a drawing context and keeps the first paint error.
type painter struct {
	dc  *gg.Context
	err error
}

func (p *painter) check(op string, err error) {
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("%s: %w", op, err)
	}
}

// Image draws s into a new w x h image. Pieces are painted in slice order so
// later pieces cover earlier ones, which matches hit testing in PieceAt.
// Drawing continues past a failed paint operation; the image is returned
// together with the first error.
func Image(s Scene, w, h int) (image.Image, error) {
	if w <= 0 || h <= 0 {
		return image.NewNRGBA(image.Rect(0, 0, 0, 0)), nil
	}
	dc := gg.NewContext(w, h)
	defer dc.Close()
	p := &painter{dc: dc}

	dc.SetColor(colorBackground)
	dc.DrawRectangle(0, 0, float64(w), float64(h))
	p.check("fill background", dc.Fill())

	vp := Fit(s.Material, float64(w), float64(h))
	x0, y0 := vp.ToScreen(model.Vector{})
	sw, sh := s.Material.Width*vp.Scale, s.Material.Height*vp.Scale

	dc.SetColor(colorSheet)
	dc.DrawRectangle(x0, y0, sw, sh)
	p.check("fill sheet", dc.Fill())
	dc.SetColor(colorSheetEdge)
	dc.SetLineWidth(2)
	dc.DrawRectangle(x0, y0, sw, sh)
	p.check("stroke sheet", dc.Stroke())

	for _, d := range s.Shapes {
		p.drawPiece(vp, d, d.ID() == s.Highlighted && s.Highlighted != "")
	}
	p.check("flush", dc.FlushGPU())
	return dc.Image(), p.err
}

func (p *painter) drawPiece(vp Viewport, d model.DrawableShape, highlighted bool) {
	dc := p.dc
	if !tracePiece(dc, vp, d.Shape) {
		return
	}

	fill := ParseColor(d.FillColor, ParseColor(model.DefaultFillColor, colorSheet))
	border := ParseColor(d.BorderColor, color.NRGBA{A: 255})
	width := 1.5
	if highlighted {
		fill = Blend(fill, colorHighlight, 0.45)
		border = colorHighlight
		width = 3
	}

	dc.SetColor(fill)
	p.check("fill piece "+d.ID(), dc.FillPreserve())

	dc.SetColor(border)
	dc.SetLineWidth(width)
	if d.BorderStyle == model.BorderDotted {
		dc.SetDash(3, 3)
	} else {
		dc.SetDash()
	}
	p.check("stroke piece "+d.ID(), dc.Stroke())
	dc.SetDash()
}

// tracePiece adds the outline of s to the current path.
func tracePiece(dc *gg.Context, vp Viewport, s model.Shape) bool {
	switch sh := s.(type) {
	case *model.Circle:
		x, y := vp.ToScreen(sh.Position)
		r := sh.CanonicalRadius() * vp.Scale
		if r <= 0 {
			return false
		}
		dc.DrawCircle(x, y, r)
		return true
	case *model.Polygon:
		verts := model.TransformedVertices(sh)
		if len(verts) < 3 {
			return false
		}
		for i, v := range verts {
			x, y := vp.ToScreen(v)
			if i == 0 {
				dc.MoveTo(x, y)
			} else {
				dc.LineTo(x, y)
			}
		}
		dc.ClosePath()
		return true
	}
	return false
}

// PieceAt returns the id of the topmost piece containing p, or "".
func PieceAt(shapes []model.DrawableShape, p model.Vector) string {
	for i := len(shapes) - 1; i >= 0; i-- {
		if shapes[i].Shape != nil && model.Contains(shapes[i].Shape, p) {
			return shapes[i].ID()
		}
	}
	return ""
}

// ParseColor parses a "#rrggbb" colour, returning fallback when hex is not one.
func ParseColor(hex string, fallback color.NRGBA) color.NRGBA {
	c, err := colorful.Hex(hex)
	if err != nil {
		return fallback
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

// Blend mixes t of b into a.
func Blend(a, b color.NRGBA, t float64) color.NRGBA {
	ca := colorful.Color{R: float64(a.R) / 255, G: float64(a.G) / 255, B: float64(a.B) / 255}
	cb := colorful.Color{R: float64(b.R) / 255, G: float64(b.G) / 255, B: float64(b.B) / 255}
	r, g, bl := ca.BlendRgb(cb, t).Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: bl, A: 255}
}

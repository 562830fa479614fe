package export

import (
	"fmt"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/drawing"

	"github.com/piwi3910/SlabLayout/internal/model"
)

// DXF layer names.
const (
	LayerSheet  = "SHEET"
	LayerPieces = "PIECES"
)

// ExportDXF writes the sheet outline and every placed piece as a DXF drawing
// in millimetres. DXF is y-up, so the layout is mirrored about the sheet's
// horizontal centre line to keep the picture the right way up.
func ExportDXF(path string, l model.Layout) error {
	if err := checkMaterial(l); err != nil {
		return err
	}

	d := dxf.NewDrawing()
	flip := func(v model.Vector) model.Vector {
		return model.V(v.X, l.Material.Height-v.Y)
	}

	if _, err := d.AddLayer(LayerSheet, dxf.DefaultColor, dxf.DefaultLineType, true); err != nil {
		return fmt.Errorf("add layer %s: %w", LayerSheet, err)
	}
	sheet := []model.Vector{
		model.V(0, 0), model.V(l.Material.Width, 0),
		model.V(l.Material.Width, l.Material.Height), model.V(0, l.Material.Height),
	}
	if err := closedPolyline(d, sheet); err != nil {
		return err
	}

	if _, err := d.AddLayer(LayerPieces, dxf.DefaultColor, dxf.DefaultLineType, true); err != nil {
		return fmt.Errorf("add layer %s: %w", LayerPieces, err)
	}
	for _, piece := range l.Shapes {
		switch s := piece.Shape.(type) {
		case *model.Circle:
			c := flip(s.Position)
			if _, err := d.Circle(c.X, c.Y, 0, s.CanonicalRadius()); err != nil {
				return fmt.Errorf("piece %s: %w", s.ID, err)
			}
		case *model.Polygon:
			verts := model.TransformedVertices(s)
			for i := range verts {
				verts[i] = flip(verts[i])
			}
			if err := closedPolyline(d, verts); err != nil {
				return fmt.Errorf("piece %s: %w", s.ID, err)
			}
		}
	}

	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("save dxf %s: %w", path, err)
	}
	return nil
}

// closedPolyline draws pts as a loop of LINE entities.
func closedPolyline(d *drawing.Drawing, pts []model.Vector) error {
	for i := range pts {
		a, b := pts[i], pts[(i+1)%len(pts)]
		if _, err := d.Line(a.X, a.Y, 0, b.X, b.Y, 0); err != nil {
			return err
		}
	}
	return nil
}

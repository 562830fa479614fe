package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	m := Material{ID: "1", Name: "Chapa A", Width: 2750, Height: 1850}
	shapes := []DrawableShape{
		{Shape: NewRectangle("a", 564, 480)},
		{Shape: NewCircle("b", 600, UnitMM)},
	}
	s := Summarize(m, shapes)

	used := 564.0*480 + math.Pi*600*600
	assert.InDelta(t, used, s.UsedArea, 1e-6)
	assert.Equal(t, 2750.0*1850, s.TotalArea)
	assert.InDelta(t, used/(2750*1850), s.Utilization, 1e-12)
	assert.InDelta(t, s.Utilization*100, s.Percent(), 1e-12)
	assert.InDelta(t, used/100, s.UsedCm2(), 1e-6)
	assert.Equal(t, 2, s.PieceCount)
}

func TestSummarizeZeroArea(t *testing.T) {
	s := Summarize(Material{}, []DrawableShape{{Shape: NewRectangle("a", 1, 1)}})
	assert.Zero(t, s.Utilization)
	assert.Equal(t, 1.0, s.UsedArea)
}

func TestMaterialDimensions(t *testing.T) {
	m := NewMaterial("Chapa C", 2200, 1600)
	assert.Equal(t, "2200mm x 1600mm", m.Dimensions())
	assert.Equal(t, 2200.0*1600, m.Area())
	assert.Equal(t, V(1100, 800), m.Center())
	assert.Len(t, m.ID, 8)
}

func TestCatalogPartDefaults(t *testing.T) {
	p := NewCatalogPart("New", 2)
	assert.Equal(t, BorderLinear, p.BorderStyle)
	assert.Equal(t, "#000000", p.BorderColor)
	assert.Equal(t, "#a0c4ff", p.FillColor)
	require.IsType(t, &Polygon{}, p.Shape)
	w, h, ok := p.Shape.(*Polygon).RectSize()
	assert.True(t, ok)
	assert.Equal(t, 100.0, w)
	assert.Equal(t, 100.0, h)
}

func TestPlaceUsesInstanceID(t *testing.T) {
	p := NewCatalogPart("New", 2)
	d := p.Place("inst", V(5, 6))
	assert.Equal(t, "inst", d.ID())
	assert.Equal(t, p.ID, d.PartID)
	assert.Equal(t, V(5, 6), d.Shape.Center())
	assert.Equal(t, p.ID, p.Shape.ShapeID(), "catalog shape untouched")
}

func TestCloneShapesIndependent(t *testing.T) {
	orig := []DrawableShape{{Shape: NewRectangle("a", 10, 10)}}
	cp := CloneShapes(orig)
	cp[0].Shape.(*Polygon).Sides[0].Length = 99
	cp[0].FillColor = "#123456"
	assert.Equal(t, 10.0, orig[0].Shape.(*Polygon).Sides[0].Length)
	assert.Empty(t, orig[0].FillColor)
	assert.Nil(t, CloneShapes(nil))
}

func TestPartRequestToPart(t *testing.T) {
	r := PartRequest{Name: "disc", Quantity: 4, Shape: NewCircle("tmp", 50, UnitMM).WithPosition(V(3, 3))}
	p := r.ToPart()
	assert.Equal(t, "disc", p.Name)
	assert.Equal(t, 4, p.Quantity)
	assert.Equal(t, p.ID, p.Shape.ShapeID())
	assert.True(t, p.Shape.Center().IsZero())
}

func TestPieceNames(t *testing.T) {
	part := NewCatalogPart("Peça B", 1)
	l := NewLayout("x", NewMaterial("Chapa", 100, 100))
	l.Parts = []CatalogPart{part}
	l.Shapes = []DrawableShape{
		part.Place("i1", V(10, 10)),
		{Shape: NewCircle("i2", 5, UnitMM), PartID: "gone"},
	}

	names := l.PieceNames()
	assert.Equal(t, "Peça B", names["i1"])
	assert.Equal(t, "Ø 10 mm", names["i2"])
}

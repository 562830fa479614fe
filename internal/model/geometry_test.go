package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToCanonical(t *testing.T) {
	assert.Equal(t, 5.0, ToCanonical(5, UnitMM))
	assert.Equal(t, 50.0, ToCanonical(5, UnitCM))
	assert.Equal(t, 5000.0, ToCanonical(5, UnitM))
	assert.Equal(t, 5.0, ToCanonical(5, Unit("in")), "unknown units pass through")
}

func TestParseUnit(t *testing.T) {
	u, ok := ParseUnit(" CM ")
	assert.True(t, ok)
	assert.Equal(t, UnitCM, u)

	_, ok = ParseUnit("ft")
	assert.False(t, ok)
}

func TestVectorNormalizeZero(t *testing.T) {
	assert.Equal(t, Vector{}, Vector{}.Normalize())
	n := V(3, 4).Normalize()
	assert.InDelta(t, 0.6, n.X, 1e-12)
	assert.InDelta(t, 0.8, n.Y, 1e-12)
}

func TestVectorRotate(t *testing.T) {
	r := V(1, 0).Rotate(90)
	assert.InDelta(t, 0, r.X, 1e-12)
	assert.InDelta(t, 1, r.Y, 1e-12)
}

func TestRectangleConvention(t *testing.T) {
	p := NewRectangle("r", 564, 480)
	require.Len(t, p.Sides, 4)
	assert.Equal(t, 480.0, p.Sides[0].Length, "first side is the height")
	assert.Equal(t, 564.0, p.Sides[1].Length, "second side is the width")

	w, h, ok := p.RectSize()
	require.True(t, ok)
	assert.Equal(t, 564.0, w)
	assert.Equal(t, 480.0, h)
}

func TestLocalVerticesRectangle(t *testing.T) {
	pts := LocalVertices(NewRectangle("r", 200, 100))
	require.Len(t, pts, 4)
	assert.Equal(t, V(-100, -50), pts[0])
	assert.Equal(t, V(100, -50), pts[1])
	assert.Equal(t, V(100, 50), pts[2])
	assert.Equal(t, V(-100, 50), pts[3])
}

func TestLocalVerticesRegularPolygonRadius(t *testing.T) {
	for n := 3; n <= 12; n++ {
		if n == 4 {
			continue
		}
		p := NewRegularPolygon("p", n, 50, UnitMM)
		pts := LocalVertices(p)
		require.Len(t, pts, n)

		want := 50 / (2 * math.Sin(math.Pi/float64(n)))
		for i, v := range pts {
			assert.InDelta(t, want, v.Length(), 1e-9, "n=%d vertex %d", n, i)
			next := pts[(i+1)%n]
			assert.InDelta(t, 50, v.Distance(next), 1e-9, "n=%d edge %d", n, i)
		}
	}
}

func TestLocalVerticesFirstVertexOnTop(t *testing.T) {
	pts := LocalVertices(NewRegularPolygon("p", 6, 10, UnitMM))
	require.NotEmpty(t, pts)
	assert.InDelta(t, 0, pts[0].X, 1e-9)
	assert.Less(t, pts[0].Y, 0.0)
}

func TestLocalVerticesDegenerate(t *testing.T) {
	assert.Empty(t, LocalVertices(&Polygon{ID: "d", Sides: []Side{{Length: 10}, {Length: 10}}}))
	assert.Empty(t, LocalVertices(&Polygon{ID: "e"}))
	assert.Empty(t, LocalVertices(NewCircle("c", 10, UnitMM)))
	assert.Zero(t, Area(&Polygon{ID: "d", Sides: []Side{{Length: 10}}}))
}

func TestMixedUnitSides(t *testing.T) {
	p := &Polygon{ID: "m", Sides: []Side{
		{Length: 10, Unit: UnitCM},
		{Length: 200, Unit: UnitMM},
		{Length: 10, Unit: UnitCM},
		{Length: 0.2, Unit: UnitM},
	}}
	w, h, ok := p.RectSize()
	require.True(t, ok)
	assert.Equal(t, 200.0, w)
	assert.Equal(t, 100.0, h)
	assert.InDelta(t, 20000, Area(p), 1e-9)
}

func TestArea(t *testing.T) {
	assert.Equal(t, 564.0*480.0, Area(NewRectangle("r", 564, 480)))
	assert.InDelta(t, math.Pi*600*600, Area(NewCircle("c", 60, UnitCM)), 1e-6)

	// regular hexagon: 3*sqrt(3)/2 * L²
	assert.InDelta(t, 3*math.Sqrt(3)/2*100, Area(NewRegularPolygon("h", 6, 10, UnitMM)), 1e-9)
}

func TestTransformedVertices(t *testing.T) {
	p := NewRectangle("r", 20, 10)
	p.Position = V(100, 100)
	p.Rotation = 90

	pts := TransformedVertices(p)
	require.Len(t, pts, 4)
	// top-left (-10,-5) rotated 90° is (5,-10)
	assert.InDelta(t, 105, pts[0].X, 1e-9)
	assert.InDelta(t, 90, pts[0].Y, 1e-9)
	assert.Equal(t, 0.0, NewRectangle("r", 20, 10).Position.X, "source untouched")
}

func TestBoundsAndContains(t *testing.T) {
	c := NewCircle("c", 10, UnitMM)
	c.Position = V(50, 50)
	min, max := Bounds(c)
	assert.Equal(t, V(40, 40), min)
	assert.Equal(t, V(60, 60), max)
	assert.True(t, Contains(c, V(55, 55)))
	assert.False(t, Contains(c, V(59, 59)))

	r := NewRectangle("r", 20, 10)
	r.Position = V(0, 0)
	assert.True(t, Contains(r, V(9, 4)))
	assert.False(t, Contains(r, V(11, 0)))
}

func TestScaled(t *testing.T) {
	r := NewRectangle("r", 20, 10)
	s := Scaled(r, 2).(*Polygon)
	w, h, _ := s.RectSize()
	assert.Equal(t, 40.0, w)
	assert.Equal(t, 20.0, h)
	assert.Equal(t, 10.0, r.Sides[0].Length, "original not modified")

	c := Scaled(NewCircle("c", 3, UnitCM), 0.5).(*Circle)
	assert.Equal(t, 1.5, c.Radius)
	assert.Equal(t, UnitCM, c.Unit)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(NewRectangle("r", 1, 1)))
	assert.ErrorIs(t, Validate(NewRectangle("r", 0, 1)), ErrInvalidGeometry)
	assert.ErrorIs(t, Validate(&Polygon{ID: "p", Sides: []Side{{Length: 1}}}), ErrInvalidGeometry)
	assert.ErrorIs(t, Validate(NewCircle("c", -1, UnitMM)), ErrInvalidGeometry)
	assert.ErrorIs(t, Validate(nil), ErrInvalidShape)
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "564 x 480 mm", Describe(NewRectangle("r", 564, 480)))
	assert.Equal(t, "Ø 1200 mm", Describe(NewCircle("c", 600, UnitMM)))
	assert.Equal(t, "6 x 100 mm", Describe(NewRegularPolygon("h", 6, 10, UnitCM)))
}

func TestCloneIsDeep(t *testing.T) {
	p := NewRectangle("r", 20, 10)
	cp := p.Clone().(*Polygon)
	cp.Sides[0].Length = 99
	cp.Position = V(1, 1)
	assert.Equal(t, 10.0, p.Sides[0].Length)
	assert.True(t, p.Position.IsZero())
}

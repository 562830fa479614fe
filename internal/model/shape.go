package model

import "github.com/google/uuid"

// ShapeKind discriminates the Shape union in serialized form.
type ShapeKind string

const (
	KindPolygon ShapeKind = "polygon"
	KindCircle  ShapeKind = "circle"
)

// Shape is a closed union of *Polygon and *Circle. The unexported marker keeps
// other packages from adding variants, so a type switch over the two cases is
// exhaustive.
type Shape interface {
	ShapeID() string
	Kind() ShapeKind
	Center() Vector
	// Clone returns a deep copy.
	Clone() Shape
	// WithPosition returns a deep copy moved to p.
	WithPosition(p Vector) Shape
	// WithID returns a deep copy carrying id.
	WithID(id string) Shape

	isShape()
}

// Side is one edge's nominal length as authored by the user.
type Side struct {
	Length float64 `json:"length"`
	Unit   Unit    `json:"unit"`
}

// Canonical returns the side length in mm.
func (s Side) Canonical() float64 {
	return ToCanonical(s.Length, s.Unit)
}

// Polygon is a piece described by its side lengths. A 4-sided polygon is an
// axis-aligned rectangle whose Sides[0] is the height and Sides[1] the width;
// any other count of 3 or more sides is drawn as a regular polygon whose edge
// is the mean side length.
type Polygon struct {
	ID       string  `json:"id"`
	Position Vector  `json:"position"`
	Rotation float64 `json:"rotation"` // degrees
	Sides    []Side  `json:"sides"`
}

// NewRectangle returns a rectangle in mm using the [h, w, h, w] side order.
func NewRectangle(id string, width, height float64) *Polygon {
	return &Polygon{
		ID: id,
		Sides: []Side{
			{Length: height, Unit: UnitMM},
			{Length: width, Unit: UnitMM},
			{Length: height, Unit: UnitMM},
			{Length: width, Unit: UnitMM},
		},
	}
}

// NewRegularPolygon returns an n-sided polygon with equal sides of the given length.
func NewRegularPolygon(id string, n int, side float64, unit Unit) *Polygon {
	sides := make([]Side, n)
	for i := range sides {
		sides[i] = Side{Length: side, Unit: unit}
	}
	return &Polygon{ID: id, Sides: sides}
}

func (p *Polygon) ShapeID() string { return p.ID }
func (p *Polygon) Kind() ShapeKind { return KindPolygon }
func (p *Polygon) Center() Vector  { return p.Position }
func (p *Polygon) isShape()        {}

// IsRectangle reports whether p uses the 4-side rectangle convention.
func (p *Polygon) IsRectangle() bool {
	return len(p.Sides) == 4
}

// RectSize returns the canonical width and height of a rectangle polygon.
// ok is false for any other side count.
func (p *Polygon) RectSize() (width, height float64, ok bool) {
	if !p.IsRectangle() {
		return 0, 0, false
	}
	return p.Sides[1].Canonical(), p.Sides[0].Canonical(), true
}

// MeanSide returns the arithmetic mean of the canonical side lengths.
func (p *Polygon) MeanSide() float64 {
	if len(p.Sides) == 0 {
		return 0
	}
	var sum float64
	for _, s := range p.Sides {
		sum += s.Canonical()
	}
	return sum / float64(len(p.Sides))
}

func (p *Polygon) Clone() Shape {
	return p.clone()
}

func (p *Polygon) clone() *Polygon {
	cp := *p
	if p.Sides != nil {
		cp.Sides = make([]Side, len(p.Sides))
		copy(cp.Sides, p.Sides)
	}
	return &cp
}

func (p *Polygon) WithPosition(pos Vector) Shape {
	cp := p.clone()
	cp.Position = pos
	return cp
}

func (p *Polygon) WithID(id string) Shape {
	cp := p.clone()
	cp.ID = id
	return cp
}

// WithRotation returns a copy rotated to deg degrees.
func (p *Polygon) WithRotation(deg float64) *Polygon {
	cp := p.clone()
	cp.Rotation = deg
	return cp
}

// Circle is a round piece.
type Circle struct {
	ID       string  `json:"id"`
	Position Vector  `json:"position"`
	Radius   float64 `json:"radius"`
	Unit     Unit    `json:"unit"`
}

// NewCircle returns a circle of radius r in unit.
func NewCircle(id string, r float64, unit Unit) *Circle {
	return &Circle{ID: id, Radius: r, Unit: unit}
}

func (c *Circle) ShapeID() string { return c.ID }
func (c *Circle) Kind() ShapeKind { return KindCircle }
func (c *Circle) Center() Vector  { return c.Position }
func (c *Circle) isShape()        {}

// CanonicalRadius returns the radius in mm.
func (c *Circle) CanonicalRadius() float64 {
	return ToCanonical(c.Radius, c.Unit)
}

func (c *Circle) Clone() Shape {
	cp := *c
	return &cp
}

func (c *Circle) WithPosition(pos Vector) Shape {
	cp := *c
	cp.Position = pos
	return &cp
}

func (c *Circle) WithID(id string) Shape {
	cp := *c
	cp.ID = id
	return &cp
}

// NewID returns a short random identifier for parts, materials and placed pieces.
func NewID() string {
	return uuid.New().String()[:8]
}

package model

import (
	"fmt"
	"math"
)

// LocalVertices returns the vertices of s centered on its own origin, unrotated.
// Rectangles yield their four corners, polygons with fewer than 3 sides yield
// nothing, and circles yield nothing since they are not vertex based.
func LocalVertices(s Shape) []Vector {
	switch sh := s.(type) {
	case *Polygon:
		return polygonLocalVertices(sh)
	case *Circle:
		return nil
	default:
		return nil
	}
}

func polygonLocalVertices(p *Polygon) []Vector {
	n := len(p.Sides)
	if n < 3 {
		return nil
	}
	if n == 4 {
		w, h, _ := p.RectSize()
		hw, hh := w/2, h/2
		return []Vector{
			{X: -hw, Y: -hh}, // top-left
			{X: hw, Y: -hh},  // top-right
			{X: hw, Y: hh},   // bottom-right
			{X: -hw, Y: hh},  // bottom-left
		}
	}

	radius := Circumradius(p.MeanSide(), n)
	pts := make([]Vector, n)
	for i := 0; i < n; i++ {
		angle := 2*math.Pi*float64(i)/float64(n) - math.Pi/2
		pts[i] = Vector{X: radius * math.Cos(angle), Y: radius * math.Sin(angle)}
	}
	return pts
}

// Circumradius returns the circumradius of a regular n-gon with edge length edge.
func Circumradius(edge float64, n int) float64 {
	if n < 3 {
		return 0
	}
	return edge / (2 * math.Sin(math.Pi/float64(n)))
}

// TransformedVertices rotates the local vertices of p by its rotation and
// translates them to its position. p is not modified.
func TransformedVertices(p *Polygon) []Vector {
	local := polygonLocalVertices(p)
	if len(local) == 0 {
		return nil
	}
	out := make([]Vector, len(local))
	for i, v := range local {
		out[i] = v.Rotate(p.Rotation).Add(p.Position)
	}
	return out
}

// Area returns the area of s in mm².
func Area(s Shape) float64 {
	switch sh := s.(type) {
	case *Circle:
		r := sh.CanonicalRadius()
		return math.Pi * r * r
	case *Polygon:
		n := len(sh.Sides)
		switch {
		case n < 3:
			return 0
		case n == 4:
			w, h, _ := sh.RectSize()
			return w * h
		default:
			l := sh.MeanSide()
			return float64(n) * l * l / (4 * math.Tan(math.Pi/float64(n)))
		}
	default:
		return 0
	}
}

// Bounds returns the axis-aligned bounding box of s at its current transform.
// Degenerate polygons collapse to their position.
func Bounds(s Shape) (min, max Vector) {
	switch sh := s.(type) {
	case *Circle:
		r := sh.CanonicalRadius()
		return sh.Position.Sub(V(r, r)), sh.Position.Add(V(r, r))
	case *Polygon:
		pts := TransformedVertices(sh)
		if len(pts) == 0 {
			return sh.Position, sh.Position
		}
		min, max = pts[0], pts[0]
		for _, p := range pts[1:] {
			min.X = math.Min(min.X, p.X)
			min.Y = math.Min(min.Y, p.Y)
			max.X = math.Max(max.X, p.X)
			max.Y = math.Max(max.Y, p.Y)
		}
		return min, max
	default:
		return Vector{}, Vector{}
	}
}

// Contains reports whether point lies inside s (boundary included).
func Contains(s Shape, point Vector) bool {
	switch sh := s.(type) {
	case *Circle:
		return point.Distance(sh.Position) <= sh.CanonicalRadius()
	case *Polygon:
		return pointInPolygon(TransformedVertices(sh), point)
	default:
		return false
	}
}

// pointInPolygon uses the even-odd ray casting rule.
func pointInPolygon(pts []Vector, p Vector) bool {
	n := len(pts)
	if n < 3 {
		return false
	}
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := pts[i], pts[j]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y) + a.X
			if p.X <= x {
				inside = !inside
			}
		}
	}
	return inside
}

// Scaled returns a copy of s with every side length (or the radius) multiplied
// by factor. Position, rotation and units are kept.
func Scaled(s Shape, factor float64) Shape {
	switch sh := s.(type) {
	case *Polygon:
		cp := sh.clone()
		for i := range cp.Sides {
			cp.Sides[i].Length *= factor
		}
		return cp
	case *Circle:
		cp := *sh
		cp.Radius *= factor
		return &cp
	default:
		return s
	}
}

// Validate reports ErrInvalidGeometry for shapes that cannot be drawn.
func Validate(s Shape) error {
	switch sh := s.(type) {
	case *Polygon:
		if len(sh.Sides) < 3 {
			return fmt.Errorf("polygon %q has %d sides: %w", sh.ID, len(sh.Sides), ErrInvalidGeometry)
		}
		for i, side := range sh.Sides {
			if side.Length <= 0 {
				return fmt.Errorf("polygon %q side %d is %.2f: %w", sh.ID, i+1, side.Length, ErrInvalidGeometry)
			}
		}
		return nil
	case *Circle:
		if sh.Radius <= 0 {
			return fmt.Errorf("circle %q radius is %.2f: %w", sh.ID, sh.Radius, ErrInvalidGeometry)
		}
		return nil
	case nil:
		return fmt.Errorf("missing shape: %w", ErrInvalidShape)
	default:
		return fmt.Errorf("unsupported shape %T: %w", s, ErrInvalidShape)
	}
}

// Describe returns a short human-readable size, e.g. "564 x 480 mm", "Ø 1200 mm" or "6 x 100 mm".
func Describe(s Shape) string {
	switch sh := s.(type) {
	case *Circle:
		return fmt.Sprintf("Ø %.0f mm", 2*sh.CanonicalRadius())
	case *Polygon:
		if w, h, ok := sh.RectSize(); ok {
			return fmt.Sprintf("%.0f x %.0f mm", w, h)
		}
		return fmt.Sprintf("%d x %.0f mm", len(sh.Sides), sh.MeanSide())
	default:
		return ""
	}
}

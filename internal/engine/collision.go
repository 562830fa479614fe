// Package engine implements separating-axis collision detection between placed
// pieces and the sequential resolution used while dragging.
package engine

import (
	"math"

	"github.com/piwi3910/SlabLayout/internal/model"
)

// body is a shape flattened into world space for collision tests.
type body struct {
	center model.Vector
	verts  []model.Vector // transformed polygon vertices; nil for circles
	radius float64        // canonical circle radius
	circle bool
}

// newBody returns false for shapes that have no usable geometry.
func newBody(s model.Shape) (body, bool) {
	switch sh := s.(type) {
	case *model.Circle:
		return body{center: sh.Position, radius: sh.CanonicalRadius(), circle: true}, true
	case *model.Polygon:
		verts := model.TransformedVertices(sh)
		if len(verts) < 3 {
			return body{}, false
		}
		return body{center: sh.Position, verts: verts}, true
	default:
		return body{}, false
	}
}

// edgeNormals returns the unit normals of every non-degenerate polygon edge.
func edgeNormals(verts []model.Vector) []model.Vector {
	axes := make([]model.Vector, 0, len(verts))
	for i, v := range verts {
		edge := verts[(i+1)%len(verts)].Sub(v)
		n := model.V(-edge.Y, edge.X).Normalize()
		if n.IsZero() {
			continue
		}
		axes = append(axes, n)
	}
	return axes
}

// project returns the interval covered by b along axis.
func (b body) project(axis model.Vector) (min, max float64) {
	if b.circle {
		c := b.center.Dot(axis)
		return c - b.radius, c + b.radius
	}
	min, max = math.Inf(1), math.Inf(-1)
	for _, v := range b.verts {
		d := v.Dot(axis)
		min = math.Min(min, d)
		max = math.Max(max, d)
	}
	return min, max
}

// nearestVertex returns the polygon vertex closest to p.
func (b body) nearestVertex(p model.Vector) model.Vector {
	best := b.verts[0]
	bestDist := best.Distance(p)
	for _, v := range b.verts[1:] {
		if d := v.Distance(p); d < bestDist {
			best, bestDist = v, d
		}
	}
	return best
}

// Separation returns the minimum translation that moves a out of b so that the
// two keep at least margin apart. The vector points from b's centre towards a.
// ok is false when the pair is already separated or either shape has no
// geometry.
func Separation(a, b model.Shape, margin float64) (mtv model.Vector, ok bool) {
	margin = math.Max(0, margin)
	ba, okA := newBody(a)
	bb, okB := newBody(b)
	if !okA || !okB {
		return model.Vector{}, false
	}
	if ba.circle && bb.circle {
		return circleCircle(ba, bb, margin)
	}

	var axes []model.Vector
	switch {
	case !ba.circle && !bb.circle:
		axes = append(edgeNormals(ba.verts), edgeNormals(bb.verts)...)
	case ba.circle:
		axes = polygonCircleAxes(bb, ba)
	default:
		axes = polygonCircleAxes(ba, bb)
	}
	return satMTV(ba, bb, axes, margin)
}

// polygonCircleAxes returns the polygon's edge normals plus the axis from the
// circle centre to the nearest polygon vertex.
func polygonCircleAxes(poly, circle body) []model.Vector {
	axes := edgeNormals(poly.verts)
	if a := poly.nearestVertex(circle.center).Sub(circle.center).Normalize(); !a.IsZero() {
		axes = append(axes, a)
	}
	return axes
}

func satMTV(a, b body, axes []model.Vector, margin float64) (model.Vector, bool) {
	if len(axes) == 0 {
		return model.Vector{}, false
	}
	best := math.Inf(1)
	var bestAxis model.Vector
	for _, axis := range axes {
		minA, maxA := a.project(axis)
		minB, maxB := b.project(axis)
		penetration := math.Min(maxA, maxB) - math.Max(minA, minB) + margin
		if penetration <= 0 {
			return model.Vector{}, false
		}
		if penetration < best {
			best = penetration
			bestAxis = axis
		}
	}
	if a.center.Sub(b.center).Dot(bestAxis) < 0 {
		bestAxis = bestAxis.Negate()
	}
	mtv := bestAxis.Scale(best)
	if !mtv.IsFinite() {
		return model.Vector{}, false
	}
	return mtv, true
}

func circleCircle(a, b body, margin float64) (model.Vector, bool) {
	delta := a.center.Sub(b.center)
	d := delta.Length()
	reach := a.radius + b.radius + margin
	if d >= reach {
		return model.Vector{}, false
	}
	axis := model.V(1, 0)
	if d > 0 {
		axis = delta.Scale(1 / d)
	}
	return axis.Scale(reach - d), true
}

// Result is the outcome of resolving a dragged candidate against the other
// pieces on the sheet.
type Result struct {
	Position model.Vector
	// CollidedWith is the id of the last piece the candidate was pushed
	// away from, or empty.
	CollidedWith string
}

// Resolve pushes candidate out of each of others in order, applying every
// correction before testing the next piece. A later correction can push the
// candidate back into an earlier piece; that residual overlap is accepted.
// Pieces sharing the candidate's id and pieces without geometry are skipped.
func Resolve(candidate model.Shape, others []model.Shape, margin float64) Result {
	if candidate == nil {
		return Result{}
	}
	res := Result{Position: candidate.Center()}
	current := candidate
	for _, other := range others {
		if other == nil || other.ShapeID() == candidate.ShapeID() {
			continue
		}
		mtv, hit := Separation(current, other, margin)
		if !hit {
			continue
		}
		res.Position = res.Position.Add(mtv)
		res.CollidedWith = other.ShapeID()
		current = current.WithPosition(res.Position)
	}
	return res
}

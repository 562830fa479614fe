package importer

import (
	"fmt"
	"math"
	"sort"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"

	"github.com/piwi3910/SlabLayout/internal/model"
)

// segment represents a line segment between two 2D points, used for
// chaining disconnected LINE entities into closed outlines.
type segment struct {
	start model.Vector
	end   model.Vector
}

const (
	// chainTolerance is the endpoint distance in mm under which segments join.
	chainTolerance = 0.01
	// edgeTolerance is the relative edge length spread still treated as regular.
	edgeTolerance = 0.01
	// minCircleVertices is the vertex count above which a regular outline
	// whose vertices sit on one radius becomes a circle.
	minCircleVertices = 24
)

// ImportDXF imports part requests from a DXF file. Each CIRCLE becomes a
// circle part. Each LWPOLYLINE and each closed chain of LINEs and ARCs is
// classified as a rectangle, a regular polygon, or a circle; anything else
// is imported as its bounding rectangle with a warning.
func ImportDXF(path string) ImportResult {
	result := ImportResult{}

	drawing, err := dxf.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open DXF file: %v", err))
		return result
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		result.Errors = append(result.Errors, "DXF file contains no entities")
		return result
	}

	var outlines [][]model.Vector
	var segments []segment
	var shapes []model.Shape

	for _, ent := range entities {
		switch e := ent.(type) {
		case *entity.LwPolyline:
			outline := lwPolylineToOutline(e)
			if len(outline) >= 3 {
				outlines = append(outlines, outline)
			} else {
				result.Warnings = append(result.Warnings,
					"Skipped LWPOLYLINE with fewer than 3 vertices")
			}

		case *entity.Circle:
			if e.Radius > 0 {
				shapes = append(shapes, model.NewCircle("", e.Radius, model.UnitMM))
			}

		case *entity.Arc:
			pts := arcToPoints(e, 32)
			if len(pts) >= 2 {
				segments = append(segments, pointsToSegments(pts)...)
			}

		case *entity.Line:
			segments = append(segments, segment{
				start: model.V(e.Start[0], e.Start[1]),
				end:   model.V(e.End[0], e.End[1]),
			})
		}
	}

	outlines = append(outlines, chainSegments(segments, chainTolerance)...)

	for _, outline := range outlines {
		shape, warning := classifyOutline(outline)
		if shape == nil {
			result.Warnings = append(result.Warnings, warning)
			continue
		}
		if warning != "" {
			result.Warnings = append(result.Warnings, warning)
		}
		shapes = append(shapes, shape)
	}

	if len(shapes) == 0 {
		result.Errors = append(result.Errors, "No closed shapes found in DXF file")
		return result
	}

	for i, shape := range shapes {
		result.Requests = append(result.Requests, model.PartRequest{
			Name:     fmt.Sprintf("DXF Part %d", i+1),
			Quantity: 1,
			Shape:    shape,
		})
	}
	return result
}

// classifyOutline maps a closed outline onto the shape model. A nil shape
// means the outline was skipped and the returned string says why.
func classifyOutline(outline []model.Vector) (model.Shape, string) {
	min, max := outlineBounds(outline)
	width, height := max.X-min.X, max.Y-min.Y
	if width < chainTolerance || height < chainTolerance {
		return nil, fmt.Sprintf("Skipped degenerate shape (%.2f x %.2f mm)", width, height)
	}

	edges := edgeLengths(outline)
	n := len(outline)

	if n == 4 && isRightAngled(outline) {
		first := outline[1].Sub(outline[0])
		rect := model.NewRectangle("", edges[0], edges[1])
		if angle := first.AngleDeg(); math.Abs(angle) > 1e-6 {
			rect = rect.WithRotation(angle)
		}
		return rect, ""
	}

	if isRegular(edges) {
		if n >= minCircleVertices {
			if r, ok := commonRadius(outline); ok {
				return model.NewCircle("", r, model.UnitMM), ""
			}
		}
		return model.NewRegularPolygon("", n, mean(edges), model.UnitMM), ""
	}

	return model.NewRectangle("", width, height),
		fmt.Sprintf("Irregular outline with %d vertices imported as %.0f x %.0f mm bounding rectangle", n, width, height)
}

// lwPolylineToOutline converts a DXF LWPOLYLINE entity to an outline.
// Bulge values on vertices produce interpolated arc segments.
func lwPolylineToOutline(lw *entity.LwPolyline) []model.Vector {
	var outline []model.Vector

	for i := 0; i < len(lw.Vertices); i++ {
		v := lw.Vertices[i]
		current := model.V(v[0], v[1])

		bulge := 0.0
		if i < len(lw.Bulges) {
			bulge = lw.Bulges[i]
		}

		if math.Abs(bulge) > 1e-9 {
			nextIdx := (i + 1) % len(lw.Vertices)
			next := model.V(lw.Vertices[nextIdx][0], lw.Vertices[nextIdx][1])
			arcPts := bulgeArcPoints(current, next, bulge, 32)
			// The next vertex is appended on its own iteration
			outline = append(outline, arcPts[:len(arcPts)-1]...)
		} else {
			outline = append(outline, current)
		}
	}

	if len(outline) >= 3 && pointsClose(outline[0], outline[len(outline)-1], chainTolerance) {
		outline = outline[:len(outline)-1]
	}
	return outline
}

// bulgeArcPoints generates points along an arc defined by two endpoints and a
// DXF bulge factor. The bulge is the tangent of 1/4 the included angle.
func bulgeArcPoints(p1, p2 model.Vector, bulge float64, numSegments int) []model.Vector {
	mid := p1.Add(p2).Scale(0.5)
	chord := p2.Sub(p1)
	chordLen := chord.Length()
	if chordLen < 1e-9 {
		return []model.Vector{p1, p2}
	}

	sagitta := math.Abs(bulge) * chordLen / 2
	radius := (chordLen*chordLen/(4*sagitta) + sagitta) / 2

	perp := model.V(-chord.Y/chordLen, chord.X/chordLen)
	if bulge > 0 {
		perp = perp.Negate()
	}
	center := mid.Add(perp.Scale(radius - sagitta))

	startAngle := math.Atan2(p1.Y-center.Y, p1.X-center.X)
	endAngle := math.Atan2(p2.Y-center.Y, p2.X-center.X)
	if bulge < 0 {
		if endAngle > startAngle {
			endAngle -= 2 * math.Pi
		}
	} else if endAngle < startAngle {
		endAngle += 2 * math.Pi
	}

	pts := make([]model.Vector, 0, numSegments+1)
	for i := 0; i <= numSegments; i++ {
		angle := startAngle + float64(i)/float64(numSegments)*(endAngle-startAngle)
		pts = append(pts, center.Add(model.V(radius*math.Cos(angle), radius*math.Sin(angle))))
	}
	return pts
}

// arcToPoints converts a DXF ARC entity to a series of line points.
func arcToPoints(a *entity.Arc, numSegments int) []model.Vector {
	center := model.V(a.Circle.Center[0], a.Circle.Center[1])
	r := a.Circle.Radius

	startRad := a.Angle[0] * math.Pi / 180
	endRad := a.Angle[1] * math.Pi / 180
	if endRad <= startRad {
		endRad += 2 * math.Pi
	}

	pts := make([]model.Vector, numSegments+1)
	for i := 0; i <= numSegments; i++ {
		angle := startRad + float64(i)/float64(numSegments)*(endRad-startRad)
		pts[i] = center.Add(model.V(r*math.Cos(angle), r*math.Sin(angle)))
	}
	return pts
}

// pointsToSegments converts a point sequence to a slice of connected segments.
func pointsToSegments(pts []model.Vector) []segment {
	segs := make([]segment, 0, len(pts)-1)
	for i := 0; i < len(pts)-1; i++ {
		segs = append(segs, segment{start: pts[i], end: pts[i+1]})
	}
	return segs
}

// chainSegments connects individual segments into closed outlines.
// tolerance is the maximum distance between endpoints to consider them connected.
// Open chains are dropped.
func chainSegments(segs []segment, tolerance float64) [][]model.Vector {
	if len(segs) == 0 {
		return nil
	}

	used := make([]bool, len(segs))
	var outlines [][]model.Vector

	for {
		startIdx := -1
		for i, u := range used {
			if !u {
				startIdx = i
				break
			}
		}
		if startIdx == -1 {
			break
		}

		chain := []model.Vector{segs[startIdx].start, segs[startIdx].end}
		used[startIdx] = true

		changed := true
		for changed {
			changed = false
			tail := chain[len(chain)-1]

			for i, seg := range segs {
				if used[i] {
					continue
				}
				if pointsClose(tail, seg.start, tolerance) {
					chain = append(chain, seg.end)
					used[i] = true
					changed = true
					break
				}
				if pointsClose(tail, seg.end, tolerance) {
					chain = append(chain, seg.start)
					used[i] = true
					changed = true
					break
				}
			}
		}

		if len(chain) < 4 || !pointsClose(chain[0], chain[len(chain)-1], tolerance) {
			continue
		}
		outlines = append(outlines, chain[:len(chain)-1])
	}

	// Largest first for a stable order
	sort.Slice(outlines, func(i, j int) bool {
		return outlineArea(outlines[i]) > outlineArea(outlines[j])
	})

	return outlines
}

// pointsClose checks whether two points are within the given tolerance.
func pointsClose(a, b model.Vector, tolerance float64) bool {
	return a.Distance(b) <= tolerance
}

// outlineArea computes the absolute area of a polygon using the shoelace formula.
func outlineArea(o []model.Vector) float64 {
	n := len(o)
	if n < 3 {
		return 0
	}
	var area float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		area += o[i].X*o[j].Y - o[j].X*o[i].Y
	}
	return math.Abs(area) / 2
}

func outlineBounds(o []model.Vector) (min, max model.Vector) {
	min, max = o[0], o[0]
	for _, p := range o[1:] {
		min.X = math.Min(min.X, p.X)
		min.Y = math.Min(min.Y, p.Y)
		max.X = math.Max(max.X, p.X)
		max.Y = math.Max(max.Y, p.Y)
	}
	return min, max
}

func edgeLengths(o []model.Vector) []float64 {
	edges := make([]float64, len(o))
	for i := range o {
		edges[i] = o[i].Distance(o[(i+1)%len(o)])
	}
	return edges
}

func isRightAngled(o []model.Vector) bool {
	for i := range o {
		a := o[(i+1)%len(o)].Sub(o[i]).Normalize()
		b := o[(i+2)%len(o)].Sub(o[(i+1)%len(o)]).Normalize()
		if math.Abs(a.Dot(b)) > 1e-3 {
			return false
		}
	}
	return true
}

func isRegular(edges []float64) bool {
	m := mean(edges)
	if m <= 0 {
		return false
	}
	for _, e := range edges {
		if math.Abs(e-m)/m > edgeTolerance {
			return false
		}
	}
	return true
}

// commonRadius reports the mean distance from the centroid when every vertex
// lies on it within edgeTolerance.
func commonRadius(o []model.Vector) (float64, bool) {
	var c model.Vector
	for _, p := range o {
		c = c.Add(p)
	}
	c = c.Scale(1 / float64(len(o)))

	dists := make([]float64, len(o))
	for i, p := range o {
		dists[i] = p.Distance(c)
	}
	if !isRegular(dists) {
		return 0, false
	}
	return mean(dists), true
}

func mean(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}

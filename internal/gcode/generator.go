// Package gcode turns a layout into contour-cutting G-code for a CNC router
// and parses G-code back into moves for previews and statistics.
package gcode

import (
	"fmt"
	"math"
	"strings"

	"github.com/piwi3910/SlabLayout/internal/model"
)

// Generator produces G-code from a layout. Every piece is cut along its
// outline, offset outward by the tool radius, in as many passes as the cut
// depth needs. Layout coordinates are y-down; machine coordinates are y-up
// with the origin at the sheet's lower left corner.
type Generator struct {
	Settings model.CutSettings
	profile  model.GCodeProfile
}

func New(settings model.CutSettings) *Generator {
	return &Generator{
		Settings: settings,
		profile:  model.GetProfile(settings.GCodeProfile),
	}
}

// Generate produces the program for every piece on l's sheet.
func (g *Generator) Generate(l model.Layout) string {
	var b strings.Builder

	g.writeHeader(&b, l)

	names := l.PieceNames()
	n := 0
	for _, d := range l.Shapes {
		if d.Shape == nil {
			continue
		}
		n++
		g.writePiece(&b, l.Material, d, names[d.ID()], n)
	}

	g.writeFooter(&b)
	return b.String()
}

func (g *Generator) writeHeader(b *strings.Builder, l model.Layout) {
	p := g.profile
	summary := l.Summary()

	b.WriteString(g.comment(fmt.Sprintf("SlabLayout G-code: %s", l.Name)))
	b.WriteString(g.comment(fmt.Sprintf("Material: %s, %.1f x %.1f mm", l.Material.Name, l.Material.Width, l.Material.Height)))
	b.WriteString(g.comment(fmt.Sprintf("Pieces: %d, Utilization: %.1f%%", summary.PieceCount, summary.Percent())))
	b.WriteString(g.comment(fmt.Sprintf("Tool: %.1fmm, Feed: %.0f mm/min, Plunge: %.0f mm/min",
		g.Settings.ToolDiameter, g.Settings.FeedRate, g.Settings.PlungeRate)))
	b.WriteString(g.comment(fmt.Sprintf("Depth: %.1fmm in %.1fmm passes", g.Settings.CutDepth, g.Settings.PassDepth)))
	b.WriteString(g.comment(fmt.Sprintf("Profile: %s", p.Name)))
	b.WriteString("\n")

	for _, code := range p.StartCode {
		b.WriteString(code + "\n")
	}

	if p.SpindleStart != "" {
		b.WriteString(fmt.Sprintf(p.SpindleStart+"\n", g.Settings.SpindleSpeed))
	}

	// Retract before the first rapid
	b.WriteString(fmt.Sprintf("%s Z%s\n", p.RapidMove, g.format(g.Settings.SafeZ)))
	b.WriteString(fmt.Sprintf("%s X%s Y%s\n", p.RapidMove, g.format(0), g.format(0)))

	b.WriteString("\n")
}

func (g *Generator) writeFooter(b *strings.Builder) {
	p := g.profile

	b.WriteString("\n")
	b.WriteString(g.comment("=== Job complete ==="))

	for _, code := range p.EndCode {
		b.WriteString(strings.ReplaceAll(code, "[SafeZ]", g.format(g.Settings.SafeZ)) + "\n")
	}

	if p.SpindleStop != "" {
		b.WriteString(p.SpindleStop + "\n")
	}
}

// passDepths returns the cumulative depth of each pass, the last one landing
// exactly on CutDepth.
func (g *Generator) passDepths() []float64 {
	if g.Settings.CutDepth <= 0 {
		return nil
	}
	step := g.Settings.PassDepth
	if step <= 0 || step > g.Settings.CutDepth {
		step = g.Settings.CutDepth
	}
	n := int(math.Ceil(g.Settings.CutDepth/step - 1e-9))
	depths := make([]float64, n)
	for i := range depths {
		depths[i] = math.Min(float64(i+1)*step, g.Settings.CutDepth)
	}
	return depths
}

func (g *Generator) writePiece(b *strings.Builder, m model.Material, d model.DrawableShape, name string, num int) {
	b.WriteString(g.comment(fmt.Sprintf("--- Piece %d: %s (%s) ---", num, name, model.Describe(d.Shape))))

	switch s := d.Shape.(type) {
	case *model.Circle:
		g.writeCircle(b, toMachine(m, s.Position), s.CanonicalRadius())
	case *model.Polygon:
		verts := model.TransformedVertices(s)
		if len(verts) < 3 {
			b.WriteString(g.comment("WARNING: polygon has fewer than 3 vertices, skipping"))
			return
		}
		for i := range verts {
			verts[i] = toMachine(m, verts[i])
		}
		g.writeContour(b, verts)
	}

	b.WriteString("\n")
}

// toMachine mirrors a layout point into y-up machine coordinates.
func toMachine(m model.Material, v model.Vector) model.Vector {
	return model.V(v.X, m.Height-v.Y)
}

// writeContour cuts a closed polygon outside its outline.
func (g *Generator) writeContour(b *strings.Builder, verts []model.Vector) {
	path := offsetOutline(clockwise(verts), g.Settings.ToolDiameter/2)
	if !g.Settings.UseClimb {
		path = reversed(path)
	}

	depths := g.passDepths()
	for i, depth := range depths {
		b.WriteString(g.comment(fmt.Sprintf("Pass %d/%d, depth=%.2fmm", i+1, len(depths), depth)))

		b.WriteString(fmt.Sprintf("%s X%s Y%s\n", g.profile.RapidMove, g.format(path[0].X), g.format(path[0].Y)))
		b.WriteString(fmt.Sprintf("%s Z%s F%s\n", g.profile.FeedMove, g.format(-depth), g.format(g.Settings.PlungeRate)))

		for j := 1; j < len(path); j++ {
			b.WriteString(fmt.Sprintf("%s X%s Y%s F%s\n", g.profile.FeedMove,
				g.format(path[j].X), g.format(path[j].Y), g.format(g.Settings.FeedRate)))
		}
		b.WriteString(fmt.Sprintf("%s X%s Y%s F%s\n", g.profile.FeedMove,
			g.format(path[0].X), g.format(path[0].Y), g.format(g.Settings.FeedRate)))

		b.WriteString(fmt.Sprintf("%s Z%s\n", g.profile.RapidMove, g.format(g.Settings.SafeZ)))
	}
}

// writeCircle cuts a full circle outside the piece as a single arc per pass,
// starting and ending at the rightmost point.
func (g *Generator) writeCircle(b *strings.Builder, center model.Vector, radius float64) {
	r := radius + g.Settings.ToolDiameter/2
	start := center.Add(model.V(r, 0))

	arc := g.profile.ArcCW
	if !g.Settings.UseClimb {
		arc = g.profile.ArcCCW
	}

	depths := g.passDepths()
	for i, depth := range depths {
		b.WriteString(g.comment(fmt.Sprintf("Pass %d/%d, depth=%.2fmm", i+1, len(depths), depth)))

		b.WriteString(fmt.Sprintf("%s X%s Y%s\n", g.profile.RapidMove, g.format(start.X), g.format(start.Y)))
		b.WriteString(fmt.Sprintf("%s Z%s F%s\n", g.profile.FeedMove, g.format(-depth), g.format(g.Settings.PlungeRate)))
		b.WriteString(fmt.Sprintf("%s X%s Y%s I%s J%s F%s\n", arc,
			g.format(start.X), g.format(start.Y), g.format(-r), g.format(0), g.format(g.Settings.FeedRate)))

		b.WriteString(fmt.Sprintf("%s Z%s\n", g.profile.RapidMove, g.format(g.Settings.SafeZ)))
	}
}

// comment wraps text in the profile's comment syntax.
func (g *Generator) comment(text string) string {
	return g.profile.CommentPrefix + " " + text + g.profile.CommentSuffix + "\n"
}

// format formats a coordinate according to the profile's decimal places.
func (g *Generator) format(v float64) string {
	s := fmt.Sprintf("%.*f", g.profile.DecimalPlaces, v)
	// Avoid "-0.000"
	if strings.TrimLeft(s, "-0.") == "" {
		return strings.TrimPrefix(s, "-")
	}
	return s
}

// signedArea is positive for counter-clockwise outlines in y-up coordinates.
func signedArea(pts []model.Vector) float64 {
	var a float64
	for i := range pts {
		j := (i + 1) % len(pts)
		a += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return a / 2
}

func clockwise(pts []model.Vector) []model.Vector {
	if signedArea(pts) > 0 {
		return reversed(pts)
	}
	return pts
}

func reversed(pts []model.Vector) []model.Vector {
	out := make([]model.Vector, len(pts))
	for i, p := range pts {
		out[len(pts)-1-i] = p
	}
	return out
}

// offsetOutline moves every vertex of a clockwise outline outward by dist,
// keeping each edge parallel to the original (a mitred offset).
func offsetOutline(outline []model.Vector, dist float64) []model.Vector {
	n := len(outline)
	if n < 3 || dist == 0 {
		return outline
	}

	result := make([]model.Vector, n)
	for i := 0; i < n; i++ {
		prev := outline[(i-1+n)%n]
		curr := outline[i]
		next := outline[(i+1)%n]

		// Left of travel is outside for a clockwise outline
		e1 := curr.Sub(prev)
		e2 := next.Sub(curr)
		n1 := model.V(-e1.Y, e1.X).Normalize()
		n2 := model.V(-e2.Y, e2.X).Normalize()

		bisector := n1.Add(n2).Normalize()
		cos := bisector.Dot(n1)
		if bisector.IsZero() || cos < 1e-6 {
			result[i] = curr.Add(n2.Scale(dist))
			continue
		}
		result[i] = curr.Add(bisector.Scale(dist / cos))
	}
	return result
}

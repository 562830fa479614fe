package engine

import (
	"fmt"

	"github.com/piwi3910/SlabLayout/internal/model"
)

// Conflict is a pair of placed pieces closer than the clearance margin.
type Conflict struct {
	A, B string
	// Depth is the distance the pieces would need to move apart, margin included.
	Depth float64
}

// FindConflicts checks every pair of shapes and returns those violating the
// margin, each pair reported once in index order. Rotating or scaling a piece is not resolved
// the way dragging is, so layouts can contain conflicts.
func FindConflicts(shapes []model.Shape, margin float64) []Conflict {
	var conflicts []Conflict
	for i := 0; i < len(shapes); i++ {
		for j := i + 1; j < len(shapes); j++ {
			if shapes[i] == nil || shapes[j] == nil {
				continue
			}
			mtv, hit := Separation(shapes[i], shapes[j], margin)
			if !hit {
				continue
			}
			conflicts = append(conflicts, Conflict{
				A:     shapes[i].ShapeID(),
				B:     shapes[j].ShapeID(),
				Depth: mtv.Length(),
			})
		}
	}
	return conflicts
}

// OutsideSheet returns the ids of shapes whose bounds leave the material.
func OutsideSheet(material model.Material, shapes []model.Shape) []string {
	var ids []string
	for _, s := range shapes {
		if s == nil {
			continue
		}
		min, max := model.Bounds(s)
		if min.X < 0 || min.Y < 0 || max.X > material.Width || max.Y > material.Height {
			ids = append(ids, s.ShapeID())
		}
	}
	return ids
}

// FormatConflictWarnings produces human-readable warning messages from conflict data.
// names maps piece ids to display labels; unknown ids are shown as-is.
func FormatConflictWarnings(conflicts []Conflict, names map[string]string, margin float64) []string {
	label := func(id string) string {
		if n, ok := names[id]; ok && n != "" {
			return n
		}
		return id
	}
	var warnings []string
	for _, c := range conflicts {
		warnings = append(warnings, fmt.Sprintf(
			"Pieces %q and %q are %.1f mm inside the %.1f mm clearance",
			label(c.A), label(c.B), c.Depth, margin,
		))
	}
	return warnings
}

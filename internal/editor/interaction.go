package editor

import "github.com/piwi3910/SlabLayout/internal/model"

// Interaction is the gesture in progress. A nil Interaction means none.
// The variants are Dragging, Rotating and Scaling.
type Interaction interface {
	TargetID() string
	isInteraction()
}

// Dragging moves a piece, keeping the grab point under the pointer.
type Dragging struct {
	ID         string
	GrabOffset model.Vector // pointer minus piece centre at pointer-down
}

// Rotating turns a polygon about its centre.
type Rotating struct {
	ID              string
	StartAngle      float64 // degrees, pointer angle at pointer-down
	InitialRotation float64
}

// Scaling resizes a piece relative to the shape captured at pointer-down.
type Scaling struct {
	ID              string
	Initial         model.Shape
	InitialDistance float64
}

func (d Dragging) TargetID() string { return d.ID }
func (r Rotating) TargetID() string { return r.ID }
func (s Scaling) TargetID() string  { return s.ID }

func (Dragging) isInteraction() {}
func (Rotating) isInteraction() {}
func (Scaling) isInteraction()  {}

// Modifiers are the keys held at pointer-down. Scale wins over Rotate.
type Modifiers struct {
	Scale  bool // ctrl or cmd
	Rotate bool // alt
}

// begin picks the gesture for a pointer-down on shape.
func begin(shape model.Shape, pointer model.Vector, mods Modifiers) Interaction {
	offset := pointer.Sub(shape.Center())
	if mods.Scale {
		return Scaling{
			ID:              shape.ShapeID(),
			Initial:         shape.Clone(),
			InitialDistance: offset.Length(),
		}
	}
	if p, ok := shape.(*model.Polygon); ok && mods.Rotate {
		return Rotating{
			ID:              p.ID,
			StartAngle:      offset.AngleDeg(),
			InitialRotation: p.Rotation,
		}
	}
	return Dragging{ID: shape.ShapeID(), GrabOffset: offset}
}

// scaleFactor never compounds: it is always relative to the pointer-down distance.
func (s Scaling) scaleFactor(pointer model.Vector) float64 {
	if s.InitialDistance <= 0 {
		return 1
	}
	return pointer.Distance(s.Initial.Center()) / s.InitialDistance
}

func (s Scaling) apply(pointer model.Vector) model.Shape {
	return model.Scaled(s.Initial, s.scaleFactor(pointer))
}

func (r Rotating) apply(p *model.Polygon, pointer model.Vector) *model.Polygon {
	angle := pointer.Sub(p.Position).AngleDeg()
	return p.WithRotation(r.InitialRotation + (angle - r.StartAngle))
}

func gestureLabel(ia Interaction) string {
	switch ia.(type) {
	case Scaling:
		return "Scale"
	case Rotating:
		return "Rotate"
	default:
		return "Move"
	}
}

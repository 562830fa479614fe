package model

import (
	"encoding/json"
	"fmt"
)

// BorderStyle is the outline style of a drawn piece.
type BorderStyle string

const (
	BorderLinear BorderStyle = "linear"
	BorderDotted BorderStyle = "dotted"
)

// ParseBorderStyle returns the style for s, defaulting to BorderLinear.
func ParseBorderStyle(s string) BorderStyle {
	if BorderStyle(s) == BorderDotted {
		return BorderDotted
	}
	return BorderLinear
}

// Default appearance of new catalog parts.
const (
	DefaultBorderColor = "#000000"
	DefaultFillColor   = "#a0c4ff"
)

// Attributes are the user-editable appearance settings of a piece.
type Attributes struct {
	BorderStyle BorderStyle `json:"border_style"`
	BorderColor string      `json:"border_color"`
	FillColor   string      `json:"fill_color"`
}

// DefaultAttributes returns the appearance given to new parts.
func DefaultAttributes() Attributes {
	return Attributes{
		BorderStyle: BorderLinear,
		BorderColor: DefaultBorderColor,
		FillColor:   DefaultFillColor,
	}
}

// DrawableShape is a piece placed on the sheet. PartID refers back to the
// catalog part it was placed from and is only used for lookups.
type DrawableShape struct {
	Shape  Shape  `json:"-"`
	PartID string `json:"part_id"`
	Attributes
}

// ID returns the id of the placed instance.
func (d DrawableShape) ID() string {
	if d.Shape == nil {
		return ""
	}
	return d.Shape.ShapeID()
}

// Clone returns a deep copy that shares no memory with d.
func (d DrawableShape) Clone() DrawableShape {
	cp := d
	if d.Shape != nil {
		cp.Shape = d.Shape.Clone()
	}
	return cp
}

// CloneShapes deep copies a shape set. A nil set stays nil.
func CloneShapes(in []DrawableShape) []DrawableShape {
	if in == nil {
		return nil
	}
	out := make([]DrawableShape, len(in))
	for i, d := range in {
		out[i] = d.Clone()
	}
	return out
}

// Geometry returns the bare shapes of a shape set, in order.
func Geometry(in []DrawableShape) []Shape {
	out := make([]Shape, 0, len(in))
	for _, d := range in {
		if d.Shape != nil {
			out = append(out, d.Shape)
		}
	}
	return out
}

type drawableJSON struct {
	Shape  json.RawMessage `json:"shape"`
	PartID string          `json:"part_id"`
	Attributes
}

func (d DrawableShape) MarshalJSON() ([]byte, error) {
	shape, err := MarshalShape(d.Shape)
	if err != nil {
		return nil, err
	}
	return json.Marshal(drawableJSON{Shape: shape, PartID: d.PartID, Attributes: d.Attributes})
}

func (d *DrawableShape) UnmarshalJSON(data []byte) error {
	var raw drawableJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var shape Shape
	if len(raw.Shape) > 0 {
		s, err := UnmarshalShape(raw.Shape)
		if err != nil {
			return fmt.Errorf("piece of part %q: %w", raw.PartID, err)
		}
		shape = s
	}
	d.Shape = shape
	d.PartID = raw.PartID
	d.Attributes = raw.Attributes
	return nil
}

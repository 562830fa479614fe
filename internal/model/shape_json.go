package model

import (
	"encoding/json"
	"fmt"
)

// shapeJSON is the tagged wire form of a Shape.
type shapeJSON struct {
	Type     ShapeKind `json:"type"`
	ID       string    `json:"id"`
	Position Vector    `json:"position"`
	Rotation float64   `json:"rotation,omitempty"`
	Sides    []Side    `json:"sides,omitempty"`
	Radius   float64   `json:"radius,omitempty"`
	Unit     Unit      `json:"unit,omitempty"`
}

// MarshalShape encodes s with an explicit "type" discriminator.
func MarshalShape(s Shape) ([]byte, error) {
	switch sh := s.(type) {
	case *Polygon:
		return json.Marshal(shapeJSON{
			Type:     KindPolygon,
			ID:       sh.ID,
			Position: sh.Position,
			Rotation: sh.Rotation,
			Sides:    sh.Sides,
		})
	case *Circle:
		return json.Marshal(shapeJSON{
			Type:     KindCircle,
			ID:       sh.ID,
			Position: sh.Position,
			Radius:   sh.Radius,
			Unit:     sh.Unit,
		})
	case nil:
		return []byte("null"), nil
	default:
		return nil, fmt.Errorf("marshal %T: %w", s, ErrInvalidShape)
	}
}

// UnmarshalShape decodes a Shape written by MarshalShape. A JSON null yields a nil Shape.
func UnmarshalShape(data []byte) (Shape, error) {
	if string(data) == "null" {
		return nil, nil
	}
	var raw shapeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	switch raw.Type {
	case KindPolygon:
		return &Polygon{
			ID:       raw.ID,
			Position: raw.Position,
			Rotation: raw.Rotation,
			Sides:    raw.Sides,
		}, nil
	case KindCircle:
		return &Circle{
			ID:       raw.ID,
			Position: raw.Position,
			Radius:   raw.Radius,
			Unit:     raw.Unit,
		}, nil
	default:
		return nil, fmt.Errorf("shape type %q: %w", raw.Type, ErrInvalidShape)
	}
}

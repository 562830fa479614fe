package model

import (
	"encoding/json"
	"fmt"
)

// Default size of a part created without a shape.
const DefaultPartSize = 100.0

// CatalogPart is a part definition with the number of copies still available
// for placement.
type CatalogPart struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Shape    Shape  `json:"-"`
	Quantity int    `json:"quantity"`
	Attributes
}

// NewCatalogPart returns a part with the default 100 x 100 mm rectangle and
// default appearance.
func NewCatalogPart(name string, qty int) CatalogPart {
	id := NewID()
	return CatalogPart{
		ID:         id,
		Name:       name,
		Shape:      NewRectangle(id, DefaultPartSize, DefaultPartSize),
		Quantity:   qty,
		Attributes: DefaultAttributes(),
	}
}

// Clone returns a deep copy of p.
func (p CatalogPart) Clone() CatalogPart {
	cp := p
	if p.Shape != nil {
		cp.Shape = p.Shape.Clone()
	}
	return cp
}

// Place returns a drawable instance of p with a fresh id at pos.
func (p CatalogPart) Place(instanceID string, pos Vector) DrawableShape {
	var shape Shape
	if p.Shape != nil {
		shape = p.Shape.WithID(instanceID).WithPosition(pos)
	} else {
		shape = NewRectangle(instanceID, DefaultPartSize, DefaultPartSize).WithPosition(pos)
	}
	return DrawableShape{
		Shape:      shape,
		PartID:     p.ID,
		Attributes: p.Attributes,
	}
}

// ClonePartList deep copies a list of catalog parts.
func ClonePartList(in []CatalogPart) []CatalogPart {
	if in == nil {
		return nil
	}
	out := make([]CatalogPart, len(in))
	for i, p := range in {
		out[i] = p.Clone()
	}
	return out
}

type catalogPartJSON struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Shape    json.RawMessage `json:"shape"`
	Quantity int             `json:"quantity"`
	Attributes
}

func (p CatalogPart) MarshalJSON() ([]byte, error) {
	shape, err := MarshalShape(p.Shape)
	if err != nil {
		return nil, err
	}
	return json.Marshal(catalogPartJSON{
		ID:         p.ID,
		Name:       p.Name,
		Shape:      shape,
		Quantity:   p.Quantity,
		Attributes: p.Attributes,
	})
}

func (p *CatalogPart) UnmarshalJSON(data []byte) error {
	var raw catalogPartJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var shape Shape
	if len(raw.Shape) > 0 {
		s, err := UnmarshalShape(raw.Shape)
		if err != nil {
			return fmt.Errorf("part %q: %w", raw.ID, err)
		}
		shape = s
	}
	*p = CatalogPart{
		ID:         raw.ID,
		Name:       raw.Name,
		Shape:      shape,
		Quantity:   raw.Quantity,
		Attributes: raw.Attributes,
	}
	return nil
}

// PartRequest is one entry of a bulk part creation. A nil Shape gets the
// default rectangle.
type PartRequest struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Shape    Shape  `json:"-"`
}

// ToPart builds a catalog part with a new id from r.
func (r PartRequest) ToPart() CatalogPart {
	p := NewCatalogPart(r.Name, r.Quantity)
	if r.Shape != nil {
		p.Shape = r.Shape.WithID(p.ID).WithPosition(Vector{})
	}
	return p
}

// Material is a rectangular stock sheet, dimensions in mm.
type Material struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewMaterial returns a material with a new id.
func NewMaterial(name string, w, h float64) Material {
	return Material{
		ID:     NewID(),
		Name:   name,
		Width:  w,
		Height: h,
	}
}

// Dimensions returns the size label, e.g. "2750mm x 1850mm".
func (m Material) Dimensions() string {
	return fmt.Sprintf("%gmm x %gmm", m.Width, m.Height)
}

// Area returns the sheet area in mm².
func (m Material) Area() float64 {
	return m.Width * m.Height
}

// Center returns the middle of the sheet.
func (m Material) Center() Vector {
	return Vector{X: m.Width / 2, Y: m.Height / 2}
}

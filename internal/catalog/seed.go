package catalog

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/piwi3910/SlabLayout/internal/model"
)

// seedFile is the TOML layout of a catalog seed:
//
//	[[material]]
//	id = "1"
//	name = "Chapa A"
//	width = 2750
//	height = 1850
//
//	[[part]]
//	id = "101"
//	name = "Peça A"
//	quantity = 2
//	shape = "circle"
//	radius = 600
type seedFile struct {
	Materials []seedMaterial `toml:"material"`
	Parts     []seedPart     `toml:"part"`
}

type seedMaterial struct {
	ID     string  `toml:"id"`
	Name   string  `toml:"name"`
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
}

type seedPart struct {
	ID       string `toml:"id"`
	Name     string `toml:"name"`
	Quantity int    `toml:"quantity"`

	// "rectangle" (default), "circle" or "polygon"
	Shape  string  `toml:"shape"`
	Unit   string  `toml:"unit,omitempty"`
	Width  float64 `toml:"width,omitempty"`
	Height float64 `toml:"height,omitempty"`
	Radius float64 `toml:"radius,omitempty"`
	Sides  int     `toml:"sides,omitempty"`
	Side   float64 `toml:"side,omitempty"`

	BorderStyle string `toml:"border_style,omitempty"`
	BorderColor string `toml:"border_color,omitempty"`
	FillColor   string `toml:"fill_color,omitempty"`
}

func (sp seedPart) toPart() (model.CatalogPart, error) {
	id := sp.ID
	if id == "" {
		id = model.NewID()
	}
	unit := model.UnitMM
	if sp.Unit != "" {
		u, ok := model.ParseUnit(sp.Unit)
		if !ok {
			return model.CatalogPart{}, fmt.Errorf("part %q: unknown unit %q", sp.Name, sp.Unit)
		}
		unit = u
	}

	var shape model.Shape
	switch strings.ToLower(sp.Shape) {
	case "", "rectangle", "rect":
		w, h := sp.Width, sp.Height
		if w == 0 && h == 0 {
			w, h = model.DefaultPartSize, model.DefaultPartSize
			unit = model.UnitMM
		}
		rect := model.NewRectangle(id, w, h)
		for i := range rect.Sides {
			rect.Sides[i].Unit = unit
		}
		shape = rect
	case "circle":
		shape = model.NewCircle(id, sp.Radius, unit)
	case "polygon":
		shape = model.NewRegularPolygon(id, sp.Sides, sp.Side, unit)
	default:
		return model.CatalogPart{}, fmt.Errorf("part %q: shape %q: %w", sp.Name, sp.Shape, model.ErrInvalidShape)
	}
	if err := model.Validate(shape); err != nil {
		return model.CatalogPart{}, fmt.Errorf("part %q: %w", sp.Name, err)
	}

	attrs := model.DefaultAttributes()
	if sp.BorderStyle != "" {
		attrs.BorderStyle = model.ParseBorderStyle(sp.BorderStyle)
	}
	if sp.BorderColor != "" {
		attrs.BorderColor = sp.BorderColor
	}
	if sp.FillColor != "" {
		attrs.FillColor = sp.FillColor
	}
	return model.CatalogPart{
		ID:         id,
		Name:       sp.Name,
		Shape:      shape,
		Quantity:   sp.Quantity,
		Attributes: attrs,
	}, nil
}

func fromPart(p model.CatalogPart) seedPart {
	sp := seedPart{
		ID:          p.ID,
		Name:        p.Name,
		Quantity:    p.Quantity,
		BorderStyle: string(p.BorderStyle),
		BorderColor: p.BorderColor,
		FillColor:   p.FillColor,
	}
	switch sh := p.Shape.(type) {
	case *model.Circle:
		sp.Shape = "circle"
		sp.Radius = sh.Radius
		sp.Unit = string(sh.Unit)
	case *model.Polygon:
		if w, h, ok := sh.RectSize(); ok {
			sp.Shape = "rectangle"
			sp.Width, sp.Height = w, h
			sp.Unit = string(model.UnitMM)
		} else {
			sp.Shape = "polygon"
			sp.Sides = len(sh.Sides)
			sp.Side = sh.MeanSide()
			sp.Unit = string(model.UnitMM)
		}
	}
	return sp
}

// DecodeSeed parses a TOML catalog seed.
func DecodeSeed(r io.Reader) ([]model.CatalogPart, []model.Material, error) {
	var f seedFile
	if _, err := toml.NewDecoder(r).Decode(&f); err != nil {
		return nil, nil, fmt.Errorf("decode seed: %w", err)
	}

	parts := make([]model.CatalogPart, 0, len(f.Parts))
	for _, sp := range f.Parts {
		p, err := sp.toPart()
		if err != nil {
			return nil, nil, err
		}
		parts = append(parts, p)
	}

	materials := make([]model.Material, 0, len(f.Materials))
	for _, sm := range f.Materials {
		if sm.Width <= 0 || sm.Height <= 0 {
			return nil, nil, fmt.Errorf("material %q: %w", sm.Name, model.ErrInvalidGeometry)
		}
		id := sm.ID
		if id == "" {
			id = model.NewID()
		}
		materials = append(materials, model.Material{ID: id, Name: sm.Name, Width: sm.Width, Height: sm.Height})
	}
	return parts, materials, nil
}

// EncodeSeed writes parts and materials in the seed format.
func EncodeSeed(w io.Writer, parts []model.CatalogPart, materials []model.Material) error {
	var f seedFile
	for _, m := range materials {
		f.Materials = append(f.Materials, seedMaterial(m))
	}
	for _, p := range parts {
		f.Parts = append(f.Parts, fromPart(p))
	}
	return toml.NewEncoder(w).Encode(f)
}

// LoadSeed reads a TOML seed file into a new in-memory catalog.
func LoadSeed(path string) (*Memory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	parts, materials, err := DecodeSeed(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return NewMemory(parts, materials), nil
}

package model

import "time"

// Summary is the area accounting of a layout. It is derived on demand and
// never stored.
type Summary struct {
	UsedArea    float64 `json:"used_area"`  // mm²
	TotalArea   float64 `json:"total_area"` // mm²
	Utilization float64 `json:"utilization"`
	PieceCount  int     `json:"piece_count"`
}

// Summarize sums the area of the placed shapes against the material.
// Overlapping or off-sheet pieces are counted in full.
func Summarize(material Material, shapes []DrawableShape) Summary {
	s := Summary{TotalArea: material.Area()}
	for _, d := range shapes {
		if d.Shape == nil {
			continue
		}
		s.UsedArea += Area(d.Shape)
		s.PieceCount++
	}
	if s.TotalArea > 0 {
		s.Utilization = s.UsedArea / s.TotalArea
	}
	return s
}

// Percent returns the utilization as a percentage.
func (s Summary) Percent() float64 {
	return s.Utilization * 100
}

// UsedCm2 returns the used area in cm².
func (s Summary) UsedCm2() float64 {
	return s.UsedArea / 100
}

// TotalCm2 returns the sheet area in cm².
func (s Summary) TotalCm2() float64 {
	return s.TotalArea / 100
}

// Layout is a saved editing session: the sheet, the placed pieces and the
// catalog quantities the session started from.
type Layout struct {
	Name      string          `json:"name"`
	SavedAt   time.Time       `json:"saved_at"`
	Material  Material        `json:"material"`
	Margin    float64         `json:"margin"`
	Parts     []CatalogPart   `json:"parts"`
	Shapes    []DrawableShape `json:"shapes"`
	Machining CutSettings     `json:"machining"`
}

// NewLayout returns an empty layout on material.
func NewLayout(name string, material Material) Layout {
	return Layout{
		Name:      name,
		Material:  material,
		Margin:    DefaultMargin,
		Parts:     []CatalogPart{},
		Shapes:    []DrawableShape{},
		Machining: DefaultSettings(),
	}
}

// Summary returns the area accounting of the saved pieces.
func (l Layout) Summary() Summary {
	return Summarize(l.Material, l.Shapes)
}

// PieceNames maps every placed instance id to the name of the catalog part it
// was placed from. Pieces whose part is unknown are named by their size.
func (l Layout) PieceNames() map[string]string {
	return PieceNames(l.Parts, l.Shapes)
}

// PieceNames maps instance ids in shapes to part names from parts.
func PieceNames(parts []CatalogPart, shapes []DrawableShape) map[string]string {
	byID := make(map[string]string, len(parts))
	for _, p := range parts {
		byID[p.ID] = p.Name
	}
	names := make(map[string]string, len(shapes))
	for _, d := range shapes {
		if d.Shape == nil {
			continue
		}
		if n, ok := byID[d.PartID]; ok {
			names[d.ID()] = n
		} else {
			names[d.ID()] = Describe(d.Shape)
		}
	}
	return names
}

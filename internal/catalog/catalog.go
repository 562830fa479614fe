// Package catalog provides the part and material catalogs the editor places
// pieces from, backed by memory, TOML seed files or SQLite.
package catalog

import (
	"context"

	"github.com/piwi3910/SlabLayout/internal/model"
)

// PartCatalog stores part definitions and their available quantities.
type PartCatalog interface {
	List(ctx context.Context) ([]model.CatalogPart, error)
	// Get returns model.ErrNotFound for an unknown id.
	Get(ctx context.Context, id string) (model.CatalogPart, error)
	// Update replaces a stored part. Returns model.ErrNotFound for an unknown id.
	Update(ctx context.Context, part model.CatalogPart) (model.CatalogPart, error)
	// Create adds a part with the default 100 x 100 mm rectangle.
	Create(ctx context.Context, name string, quantity int) (model.CatalogPart, error)
	BulkCreate(ctx context.Context, reqs []model.PartRequest) ([]model.CatalogPart, error)
}

// MaterialCatalog stores the stock sheets available for layouts.
type MaterialCatalog interface {
	List(ctx context.Context) ([]model.Material, error)
	// Get returns model.ErrNotFound for an unknown id.
	Get(ctx context.Context, id string) (model.Material, error)
	Create(ctx context.Context, name string, width, height float64) (model.Material, error)
}

// DefaultParts returns the built-in demo parts.
func DefaultParts() []model.CatalogPart {
	attrs := model.DefaultAttributes()
	return []model.CatalogPart{
		{ID: "101", Name: "Peça A", Shape: model.NewCircle("101", 600, model.UnitMM), Quantity: 2, Attributes: attrs},
		{ID: "102", Name: "Peça B", Shape: model.NewRectangle("102", 564, 480), Quantity: 4, Attributes: attrs},
		{ID: "103", Name: "Peça C", Shape: model.NewRectangle("103", 564, 150), Quantity: 4, Attributes: attrs},
	}
}

// DefaultMaterials returns the built-in stock sheets.
func DefaultMaterials() []model.Material {
	return []model.Material{
		{ID: "1", Name: "Chapa A", Width: 2750, Height: 1850},
		{ID: "2", Name: "Chapa B", Width: 2750, Height: 1850},
		{ID: "3", Name: "Chapa C", Width: 2200, Height: 1600},
	}
}

// Store bundles both catalogs of one backend.
type Store interface {
	Parts() PartCatalog
	Materials() MaterialCatalog
}

package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/piwi3910/SlabLayout/internal/model"
)

// Memory is an in-memory catalog. It is safe for concurrent use.
type Memory struct {
	mu        sync.RWMutex
	parts     []model.CatalogPart
	materials []model.Material
}

// NewMemory returns a catalog holding copies of parts and materials.
func NewMemory(parts []model.CatalogPart, materials []model.Material) *Memory {
	m := &Memory{
		parts:     model.ClonePartList(parts),
		materials: append([]model.Material(nil), materials...),
	}
	if m.parts == nil {
		m.parts = []model.CatalogPart{}
	}
	return m
}

// NewDefaultMemory returns a catalog seeded with the built-in parts and materials.
func NewDefaultMemory() *Memory {
	return NewMemory(DefaultParts(), DefaultMaterials())
}

// Parts returns the part side of the catalog.
func (m *Memory) Parts() PartCatalog { return memoryParts{m} }

// Materials returns the material side of the catalog.
func (m *Memory) Materials() MaterialCatalog { return memoryMaterials{m} }

type memoryParts struct{ m *Memory }

func (p memoryParts) List(ctx context.Context) ([]model.CatalogPart, error) {
	p.m.mu.RLock()
	defer p.m.mu.RUnlock()
	return model.ClonePartList(p.m.parts), nil
}

func (p memoryParts) Get(ctx context.Context, id string) (model.CatalogPart, error) {
	p.m.mu.RLock()
	defer p.m.mu.RUnlock()
	for _, part := range p.m.parts {
		if part.ID == id {
			return part.Clone(), nil
		}
	}
	return model.CatalogPart{}, fmt.Errorf("part %q: %w", id, model.ErrNotFound)
}

func (p memoryParts) Update(ctx context.Context, part model.CatalogPart) (model.CatalogPart, error) {
	p.m.mu.Lock()
	defer p.m.mu.Unlock()
	for i := range p.m.parts {
		if p.m.parts[i].ID == part.ID {
			p.m.parts[i] = part.Clone()
			return part.Clone(), nil
		}
	}
	return model.CatalogPart{}, fmt.Errorf("part %q: %w", part.ID, model.ErrNotFound)
}

func (p memoryParts) Create(ctx context.Context, name string, quantity int) (model.CatalogPart, error) {
	part := model.NewCatalogPart(name, quantity)
	p.m.mu.Lock()
	defer p.m.mu.Unlock()
	p.m.parts = append(p.m.parts, part.Clone())
	return part, nil
}

func (p memoryParts) BulkCreate(ctx context.Context, reqs []model.PartRequest) ([]model.CatalogPart, error) {
	created := make([]model.CatalogPart, 0, len(reqs))
	for _, r := range reqs {
		created = append(created, r.ToPart())
	}
	p.m.mu.Lock()
	defer p.m.mu.Unlock()
	p.m.parts = append(p.m.parts, model.ClonePartList(created)...)
	return created, nil
}

type memoryMaterials struct{ m *Memory }

func (s memoryMaterials) List(ctx context.Context) ([]model.Material, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	out := make([]model.Material, len(s.m.materials))
	copy(out, s.m.materials)
	return out, nil
}

func (s memoryMaterials) Get(ctx context.Context, id string) (model.Material, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	for _, mat := range s.m.materials {
		if mat.ID == id {
			return mat, nil
		}
	}
	return model.Material{}, fmt.Errorf("material %q: %w", id, model.ErrNotFound)
}

func (s memoryMaterials) Create(ctx context.Context, name string, width, height float64) (model.Material, error) {
	mat := model.NewMaterial(name, width, height)
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.materials = append(s.m.materials, mat)
	return mat, nil
}

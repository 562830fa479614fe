package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/piwi3910/SlabLayout/internal/model"
)

// LayoutExt is the file extension of saved layouts.
const LayoutExt = ".slablayout.json"

// SaveLayout writes a layout to path as JSON, stamping SavedAt.
func SaveLayout(path string, l model.Layout) error {
	l.SavedAt = time.Now().UTC()
	if err := writeJSON(path, l); err != nil {
		return fmt.Errorf("save layout %s: %w", path, err)
	}
	return nil
}

// LoadLayout reads a layout written by SaveLayout.
func LoadLayout(path string) (model.Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Layout{}, fmt.Errorf("read layout: %w", err)
	}
	var l model.Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return model.Layout{}, fmt.Errorf("parse layout %s: %w", path, err)
	}
	if l.Material.Width <= 0 || l.Material.Height <= 0 {
		return model.Layout{}, fmt.Errorf("layout %s: material %q: %w", path, l.Material.Name, model.ErrInvalidGeometry)
	}
	if l.Shapes == nil {
		l.Shapes = []model.DrawableShape{}
	}
	if l.Parts == nil {
		l.Parts = []model.CatalogPart{}
	}
	if l.Machining.GCodeProfile == "" {
		l.Machining = model.DefaultSettings()
	}
	return l, nil
}

// ExportGCode writes a generated program to path.
func ExportGCode(path, code string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("export gcode: %w", err)
	}
	if err := os.WriteFile(path, []byte(code), 0644); err != nil {
		return fmt.Errorf("export gcode: %w", err)
	}
	return nil
}

package project

import (
	"encoding/json"
	"os"

	"github.com/piwi3910/SlabLayout/internal/model"
)

// CatalogFile is a portable JSON dump of a part and material catalog.
type CatalogFile struct {
	Parts     []model.CatalogPart `json:"parts"`
	Materials []model.Material    `json:"materials"`
}

// SaveCatalog writes the catalog to the specified JSON file.
// It creates parent directories if they do not exist.
func SaveCatalog(path string, c CatalogFile) error {
	return writeJSON(path, c)
}

// LoadCatalog reads a catalog from the specified JSON file.
func LoadCatalog(path string) (CatalogFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return CatalogFile{}, err
	}
	var c CatalogFile
	if err := json.Unmarshal(data, &c); err != nil {
		return CatalogFile{}, err
	}
	return c, nil
}

// MergeCatalog appends the entries of imported whose IDs are not already in
// existing. Duplicate IDs are skipped.
func MergeCatalog(existing, imported CatalogFile) CatalogFile {
	partIDs := make(map[string]bool, len(existing.Parts))
	for _, p := range existing.Parts {
		partIDs[p.ID] = true
	}
	materialIDs := make(map[string]bool, len(existing.Materials))
	for _, m := range existing.Materials {
		materialIDs[m.ID] = true
	}

	for _, p := range imported.Parts {
		if !partIDs[p.ID] {
			existing.Parts = append(existing.Parts, p)
			partIDs[p.ID] = true
		}
	}
	for _, m := range imported.Materials {
		if !materialIDs[m.ID] {
			existing.Materials = append(existing.Materials, m)
			materialIDs[m.ID] = true
		}
	}
	return existing
}

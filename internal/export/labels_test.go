package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/piwi3910/SlabLayout/internal/model"
)

func TestExportLabels_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.pdf")

	if err := ExportLabels(path, buildTestLayout()); err != nil {
		t.Fatalf("ExportLabels returned error: %v", err)
	}
	assertNonEmptyFile(t, path)
}

func TestExportLabels_NoPieces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.pdf")

	l := model.NewLayout("empty", model.NewMaterial("Chapa A", 2750, 1850))
	err := ExportLabels(path, l)
	if !errors.Is(err, ErrNothingToLabel) {
		t.Fatalf("expected ErrNothingToLabel, got %v", err)
	}
}

func TestCollectLabelInfos(t *testing.T) {
	labels := CollectLabelInfos(buildTestLayout())

	if len(labels) != 4 {
		t.Fatalf("expected 4 labels, got %d", len(labels))
	}

	first := labels[0]
	if first.PieceID != "i1" || first.PartID != "101" || first.PartName != "Peça A" {
		t.Errorf("unexpected first label %+v", first)
	}
	if first.Size != "Ø 1200 mm" {
		t.Errorf("expected circle size, got %q", first.Size)
	}
	if first.Material != "Chapa A" || first.X != 700 || first.Y != 700 {
		t.Errorf("unexpected placement on first label: %+v", first)
	}

	if labels[1].Rotation != 0 {
		t.Errorf("expected unrotated second label, got %f", labels[1].Rotation)
	}
	if labels[2].Rotation != 30 {
		t.Errorf("expected rotation 30 on third label, got %f", labels[2].Rotation)
	}
	if labels[3].PartName != "6 x 150 mm" {
		t.Errorf("expected loose piece named by size, got %q", labels[3].PartName)
	}
}

func TestLabelInfo_JSONRoundTrip(t *testing.T) {
	info := LabelInfo{
		PieceID:  "ab12cd34",
		PartID:   "102",
		PartName: "Peça B",
		Size:     "564 x 480 mm",
		Material: "Chapa A",
		X:        50,
		Y:        100,
		Rotation: 90,
	}

	data, err := json.Marshal(info)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}

	var decoded LabelInfo
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if decoded != info {
		t.Errorf("round trip mismatch: got %+v, want %+v", decoded, info)
	}
}

func TestExportLabels_ManyPieces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "many_labels.pdf")

	l := model.NewLayout("many", model.NewMaterial("Large Board", 5000, 3000))
	part := model.NewCatalogPart("Tira", 35)
	l.Parts = []model.CatalogPart{part}
	// 35 pieces spill onto a second label page
	for i := 0; i < 35; i++ {
		l.Shapes = append(l.Shapes, part.Place(fmt.Sprintf("p%02d", i), model.V(float64(60+i*110), 60)))
	}

	if err := ExportLabels(path, l); err != nil {
		t.Fatalf("ExportLabels returned error: %v", err)
	}
	assertNonEmptyFile(t, path)
}

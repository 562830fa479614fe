package ui

import (
	"io"
	"path/filepath"
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/SlabLayout/internal/catalog"
	"github.com/piwi3910/SlabLayout/internal/importer"
	"github.com/piwi3910/SlabLayout/internal/model"
	"github.com/piwi3910/SlabLayout/internal/project"
)

func newTestApp(t *testing.T, opts Options) *App {
	t.Helper()
	application := test.NewTempApp(t)
	w := application.NewWindow("test")
	t.Cleanup(w.Close)

	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Config.HistoryDepth == 0 {
		opts.Config = model.DefaultAppConfig()
	}
	a, err := NewApp(application, w, catalog.NewDefaultMemory(), opts)
	require.NoError(t, err)
	w.SetContent(a.Build())
	return a
}

func TestNewApp_MaterialSelection(t *testing.T) {
	a := newTestApp(t, Options{})
	assert.Equal(t, "1", a.session.Material().ID)

	cfg := model.DefaultAppConfig()
	cfg.DefaultMaterial = "3"
	a = newTestApp(t, Options{Config: cfg})
	assert.Equal(t, "3", a.session.Material().ID)

	a = newTestApp(t, Options{Config: cfg, MaterialID: "2"})
	assert.Equal(t, "2", a.session.Material().ID)
}

func TestNewApp_UnknownMaterial(t *testing.T) {
	application := test.NewTempApp(t)
	w := application.NewWindow("test")
	defer w.Close()

	_, err := NewApp(application, w, catalog.NewDefaultMemory(), Options{MaterialID: "nope"})
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestApp_AddPartAndUndo(t *testing.T) {
	a := newTestApp(t, Options{})
	assert.True(t, a.undoBtn.Disabled())

	a.addPart("102")
	require.Len(t, a.session.Shapes(), 1)
	assert.Contains(t, a.summaryLabel.Text, "1 pieces")
	assert.False(t, a.undoBtn.Disabled())

	a.undo()
	assert.Empty(t, a.session.Shapes())
	assert.True(t, a.undoBtn.Disabled())
	assert.False(t, a.redoBtn.Disabled())

	a.redo()
	assert.Len(t, a.session.Shapes(), 1)
}

func TestApp_MarginEntry(t *testing.T) {
	a := newTestApp(t, Options{})
	a.marginEntry.SetText("12.5")
	assert.Equal(t, 12.5, a.session.Margin())

	a.marginEntry.SetText("abc")
	assert.Equal(t, 12.5, a.session.Margin())
}

func TestApp_MaterialSelect(t *testing.T) {
	a := newTestApp(t, Options{})
	a.materialSelect.SetSelected(materialLabel(a.materials[2]))
	assert.Equal(t, "3", a.session.Material().ID)
}

func TestApp_HandleImportResult(t *testing.T) {
	a := newTestApp(t, Options{})
	before := len(a.session.Parts())

	a.handleImportResult(importer.ImportResult{
		Requests: []model.PartRequest{
			{Name: "Tampo", Quantity: 2, Shape: model.NewRectangle("", 600, 400)},
			{Name: "Porta", Quantity: 1},
		},
		Warnings: []string{"row 4: skipped"},
	})

	parts := a.session.Parts()
	require.Len(t, parts, before+2)
	assert.Equal(t, "Tampo", parts[before].Name)
	assert.NotEmpty(t, parts[before].ID)
}

func TestApp_SaveAndLoadLayout(t *testing.T) {
	a := newTestApp(t, Options{})
	a.addPart("101")
	a.addPart("103")
	path := filepath.Join(t.TempDir(), "job"+project.LayoutExt)

	a.saveLayoutTo(path)
	assert.Equal(t, "job", a.layoutName)
	assert.Equal(t, []string{path}, a.config.RecentLayouts)

	a.session.Clear()
	a.loadLayoutFrom(path)
	assert.Len(t, a.session.Shapes(), 2)
	assert.False(t, a.session.CanUndo())
	assert.Equal(t, path, a.layoutPath)
}

func TestApp_MergeCatalog(t *testing.T) {
	a := newTestApp(t, Options{})
	existing, err := a.catalogFile()
	require.NoError(t, err)

	extra := model.NewCatalogPart("Lateral", 3)
	extra.FillColor = "#ff0000"
	imported := project.CatalogFile{
		Parts:     append(existing.Parts, extra),
		Materials: []model.Material{{ID: "99", Name: "Chapa Z", Width: 1000, Height: 500}},
	}

	added, err := a.mergeCatalog(imported)
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	after, err := a.catalogFile()
	require.NoError(t, err)
	require.Len(t, after.Parts, len(existing.Parts)+1)
	assert.Equal(t, "#ff0000", after.Parts[len(after.Parts)-1].FillColor)
	assert.Len(t, a.materials, 4)
}

func TestExportLayout_UnknownFormat(t *testing.T) {
	err := exportLayout("svg", filepath.Join(t.TempDir(), "x"), model.Layout{})
	assert.Error(t, err)
}

func TestShapeForm(t *testing.T) {
	test.NewTempApp(t)
	f := newShapeForm(model.UnitCM)

	f.width.SetText("60")
	f.height.SetText("40")
	s, err := f.shape("x")
	require.NoError(t, err)
	w, h, ok := s.(*model.Polygon).RectSize()
	require.True(t, ok)
	assert.InDelta(t, 600, w, 1e-9)
	assert.InDelta(t, 400, h, 1e-9)

	f.kind.SetSelected(kindCircle)
	s, err = f.shape("x")
	require.NoError(t, err)
	assert.InDelta(t, 600, s.(*model.Circle).CanonicalRadius(), 1e-9)

	f.kind.SetSelected(kindPolygon)
	f.sides.SetText("2")
	_, err = f.shape("x")
	assert.Error(t, err)

	f.kind.SetSelected(kindRectangle)
	f.width.SetText("-1")
	_, err = f.shape("x")
	assert.Error(t, err)
}

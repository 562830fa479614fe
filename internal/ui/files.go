package ui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"

	"github.com/piwi3910/SlabLayout/internal/export"
	"github.com/piwi3910/SlabLayout/internal/gcode"
	"github.com/piwi3910/SlabLayout/internal/importer"
	"github.com/piwi3910/SlabLayout/internal/model"
	"github.com/piwi3910/SlabLayout/internal/project"
	"github.com/piwi3910/SlabLayout/internal/ui/widgets"
)

// ─── Layouts ───────────────────────────────────────────────

func (a *App) newLayout() {
	dialog.ShowConfirm("New layout",
		"Start a new layout? Unsaved changes are lost.",
		func(ok bool) {
			if !ok {
				return
			}
			l := model.NewLayout("Untitled", a.session.Material())
			l.Margin = a.session.Margin()
			l.Parts = a.session.Layout("").Parts
			a.session.RestoreLayout(l)
			a.layoutName = l.Name
			a.layoutPath = ""
			a.refresh()
		}, a.window)
}

func (a *App) saveLayout() {
	if a.layoutPath != "" {
		a.saveLayoutTo(a.layoutPath)
		return
	}
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		defer writer.Close()
		a.saveLayoutTo(writer.URI().Path())
	}, a.window)
	d.SetFileName(a.layoutName + project.LayoutExt)
	d.Show()
}

func (a *App) saveLayoutTo(path string) {
	name := strings.TrimSuffix(filepath.Base(path), project.LayoutExt)
	if err := project.SaveLayout(path, a.session.Layout(name)); err != nil {
		dialog.ShowError(err, a.window)
		return
	}
	a.layoutName = name
	a.layoutPath = path
	a.rememberLayout(path)
	a.logger.Info("layout saved", "path", path, "pieces", len(a.session.Shapes()))
	a.refresh()
}

func (a *App) openLayout() {
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		defer reader.Close()
		a.loadLayoutFrom(reader.URI().Path())
	}, a.window)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".json"}))
	d.Show()
}

func (a *App) loadLayoutFrom(path string) {
	l, err := project.LoadLayout(path)
	if err != nil {
		dialog.ShowError(err, a.window)
		return
	}
	a.session.RestoreLayout(l)
	a.layoutName = l.Name
	a.layoutPath = path
	a.rememberLayout(path)

	a.marginEntry.SetText(fmt.Sprintf("%g", l.Margin))
	if !a.knownMaterial(l.Material.ID) {
		a.materials = append(a.materials, l.Material)
	}
	a.reloadMaterialOptions()
	a.logger.Info("layout opened", "path", path, "pieces", len(l.Shapes))
	a.refresh()
}

func (a *App) knownMaterial(id string) bool {
	for _, m := range a.materials {
		if m.ID == id {
			return true
		}
	}
	return false
}

func (a *App) rememberLayout(path string) {
	a.config.AddRecentLayout(path)
	if err := a.saveConfig(); err != nil {
		a.logger.Warn("could not save settings", "err", err)
	}
	a.SetupMenus()
}

// ─── Import ────────────────────────────────────────────────

func (a *App) importParts() {
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		defer reader.Close()
		a.handleImportResult(importer.ImportFile(reader.URI().Path()))
	}, a.window)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".csv", ".tsv", ".txt", ".xlsx", ".xls", ".dxf"}))
	d.Show()
}

func (a *App) handleImportResult(result importer.ImportResult) {
	if len(result.Errors) > 0 {
		errorMsg := "Errors encountered during import:\n\n" + strings.Join(result.Errors, "\n")
		dialog.ShowError(fmt.Errorf("%s", errorMsg), a.window)
	}
	for _, w := range result.Warnings {
		a.logger.Warn("import", "warning", w)
	}
	if len(result.Requests) == 0 {
		return
	}

	created, err := a.store.Parts().BulkCreate(context.Background(), result.Requests)
	if err != nil {
		dialog.ShowError(err, a.window)
		return
	}
	a.session.AddCatalogParts(created...)
	a.refresh()

	msg := fmt.Sprintf("Imported %d parts.", len(created))
	if len(result.Errors) > 0 {
		msg += fmt.Sprintf("\n\n%d rows had errors and were skipped.", len(result.Errors))
	}
	dialog.ShowInformation("Import Complete", msg, a.window)
}

// ─── Export ────────────────────────────────────────────────

var exportExtensions = map[string]string{
	"pdf":    ".pdf",
	"labels": "-labels.pdf",
	"dxf":    ".dxf",
	"png":    ".png",
}

// exportLayout writes l to path in format, one of the exportExtensions keys.
func exportLayout(format, path string, l model.Layout) error {
	switch format {
	case "pdf":
		return export.ExportPDF(path, l)
	case "labels":
		return export.ExportLabels(path, l)
	case "dxf":
		return export.ExportDXF(path, l)
	case "png":
		return export.ExportPNG(path, l, export.DefaultPNGWidth)
	}
	return fmt.Errorf("unknown export format %q", format)
}

func (a *App) exportFile(format string) {
	l := a.session.Layout(a.layoutName)
	if len(l.Shapes) == 0 {
		dialog.ShowInformation("Nothing to export", "Place some pieces on the sheet first.", a.window)
		return
	}
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		defer writer.Close()
		path := writer.URI().Path()
		if err := exportLayout(format, path, l); err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		a.logger.Info("layout exported", "format", format, "path", path)
		dialog.ShowInformation("Export Complete", fmt.Sprintf("Saved to %s", path), a.window)
	}, a.window)
	d.SetFileName(a.layoutName + exportExtensions[format])
	d.Show()
}

// exportGCode previews the program for the current layout and saves it on
// confirmation.
func (a *App) exportGCode() {
	l := a.session.Layout(a.layoutName)
	if len(l.Shapes) == 0 {
		dialog.ShowInformation("Nothing to export", "Place some pieces on the sheet first.", a.window)
		return
	}
	l.Machining = a.config.Machining
	code := gcode.New(l.Machining).Generate(l)

	preview := dialog.NewCustomConfirm("G-code Preview", "Save...", "Close",
		widgets.RenderGCodePreview(l, code),
		func(save bool) {
			if save {
				a.saveGCodeFile(code, a.layoutName+".gcode")
			}
		}, a.window)
	preview.Resize(fyne.NewSize(760, 560))
	preview.Show()
}

func (a *App) saveGCodeFile(code, defaultName string) {
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		defer writer.Close()
		if err := project.ExportGCode(writer.URI().Path(), code); err != nil {
			dialog.ShowError(err, a.window)
		} else {
			dialog.ShowInformation("Export Complete",
				fmt.Sprintf("GCode saved to %s", writer.URI().Path()), a.window)
		}
	}, a.window)
	d.SetFileName(defaultName)
	d.Show()
}

// ─── Backup ────────────────────────────────────────────────

func (a *App) catalogFile() (project.CatalogFile, error) {
	ctx := context.Background()
	parts, err := a.store.Parts().List(ctx)
	if err != nil {
		return project.CatalogFile{}, err
	}
	materials, err := a.store.Materials().List(ctx)
	if err != nil {
		return project.CatalogFile{}, err
	}
	return project.CatalogFile{Parts: parts, Materials: materials}, nil
}

func (a *App) backupData() {
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		defer writer.Close()
		c, err := a.catalogFile()
		if err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		if err := project.ExportAllData(writer.URI().Path(), a.config, c); err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		dialog.ShowInformation("Backup Complete",
			fmt.Sprintf("%d parts and %d materials saved.", len(c.Parts), len(c.Materials)), a.window)
	}, a.window)
	d.SetFileName("slablayout-backup.json")
	d.Show()
}

// restoreBackup applies a backup's settings and adds its catalog entries
// that are not already in the store.
func (a *App) restoreBackup() {
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		defer reader.Close()
		backup, err := project.ImportAllData(reader.URI().Path())
		if err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		added, err := a.mergeCatalog(backup.Catalog)
		if err != nil {
			dialog.ShowError(err, a.window)
			return
		}

		a.config = backup.Config
		if err := a.saveConfig(); err != nil {
			a.logger.Warn("could not save settings", "err", err)
		}
		a.app.Settings().SetTheme(newEditorTheme(a.config.Theme))
		a.SetupMenus()
		a.refresh()
		dialog.ShowInformation("Restore Complete", fmt.Sprintf("%d catalog entries added.", added), a.window)
	}, a.window)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".json"}))
	d.Show()
}

// mergeCatalog stores the entries of imported whose ids the store does not
// hold yet and returns how many were added.
func (a *App) mergeCatalog(imported project.CatalogFile) (int, error) {
	existing, err := a.catalogFile()
	if err != nil {
		return 0, err
	}
	merged := project.MergeCatalog(existing, imported)
	newParts := merged.Parts[len(existing.Parts):]
	newMaterials := merged.Materials[len(existing.Materials):]

	ctx := context.Background()
	reqs := make([]model.PartRequest, len(newParts))
	for i, p := range newParts {
		reqs[i] = model.PartRequest{Name: p.Name, Quantity: p.Quantity, Shape: p.Shape}
	}
	created, err := a.store.Parts().BulkCreate(ctx, reqs)
	if err != nil {
		return 0, err
	}
	for i := range created {
		created[i].Attributes = newParts[i].Attributes
		if created[i], err = a.store.Parts().Update(ctx, created[i]); err != nil {
			return 0, err
		}
	}
	a.session.AddCatalogParts(created...)

	for _, m := range newMaterials {
		stored, err := a.store.Materials().Create(ctx, m.Name, m.Width, m.Height)
		if err != nil {
			return 0, err
		}
		a.materials = append(a.materials, stored)
	}
	a.reloadMaterialOptions()
	return len(created) + len(newMaterials), nil
}

// Package ui is the desktop layout editor: a parts panel, the sheet canvas
// and the toolbar, menus and dialogs around them.
package ui

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/charmbracelet/log"
	ttwidget "github.com/dweymouth/fyne-tooltip/widget"

	"github.com/piwi3910/SlabLayout/internal/catalog"
	"github.com/piwi3910/SlabLayout/internal/editor"
	"github.com/piwi3910/SlabLayout/internal/model"
	"github.com/piwi3910/SlabLayout/internal/project"
	"github.com/piwi3910/SlabLayout/internal/ui/widgets"
)

// Options configures an App.
type Options struct {
	Config     model.AppConfig
	ConfigPath string // where settings are saved; empty disables saving
	MaterialID string // sheet to start on; empty uses the configured default
	Logger     *log.Logger
}

// App holds the editing session and the widgets that show it.
type App struct {
	app    fyne.App
	window fyne.Window
	store  catalog.Store
	logger *log.Logger

	config     model.AppConfig
	configPath string

	session    *editor.Session
	materials  []model.Material
	layoutName string
	layoutPath string

	canvas         *widgets.LayoutCanvas
	partsContainer *fyne.Container
	summaryLabel   *widget.Label
	warningLabel   *widget.Label
	undoBtn        *ttwidget.Button
	redoBtn        *ttwidget.Button
	marginEntry    *widget.Entry
	materialSelect *widget.Select
}

// NewApp loads the catalog from store and starts an empty session.
func NewApp(application fyne.App, window fyne.Window, store catalog.Store, opts Options) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	cfg := opts.Config
	cfg.Normalize()

	a := &App{
		app:        application,
		window:     window,
		store:      store,
		logger:     logger,
		config:     cfg,
		configPath: opts.ConfigPath,
		layoutName: "Untitled",
	}

	ctx := context.Background()
	parts, err := store.Parts().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load parts: %w", err)
	}
	a.materials, err = store.Materials().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load materials: %w", err)
	}
	if len(a.materials) == 0 {
		return nil, fmt.Errorf("catalog has no materials: %w", model.ErrNotFound)
	}

	materialID := opts.MaterialID
	if materialID == "" {
		materialID = cfg.DefaultMaterial
	}
	material := a.materials[0]
	if materialID != "" {
		m, err := store.Materials().Get(ctx, materialID)
		if err != nil {
			return nil, err
		}
		material = m
	}

	a.session = editor.NewSession(material, parts,
		editor.WithLogger(logger),
		editor.WithMargin(cfg.DefaultMargin),
		editor.WithHistoryDepth(cfg.HistoryDepth))

	application.Settings().SetTheme(newEditorTheme(cfg.Theme))
	return a, nil
}

// Session returns the editing session behind the window.
func (a *App) Session() *editor.Session { return a.session }

// SetupMenus creates the native menu bar for the application.
func (a *App) SetupMenus() {
	recent := fyne.NewMenuItem("Open Recent", nil)
	recent.ChildMenu = a.recentMenu()

	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("New Layout", a.newLayout),
		fyne.NewMenuItem("Open Layout...", a.openLayout),
		recent,
		fyne.NewMenuItem("Save Layout...", a.saveLayout),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Import Parts (CSV, Excel, DXF)...", a.importParts),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Export PDF...", func() { a.exportFile("pdf") }),
		fyne.NewMenuItem("Export Labels...", func() { a.exportFile("labels") }),
		fyne.NewMenuItem("Export DXF...", func() { a.exportFile("dxf") }),
		fyne.NewMenuItem("Export PNG...", func() { a.exportFile("png") }),
		fyne.NewMenuItem("Export G-code...", a.exportGCode),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Backup All Data...", a.backupData),
		fyne.NewMenuItem("Restore Backup...", a.restoreBackup),
	)

	editMenu := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Undo", a.undo),
		fyne.NewMenuItem("Redo", a.redo),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Clear Sheet", a.confirmClear),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Settings...", a.showSettingsDialog),
	)

	catalogMenu := fyne.NewMenu("Catalog",
		fyne.NewMenuItem("New Part...", a.showAddPartDialog),
		fyne.NewMenuItem("New Material...", a.showAddMaterialDialog),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("Mouse Controls", a.showControlsHelp),
		fyne.NewMenuItem("About", a.showAboutDialog),
	)

	a.window.SetMainMenu(fyne.NewMainMenu(fileMenu, editMenu, catalogMenu, helpMenu))
	a.registerShortcuts()
}

func (a *App) registerShortcuts() {
	c := a.window.Canvas()
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierShortcutDefault},
		func(fyne.Shortcut) { a.undo() })
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyY, Modifier: fyne.KeyModifierShortcutDefault},
		func(fyne.Shortcut) { a.redo() })
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyS, Modifier: fyne.KeyModifierShortcutDefault},
		func(fyne.Shortcut) { a.saveLayout() })
}

func (a *App) recentMenu() *fyne.Menu {
	var items []*fyne.MenuItem
	for _, path := range a.config.RecentLayouts {
		items = append(items, fyne.NewMenuItem(path, func() { a.loadLayoutFrom(path) }))
	}
	if len(items) == 0 {
		none := fyne.NewMenuItem("(none)", nil)
		none.Disabled = true
		items = append(items, none)
	}
	return fyne.NewMenu("", items...)
}

func (a *App) showAboutDialog() {
	dialog.ShowInformation("About SlabLayout",
		"SlabLayout: interactive cut layout editor\n\n"+
			"Place parts from the catalog onto a sheet, keep them apart by the\n"+
			"clearance margin and export the result for cutting.",
		a.window)
}

func (a *App) showControlsHelp() {
	dialog.ShowInformation("Mouse Controls",
		"Drag a piece to move it.\n"+
			"Ctrl (Cmd) + drag scales it.\n"+
			"Alt + drag rotates it.\n"+
			"Right click a piece to edit or remove it.",
		a.window)
}

// Build constructs the full UI and returns the root container.
func (a *App) Build() fyne.CanvasObject {
	a.canvas = widgets.NewLayoutCanvas(a.session)
	a.canvas.OnCommit = a.refresh
	a.canvas.Logger = a.logger
	a.canvas.OnSecondaryTap = a.showPieceMenu

	a.summaryLabel = widget.NewLabel("")
	a.warningLabel = widget.NewLabel("")
	a.warningLabel.Importance = widget.WarningImportance

	left := container.NewBorder(
		container.NewHBox(
			widget.NewLabelWithStyle("Parts", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
			layout.NewSpacer(),
			toolbarButton(theme.ContentAddIcon(), "New part", "", a.showAddPartDialog),
			toolbarButton(theme.FolderOpenIcon(), "Import parts", "", a.importParts),
		),
		nil, nil, nil,
		container.NewVScroll(a.buildPartsPanel()),
	)

	center := container.NewBorder(
		a.buildToolbar(),
		container.NewVBox(a.summaryLabel, a.warningLabel),
		nil, nil,
		a.canvas,
	)

	split := container.NewHSplit(left, center)
	split.Offset = 0.28

	a.refresh()
	return split
}

func (a *App) buildToolbar() fyne.CanvasObject {
	a.undoBtn = toolbarButton(theme.ContentUndoIcon(), "Undo", "Ctrl+Z", a.undo)
	a.redoBtn = toolbarButton(theme.ContentRedoIcon(), "Redo", "Ctrl+Y", a.redo)
	clearBtn := toolbarButton(theme.DeleteIcon(), "Clear sheet", "", a.confirmClear)

	a.marginEntry = widget.NewEntry()
	a.marginEntry.SetText(strconv.FormatFloat(a.session.Margin(), 'f', -1, 64))
	a.marginEntry.OnChanged = func(text string) {
		if v, err := strconv.ParseFloat(text, 64); err == nil {
			a.session.SetMargin(v)
			a.refresh()
		}
	}

	names := make([]string, len(a.materials))
	for i, m := range a.materials {
		names[i] = materialLabel(m)
	}
	a.materialSelect = widget.NewSelect(names, func(selected string) {
		for _, m := range a.materials {
			if materialLabel(m) == selected && m.ID != a.session.Material().ID {
				a.session.SetMaterial(m)
				a.refresh()
				return
			}
		}
	})
	a.materialSelect.SetSelected(materialLabel(a.session.Material()))

	return container.NewHBox(
		a.undoBtn, a.redoBtn, clearBtn,
		widget.NewSeparator(),
		widget.NewLabel("Margin (mm)"), container.NewGridWrap(fyne.NewSize(70, a.marginEntry.MinSize().Height), a.marginEntry),
		widget.NewSeparator(),
		widget.NewLabel("Material"), a.materialSelect,
		toolbarButton(theme.ContentAddIcon(), "New material", "", a.showAddMaterialDialog),
	)
}

func materialLabel(m model.Material) string {
	return fmt.Sprintf("%s (%s)", m.Name, m.Dimensions())
}

// ─── Parts Panel ───────────────────────────────────────────

func (a *App) buildPartsPanel() fyne.CanvasObject {
	a.partsContainer = container.NewVBox()
	return a.partsContainer
}

func (a *App) refreshPartsList() {
	a.partsContainer.RemoveAll()

	parts := a.session.Parts()
	if len(parts) == 0 {
		a.partsContainer.Add(widget.NewLabel("The catalog is empty. Add or import parts to begin."))
		return
	}

	for _, p := range parts {
		id := p.ID
		addBtn := widget.NewButtonWithIcon("", theme.ContentAddIcon(), func() { a.addPart(id) })
		if p.Quantity <= 0 {
			addBtn.Disable()
		}
		editBtn := widget.NewButtonWithIcon("", theme.DocumentCreateIcon(), func() { a.showPartConfigDialog(id) })

		info := container.NewVBox(
			widget.NewLabelWithStyle(p.Name, fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
			widget.NewLabel(fmt.Sprintf("%s, %d left", model.Describe(p.Shape), p.Quantity)),
		)
		a.partsContainer.Add(container.NewBorder(nil, nil, nil, container.NewHBox(addBtn, editBtn), info))
		a.partsContainer.Add(widget.NewSeparator())
	}
}

// ─── Actions ───────────────────────────────────────────────

// refresh brings every widget up to date with the session.
func (a *App) refresh() {
	if a.canvas == nil {
		return
	}
	a.canvas.SetNames(model.PieceNames(a.session.Parts(), a.session.Shapes()))
	a.refreshPartsList()

	a.summaryLabel.SetText(widgets.SummaryText(a.session.Summary()))
	if n := len(a.session.Conflicts()); n > 0 {
		a.warningLabel.SetText(fmt.Sprintf("%d pair(s) closer than the %.1f mm margin", n, a.session.Margin()))
	} else {
		a.warningLabel.SetText("")
	}

	setEnabled(a.undoBtn, a.session.CanUndo())
	setEnabled(a.redoBtn, a.session.CanRedo())
	a.window.SetTitle(fmt.Sprintf("SlabLayout - %s", a.layoutName))
}

func setEnabled(b *ttwidget.Button, on bool) {
	if on {
		b.Enable()
	} else {
		b.Disable()
	}
}

func (a *App) addPart(partID string) {
	if _, err := a.session.AddPart(partID); err != nil {
		if errors.Is(err, model.ErrExhaustedQuantity) {
			dialog.ShowInformation("No copies left", "Every copy of this part is already on the sheet.", a.window)
		} else {
			dialog.ShowError(err, a.window)
		}
		return
	}
	a.refresh()
}

func (a *App) undo() {
	if a.session.Undo() {
		a.refresh()
	}
}

func (a *App) redo() {
	if a.session.Redo() {
		a.refresh()
	}
}

func (a *App) confirmClear() {
	dialog.ShowConfirm("Clear sheet",
		"Remove every piece from the sheet? This can be undone.",
		func(ok bool) {
			if !ok {
				return
			}
			a.session.Clear()
			a.refresh()
		}, a.window)
}

func (a *App) showPieceMenu(id string, at fyne.Position) {
	menu := fyne.NewMenu("",
		fyne.NewMenuItem("Appearance...", func() { a.showPieceDialog(id) }),
		fyne.NewMenuItem("Remove", func() {
			if err := a.session.Remove(id); err != nil {
				dialog.ShowError(err, a.window)
				return
			}
			a.refresh()
		}),
	)
	widget.ShowPopUpMenuAtPosition(menu, a.window.Canvas(), at)
}

func (a *App) saveConfig() error {
	if a.configPath == "" {
		return nil
	}
	return project.SaveAppConfig(a.configPath, a.config)
}

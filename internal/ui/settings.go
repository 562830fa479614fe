package ui

import (
	"fmt"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/piwi3910/SlabLayout/internal/model"
)

func floatEntry(val *float64) *widget.Entry {
	e := widget.NewEntry()
	e.SetText(strconv.FormatFloat(*val, 'f', -1, 64))
	e.OnChanged = func(text string) {
		if v, err := strconv.ParseFloat(text, 64); err == nil {
			*val = v
		}
	}
	return e
}

func intEntry(val *int) *widget.Entry {
	e := widget.NewEntry()
	e.SetText(strconv.Itoa(*val))
	e.OnChanged = func(text string) {
		if v, err := strconv.Atoi(text); err == nil {
			*val = v
		}
	}
	return e
}

// showSettingsDialog edits the editor defaults and the machining settings
// used for G-code export. Changes are saved to the config file.
func (a *App) showSettingsDialog() {
	cfg := a.config

	themeSelect := widget.NewSelect([]string{"system", "light", "dark"}, func(selected string) {
		cfg.Theme = selected
	})
	themeSelect.SetSelected(cfg.Theme)

	unitSelect := widget.NewSelect(unitOptions(), func(selected string) {
		if u, ok := model.ParseUnit(selected); ok {
			cfg.DefaultUnit = u
		}
	})
	unitSelect.SetSelected(cfg.DefaultUnit.String())

	materialNames := []string{""}
	for _, m := range a.materials {
		materialNames = append(materialNames, m.ID)
	}
	materialSelect := widget.NewSelect(materialNames, func(selected string) {
		cfg.DefaultMaterial = selected
	})
	materialSelect.SetSelected(cfg.DefaultMaterial)

	editorSection := widget.NewCard("Editor", "",
		container.NewGridWithColumns(2,
			widget.NewLabel("Theme"), themeSelect,
			widget.NewLabel("Default Margin (mm)"), floatEntry(&cfg.DefaultMargin),
			widget.NewLabel("Default Unit"), unitSelect,
			widget.NewLabel("Undo Depth"), intEntry(&cfg.HistoryDepth),
			widget.NewLabel("Default Material ID"), materialSelect,
		))

	s := &cfg.Machining
	profileSelect := widget.NewSelect(model.GetProfileNames(), func(selected string) {
		s.GCodeProfile = selected
	})
	profileSelect.SetSelected(s.GCodeProfile)

	climbCheck := widget.NewCheck("", func(b bool) { s.UseClimb = b })
	climbCheck.Checked = s.UseClimb

	machiningSection := widget.NewCard("G-code", "Tool and controller used for exported programs",
		container.NewGridWithColumns(2,
			widget.NewLabel("Controller Profile"), profileSelect,
			widget.NewLabel("Tool Diameter (mm)"), floatEntry(&s.ToolDiameter),
			widget.NewLabel("Feed Rate (mm/min)"), floatEntry(&s.FeedRate),
			widget.NewLabel("Plunge Rate (mm/min)"), floatEntry(&s.PlungeRate),
			widget.NewLabel("Spindle Speed (RPM)"), intEntry(&s.SpindleSpeed),
			widget.NewLabel("Safe Z (mm)"), floatEntry(&s.SafeZ),
			widget.NewLabel("Cut Depth (mm)"), floatEntry(&s.CutDepth),
			widget.NewLabel("Pass Depth (mm)"), floatEntry(&s.PassDepth),
			widget.NewLabel("Climb Milling"), climbCheck,
		))

	content := container.NewVScroll(container.NewVBox(editorSection, machiningSection))

	d := dialog.NewCustomConfirm("Settings", "Save", "Cancel", content, func(ok bool) {
		if !ok {
			return
		}
		cfg.Normalize()
		a.config = cfg
		a.app.Settings().SetTheme(newEditorTheme(cfg.Theme))
		if err := a.saveConfig(); err != nil {
			dialog.ShowError(fmt.Errorf("failed to save settings: %w", err), a.window)
			return
		}
		a.logger.Info("settings saved", "theme", cfg.Theme, "profile", cfg.Machining.GCodeProfile)
	}, a.window)
	d.Resize(fyne.NewSize(520, 620))
	d.Show()
}

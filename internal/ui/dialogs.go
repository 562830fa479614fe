package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/piwi3910/SlabLayout/internal/model"
)

// Shape kinds offered by the part dialog.
const (
	kindRectangle = "Rectangle"
	kindPolygon   = "Regular polygon"
	kindCircle    = "Circle"
)

func unitOptions() []string {
	var out []string
	for _, u := range model.Units() {
		out = append(out, u.String())
	}
	return out
}

func parsePositive(label, text string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%s must be a positive number", label)
	}
	return v, nil
}

// shapeForm collects the dimensions of a new part shape.
type shapeForm struct {
	kind   *widget.Select
	unit   *widget.Select
	width  *widget.Entry
	height *widget.Entry
	sides  *widget.Entry
}

func newShapeForm(defaultUnit model.Unit) *shapeForm {
	f := &shapeForm{
		unit:   widget.NewSelect(unitOptions(), nil),
		width:  widget.NewEntry(),
		height: widget.NewEntry(),
		sides:  widget.NewEntry(),
	}
	f.unit.SetSelected(defaultUnit.String())
	f.width.SetText("100")
	f.height.SetText("100")
	f.sides.SetText("6")
	f.kind = widget.NewSelect([]string{kindRectangle, kindPolygon, kindCircle}, func(kind string) {
		switch kind {
		case kindRectangle:
			f.height.Enable()
			f.sides.Disable()
		case kindPolygon:
			f.height.Disable()
			f.sides.Enable()
		case kindCircle:
			f.height.Disable()
			f.sides.Disable()
		}
	})
	f.kind.SetSelected(kindRectangle)
	return f
}

func (f *shapeForm) items() []*widget.FormItem {
	return []*widget.FormItem{
		widget.NewFormItem("Shape", f.kind),
		widget.NewFormItem("Unit", f.unit),
		widget.NewFormItem("Width / side / radius", f.width),
		widget.NewFormItem("Height", f.height),
		widget.NewFormItem("Sides", f.sides),
	}
}

// shape builds the shape described by the form, in canonical millimetres
// for rectangles and in the chosen unit otherwise.
func (f *shapeForm) shape(id string) (model.Shape, error) {
	unit, ok := model.ParseUnit(f.unit.Selected)
	if !ok {
		unit = model.UnitMM
	}
	size, err := parsePositive("Width", f.width.Text)
	if err != nil {
		return nil, err
	}

	var s model.Shape
	switch f.kind.Selected {
	case kindCircle:
		s = model.NewCircle(id, size, unit)
	case kindPolygon:
		n, err := strconv.Atoi(strings.TrimSpace(f.sides.Text))
		if err != nil || n < 3 {
			return nil, fmt.Errorf("a polygon needs at least 3 sides")
		}
		s = model.NewRegularPolygon(id, n, size, unit)
	default:
		height, err := parsePositive("Height", f.height.Text)
		if err != nil {
			return nil, err
		}
		s = model.NewRectangle(id, model.ToCanonical(size, unit), model.ToCanonical(height, unit))
	}
	if err := model.Validate(s); err != nil {
		return nil, err
	}
	return s, nil
}

// showAddPartDialog creates a catalog part and makes it placeable.
func (a *App) showAddPartDialog() {
	nameEntry := widget.NewEntry()
	nameEntry.SetPlaceHolder("Part name")
	qtyEntry := widget.NewEntry()
	qtyEntry.SetText("1")
	form := newShapeForm(a.config.DefaultUnit)

	items := append([]*widget.FormItem{
		widget.NewFormItem("Name", nameEntry),
		widget.NewFormItem("Quantity", qtyEntry),
	}, form.items()...)

	d := dialog.NewForm("New Part", "Create", "Cancel", items, func(ok bool) {
		if !ok {
			return
		}
		name := strings.TrimSpace(nameEntry.Text)
		qty, err := strconv.Atoi(strings.TrimSpace(qtyEntry.Text))
		if name == "" || err != nil || qty < 0 {
			dialog.ShowError(fmt.Errorf("a part needs a name and a non-negative quantity"), a.window)
			return
		}
		shape, err := form.shape("")
		if err != nil {
			dialog.ShowError(err, a.window)
			return
		}

		created, err := a.store.Parts().BulkCreate(context.Background(),
			[]model.PartRequest{{Name: name, Quantity: qty, Shape: shape}})
		if err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		a.session.AddCatalogParts(created...)
		a.logger.Info("part created", "name", name, "quantity", qty)
		a.refresh()
	}, a.window)
	d.Resize(fyne.NewSize(420, 420))
	d.Show()
}

// showAddMaterialDialog creates a stock sheet and adds it to the selector.
func (a *App) showAddMaterialDialog() {
	nameEntry := widget.NewEntry()
	widthEntry := widget.NewEntry()
	widthEntry.SetText("2750")
	heightEntry := widget.NewEntry()
	heightEntry.SetText("1850")

	dialog.ShowForm("New Material", "Create", "Cancel", []*widget.FormItem{
		widget.NewFormItem("Name", nameEntry),
		widget.NewFormItem("Width (mm)", widthEntry),
		widget.NewFormItem("Height (mm)", heightEntry),
	}, func(ok bool) {
		if !ok {
			return
		}
		name := strings.TrimSpace(nameEntry.Text)
		if name == "" {
			dialog.ShowError(fmt.Errorf("a material needs a name"), a.window)
			return
		}
		w, err := parsePositive("Width", widthEntry.Text)
		if err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		h, err := parsePositive("Height", heightEntry.Text)
		if err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		m, err := a.store.Materials().Create(context.Background(), name, w, h)
		if err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		a.materials = append(a.materials, m)
		a.reloadMaterialOptions()
		a.logger.Info("material created", "name", name, "size", m.Dimensions())
	}, a.window)
}

func (a *App) reloadMaterialOptions() {
	names := make([]string, len(a.materials))
	for i, m := range a.materials {
		names[i] = materialLabel(m)
	}
	a.materialSelect.SetOptions(names)
	a.materialSelect.SetSelected(materialLabel(a.session.Material()))
}

// attributesForm edits the appearance of a part or a piece.
type attributesForm struct {
	style  *widget.Select
	border *widget.Entry
	fill   *widget.Entry
}

func newAttributesForm(attrs model.Attributes) *attributesForm {
	f := &attributesForm{
		style:  widget.NewSelect([]string{string(model.BorderLinear), string(model.BorderDotted)}, nil),
		border: widget.NewEntry(),
		fill:   widget.NewEntry(),
	}
	f.style.SetSelected(string(attrs.BorderStyle))
	f.border.SetText(attrs.BorderColor)
	f.fill.SetText(attrs.FillColor)
	return f
}

func (f *attributesForm) items() []*widget.FormItem {
	return []*widget.FormItem{
		widget.NewFormItem("Border style", f.style),
		widget.NewFormItem("Border colour", f.border),
		widget.NewFormItem("Fill colour", f.fill),
	}
}

func (f *attributesForm) attributes() model.Attributes {
	return model.Attributes{
		BorderStyle: model.ParseBorderStyle(f.style.Selected),
		BorderColor: strings.TrimSpace(f.border.Text),
		FillColor:   strings.TrimSpace(f.fill.Text),
	}
}

// showPartConfigDialog edits a catalog part's name and appearance. The
// change is stored and applied to every placed copy.
func (a *App) showPartConfigDialog(partID string) {
	ctx := context.Background()
	part, err := a.store.Parts().Get(ctx, partID)
	if err != nil {
		dialog.ShowError(err, a.window)
		return
	}

	nameEntry := widget.NewEntry()
	nameEntry.SetText(part.Name)
	attrs := newAttributesForm(part.Attributes)

	items := append([]*widget.FormItem{
		widget.NewFormItem("Name", nameEntry),
		widget.NewFormItem("Shape", widget.NewLabel(model.Describe(part.Shape))),
	}, attrs.items()...)

	dialog.ShowForm("Part: "+part.Name, "Save", "Cancel", items, func(ok bool) {
		if !ok {
			return
		}
		if name := strings.TrimSpace(nameEntry.Text); name != "" {
			part.Name = name
		}
		part.Attributes = attrs.attributes()

		updated, err := a.store.Parts().Update(ctx, part)
		if err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		if err := a.session.UpdatePart(updated); err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		a.refresh()
	}, a.window)
}

// showPieceDialog edits the appearance of one placed piece.
func (a *App) showPieceDialog(id string) {
	d, ok := a.session.Shape(id)
	if !ok {
		return
	}
	attrs := newAttributesForm(d.Attributes)
	items := append([]*widget.FormItem{
		widget.NewFormItem("Piece", widget.NewLabel(model.Describe(d.Shape))),
	}, attrs.items()...)

	dialog.ShowForm("Piece Appearance", "Apply", "Cancel", items, func(ok bool) {
		if !ok {
			return
		}
		if err := a.session.UpdateAttributes(id, attrs.attributes()); err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		a.refresh()
	}, a.window)
}

// Package export renders layouts to files: a PDF sheet drawing, QR-coded
// piece labels, a DXF drawing of the sheet and its pieces, and a PNG picture.
package export

import (
	"fmt"
	"math"
	"sort"

	"github.com/go-pdf/fpdf"

	"github.com/piwi3910/SlabLayout/internal/engine"
	"github.com/piwi3910/SlabLayout/internal/model"
)

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	legendHeight = 20.0
	drawAreaTop  = marginTop + headerHeight + 5.0
)

// checkMaterial rejects layouts that have no sheet to draw on.
func checkMaterial(l model.Layout) error {
	if l.Material.Width <= 0 || l.Material.Height <= 0 {
		return fmt.Errorf("material %q is %.0f x %.0f: %w",
			l.Material.Name, l.Material.Width, l.Material.Height, model.ErrInvalidGeometry)
	}
	return nil
}

// ExportPDF writes a two page PDF: the sheet with every placed piece drawn in
// its own colours, then a summary page with utilization, per-part counts,
// clearance warnings and machining settings.
func ExportPDF(path string, l model.Layout) error {
	if err := checkMaterial(l); err != nil {
		return err
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	pdf.AddPage()
	renderSheetPage(pdf, l)

	pdf.AddPage()
	renderSummaryPage(pdf, l)

	return pdf.OutputFileAndClose(path)
}

// sheetTransform maps layout millimetres onto the page.
type sheetTransform struct {
	scale, offsetX, offsetY float64
}

func (t sheetTransform) point(v model.Vector) (float64, float64) {
	return t.offsetX + v.X*t.scale, t.offsetY + v.Y*t.scale
}

// renderSheetPage draws the material and its pieces on the current page.
func renderSheetPage(pdf *fpdf.Fpdf, l model.Layout) {
	summary := l.Summary()
	translate := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("%s: %s (%s)", layoutTitle(l), l.Material.Name, l.Material.Dimensions())
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, translate(title), "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Pieces: %d | Used area: %.2f cm² | Total area: %.2f cm² | Utilization: %.1f%% | Margin: %.1f mm",
		summary.PieceCount, summary.UsedCm2(), summary.TotalCm2(), summary.Percent(), l.Margin)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, translate(stats), "", 0, "L", false, 0, "")

	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom - legendHeight

	scale := math.Min(drawWidth/l.Material.Width, drawHeight/l.Material.Height)
	canvasW := l.Material.Width * scale
	canvasH := l.Material.Height * scale
	tr := sheetTransform{scale: scale, offsetX: marginLeft + (drawWidth-canvasW)/2, offsetY: drawAreaTop}

	// Sheet background
	pdf.SetFillColor(235, 235, 235)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.5)
	pdf.Rect(tr.offsetX, tr.offsetY, canvasW, canvasH, "FD")

	names := l.PieceNames()
	for _, d := range l.Shapes {
		if d.Shape == nil {
			continue
		}
		drawPiece(pdf, d, tr)
		drawPieceLabel(pdf, d, names[d.ID()], tr)
	}
	pdf.SetDashPattern([]float64{}, 0)

	drawDimensionAnnotations(pdf, l.Material, tr, canvasW, canvasH)
	drawPartsLegend(pdf, l, tr.offsetY+canvasH+6)
}

// drawPiece fills and strokes one piece using its attributes.
func drawPiece(pdf *fpdf.Fpdf, d model.DrawableShape, tr sheetTransform) {
	fill := hexRGB(d.FillColor, defaultFill)
	border := hexRGB(d.BorderColor, defaultBorder)
	pdf.SetFillColor(fill.R, fill.G, fill.B)
	pdf.SetDrawColor(border.R, border.G, border.B)
	pdf.SetLineWidth(0.3)
	if d.BorderStyle == model.BorderDotted {
		pdf.SetDashPattern([]float64{0.8, 0.8}, 0)
	} else {
		pdf.SetDashPattern([]float64{}, 0)
	}

	switch s := d.Shape.(type) {
	case *model.Circle:
		x, y := tr.point(s.Position)
		pdf.Circle(x, y, s.CanonicalRadius()*tr.scale, "FD")
	case *model.Polygon:
		verts := model.TransformedVertices(s)
		if len(verts) == 0 {
			return
		}
		pts := make([]fpdf.PointType, len(verts))
		for i, v := range verts {
			pts[i].X, pts[i].Y = tr.point(v)
		}
		pdf.Polygon(pts, "FD")
	}
}

// drawPieceLabel writes the part name and size at the piece centre when the
// piece is large enough on the page.
func drawPieceLabel(pdf *fpdf.Fpdf, d model.DrawableShape, name string, tr sheetTransform) {
	min, max := model.Bounds(d.Shape)
	pw := (max.X - min.X) * tr.scale
	ph := (max.Y - min.Y) * tr.scale
	if pw <= 15 || ph <= 8 {
		return
	}

	translate := pdf.UnicodeTranslatorFromDescriptor("")
	cx, cy := tr.point(d.Shape.Center())
	pdf.SetFont("Helvetica", "", labelFontSize(pw, ph))
	pdf.SetTextColor(0, 0, 0)

	label := translate(name)
	if w := pdf.GetStringWidth(label); w < pw-2 {
		pdf.SetXY(cx-w/2, cy-4)
		pdf.CellFormat(w, 4, label, "", 0, "C", false, 0, "")
	}

	dims := translate(model.Describe(d.Shape))
	if w := pdf.GetStringWidth(dims); ph > 14 && w < pw-2 {
		pdf.SetXY(cx-w/2, cy)
		pdf.CellFormat(w, 4, dims, "", 0, "C", false, 0, "")
	}
}

// drawDimensionAnnotations adds width and height labels outside the sheet rectangle.
func drawDimensionAnnotations(pdf *fpdf.Fpdf, m model.Material, tr sheetTransform, canvasW, canvasH float64) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)

	widthLabel := fmt.Sprintf("%.0f mm", m.Width)
	wLabelW := pdf.GetStringWidth(widthLabel)
	pdf.SetXY(tr.offsetX+(canvasW-wLabelW)/2, tr.offsetY+canvasH+1)
	pdf.CellFormat(wLabelW, 4, widthLabel, "", 0, "C", false, 0, "")

	heightLabel := fmt.Sprintf("%.0f mm", m.Height)
	pdf.TransformBegin()
	pdf.TransformRotate(90, tr.offsetX-3, tr.offsetY+canvasH/2)
	hLabelW := pdf.GetStringWidth(heightLabel)
	pdf.SetXY(tr.offsetX-3-hLabelW/2, tr.offsetY+canvasH/2-2)
	pdf.CellFormat(hLabelW, 4, heightLabel, "", 0, "C", false, 0, "")
	pdf.TransformEnd()

	pdf.SetTextColor(0, 0, 0)
}

// partUsage is one row of the per-part breakdown.
type partUsage struct {
	name   string
	size   string
	placed int
	left   int
	fill   rgb
}

// usageByPart counts placed instances per catalog part against the starting
// quantity. Pieces whose part is not in the layout are grouped by their size.
func usageByPart(l model.Layout) []partUsage {
	index := make(map[string]int)
	var rows []partUsage
	for _, p := range l.Parts {
		index[p.ID] = len(rows)
		size := ""
		if p.Shape != nil {
			size = model.Describe(p.Shape)
		}
		rows = append(rows, partUsage{name: p.Name, size: size, left: p.Quantity, fill: hexRGB(p.FillColor, defaultFill)})
	}
	for _, d := range l.Shapes {
		if d.Shape == nil {
			continue
		}
		key := d.PartID
		if _, ok := index[key]; !ok {
			key = "?" + model.Describe(d.Shape)
			if _, ok := index[key]; !ok {
				index[key] = len(rows)
				rows = append(rows, partUsage{name: model.Describe(d.Shape), size: model.Describe(d.Shape), fill: hexRGB(d.FillColor, defaultFill)})
			}
		}
		rows[index[key]].placed++
	}
	for i := range rows {
		rows[i].left = max(0, rows[i].left-rows[i].placed)
	}
	return rows
}

// drawPartsLegend renders a compact legend of placed parts under the sheet.
func drawPartsLegend(pdf *fpdf.Fpdf, l model.Layout, startY float64) {
	if len(l.Shapes) == 0 {
		return
	}
	translate := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, startY)
	pdf.CellFormat(30, 4, "Pieces placed:", "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	xPos := marginLeft + 32
	maxX := pageWidth - marginRight

	for _, u := range usageByPart(l) {
		if u.placed == 0 {
			continue
		}
		label := translate(fmt.Sprintf("%s (%s) x%d", u.name, u.size, u.placed))
		labelW := pdf.GetStringWidth(label) + 6

		if xPos+labelW > maxX {
			startY += 5
			xPos = marginLeft
		}

		pdf.SetFillColor(u.fill.R, u.fill.G, u.fill.B)
		pdf.Rect(xPos, startY+0.5, 3, 3, "F")

		pdf.SetXY(xPos+4, startY)
		pdf.CellFormat(labelW-4, 4, label, "", 0, "L", false, 0, "")

		xPos += labelW + 2
	}
}

// renderSummaryPage draws the summary page.
func renderSummaryPage(pdf *fpdf.Fpdf, l model.Layout) {
	translate := pdf.UnicodeTranslatorFromDescriptor("")
	summary := l.Summary()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Layout Summary", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Overall Statistics", "", 0, "L", false, 0, "")
	y += 9

	summaryItems := []struct {
		label string
		value string
	}{
		{"Material", fmt.Sprintf("%s (%s)", l.Material.Name, l.Material.Dimensions())},
		{"Pieces Placed", fmt.Sprintf("%d", summary.PieceCount)},
		{"Utilization", fmt.Sprintf("%.1f%%", summary.Percent())},
		{"Used / Total Area", fmt.Sprintf("%.2f / %.2f cm²", summary.UsedCm2(), summary.TotalCm2())},
		{"Clearance Margin", fmt.Sprintf("%.1f mm", l.Margin)},
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range summaryItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(60, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(80, 6, translate(item.value), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		y += 7
	}

	y += 5

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Part Breakdown", "", 0, "L", false, 0, "")
	y += 9

	colWidths := []float64{70, 50, 30, 30}
	headers := []string{"Part", "Size", "Placed", "Remaining"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	xPos := marginLeft
	for i, header := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(colWidths[i], 6, header, "1", 0, "C", true, 0, "")
		xPos += colWidths[i]
	}
	y += 6

	pdf.SetFont("Helvetica", "", 9)
	for i, u := range usageByPart(l) {
		xPos = marginLeft
		rowData := []string{u.name, u.size, fmt.Sprintf("%d", u.placed), fmt.Sprintf("%d", u.left)}

		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}

		for j, cell := range rowData {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], 6, translate(cell), "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}
		y += 6
	}

	if warnings := layoutWarnings(l); len(warnings) > 0 {
		y += 8
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetTextColor(200, 0, 0)
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(200, 7, "WARNING: Placement Issues", "", 0, "L", false, 0, "")
		y += 8

		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(0, 0, 0)
		for _, w := range warnings {
			pdf.SetXY(marginLeft+5, y)
			pdf.CellFormat(250, 5, translate("- "+w), "", 0, "L", false, 0, "")
			y += 5
		}
	}

	y += 8
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Machining", "", 0, "L", false, 0, "")
	y += 9

	m := l.Machining
	settingsItems := []struct {
		label string
		value string
	}{
		{"Controller", m.GCodeProfile},
		{"Tool Diameter", fmt.Sprintf("%.1f mm", m.ToolDiameter)},
		{"Material Thickness", fmt.Sprintf("%.1f mm", m.CutDepth)},
		{"Pass Depth", fmt.Sprintf("%.1f mm", m.PassDepth)},
	}

	pdf.SetFont("Helvetica", "", 9)
	for _, item := range settingsItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(50, 5, item.label+":", "", 0, "L", false, 0, "")
		pdf.CellFormat(30, 5, item.value, "", 0, "L", false, 0, "")
		y += 5
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by SlabLayout", "", 0, "C", false, 0, "")
}

// layoutWarnings lists clearance conflicts and pieces that leave the sheet.
func layoutWarnings(l model.Layout) []string {
	shapes := model.Geometry(l.Shapes)
	names := l.PieceNames()

	warnings := engine.FormatConflictWarnings(engine.FindConflicts(shapes, l.Margin), names, l.Margin)
	outside := engine.OutsideSheet(l.Material, shapes)
	sort.Strings(outside)
	for _, id := range outside {
		warnings = append(warnings, fmt.Sprintf("Piece %q extends beyond the sheet", names[id]))
	}
	return warnings
}

func layoutTitle(l model.Layout) string {
	if l.Name == "" {
		return "Layout"
	}
	return l.Name
}

// labelFontSize returns an appropriate font size based on the rectangle dimensions.
func labelFontSize(w, h float64) float64 {
	minDim := math.Min(w, h)
	switch {
	case minDim > 40:
		return 8
	case minDim > 20:
		return 7
	default:
		return 6
	}
}

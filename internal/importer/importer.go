// Package importer turns CSV, Excel and DXF files into part creation requests
// for the catalog. It supports automatic delimiter detection, flexible column
// mapping, and case-insensitive header recognition.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/SlabLayout/internal/model"
)

// ImportResult holds the results of an import operation. Rows that fail are
// reported in Errors and skipped; the rest are still returned.
type ImportResult struct {
	Requests []model.PartRequest
	Errors   []string
	Warnings []string
}

// ColumnMapping maps semantic column roles to their indices in the data.
// -1 means the column is absent.
type ColumnMapping struct {
	Name     int
	Quantity int
	Width    int
	Height   int
	Radius   int
	Unit     int
}

// headerAliases maps canonical column names to their accepted aliases (all lowercase).
var headerAliases = map[string][]string{
	"name":     {"name", "label", "part", "part name", "description", "piece", "item", "nome", "peça", "peca"},
	"quantity": {"quantity", "qty", "count", "amount", "pcs", "pieces", "quantidade", "qtd", "qtde"},
	"width":    {"width", "w", "length", "x", "largura", "comprimento"},
	"height":   {"height", "h", "depth", "y", "altura"},
	"radius":   {"radius", "r", "raio"},
	"unit":     {"unit", "units", "unidade"},
}

// DetectCSVDelimiter reads the file content and determines the most likely CSV delimiter.
// It tries comma, semicolon, tab, and pipe. The delimiter that produces the most
// consistent (non-one) column count across lines wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		records, err := newCSVReader(bytes.NewReader(data), delim).ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}

		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}

		// Prefer delimiters with higher consistency and more columns
		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

func newCSVReader(r io.Reader, delimiter rune) *csv.Reader {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	return reader
}

// positionalMapping is used for files without a header: name, quantity,
// then optionally width and height.
var positionalMapping = ColumnMapping{
	Name:     0,
	Quantity: 1,
	Width:    2,
	Height:   3,
	Radius:   -1,
	Unit:     -1,
}

// DetectColumns examines a header row and returns a ColumnMapping.
// It performs case-insensitive matching against known aliases for each column role.
// Returns the mapping and true if a header was detected, or the positional
// mapping and false if no header was found.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{Name: -1, Quantity: -1, Width: -1, Height: -1, Radius: -1, Unit: -1}
	slots := map[string]*int{
		"name":     &mapping.Name,
		"quantity": &mapping.Quantity,
		"width":    &mapping.Width,
		"height":   &mapping.Height,
		"radius":   &mapping.Radius,
		"unit":     &mapping.Unit,
	}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized == alias && *slots[role] == -1 {
					*slots[role] = i
					isHeader = true
				}
			}
		}
	}

	if !isHeader {
		return positionalMapping, false
	}
	return mapping, true
}

// getCell safely retrieves a cell value from a row by column index.
// Returns empty string if the index is out of range or negative.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseNumber accepts both "12.5" and "12,5".
func parseNumber(s string) (float64, error) {
	return strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
}

// parseRow extracts a part request from a row using the given column mapping.
// Returns the request, any error message, and any warning message.
func parseRow(row []string, mapping ColumnMapping, rowLabel string, count int) (model.PartRequest, string, string) {
	name := getCell(row, mapping.Name)
	if name == "" {
		name = fmt.Sprintf("Part %d", count+1)
	}

	qtyStr := getCell(row, mapping.Quantity)
	if qtyStr == "" {
		return model.PartRequest{}, fmt.Sprintf("%s: Missing quantity value", rowLabel), ""
	}
	qty, err := strconv.Atoi(qtyStr)
	if err != nil {
		return model.PartRequest{}, fmt.Sprintf("%s: Invalid quantity '%s'", rowLabel, qtyStr), ""
	}
	if qty <= 0 {
		return model.PartRequest{}, fmt.Sprintf("%s: Quantity must be positive", rowLabel), ""
	}

	var warning string
	unit := model.UnitMM
	if unitStr := getCell(row, mapping.Unit); unitStr != "" {
		if u, ok := model.ParseUnit(unitStr); ok {
			unit = u
		} else {
			warning = fmt.Sprintf("%s: Unknown unit '%s', defaulting to mm", rowLabel, unitStr)
		}
	}

	dims := map[string]float64{}
	for role, idx := range map[string]int{"width": mapping.Width, "height": mapping.Height, "radius": mapping.Radius} {
		s := getCell(row, idx)
		if s == "" {
			continue
		}
		v, err := parseNumber(s)
		if err != nil {
			return model.PartRequest{}, fmt.Sprintf("%s: Invalid %s '%s'", rowLabel, role, s), ""
		}
		if v <= 0 {
			return model.PartRequest{}, fmt.Sprintf("%s: %s must be positive", rowLabel, strings.ToUpper(role[:1])+role[1:]), ""
		}
		dims[role] = v
	}

	req := model.PartRequest{Name: name, Quantity: qty}
	_, hasW := dims["width"]
	_, hasH := dims["height"]
	switch {
	case dims["radius"] > 0:
		req.Shape = model.NewCircle("", dims["radius"], unit)
	case hasW && hasH:
		rect := model.NewRectangle("", dims["width"], dims["height"])
		for i := range rect.Sides {
			rect.Sides[i].Unit = unit
		}
		req.Shape = rect
	case hasW || hasH:
		return model.PartRequest{}, fmt.Sprintf("%s: Width and height must be given together", rowLabel), ""
	}

	return req, "", warning
}

// isEmptyRow returns true if the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ImportCSV imports part requests from a CSV file.
// It automatically detects the delimiter and maps columns by header names.
// Supports comma, semicolon, tab, and pipe delimiters.
func ImportCSV(path string) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return result
	}

	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		result.Warnings = append(result.Warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	records, err := newCSVReader(bytes.NewReader(data), delimiter).ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	return importFromRows(records, "Line", result.Warnings)
}

// ImportCSVFromReader imports part requests from a CSV reader with a known delimiter.
func ImportCSVFromReader(reader io.Reader, delimiter rune) ImportResult {
	result := ImportResult{}

	records, err := newCSVReader(reader, delimiter).ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	return importFromRows(records, "Line", nil)
}

// ImportExcel imports part requests from an Excel (.xlsx) file.
// Reads the first sheet and auto-detects column mapping from headers.
func ImportExcel(path string) ImportResult {
	result := ImportResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read Excel data: %v", err))
		return result
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "Sheet is empty")
		return result
	}

	return importFromRows(rows, "Row", nil)
}

// ImportFile dispatches on the file extension: .xlsx, .dxf, otherwise CSV.
func ImportFile(path string) ImportResult {
	switch ext := strings.ToLower(path); {
	case strings.HasSuffix(ext, ".xlsx"), strings.HasSuffix(ext, ".xlsm"):
		return ImportExcel(path)
	case strings.HasSuffix(ext, ".dxf"):
		return ImportDXF(path)
	default:
		return ImportCSV(path)
	}
}

// importFromRows is the shared import logic for both CSV and Excel data.
// It detects headers, maps columns, and parses each row into requests.
func importFromRows(rows [][]string, rowPrefix string, initialWarnings []string) ImportResult {
	result := ImportResult{
		Warnings: initialWarnings,
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
		return result
	}

	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")

		if mapping.Quantity == -1 {
			result.Errors = append(result.Errors, "Required columns not found in header: Quantity")
			return result
		}
	} else if len(rows[0]) >= 2 {
		if _, err := strconv.Atoi(strings.TrimSpace(rows[0][1])); err != nil {
			// Second column is not a quantity, treat the row as an unrecognized header
			startRow = 1
			result.Warnings = append(result.Warnings, "Detected header row, skipping")
		}
	}

	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}

		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)
		req, errMsg, warning := parseRow(row, mapping, rowLabel, len(result.Requests))
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		if warning != "" {
			result.Warnings = append(result.Warnings, warning)
		}

		result.Requests = append(result.Requests, req)
	}

	return result
}

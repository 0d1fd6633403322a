// Package importer loads board outlines from DXF drawings and board
// placements from CSV and Excel tables. It supports automatic delimiter
// detection, flexible column mapping, and case-insensitive header
// recognition. Problems are collected in the result instead of failing on
// the first bad row.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/piwi3910/PanelCut/internal/model"
	"github.com/xuri/excelize/v2"
)

// ImportResult holds the results of an import operation.
type ImportResult struct {
	Boards     []model.Board
	Placements []Placement
	Errors     []string
	Warnings   []string
}

// Placement is one row of a placement table: which board goes where.
type Placement struct {
	File     string // DXF outline, relative to the table
	X        float64
	Y        float64
	Rotation float64
	Flags    []string
}

// ColumnMapping maps semantic column roles to their indices in the data.
type ColumnMapping struct {
	File     int
	X        int
	Y        int
	Rotation int
	Flags    int
}

// headerAliases maps canonical column names to their accepted aliases (all lowercase).
var headerAliases = map[string][]string{
	"file":     {"file", "board", "pcb", "outline", "dxf", "path", "name"},
	"x":        {"x", "pos x", "posx", "x (mm)", "left"},
	"y":        {"y", "pos y", "posy", "y (mm)", "top"},
	"rotation": {"rotation", "rot", "angle", "orientation"},
	"flags":    {"flags", "variant", "build flags", "options"},
}

// DetectCSVDelimiter reads the file content and determines the most likely CSV delimiter.
// It tries comma, semicolon, tab, and pipe. The delimiter that produces the most
// consistent (non-one) column count across lines wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1

		records, err := reader.ReadAll()
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

// DetectColumns examines a header row and returns a ColumnMapping.
// Returns the mapping and true if a header was detected, or a default positional
// mapping (file, x, y, rotation, flags) and false if no header was found.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{File: -1, X: -1, Y: -1, Rotation: -1, Flags: -1}
	slots := map[string]*int{
		"file":     &mapping.File,
		"x":        &mapping.X,
		"y":        &mapping.Y,
		"rotation": &mapping.Rotation,
		"flags":    &mapping.Flags,
	}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized != alias {
					continue
				}
				isHeader = true
				if slot := slots[role]; *slot == -1 {
					*slot = i
				}
			}
		}
	}

	if !isHeader {
		return ColumnMapping{File: 0, X: 1, Y: 2, Rotation: 3, Flags: 4}, false
	}
	return mapping, true
}

// parseFlags splits a flag cell on spaces, commas, semicolons or pipes.
func parseFlags(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ',' || r == ';' || r == '|'
	})
}

// getCell safely retrieves a cell value from a row by column index.
// Returns empty string if the index is out of range or negative.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseNumber(row []string, idx int, name, rowLabel string, required bool) (float64, string) {
	s := getCell(row, idx)
	if s == "" {
		if required {
			return 0, fmt.Sprintf("%s: Missing %s value", rowLabel, name)
		}
		return 0, ""
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Sprintf("%s: Invalid %s '%s'", rowLabel, name, s)
	}
	return v, ""
}

// parseRow extracts a Placement from a row using the given column mapping.
// Returns the placement and any error message.
func parseRow(row []string, mapping ColumnMapping, rowLabel string) (Placement, string) {
	file := getCell(row, mapping.File)
	if file == "" {
		return Placement{}, fmt.Sprintf("%s: Missing board file", rowLabel)
	}
	x, msg := parseNumber(row, mapping.X, "x", rowLabel, true)
	if msg != "" {
		return Placement{}, msg
	}
	y, msg := parseNumber(row, mapping.Y, "y", rowLabel, true)
	if msg != "" {
		return Placement{}, msg
	}
	rot, msg := parseNumber(row, mapping.Rotation, "rotation", rowLabel, false)
	if msg != "" {
		return Placement{}, msg
	}
	return Placement{
		File:     file,
		X:        x,
		Y:        y,
		Rotation: rot,
		Flags:    parseFlags(getCell(row, mapping.Flags)),
	}, ""
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

// ImportCSV imports placements from a CSV file.
// It automatically detects the delimiter and maps columns by header names.
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
	var warnings []string
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		warnings = append(warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	result = ImportCSVFromReader(bytes.NewReader(data), delimiter)
	result.Warnings = append(warnings, result.Warnings...)
	return result
}

// ImportCSVFromReader imports placements from a CSV reader with a specific
// delimiter.
func ImportCSVFromReader(reader io.Reader, delimiter rune) ImportResult {
	result := ImportResult{}

	csvReader := csv.NewReader(reader)
	csvReader.Comma = delimiter
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	return importFromRows(records, "Line")
}

// ImportExcel imports placements from the first sheet of an Excel file.
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

	return importFromRows(rows, "Row")
}

// importFromRows is the shared import logic for both CSV and Excel data.
func importFromRows(rows [][]string, rowPrefix string) ImportResult {
	result := ImportResult{}

	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")

		missing := []string{}
		if mapping.File == -1 {
			missing = append(missing, "File")
		}
		if mapping.X == -1 {
			missing = append(missing, "X")
		}
		if mapping.Y == -1 {
			missing = append(missing, "Y")
		}
		if len(missing) > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("Required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
	} else if len(rows[0]) >= 3 {
		if _, err := strconv.ParseFloat(strings.TrimSpace(rows[0][1]), 64); err != nil {
			// An unrecognised header: skip it but keep positional mapping
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
		p, errMsg := parseRow(row, mapping, rowLabel)
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		result.Placements = append(result.Placements, p)
	}

	return result
}

// ImportPlacements reads a placement table (CSV or Excel, by extension) and
// loads the board of every row. Board files are resolved relative to the
// table and each file is read once; repeated rows get clones.
func ImportPlacements(path string) ImportResult {
	var result ImportResult
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xls":
		result = ImportExcel(path)
	default:
		result = ImportCSV(path)
	}
	if len(result.Placements) == 0 {
		return result
	}
	return resolvePlacements(result, filepath.Dir(path))
}

func resolvePlacements(result ImportResult, baseDir string) ImportResult {
	loaded := map[string]*model.Board{}
	for _, p := range result.Placements {
		file := p.File
		if !filepath.IsAbs(file) {
			file = filepath.Join(baseDir, file)
		}
		src, ok := loaded[file]
		if !ok {
			r := ImportDXF(file)
			result.Warnings = append(result.Warnings, r.Warnings...)
			if len(r.Boards) == 0 {
				for _, e := range r.Errors {
					result.Errors = append(result.Errors, fmt.Sprintf("%s: %s", p.File, e))
				}
				loaded[file] = nil
				continue
			}
			src = &r.Boards[0]
			loaded[file] = src
		}
		if src == nil {
			continue
		}
		b := src.Clone()
		b.X, b.Y, b.Rotation = p.X, p.Y, p.Rotation
		b.Flags = p.Flags
		result.Boards = append(result.Boards, b)
	}
	return result
}

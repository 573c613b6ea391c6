// Package sheet reads the translations workbook and writes the pending
// translations report.
package sheet

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"catalog-sync/internal/report"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

// DefaultSheet is the worksheet holding the translations.
const DefaultSheet = "cajeros"

// PendingSheet is the worksheet name of the pending report.
const PendingSheet = "textos"

// ErrEmptySheet is returned when the translations sheet has no header row.
var ErrEmptySheet = errors.New("sheet has no rows")

// ReadRows returns the header and data rows of the sheet named sheetName,
// matched case-insensitively. When no sheet matches, the first sheet is read.
// Rows are returned as stored; trailing empty cells may be absent.
func ReadRows(path, sheetName string) ([]string, [][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("%s: %w", path, ErrEmptySheet)
	}
	name := sheets[0]
	found := false
	for _, s := range sheets {
		if strings.EqualFold(s, sheetName) {
			name, found = s, true
			break
		}
	}
	if !found {
		log.Warn().Str("want", sheetName).Str("using", name).Msg("Sheet not found, reading first sheet")
	}

	rows, err := f.GetRows(name)
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %s: %w", name, err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("%s: %w", name, ErrEmptySheet)
	}
	return rows[0], rows[1:], nil
}

// PendingFileName is the report name for the given day, Traducciones_DDMMYYYY.xlsx.
func PendingFileName(now time.Time) string {
	return "Traducciones_" + now.Format("02012006") + ".xlsx"
}

var columnWidths = map[int]float64{1: 23, 2: 30, 3: 35}

const (
	languageColumnWidth = 14
	headerHeight        = 25
	bodyHeight          = 15
)

// WritePending writes records to dir as a styled workbook and returns its
// path. Each record fills the first three columns under header.
func WritePending(dir string, header []string, records []report.PendingRecord, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create report directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), PendingSheet); err != nil {
		return "", fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, bodyStyle, err := styles(f)
	if err != nil {
		return "", err
	}

	cols := len(header)
	if cols < 3 {
		cols = 3
	}
	for col := 1; col <= cols; col++ {
		name, err := excelize.ColumnNumberToName(col)
		if err != nil {
			return "", err
		}
		width, ok := columnWidths[col]
		if !ok {
			width = languageColumnWidth
		}
		if err := f.SetColWidth(PendingSheet, name, name, width); err != nil {
			return "", fmt.Errorf("set column width: %w", err)
		}
	}

	if len(header) > 0 {
		if err := writeRow(f, 1, toCells(header...), headerStyle, headerHeight); err != nil {
			return "", err
		}
	}
	for i, r := range records {
		cells := toCells(r.Ticket, r.Path.String(), r.Text)
		if err := writeRow(f, i+2, cells, bodyStyle, bodyHeight); err != nil {
			return "", err
		}
	}

	out := filepath.Join(dir, PendingFileName(now))
	if err := f.SaveAs(out); err != nil {
		return "", fmt.Errorf("save pending report: %w", err)
	}
	log.Info().Str("path", out).Int("records", len(records)).Msg("Pending report written")
	return out, nil
}

func toCells(values ...string) []any {
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}

func writeRow(f *excelize.File, row int, cells []any, style int, height float64) error {
	start, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	end, err := excelize.CoordinatesToCellName(len(cells), row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(PendingSheet, start, &cells); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	if err := f.SetCellStyle(PendingSheet, start, end, style); err != nil {
		return fmt.Errorf("style row %d: %w", row, err)
	}
	if err := f.SetRowHeight(PendingSheet, row, height); err != nil {
		return fmt.Errorf("set row %d height: %w", row, err)
	}
	return nil
}

func styles(f *excelize.File) (header, body int, err error) {
	borders := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}

	header, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Color: "121211", Size: 10},
		Fill:   excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"92D050"}},
		Border: borders,
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "bottom",
			WrapText:   true,
		},
	})
	if err != nil {
		return 0, 0, fmt.Errorf("create header style: %w", err)
	}

	body, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Color: "030202", Size: 9},
		Border:    borders,
		Alignment: &excelize.Alignment{WrapText: true},
	})
	if err != nil {
		return 0, 0, fmt.Errorf("create body style: %w", err)
	}
	return header, body, nil
}

// Package sheet reads and writes the five-column contact spreadsheet.
//
// Decoding accepts OOXML workbooks (.xlsx) and legacy BIFF workbooks (.xls);
// the variant is detected from the payload, not from the file name. Encoding
// always produces .xlsx.
package sheet

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// ContentType is the MIME type of encoded workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const maxColumnWidth = 60

var (
	zipMagic = []byte("PK\x03\x04")
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// RawRow is one data row as read from the sheet. Number is the 1-based sheet
// row, so the first data row is 2.
type RawRow struct {
	Number int
	Cells  [ColumnCount]string
}

// Cell returns the whitespace-trimmed text of column col.
func (r RawRow) Cell(col int) string {
	return strings.TrimSpace(r.Cells[col])
}

// OutputRow is one flattened contact/detail line to be written.
type OutputRow struct {
	ID          uint
	Name        string
	Bookmarked  string
	DetailType  string
	DetailValue string
}

// FormatError reports an upload that is not a readable workbook.
type FormatError struct {
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid spreadsheet: %s: %v", e.Reason, e.Err)
	}
	return "invalid spreadsheet: " + e.Reason
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// Codec converts between workbook bytes and rows using a fixed Format.
type Codec struct {
	format Format
}

// NewCodec creates a Codec bound to format.
func NewCodec(format Format) *Codec {
	return &Codec{format: format}
}

// Format returns the format the codec was built with.
func (c *Codec) Format() Format {
	return c.format
}

// SupportedExtension reports whether filename carries a .xlsx or .xls extension.
func SupportedExtension(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xls":
		return true
	default:
		return false
	}
}

// Decode reads the first sheet of a workbook and returns every row after the header.
func (c *Codec) Decode(data []byte) ([]RawRow, error) {
	switch {
	case len(data) == 0:
		return nil, &FormatError{Reason: "empty payload"}
	case bytes.HasPrefix(data, zipMagic):
		return decodeXLSX(data)
	case bytes.HasPrefix(data, oleMagic):
		return decodeXLS(data)
	default:
		return nil, &FormatError{Reason: "unrecognized file signature"}
	}
}

func decodeXLSX(data []byte) ([]RawRow, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &FormatError{Reason: "open xlsx workbook", Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &FormatError{Reason: "workbook has no sheets"}
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &FormatError{Reason: "read xlsx rows", Err: err}
	}

	out := make([]RawRow, 0, max(len(rows)-1, 0))
	for i := 1; i < len(rows); i++ {
		out = append(out, newRawRow(i+1, rows[i]))
	}
	return out, nil
}

func decodeXLS(data []byte) (rows []RawRow, err error) {
	// the BIFF parser panics on some truncated inputs
	defer func() {
		if rec := recover(); rec != nil {
			rows = nil
			err = &FormatError{Reason: fmt.Sprintf("corrupt xls workbook: %v", rec)}
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, &FormatError{Reason: "open xls workbook", Err: err}
	}
	if wb.NumSheets() == 0 {
		return nil, &FormatError{Reason: "workbook has no sheets"}
	}
	ws := wb.GetSheet(0)
	if ws == nil {
		return nil, &FormatError{Reason: "workbook has no sheets"}
	}

	last := int(ws.MaxRow)
	rows = make([]RawRow, 0, last)
	for i := 1; i <= last; i++ {
		cells := make([]string, 0, ColumnCount)
		if row := xlsRow(ws, i); row != nil {
			for col := 0; col < ColumnCount; col++ {
				cells = append(cells, row.Col(col))
			}
		}
		rows = append(rows, newRawRow(i+1, cells))
	}
	return rows, nil
}

// xlsRow returns nil for rows that have neither a ROW record nor cells;
// WorkSheet.Row dereferences the missing map entry and panics on them.
func xlsRow(ws *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return ws.Row(i)
}

func newRawRow(number int, cells []string) RawRow {
	row := RawRow{Number: number}
	for col := 0; col < ColumnCount && col < len(cells); col++ {
		row.Cells[col] = cells[col]
	}
	return row
}

// Encode writes rows below the localized header into a single-sheet xlsx workbook.
func (c *Codec) Encode(rows []OutputRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	name := c.format.SheetName
	if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	widths := make([]int, ColumnCount)
	header := make([]interface{}, ColumnCount)
	for col, label := range c.format.Header {
		header[col] = label
		widths[col] = displayWidth(label)
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = f.SetCellStyle(name, "A1", "E1", style)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := []interface{}{row.ID, row.Name, row.Bookmarked, row.DetailType, row.DetailValue}
		if err := f.SetSheetRow(name, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}

		texts := [ColumnCount]string{fmt.Sprint(row.ID), row.Name, row.Bookmarked, row.DetailType, row.DetailValue}
		for col, text := range texts {
			widths[col] = max(widths[col], displayWidth(text))
		}
	}

	for col, width := range widths {
		letter, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(name, letter, letter, float64(min(width+2, maxColumnWidth))); err != nil {
			return nil, fmt.Errorf("set column width: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// displayWidth approximates rendered width; multi-byte runes (CJK) count double.
func displayWidth(s string) int {
	width := 0
	for _, r := range s {
		if utf8.RuneLen(r) >= 3 {
			width += 2
		} else {
			width++
		}
	}
	return width
}

package utils

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedWorkbook is returned for files that are neither .xlsx nor .xls
var ErrUnsupportedWorkbook = errors.New("unsupported workbook format")

// Workbook is an in-memory copy of every sheet of a spreadsheet, cell values as text
type Workbook struct {
	names  []string
	sheets map[string][][]string
}

// NewWorkbook creates an empty workbook
func NewWorkbook() *Workbook {
	return &Workbook{sheets: make(map[string][][]string)}
}

// AddSheet appends a sheet, replacing any sheet with the same name
func (w *Workbook) AddSheet(name string, rows [][]string) {
	if _, ok := w.sheets[name]; !ok {
		w.names = append(w.names, name)
	}
	w.sheets[name] = rows
}

// SheetNames lists the sheets in workbook order
func (w *Workbook) SheetNames() []string {
	return append([]string(nil), w.names...)
}

// Sheet returns the rows of the named sheet
func (w *Workbook) Sheet(name string) ([][]string, bool) {
	rows, ok := w.sheets[name]
	return rows, ok
}

// IsWorkbookFile reports whether the file name looks like a spreadsheet
func IsWorkbookFile(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm", ".xls":
		return true
	}
	return false
}

// OpenWorkbook reads .xlsx/.xlsm files with excelize and legacy .xls files
// with extrame/xls. Dates and times in .xlsx files come back as raw serials.
func OpenWorkbook(filename string, data []byte) (*Workbook, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return openXLSX(data)
	case ".xls":
		return openXLS(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedWorkbook, filename)
	}
}

func openXLSX(data []byte) (*Workbook, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer func() { _ = file.Close() }()

	wb := NewWorkbook()
	for _, name := range file.GetSheetList() {
		rows, err := file.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", name, err)
		}
		wb.AddSheet(name, rows)
	}
	return wb, nil
}

func openXLS(data []byte) (*Workbook, error) {
	book, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("failed to open xls: %w", err)
	}

	wb := NewWorkbook()
	for i := 0; i < book.NumSheets(); i++ {
		sheet := book.GetSheet(i)
		if sheet == nil {
			continue
		}
		rows := make([][]string, 0, int(sheet.MaxRow)+1)
		for r := 0; r <= int(sheet.MaxRow); r++ {
			row := sheet.Row(r)
			if row == nil {
				rows = append(rows, nil)
				continue
			}
			cells := make([]string, row.LastCol())
			for c := row.FirstCol(); c < row.LastCol(); c++ {
				cells[c] = row.Col(c)
			}
			rows = append(rows, cells)
		}
		wb.AddSheet(sheet.Name, rows)
	}
	return wb, nil
}

// Cell returns the trimmed value at idx, or "" past the end of the row
func Cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

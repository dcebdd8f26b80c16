// Package sheet reads and writes the tabular xlsx files the worker consumes
// and produces.
package sheet

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/xuri/excelize/v2"

	"nycunits/internal/models"
)

// Spreadsheet errors.
var (
	ErrNoSheets   = errors.New("workbook contains no sheets")
	ErrEmptySheet = errors.New("first sheet contains no rows")
)

// DownloadFilename is the fixed name of the result workbook.
const DownloadFilename = "NYC_PLUTO_Units.xlsx"

// MIMEType is the xlsx content type used when serving results.
const MIMEType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// resultSheet names the single sheet of the output workbook.
const resultSheet = "Results"

// Read parses the first sheet of an xlsx workbook into a Table. The first
// row is the header; short data rows are padded to header width.
func Read(r io.Reader) (*models.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheets
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}

	if len(rows) == 0 {
		return nil, ErrEmptySheet
	}

	header := rows[0]

	table := &models.Table{Columns: header}
	for _, row := range rows[1:] {
		cells := make([]string, len(header))
		copy(cells, row)
		table.Rows = append(table.Rows, cells)
	}

	return table, nil
}

// ReadFile parses the workbook at path.
func ReadFile(path string) (*models.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer f.Close()

	return Read(f)
}

// Write serializes a table as a single-sheet xlsx workbook.
func Write(w io.Writer, table *models.Table) error {
	x := excelize.NewFile()
	defer x.Close()

	if _, err := x.NewSheet(resultSheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	setRow := func(rowIdx int, cells []string) error {
		for colIdx, value := range cells {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
			if err != nil {
				return fmt.Errorf("failed to name cell: %w", err)
			}

			if err := x.SetCellStr(resultSheet, cell, value); err != nil {
				return fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
		}

		return nil
	}

	if err := setRow(0, table.Columns); err != nil {
		return err
	}

	for i, row := range table.Rows {
		if err := setRow(i+1, row); err != nil {
			return err
		}
	}

	if err := x.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to drop default sheet: %w", err)
	}

	if err := x.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	return nil
}

// WriteFile serializes a table to the workbook at path.
func WriteFile(path string, table *models.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", path, err)
	}
	defer f.Close()

	return Write(f, table)
}

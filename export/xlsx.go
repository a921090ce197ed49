package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// writeSpreadsheet stores table as a single-sheet workbook at path.
func writeSpreadsheet(path string, table *Table, sheet string, maxWidth int) error {
	wb := excelize.NewFile()
	defer wb.Close()

	if err := fillSheet(wb, table, sheet, maxWidth); err != nil {
		return err
	}

	return writeFile(path, func(w io.Writer) error {
		if _, err := wb.WriteTo(w); err != nil {
			return fmt.Errorf("write workbook: %w", err)
		}
		return nil
	})
}

func fillSheet(wb *excelize.File, table *Table, sheet string, maxWidth int) error {
	if err := wb.SetSheetName(wb.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("name sheet %q: %w", sheet, err)
	}

	header := make([]interface{}, len(Columns))
	for i, name := range Columns {
		header[i] = name
	}
	if err := wb.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, row := range table.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("locate row %d: %w", i+1, err)
		}
		values := row.Values()
		if err := wb.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	for i, width := range table.ColumnWidths(maxWidth) {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("locate column %d: %w", i+1, err)
		}
		if err := wb.SetColWidth(sheet, col, col, float64(width)); err != nil {
			return fmt.Errorf("size column %s: %w", col, err)
		}
	}
	return nil
}

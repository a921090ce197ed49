package export

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// writeBackupCSV stores table as BOM-prefixed UTF-8 CSV so spreadsheet
// tools detect the encoding.
func writeBackupCSV(path string, table *Table) error {
	return writeFile(path, func(w io.Writer) error {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("write bom: %w", err)
		}
		if err := gocsv.Marshal(table.Rows, w); err != nil {
			return fmt.Errorf("write csv rows: %w", err)
		}
		return nil
	})
}

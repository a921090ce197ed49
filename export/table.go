package export

import (
	"strconv"
	"unicode/utf8"

	"github.com/aluiziolira/go-scrape-bestsellers/models"
)

// Columns is the fixed column order of every export.
var Columns = []string{"Rank", "Title", "Price", "Rating", "Review Count", "ASIN", "Description"}

// Row is one product with its 1-based rank in the input sequence.
type Row struct {
	Rank        int          `csv:"Rank"`
	Title       string       `csv:"Title"`
	Price       models.Value `csv:"Price"`
	Rating      models.Value `csv:"Rating"`
	ReviewCount models.Value `csv:"Review Count"`
	ASIN        string       `csv:"ASIN"`
	Description string       `csv:"Description"`
}

// Values returns the typed cell values in column order. Numeric fields are
// written as numbers, textual ones as strings and missing ones as blanks.
func (r Row) Values() []interface{} {
	return []interface{}{r.Rank, r.Title, r.Price.Cell(), r.Rating.Cell(), r.ReviewCount.Cell(), r.ASIN, r.Description}
}

// Strings returns the cell values as text in column order.
func (r Row) Strings() []string {
	return []string{
		strconv.Itoa(r.Rank),
		r.Title,
		r.Price.String(),
		r.Rating.String(),
		r.ReviewCount.String(),
		r.ASIN,
		r.Description,
	}
}

// Table holds one row per exported product, in input order.
type Table struct {
	Rows []Row
}

// BuildTable ranks products by their position in the slice. A nil entry
// still occupies its rank so the row count always matches the input.
func BuildTable(products []*models.Product) *Table {
	rows := make([]Row, len(products))
	for i, p := range products {
		rows[i].Rank = i + 1
		if p == nil {
			continue
		}
		rows[i].Title = p.Title
		rows[i].Price = p.Price
		rows[i].Rating = p.Rating
		rows[i].ReviewCount = p.ReviewCount
		rows[i].ASIN = p.ASIN
		rows[i].Description = p.Description
	}
	return &Table{Rows: rows}
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// ColumnWidths sizes each column to its longest value or header plus two,
// capped at limit.
func (t *Table) ColumnWidths(limit int) []int {
	widths := make([]int, len(Columns))
	for i, header := range Columns {
		widths[i] = utf8.RuneCountInString(header)
	}
	for _, row := range t.Rows {
		for i, value := range row.Strings() {
			if n := utf8.RuneCountInString(value); n > widths[i] {
				widths[i] = n
			}
		}
	}
	for i := range widths {
		widths[i] = min(widths[i]+2, limit)
	}
	return widths
}

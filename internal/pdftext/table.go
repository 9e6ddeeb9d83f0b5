package pdftext

import "strings"

// Table is an extracted table: rows of cells. A nil cell is an absent value.
type Table [][]*string

// FormatTable renders a table one row per line with cells joined by " | ".
// Rows are not checked for consistent length.
func FormatTable(t Table) string {
	if len(t) == 0 {
		return ""
	}
	rows := make([]string, len(t))
	for i, row := range t {
		cells := make([]string, len(row))
		for j, cell := range row {
			if cell != nil {
				cells[j] = *cell
			}
		}
		rows[i] = strings.Join(cells, " | ")
	}
	return strings.Join(rows, "\n")
}

// Row builds a table row from plain strings; handy where no cell is absent.
func Row(cells ...string) []*string {
	row := make([]*string, len(cells))
	for i := range cells {
		row[i] = &cells[i]
	}
	return row
}

package pdftext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatTable(t *testing.T) {
	a, b, c := "A", "B", "C"

	assert.Equal(t, "A | B\n | C", FormatTable(Table{{&a, &b}, {nil, &c}}))
	assert.Equal(t, "", FormatTable(nil))
	assert.Equal(t, "", FormatTable(Table{}))
}

func TestFormatTableRaggedRows(t *testing.T) {
	table := Table{Row("Concepto", "2024", "2023"), Row("Ingresos"), {}}
	assert.Equal(t, "Concepto | 2024 | 2023\nIngresos\n", FormatTable(table))
}

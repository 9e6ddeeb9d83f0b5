package pdftext

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Page is one physical page as seen by the extractor.
type Page struct {
	Text   string
	Tables []Table
}

// PageSource gives ordered access to the pages of an opened PDF.
type PageSource interface {
	NumPage() int
	Page(n int) (Page, error)
}

// Opener opens a PDF from its raw bytes.
type Opener func(data []byte) (PageSource, error)

// Layout thresholds, in multiples of the glyph font size.
const (
	wordGapFactor = 0.15
	rowTolFactor  = 0.5
	cellGapFactor = 1.5
	// alignFactor bounds how far a cell edge may drift from its column.
	alignFactor = 0.6
	// minTableRows is the number of aligned rows that make a table.
	minTableRows = 2
)

// cell is a run of glyphs on one row, with its horizontal extent.
type cell struct {
	Text string
	X    float64
	End  float64
	Size float64
}

// OpenPDF validates data with pdfcpu and reads positioned glyphs with
// ledongthuc/pdf.
// The page count reported is the physical count from pdfcpu.
func OpenPDF(data []byte) (src PageSource, err error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	pageCount, err := api.PageCount(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("failed to validate PDF: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			src, err = nil, fmt.Errorf("pdf reader panic: %v", r)
		}
	}()
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	return &pdfSource{reader: reader, pageCount: pageCount}, nil
}

type pdfSource struct {
	reader    *pdf.Reader
	pageCount int
}

func (s *pdfSource) NumPage() int { return s.pageCount }

func (s *pdfSource) Page(n int) (page Page, err error) {
	if n < 1 || n > s.reader.NumPage() {
		return Page{}, nil
	}
	defer func() {
		if r := recover(); r != nil {
			page, err = Page{}, fmt.Errorf("page %d: pdf reader panic: %v", n, r)
		}
	}()

	p := s.reader.Page(n)
	if p.V.IsNull() {
		return Page{}, nil
	}
	rows := groupRows(p.Content().Text)

	cellRows := make([][]cell, 0, len(rows))
	for _, row := range rows {
		if cells := rowCells(row); len(cells) > 0 {
			cellRows = append(cellRows, cells)
		}
	}
	return layoutPage(cellRows), nil
}

// groupRows buckets positioned glyphs into text rows, top of the page
// first. Glyphs whose baselines lie within rowTolFactor font sizes of the
// row's first glyph share that row.
func groupRows(texts []pdf.Text) [][]pdf.Text {
	sorted := make([]pdf.Text, len(texts))
	copy(sorted, texts)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Y > sorted[j].Y })

	var rows [][]pdf.Text
	var rowY float64
	for _, t := range sorted {
		size := t.FontSize
		if size <= 0 {
			size = 10
		}
		if len(rows) == 0 || rowY-t.Y > rowTolFactor*size {
			rows = append(rows, nil)
			rowY = t.Y
		}
		rows[len(rows)-1] = append(rows[len(rows)-1], t)
	}
	return rows
}

// rowCells groups the glyph runs of one text row into cells. A wide
// horizontal gap starts a new cell; a narrow one becomes a space.
func rowCells(texts []pdf.Text) []cell {
	sorted := make([]pdf.Text, len(texts))
	copy(sorted, texts)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })

	var cells []cell
	var cur strings.Builder
	var curX, curEnd, curSize float64
	flush := func() {
		if text := strings.TrimSpace(cur.String()); text != "" {
			cells = append(cells, cell{Text: text, X: curX, End: curEnd, Size: curSize})
		}
		cur.Reset()
	}

	for i, t := range sorted {
		size := t.FontSize
		if size <= 0 {
			size = 10
		}
		if i > 0 {
			gap := t.X - curEnd
			switch {
			case gap > cellGapFactor*size:
				flush()
			case gap > wordGapFactor*size && !strings.HasSuffix(cur.String(), " ") && t.S != " ":
				cur.WriteByte(' ')
			}
		}
		if cur.Len() == 0 || strings.TrimSpace(cur.String()) == "" {
			curX, curSize = t.X, size
		}
		cur.WriteString(t.S)
		curEnd = t.X + t.W
	}
	flush()
	return cells
}

// layoutPage turns cell rows into page text (one line per row) and tables.
// A table is a run of consecutive rows whose cells line up in the same
// columns, with at least one numeric value past the first column. Noise
// rows never join a table.
func layoutPage(rows [][]cell) Page {
	var page Page
	lines := make([]string, len(rows))
	var run [][]cell
	closeRun := func() {
		if len(run) >= minTableRows && hasNumericColumn(run) {
			t := make(Table, len(run))
			for i, r := range run {
				t[i] = Row(cellTexts(r)...)
			}
			page.Tables = append(page.Tables, t)
		}
		run = nil
	}

	for i, cells := range rows {
		lines[i] = strings.Join(cellTexts(cells), " ")
		if len(cells) < 2 || IsNoiseLine(lines[i]) {
			closeRun()
			continue
		}
		if len(run) > 0 && !aligned(run[0], cells) {
			closeRun()
		}
		run = append(run, cells)
	}
	closeRun()

	page.Text = strings.Join(lines, "\n")
	return page
}

// aligned reports whether row has the same columns as ref: equal cell
// count and each cell starting or ending where its column does.
func aligned(ref, row []cell) bool {
	if len(ref) != len(row) {
		return false
	}
	for j := range ref {
		tol := alignFactor * max(ref[j].Size, row[j].Size)
		if math.Abs(ref[j].X-row[j].X) > tol && math.Abs(ref[j].End-row[j].End) > tol {
			return false
		}
	}
	return true
}

func hasNumericColumn(rows [][]cell) bool {
	for _, r := range rows {
		for _, c := range r[1:] {
			if isNumeric(c.Text) {
				return true
			}
		}
	}
	return false
}

// isNumeric accepts figures such as "2024", "1.250", "(980)", "12%" or
// "$1.2M": at least one digit and at most two letters.
func isNumeric(s string) bool {
	digits, letters := 0, 0
	for _, r := range s {
		switch {
		case unicode.IsDigit(r):
			digits++
		case unicode.IsLetter(r):
			letters++
		}
	}
	return digits > 0 && letters <= 2
}

func cellTexts(cells []cell) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = c.Text
	}
	return out
}

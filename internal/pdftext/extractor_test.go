package pdftext

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/Lllllllleong/financialdocumentflow/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memSource map[string][]byte

func (m memSource) Open(_ context.Context, name string) (io.ReadCloser, error) {
	data, ok := m[name]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", name, fs.ErrNotExist)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

type fakePages []Page

func (f fakePages) NumPage() int { return len(f) }

func (f fakePages) Page(n int) (Page, error) { return f[n-1], nil }

type failingPages struct{ fakePages }

func (f failingPages) Page(n int) (Page, error) {
	if n == 2 {
		return Page{}, errors.New("broken content stream")
	}
	return f.fakePages.Page(n)
}

func openerFor(src PageSource) Opener {
	return func([]byte) (PageSource, error) { return src, nil }
}

var fixedClock = func() time.Time { return time.Date(2025, 11, 14, 15, 52, 18, 0, time.UTC) }

func TestProcessPreservesOrderAndDropsNoise(t *testing.T) {
	pages := fakePages{
		{Text: "--- text ---\nRevenue grew 12%\nPage 1 of 3"},
		{Text: "Page 2 of 3\n2\nConfidential"},
		{Text: "--- text2 ---\nCopyright 2025 ACME\nMargins improved"},
	}
	e := NewExtractor(memSource{"aapl-20250628_20251114_155218.pdf": []byte("%PDF-")},
		WithOpener(openerFor(pages)), WithClock(fixedClock))

	doc, err := e.Process(context.Background(), "aapl-20250628_20251114_155218.pdf")
	require.NoError(t, err)

	assert.Equal(t, 3, doc.TotalPages)
	assert.Equal(t, "aapl-20250628_20251114_155218_20251114155218", doc.DocID)
	require.NotNil(t, doc.Company)
	assert.Equal(t, "AAPL", *doc.Company)
	assert.Equal(t, 2025, *doc.Year)

	require.Len(t, doc.Pages, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{doc.Pages[0].PageNumber, doc.Pages[1].PageNumber, doc.Pages[2].PageNumber})
	assert.Equal(t, "", doc.Pages[1].Text)

	flat := Flatten(doc)
	first := strings.Index(flat, "--- text ---")
	second := strings.Index(flat, "--- text2 ---")
	assert.GreaterOrEqual(t, first, 0)
	assert.Greater(t, second, first)
	assert.NotContains(t, flat, "Page 1 of 3")
	assert.NotContains(t, flat, "Confidential")
	assert.NotContains(t, flat, "Copyright")
	assert.NotContains(t, flat, "--- Página 2 ---")
	assert.Equal(t,
		"--- Página 1 ---\n--- text ---\nRevenue grew 12%\n\n--- Página 3 ---\n--- text2 ---\nMargins improved",
		flat)
}

func TestProcessTablesWithoutText(t *testing.T) {
	pages := fakePages{
		{},
		{Tables: []Table{{Row("Concepto", "2024"), Row("Ingresos", "100")}}},
	}
	e := NewExtractor(memSource{"q3.pdf": nil}, WithOpener(openerFor(pages)), WithClock(fixedClock))

	doc, err := e.Process(context.Background(), "q3.pdf")
	require.NoError(t, err)
	assert.Equal(t, 2, doc.TotalPages)
	require.Len(t, doc.Pages, 1)
	assert.Equal(t, 2, doc.Pages[0].PageNumber)
	assert.True(t, doc.Pages[0].HasTables)
	assert.Nil(t, doc.Company)
	assert.Nil(t, doc.Year)

	assert.Equal(t, "--- Página 2 ---\n[TABLA 1]\nConcepto | 2024\nIngresos | 100", Flatten(doc))
}

func TestProcessNotFound(t *testing.T) {
	e := NewExtractor(memSource{})

	_, err := e.Process(context.Background(), "missing.pdf")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestProcessRejectsNonPDF(t *testing.T) {
	e := NewExtractor(memSource{"data.csv": []byte("a,b")})

	_, err := e.Process(context.Background(), "data.csv")
	assert.True(t, errors.Is(err, apperr.ErrInvalidInput))
	assert.False(t, errors.Is(err, apperr.ErrNotFound))
}

func TestProcessOpenFailure(t *testing.T) {
	e := NewExtractor(memSource{"bad.pdf": []byte("not a pdf")},
		WithOpener(func([]byte) (PageSource, error) { return nil, errors.New("xref not found") }))

	doc, err := e.Process(context.Background(), "bad.pdf")
	assert.Nil(t, doc)
	assert.True(t, errors.Is(err, apperr.ErrProcessing))
	assert.Contains(t, err.Error(), "xref not found")
}

func TestProcessPageFailureIsAllOrNothing(t *testing.T) {
	src := failingPages{fakePages{{Text: "first page text"}, {Text: "never read"}, {Text: "third"}}}
	e := NewExtractor(memSource{"r.pdf": nil}, WithOpener(openerFor(src)))

	doc, err := e.Process(context.Background(), "r.pdf")
	assert.Nil(t, doc)
	assert.True(t, errors.Is(err, apperr.ErrProcessing))
	assert.Contains(t, err.Error(), "broken content stream")
}

func TestExtractTextAllNoise(t *testing.T) {
	e := NewExtractor(memSource{"n.pdf": nil},
		WithOpener(openerFor(fakePages{{Text: "1"}, {Text: "Page 2 of 2"}})))

	text, err := e.ExtractText(context.Background(), "n.pdf")
	require.NoError(t, err)
	assert.Equal(t, "", strings.TrimSpace(text))
}

func TestProcessHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e := NewExtractor(memSource{"c.pdf": nil}, WithOpener(openerFor(fakePages{{Text: "content here"}})))

	_, err := e.Process(ctx, "c.pdf")
	assert.True(t, errors.Is(err, apperr.ErrProcessing))
}

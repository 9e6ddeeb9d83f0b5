package pdftext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilenameMetadata(t *testing.T) {
	meta := ParseFilenameMetadata("aapl-20250628_20251114_155218.pdf")
	require.NotNil(t, meta.Company)
	require.NotNil(t, meta.Year)
	assert.Equal(t, "AAPL", *meta.Company)
	assert.Equal(t, 2025, *meta.Year)
}

func TestParseFilenameMetadataStoredName(t *testing.T) {
	meta := ParseFilenameMetadata("msft-20240630_20251114_155218_482193_7f2a9c1d.pdf")
	require.NotNil(t, meta.Company)
	assert.Equal(t, "MSFT", *meta.Company)
	assert.Equal(t, 2024, *meta.Year)
}

func TestParseFilenameMetadataNoMatch(t *testing.T) {
	for _, name := range []string{"report_final.pdf", "", "aapl-2025_x.pdf", "aapl-20250628.pdf"} {
		meta := ParseFilenameMetadata(name)
		assert.Nil(t, meta.Company, name)
		assert.Nil(t, meta.Year, name)
	}
}

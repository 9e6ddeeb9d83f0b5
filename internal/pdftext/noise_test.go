package pdftext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNoiseLine(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"", true},
		{"  ", true},
		{"ab", true},
		{" é ", true},
		{"Page 3 of 10", true},
		{"page 3 OF 10", true},
		{"  Page 12 of 120  ", true},
		{"42", true},
		{"2024", true},
		{"Copyright 2024 Corp", true},
		{"COPYRIGHT notice", true},
		{"CONFIDENTIAL", true},
		{"Confidential - do not distribute", true},
		{"internal proprietary data", true},
		{"PROPRIETARY", true},
		{"Revenue grew 12% year over year", false},
		{"Page 3 of ten", false},
		{"42 million in revenue", false},
		{"Our copyright portfolio grew", false},
		{"abc", false},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, IsNoiseLine(tt.line))
		})
	}
}

func TestCleanTextKeepsOrderAndContent(t *testing.T) {
	text := "Quarterly Report\nPage 1 of 3\n  Revenue grew 12%\n7\nCopyright 2024 Corp\nNet income rose"
	assert.Equal(t, "Quarterly Report\n  Revenue grew 12%\nNet income rose", CleanText(text))
}

func TestCleanTextAllNoise(t *testing.T) {
	assert.Equal(t, "", CleanText("1\nPage 1 of 1\nConfidential"))
}

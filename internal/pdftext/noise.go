package pdftext

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// noisePatterns match headers, footers and page artifacts common in
// financial reports. Each is applied to the trimmed line.
var noisePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^page \d+ of \d+$`),
	regexp.MustCompile(`^\d+$`),
	regexp.MustCompile(`(?i)^copyright`),
	regexp.MustCompile(`(?i)^confidential`),
	regexp.MustCompile(`(?i)proprietary`),
}

// IsNoiseLine reports whether line is a header/footer/page-number artifact
// rather than document content.
func IsNoiseLine(line string) bool {
	line = strings.TrimSpace(line)
	if utf8.RuneCountInString(line) < 3 {
		return true
	}
	for _, p := range noisePatterns {
		if p.MatchString(line) {
			return true
		}
	}
	return false
}

// CleanText drops noise lines and keeps the remaining lines, unmodified and
// in order, joined by newlines.
func CleanText(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if !IsNoiseLine(line) {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

package pdftext

import (
	"log/slog"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// filenameMetaRe matches stems like "aapl-20250628_20251114_155218".
var filenameMetaRe = regexp.MustCompile(`^([a-zA-Z0-9\-_]+)-(\d{8})_`)

// Metadata is advisory information recovered from a filename. Either field
// may be nil.
type Metadata struct {
	Company *string
	Year    *int
}

// ParseFilenameMetadata extracts the company ticker and report year from a
// filename of the form <ticker>-<YYYYMMDD>_<rest>. It never fails; when the
// name does not follow the convention both fields are nil.
func ParseFilenameMetadata(filename string) Metadata {
	base := filepath.Base(filename)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	m := filenameMetaRe.FindStringSubmatch(stem)
	if m == nil {
		slog.Debug("No filename metadata found.", "filename", filename)
		return Metadata{}
	}

	year, err := strconv.Atoi(m[2][:4])
	if err != nil {
		slog.Warn("Could not parse year from filename.", "filename", filename, "error", err)
		return Metadata{}
	}
	company := strings.ToUpper(m[1])
	return Metadata{Company: &company, Year: &year}
}

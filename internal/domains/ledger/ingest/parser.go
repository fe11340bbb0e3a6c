// Package ingest turns uploaded stock files into ordered movement
// records. Parsers are selected by file extension; the set of formats
// is closed.
package ingest

import (
	"path/filepath"
	"strings"

	"inventory-backend/internal/domains/ledger/model"
)

// Record is one parsed stock movement. Quantity is a signed delta:
// positive adds stock, negative removes it. Row is the 1-based source
// row, kept for error reporting.
type Record struct {
	Barcode  string
	Quantity int64
	Row      int
}

// Parser converts raw file bytes into ordered records.
type Parser interface {
	Parse(data []byte) ([]Record, error)
}

var parsers = map[string]Parser{
	".xlsx": &xlsxParser{},
	".csv":  &csvParser{},
	".txt":  &textParser{},
}

// ParseFile dispatches on the filename extension. Unknown extensions
// are rejected with ErrUnsupportedFormat.
func ParseFile(filename string, data []byte) ([]Record, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	parser, ok := parsers[ext]
	if !ok {
		return nil, model.ErrUnsupportedFormat
	}
	return parser.Parse(data)
}

// SupportedExtensions lists the registered formats, for error messages.
func SupportedExtensions() []string {
	return []string{".csv", ".txt", ".xlsx"}
}

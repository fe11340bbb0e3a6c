package ingest

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"inventory-backend/internal/domains/ledger/model"
)

// xlsxParser reads the first sheet of a workbook. Column A holds the
// barcode, column B the signed quantity. A header row is skipped when
// column B of the first row is not numeric.
type xlsxParser struct{}

func (p *xlsxParser) Parse(data []byte) ([]Record, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: not a valid xlsx file", model.ErrUnsupportedFormat)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, model.ErrEmptyImport
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet rows: %w", err)
	}

	records := make([]Record, 0, len(rows))
	for i, row := range rows {
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		if len(row) < 2 {
			return nil, model.NewBadRowError(i+1, fmt.Errorf("expected barcode and quantity columns"))
		}

		barcode := strings.TrimSpace(row[0])
		qty, err := strconv.ParseInt(strings.TrimSpace(row[1]), 10, 64)
		if err != nil {
			if i == 0 {
				// Header row.
				continue
			}
			return nil, model.NewBadRowError(i+1, fmt.Errorf("quantity is not a number: %q", row[1]))
		}
		if qty == 0 {
			return nil, model.NewBadRowError(i+1, model.ErrInvalidQuantity)
		}

		records = append(records, Record{Barcode: barcode, Quantity: qty, Row: i + 1})
	}

	if len(records) == 0 {
		return nil, model.ErrEmptyImport
	}
	return records, nil
}

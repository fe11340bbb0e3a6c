package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"inventory-backend/internal/domains/ledger/model"
)

// csvParser reads `barcode,quantity` lines. A header row is skipped
// when the quantity field of the first row is not numeric.
type csvParser struct{}

func (p *csvParser) Parse(data []byte) ([]Record, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records := []Record{}
	rowNum := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, model.NewBadRowError(rowNum+1, err)
		}
		rowNum++

		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		if len(row) < 2 {
			return nil, model.NewBadRowError(rowNum, fmt.Errorf("expected barcode and quantity fields"))
		}

		barcode := strings.TrimSpace(row[0])
		qty, err := strconv.ParseInt(strings.TrimSpace(row[1]), 10, 64)
		if err != nil {
			if rowNum == 1 {
				// Header row.
				continue
			}
			return nil, model.NewBadRowError(rowNum, fmt.Errorf("quantity is not a number: %q", row[1]))
		}
		if qty == 0 {
			return nil, model.NewBadRowError(rowNum, model.ErrInvalidQuantity)
		}

		records = append(records, Record{Barcode: barcode, Quantity: qty, Row: rowNum})
	}

	if len(records) == 0 {
		return nil, model.ErrEmptyImport
	}
	return records, nil
}

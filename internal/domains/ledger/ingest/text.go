package ingest

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"inventory-backend/internal/domains/ledger/model"
)

// textParser reads `add <barcode> <qty>` / `remove <barcode> <qty>`
// lines. Blank lines and lines starting with # are ignored.
type textParser struct{}

func (p *textParser) Parse(data []byte) ([]Record, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))

	records := []Record{}
	rowNum := 0
	for scanner.Scan() {
		rowNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 3 {
			return nil, model.NewBadRowError(rowNum, fmt.Errorf("expected `add|remove <barcode> <quantity>`"))
		}

		qty, err := strconv.ParseInt(fields[2], 10, 64)
		if err != nil || qty <= 0 {
			return nil, model.NewBadRowError(rowNum, model.ErrInvalidQuantity)
		}

		switch strings.ToLower(fields[0]) {
		case "add":
		case "remove":
			qty = -qty
		default:
			return nil, model.NewBadRowError(rowNum, fmt.Errorf("unknown marker %q", fields[0]))
		}

		records = append(records, Record{Barcode: fields[1], Quantity: qty, Row: rowNum})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan text file: %w", err)
	}

	if len(records) == 0 {
		return nil, model.ErrEmptyImport
	}
	return records, nil
}

// Package importer loads ad rows and their creative files and persists them as ads.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/mtheuszin1/adscale-deploy/normalizer"
)

const utf8BOM = "\ufeff"

// ReadCSV parses a header row followed by data rows. Exports that use ';' as the
// delimiter are detected from the header. Blank cells are dropped and rows with no
// values at all are skipped.
func ReadCSV(r io.Reader) ([]normalizer.RawRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	rows, err := parseCSV(data, ',')
	if err != nil {
		return nil, err
	}
	if len(rows) > 0 && len(rows[0]) == 1 && strings.Contains(rows[0][0], ";") {
		if rows, err = parseCSV(data, ';'); err != nil {
			return nil, err
		}
	}
	if len(rows) < 2 {
		return nil, nil
	}

	headers := rows[0]
	headers[0] = strings.TrimPrefix(headers[0], utf8BOM)

	var records []normalizer.RawRecord
	for _, row := range rows[1:] {
		rec := make(normalizer.RawRecord)
		for j, val := range row {
			if j >= len(headers) {
				break
			}
			key := strings.TrimSpace(headers[j])
			val = strings.TrimSpace(val)
			if key == "" || val == "" {
				continue
			}
			if _, dup := rec[key]; !dup {
				rec[key] = val
			}
		}
		if len(rec) == 0 {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseCSV(data []byte, comma rune) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = comma
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return rows, nil
}

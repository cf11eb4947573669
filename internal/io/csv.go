package io

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"acquire-tool/internal/logging"
)

// CSVFormat implements the Format interface for comma-separated cache
// artifacts: UTF-8, a header row of column names, one row per record, no
// synthetic index column.
type CSVFormat struct {
	Delimiter rune // Field delimiter (e.g., ',', '\t').
}

// NewCSVFormat creates a CSVFormat with the given delimiter, defaulting to ','.
func NewCSVFormat(delimiter string) (*CSVFormat, error) {
	var delim rune = ','
	if delimiter != "" {
		if utf8.RuneCountInString(delimiter) != 1 {
			return nil, fmt.Errorf("invalid delimiter '%s': must be a single character", delimiter)
		}
		delim = []rune(delimiter)[0]
	}
	return &CSVFormat{Delimiter: delim}, nil
}

// Read parses the CSV artifact at filePath into a dataset.
func (cf *CSVFormat) Read(filePath string) ([]map[string]interface{}, error) {
	logging.Logf(logging.Debug, "CSVFormat reading file: %s (Delimiter: '%c')", filePath, cf.Delimiter)

	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("CSVFormat failed to open file '%s': %w", filePath, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.Comma = cf.Delimiter
	reader.FieldsPerRecord = -1 // Column count is validated per row below.

	allRows, err := reader.ReadAll()
	if err != nil {
		if parseErr, ok := err.(*csv.ParseError); ok {
			return nil, fmt.Errorf("CSVFormat parse error in '%s' on line %d, column %d: %w", filePath, parseErr.Line, parseErr.Column, parseErr.Err)
		}
		return nil, fmt.Errorf("CSVFormat failed to read rows from '%s': %w", filePath, err)
	}

	if len(allRows) < 2 {
		if len(allRows) == 0 {
			logging.Logf(logging.Warning, "CSV file '%s' is empty or contains no data", filePath)
		} else {
			logging.Logf(logging.Warning, "CSV file '%s' contains only a header row", filePath)
		}
		return []map[string]interface{}{}, nil
	}

	headers := allRows[0]
	numHeaders := len(headers)
	headerSet := make(map[string]int)
	validHeaderIndices := make(map[int]string)

	for i, h := range headers {
		header := strings.TrimSpace(h)
		if header == "" {
			logging.Logf(logging.Warning, "CSVFormat: Empty header found in column %d of file '%s'; this column will be skipped", i+1, filePath)
			continue
		}
		headerSet[header]++
		if headerSet[header] > 1 {
			logging.Logf(logging.Warning, "CSVFormat: Duplicate header '%s' found at column %d in file '%s'; data for this header name will represent the last occurring column", header, i+1, filePath)
		}
		validHeaderIndices[i] = header
	}

	if len(validHeaderIndices) == 0 {
		logging.Logf(logging.Warning, "CSVFormat: No valid headers found in file '%s'; returning empty dataset", filePath)
		return []map[string]interface{}{}, nil
	}

	records := make([]map[string]interface{}, 0, len(allRows)-1)
	for i, row := range allRows[1:] {
		rowNum := i + 2 // 1-based row number in the file (including header).
		if len(row) != numHeaders {
			logging.Logf(logging.Warning, "CSVFormat: Row %d in '%s' has %d fields, expected %d based on header count; skipping row. Data: %v", rowNum, filePath, len(row), numHeaders, row)
			continue
		}

		rec := make(map[string]interface{})
		for colIdx, value := range row {
			if headerName, ok := validHeaderIndices[colIdx]; ok {
				rec[headerName] = value
			}
		}
		records = append(records, rec)
	}

	logging.Logf(logging.Debug, "CSVFormat successfully loaded %d records from %s", len(records), filePath)
	return records, nil
}

// Write persists the dataset as a CSV artifact at filePath, replacing any
// existing file. Columns are the sorted union of keys across all records.
func (cf *CSVFormat) Write(records []map[string]interface{}, filePath string) error {
	logging.Logf(logging.Debug, "CSVFormat writing %d records to file: %s (Delimiter: '%c')", len(records), filePath, cf.Delimiter)

	headers := sortedHeaders(records)

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	writer.Comma = cf.Delimiter

	if len(headers) > 0 {
		if err := writer.Write(headers); err != nil {
			return fmt.Errorf("CSVFormat failed to encode header for '%s': %w", filePath, err)
		}
	}

	for i, rec := range records {
		row := make([]string, len(headers))
		for j, header := range headers {
			if val, ok := rec[header]; ok && val != nil {
				row[j] = fmt.Sprintf("%v", val)
			} else {
				row[j] = ""
			}
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("CSVFormat failed to encode data row %d for '%s': %w", i+1, filePath, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("CSVFormat failed to encode records for '%s': %w", filePath, err)
	}

	if err := writeFileAtomic(filePath, buf.Bytes()); err != nil {
		return fmt.Errorf("CSVFormat failed to write file: %w", err)
	}

	logging.Logf(logging.Debug, "CSVFormat successfully wrote %d records to %s", len(records), filePath)
	return nil
}

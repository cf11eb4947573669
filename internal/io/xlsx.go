package io

import (
	"fmt"
	"strings"

	"acquire-tool/internal/logging"
	"github.com/xuri/excelize/v2"
)

// DefaultSheetName is used when no sheet name is configured.
const DefaultSheetName = "Sheet1"

// XLSXFormat implements the Format interface for Excel (.xlsx) cache
// artifacts. One sheet holds the dataset: a header row followed by one row
// per record.
type XLSXFormat struct {
	SheetName string
}

// NewXLSXFormat creates an XLSXFormat for the given sheet, defaulting to Sheet1.
func NewXLSXFormat(sheetName string) *XLSXFormat {
	if sheetName == "" {
		sheetName = DefaultSheetName
	}
	return &XLSXFormat{SheetName: sheetName}
}

// Read parses the configured sheet of the XLSX artifact into a dataset.
func (xf *XLSXFormat) Read(filePath string) ([]map[string]interface{}, error) {
	logging.Logf(logging.Debug, "XLSXFormat reading file: %s (Sheet: '%s')", filePath, xf.SheetName)

	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("XLSXFormat failed to open file '%s': %w", filePath, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			logging.Logf(logging.Error, "XLSXFormat failed to close file '%s': %v", filePath, err)
		}
	}()

	targetSheet := ""
	for _, name := range f.GetSheetList() {
		if name == xf.SheetName {
			targetSheet = name
			break
		}
	}
	if targetSheet == "" {
		return nil, fmt.Errorf("XLSXFormat: sheet '%s' not found in '%s'", xf.SheetName, filePath)
	}

	rows, err := f.GetRows(targetSheet)
	if err != nil {
		return nil, fmt.Errorf("XLSXFormat failed to get rows from sheet '%s' in '%s': %w", targetSheet, filePath, err)
	}

	records := make([]map[string]interface{}, 0)
	if len(rows) < 1 {
		logging.Logf(logging.Warning, "XLSX sheet '%s' in '%s' is empty or contains no header row", targetSheet, filePath)
		return records, nil
	}

	rawHeaders := rows[0]
	validHeaderIndices := make(map[int]string)
	seen := make(map[string]int)
	for i, h := range rawHeaders {
		header := strings.TrimSpace(h)
		if header == "" {
			logging.Logf(logging.Warning, "XLSXFormat: Empty header found in column %d of sheet '%s'; this column will be skipped", i+1, targetSheet)
			continue
		}
		seen[header]++
		if seen[header] > 1 {
			logging.Logf(logging.Warning, "XLSXFormat: Duplicate header '%s' found at column %d in sheet '%s'; data for this header name will represent the last occurring column", header, i+1, targetSheet)
		}
		validHeaderIndices[i] = header
	}

	if len(validHeaderIndices) == 0 {
		logging.Logf(logging.Warning, "XLSXFormat: No valid headers found in sheet '%s'; returning empty dataset", targetSheet)
		return records, nil
	}

	for _, row := range rows[1:] {
		rec := make(map[string]interface{})
		for colIdx, header := range validHeaderIndices {
			// GetRows drops trailing empty cells, so short rows are padded.
			if colIdx < len(row) {
				rec[header] = row[colIdx]
			} else {
				rec[header] = ""
			}
		}
		records = append(records, rec)
	}

	logging.Logf(logging.Debug, "XLSXFormat successfully loaded %d records from %s", len(records), filePath)
	return records, nil
}

// Write persists the dataset to the configured sheet of an XLSX artifact at
// filePath. Columns are the sorted union of keys across all records.
func (xf *XLSXFormat) Write(records []map[string]interface{}, filePath string) error {
	logging.Logf(logging.Debug, "XLSXFormat writing %d records to file: %s (Sheet: '%s')", len(records), filePath, xf.SheetName)

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			logging.Logf(logging.Error, "XLSXFormat failed to close workbook for '%s': %v", filePath, err)
		}
	}()

	if xf.SheetName != DefaultSheetName {
		if err := f.SetSheetName(DefaultSheetName, xf.SheetName); err != nil {
			return fmt.Errorf("XLSXFormat failed to name sheet '%s': %w", xf.SheetName, err)
		}
	}

	headers := sortedHeaders(records)
	for j, header := range headers {
		cell, err := excelize.CoordinatesToCellName(j+1, 1)
		if err != nil {
			return fmt.Errorf("XLSXFormat failed to compute header cell: %w", err)
		}
		if err := f.SetCellValue(xf.SheetName, cell, header); err != nil {
			return fmt.Errorf("XLSXFormat failed to write header '%s': %w", header, err)
		}
	}

	for i, rec := range records {
		for j, header := range headers {
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return fmt.Errorf("XLSXFormat failed to compute cell for row %d: %w", i+1, err)
			}
			val := rec[header]
			if val == nil {
				continue
			}
			if err := f.SetCellValue(xf.SheetName, cell, val); err != nil {
				return fmt.Errorf("XLSXFormat failed to write row %d column '%s': %w", i+1, header, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("XLSXFormat failed to encode workbook for '%s': %w", filePath, err)
	}
	if err := writeFileAtomic(filePath, buf.Bytes()); err != nil {
		return fmt.Errorf("XLSXFormat failed to write file: %w", err)
	}

	logging.Logf(logging.Debug, "XLSXFormat successfully wrote %d records to %s", len(records), filePath)
	return nil
}

package io

import (
	"encoding/json"
	"fmt"
	"os"

	"acquire-tool/internal/logging"
)

// JSONFormat implements the Format interface for JSON cache artifacts.
// The artifact is an array of objects; a single top-level object is accepted
// on read and treated as a one-record dataset.
type JSONFormat struct{}

// Read parses the JSON artifact at filePath into a dataset.
func (jf *JSONFormat) Read(filePath string) ([]map[string]interface{}, error) {
	logging.Logf(logging.Debug, "JSONFormat reading file: %s", filePath)
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("JSONFormat failed to read file '%s': %w", filePath, err)
	}

	var records []map[string]interface{}
	if err := json.Unmarshal(data, &records); err != nil {
		var singleRecord map[string]interface{}
		if errSingle := json.Unmarshal(data, &singleRecord); errSingle == nil {
			logging.Logf(logging.Debug, "JSON artifact '%s' contains a single object, treating as one record", filePath)
			return []map[string]interface{}{singleRecord}, nil
		}
		return nil, fmt.Errorf("JSONFormat failed to unmarshal JSON from '%s' as array or single object: %w", filePath, err)
	}

	if records == nil {
		records = []map[string]interface{}{}
	}
	logging.Logf(logging.Debug, "JSONFormat successfully loaded %d records from %s", len(records), filePath)
	return records, nil
}

// Write persists the dataset as an indented JSON array at filePath.
func (jf *JSONFormat) Write(records []map[string]interface{}, filePath string) error {
	logging.Logf(logging.Debug, "JSONFormat writing %d records to file: %s", len(records), filePath)

	var data []byte
	var err error
	if len(records) == 0 {
		data = []byte("[]\n")
	} else {
		data, err = json.MarshalIndent(records, "", "  ")
		if err != nil {
			return fmt.Errorf("JSONFormat failed to marshal records to JSON: %w", err)
		}
		data = append(data, '\n')
	}

	if err := writeFileAtomic(filePath, data); err != nil {
		return fmt.Errorf("JSONFormat failed to write file: %w", err)
	}

	logging.Logf(logging.Debug, "JSONFormat successfully wrote %d records to %s", len(records), filePath)
	return nil
}

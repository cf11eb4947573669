package io

import (
	"bytes"
	"fmt"
	"os"

	"acquire-tool/internal/logging"
	"gopkg.in/yaml.v3"
)

// YAMLFormat implements the Format interface for YAML cache artifacts.
// The artifact is a sequence of maps; a single top-level map is accepted on
// read and treated as a one-record dataset.
type YAMLFormat struct{}

// Read parses the YAML artifact at filePath into a dataset.
func (yf *YAMLFormat) Read(filePath string) ([]map[string]interface{}, error) {
	logging.Logf(logging.Debug, "YAMLFormat reading file: %s", filePath)
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("YAMLFormat failed to read file '%s': %w", filePath, err)
	}

	var records []map[string]interface{}
	errList := yaml.Unmarshal(data, &records)
	if errList == nil {
		// Empty or literal-null input leaves the slice nil.
		if records == nil {
			return []map[string]interface{}{}, nil
		}
		logging.Logf(logging.Debug, "YAMLFormat successfully loaded %d records from %s", len(records), filePath)
		return records, nil
	}

	var singleRecord map[string]interface{}
	if errMap := yaml.Unmarshal(data, &singleRecord); errMap == nil {
		logging.Logf(logging.Debug, "YAML artifact '%s' contains a single map, treating as one record", filePath)
		if singleRecord == nil {
			return []map[string]interface{}{{}}, nil
		}
		return []map[string]interface{}{singleRecord}, nil
	}

	return nil, fmt.Errorf("YAMLFormat failed to unmarshal YAML from '%s': %w", filePath, errList)
}

// Write persists the dataset as a YAML sequence at filePath.
func (yf *YAMLFormat) Write(records []map[string]interface{}, filePath string) error {
	logging.Logf(logging.Debug, "YAMLFormat writing %d records to file: %s", len(records), filePath)

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)

	encodeErr := encoder.Encode(records)
	if encodeErr == nil {
		encodeErr = encoder.Close()
	}
	if encodeErr != nil {
		return fmt.Errorf("YAMLFormat failed to marshal records to YAML: %w", encodeErr)
	}

	if err := writeFileAtomic(filePath, buf.Bytes()); err != nil {
		return fmt.Errorf("YAMLFormat failed to write file: %w", err)
	}

	logging.Logf(logging.Debug, "YAMLFormat successfully wrote %d records to %s", len(records), filePath)
	return nil
}

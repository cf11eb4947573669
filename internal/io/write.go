package io

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// writeFileAtomic writes data to filePath through a temporary file in the same
// directory followed by a rename, so a failed write never leaves a truncated
// artifact at the destination. The parent directory is created if missing.
func writeFileAtomic(filePath string, data []byte) error {
	dir := filepath.Dir(filePath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory for '%s': %w", filePath, err)
		}
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(filePath)+".tmp*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file for '%s': %w", filePath, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temporary file for '%s': %w", filePath, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temporary file for '%s': %w", filePath, err)
	}

	if err := os.Rename(tmpName, filePath); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace '%s': %w", filePath, err)
	}
	if err := os.Chmod(filePath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions on '%s': %w", filePath, err)
	}
	return nil
}

// sortedHeaders collects the union of keys across all records in sorted order,
// giving the written artifact a deterministic column layout.
func sortedHeaders(records []map[string]interface{}) []string {
	headerSet := make(map[string]struct{})
	for _, rec := range records {
		for k := range rec {
			headerSet[k] = struct{}{}
		}
	}
	headers := make([]string, 0, len(headerSet))
	for k := range headerSet {
		headers = append(headers, k)
	}
	sort.Strings(headers)
	return headers
}

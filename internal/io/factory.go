package io

import (
	"fmt"
	"path/filepath"
	"strings"

	"acquire-tool/internal/config"
	"acquire-tool/internal/logging"
)

// DetectFormat maps a cache file path to a format name by extension.
// Unknown or missing extensions fall back to CSV, the default artifact format.
func DetectFormat(filePath string) string {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".json":
		return config.FormatJSON
	case ".yaml", ".yml":
		return config.FormatYAML
	case ".xlsx":
		return config.FormatXLSX
	default:
		return config.FormatCSV
	}
}

// NewFormat creates the cache Format for a dataset configuration. An explicit
// format setting wins; otherwise the format is detected from the file extension.
func NewFormat(cfg config.DatasetConfig) (Format, error) {
	formatName := strings.ToLower(cfg.Format)
	if formatName == "" {
		formatName = DetectFormat(cfg.File)
	}
	logging.Logf(logging.Debug, "Creating cache format '%s' for dataset '%s'", formatName, cfg.Name)

	switch formatName {
	case config.FormatCSV:
		format, err := NewCSVFormat(cfg.Delimiter)
		if err != nil {
			return nil, fmt.Errorf("failed to create CSV format: %w", err)
		}
		return format, nil
	case config.FormatJSON:
		return &JSONFormat{}, nil
	case config.FormatYAML:
		return &YAMLFormat{}, nil
	case config.FormatXLSX:
		return NewXLSXFormat(cfg.SheetName), nil
	default:
		return nil, fmt.Errorf("unsupported cache format '%s'", cfg.Format)
	}
}

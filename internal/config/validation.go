package config

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Knetic/govaluate"
)

// Define known valid enum values for configuration fields.
var (
	knownLogLevels = []string{"none", "error", "warn", "warning", "info", "debug"}
	knownFormats   = []string{"", FormatCSV, FormatJSON, FormatYAML, FormatXLSX}
)

// isValidEnumValue checks if a value is present in a list of allowed string values (case-insensitive).
func isValidEnumValue(value string, allowedValues []string) bool {
	lowerValue := strings.ToLower(value)
	for _, allowed := range allowedValues {
		if lowerValue == strings.ToLower(allowed) {
			return true
		}
	}
	return false
}

// ValidateConfig performs comprehensive validation of the acquisition configuration.
func ValidateConfig(cfg *AcquireConfig) error {
	var allErrors []string

	if !isValidEnumValue(cfg.Logging.Level, knownLogLevels) {
		allErrors = append(allErrors, fmt.Sprintf("- Config.Logging.Level: invalid log level '%s', must be one of %v", cfg.Logging.Level, knownLogLevels))
	}

	if len(cfg.Datasets) == 0 {
		allErrors = append(allErrors, "- Config.Datasets: at least one dataset is required")
	}

	seenNames := make(map[string]bool)
	for i, ds := range cfg.Datasets {
		prefix := fmt.Sprintf("Config.Datasets[%d]", i)
		if ds.Name != "" {
			prefix = fmt.Sprintf("Config.Datasets[%d] ('%s')", i, ds.Name)
		}
		allErrors = append(allErrors, validateDatasetConfig(prefix, &ds)...)

		if ds.Name != "" {
			if seenNames[ds.Name] {
				allErrors = append(allErrors, fmt.Sprintf("- %s: duplicate dataset name '%s'", prefix, ds.Name))
			}
			seenNames[ds.Name] = true
		}
	}

	if len(allErrors) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(allErrors, "\n"))
	}
	return nil
}

// validateDatasetConfig validates a single dataset entry.
func validateDatasetConfig(prefix string, ds *DatasetConfig) []string {
	var errors []string

	if ds.Name == "" {
		errors = append(errors, fmt.Sprintf("- %s.Name: dataset name is required", prefix))
	}
	if ds.File == "" {
		errors = append(errors, fmt.Sprintf("- %s.File: cache file path is required", prefix))
	}
	if ds.Source == "" {
		errors = append(errors, fmt.Sprintf("- %s.Source: source name is required", prefix))
	}
	if ds.Query == "" {
		errors = append(errors, fmt.Sprintf("- %s.Query: query is required", prefix))
	}

	if !isValidEnumValue(ds.Format, knownFormats) {
		errors = append(errors, fmt.Sprintf("- %s.Format: invalid cache format '%s', must be one of [csv json yaml xlsx]", prefix, ds.Format))
	}
	if ds.Delimiter != "" && utf8.RuneCountInString(ds.Delimiter) != 1 {
		errors = append(errors, fmt.Sprintf("- %s.Delimiter: invalid delimiter '%s', must be a single character", prefix, ds.Delimiter))
	}

	if ds.Filter != "" {
		if _, err := govaluate.NewEvaluableExpression(ds.Filter); err != nil {
			errors = append(errors, fmt.Sprintf("- %s.Filter: invalid expression syntax: %v", prefix, err))
		}
	}

	for j, col := range ds.Computed {
		if col.Target == "" {
			errors = append(errors, fmt.Sprintf("- %s.Computed[%d].Target: target column name is required", prefix, j))
		}
		if col.Expression == "" {
			errors = append(errors, fmt.Sprintf("- %s.Computed[%d].Expression: expression is required", prefix, j))
		} else if _, err := govaluate.NewEvaluableExpression(col.Expression); err != nil {
			errors = append(errors, fmt.Sprintf("- %s.Computed[%d].Expression: invalid expression syntax: %v", prefix, j, err))
		}
	}

	for oldName, newName := range ds.Rename {
		if oldName == "" || newName == "" {
			errors = append(errors, fmt.Sprintf("- %s.Rename: rename entries require non-empty old and new column names", prefix))
			break
		}
	}

	return errors
}

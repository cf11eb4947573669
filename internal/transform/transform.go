package transform

import (
	"fmt"

	"acquire-tool/internal/acquire"
	"acquire-tool/internal/config"
	"acquire-tool/internal/logging"

	"github.com/Knetic/govaluate"
)

// This package builds post-load transformation hooks for datasets: the
// adjustments that are either impossible or inconvenient to express in the
// query itself. Every builder returns a pure acquire.Transform; input records
// are never mutated.

// Identity returns the dataset unchanged.
func Identity() acquire.Transform {
	return func(records []map[string]interface{}) ([]map[string]interface{}, error) {
		return records, nil
	}
}

// Chain composes transforms left to right. An empty chain is identity.
func Chain(transforms ...acquire.Transform) acquire.Transform {
	return func(records []map[string]interface{}) ([]map[string]interface{}, error) {
		var err error
		for _, t := range transforms {
			if t == nil {
				continue
			}
			records, err = t(records)
			if err != nil {
				return nil, err
			}
		}
		return records, nil
	}
}

// Filter keeps the records for which the expression evaluates to true.
// The expression uses govaluate syntax with column names as parameters.
// Evaluation errors and non-boolean results fail the transform.
func Filter(expr string) (acquire.Transform, error) {
	evaluable, err := govaluate.NewEvaluableExpression(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid filter expression '%s': %w", expr, err)
	}
	return func(records []map[string]interface{}) ([]map[string]interface{}, error) {
		kept := make([]map[string]interface{}, 0, len(records))
		for i, record := range records {
			result, evalErr := evaluable.Evaluate(record)
			if evalErr != nil {
				return nil, fmt.Errorf("filter '%s' failed on record %d: %w", expr, i, evalErr)
			}
			keep, isBool := result.(bool)
			if !isBool {
				return nil, fmt.Errorf("filter '%s' returned non-boolean %T (%v) on record %d", expr, result, result, i)
			}
			if keep {
				kept = append(kept, record)
			}
		}
		logging.Logf(logging.Debug, "Filter '%s' kept %d of %d records", expr, len(kept), len(records))
		return kept, nil
	}, nil
}

// RenameColumns renames columns per the old-name to new-name map. Columns
// absent from a record are ignored.
func RenameColumns(renames map[string]string) acquire.Transform {
	return func(records []map[string]interface{}) ([]map[string]interface{}, error) {
		out := make([]map[string]interface{}, len(records))
		for i, record := range records {
			rec := cloneRecord(record)
			for oldName, newName := range renames {
				if val, ok := rec[oldName]; ok {
					delete(rec, oldName)
					rec[newName] = val
				}
			}
			out[i] = rec
		}
		return out, nil
	}
}

// DropColumns removes the named columns from every record.
func DropColumns(columns ...string) acquire.Transform {
	return func(records []map[string]interface{}) ([]map[string]interface{}, error) {
		out := make([]map[string]interface{}, len(records))
		for i, record := range records {
			rec := cloneRecord(record)
			for _, col := range columns {
				delete(rec, col)
			}
			out[i] = rec
		}
		return out, nil
	}
}

// ComputeColumn adds a column whose value is the expression evaluated against
// each record (govaluate syntax, column names as parameters). An existing
// column with the target name is overwritten.
func ComputeColumn(target, expr string) (acquire.Transform, error) {
	evaluable, err := govaluate.NewEvaluableExpression(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid expression '%s' for column '%s': %w", expr, target, err)
	}
	return func(records []map[string]interface{}) ([]map[string]interface{}, error) {
		out := make([]map[string]interface{}, len(records))
		for i, record := range records {
			result, evalErr := evaluable.Evaluate(record)
			if evalErr != nil {
				return nil, fmt.Errorf("expression '%s' for column '%s' failed on record %d: %w", expr, target, i, evalErr)
			}
			rec := cloneRecord(record)
			rec[target] = result
			out[i] = rec
		}
		return out, nil
	}, nil
}

// FromDataset builds the transform chain described by a dataset
// configuration: filter, then renames, then drops, then computed columns.
// A configuration with none of those yields identity.
func FromDataset(cfg config.DatasetConfig) (acquire.Transform, error) {
	var transforms []acquire.Transform

	if cfg.Filter != "" {
		filter, err := Filter(cfg.Filter)
		if err != nil {
			return nil, err
		}
		transforms = append(transforms, filter)
	}
	if len(cfg.Rename) > 0 {
		transforms = append(transforms, RenameColumns(cfg.Rename))
	}
	if len(cfg.Drop) > 0 {
		transforms = append(transforms, DropColumns(cfg.Drop...))
	}
	for _, col := range cfg.Computed {
		compute, err := ComputeColumn(col.Target, col.Expression)
		if err != nil {
			return nil, err
		}
		transforms = append(transforms, compute)
	}

	if len(transforms) == 0 {
		return Identity(), nil
	}
	return Chain(transforms...), nil
}

// cloneRecord shallow-copies a record so transforms never mutate their input.
func cloneRecord(record map[string]interface{}) map[string]interface{} {
	rec := make(map[string]interface{}, len(record))
	for k, v := range record {
		rec[k] = v
	}
	return rec
}

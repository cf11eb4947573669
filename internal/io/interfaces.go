package io

// Format handles reading and writing a cache artifact in one on-disk
// representation. A dataset written with Write and read back with Read must
// reproduce the same columns and values (type coercion on read is permitted,
// column identity and row order are not negotiable).
type Format interface {
	// Read parses the cache artifact at filePath into a tabular dataset.
	// Each map represents one record keyed by column name.
	Read(filePath string) ([]map[string]interface{}, error)

	// Write persists the dataset to filePath, replacing any existing artifact.
	// No synthetic row index is added. Implementations must not leave a
	// partially written file behind on failure.
	Write(records []map[string]interface{}, filePath string) error
}

package config

// Cache artifact format names and configuration defaults.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatXLSX = "xlsx"

	DefaultLogLevel     = "info"
	DefaultCSVDelimiter = ","

	// EnvDBCredentials is the fallback connection string environment variable,
	// consulted when a source name has no entry in the sources map.
	EnvDBCredentials = "DB_CREDENTIALS"
)

// AcquireConfig defines the overall structure of the acquisition YAML file.
type AcquireConfig struct {
	// Logging configuration specifies the verbosity level.
	Logging LoggingConfig `yaml:"logging"`
	// Sources maps opaque source names to connection strings. Values may
	// reference environment variables ($VAR/${VAR} or %VAR%); expansion
	// happens at resolution time, not at load time.
	Sources map[string]string `yaml:"sources,omitempty"`
	// Datasets lists the acquisitions this configuration describes.
	Datasets []DatasetConfig `yaml:"datasets"`
}

// LoggingConfig holds settings related to logging verbosity.
type LoggingConfig struct {
	// Level defines the logging detail (e.g., "none", "error", "warn", "info", "debug").
	// Defaults to "info".
	Level string `yaml:"level"`
}

// DatasetConfig describes one acquirable dataset: the cache artifact, the
// remote source and query behind it, and any post-load transformations.
type DatasetConfig struct {
	// Name identifies the dataset on the command line. Required and unique.
	Name string `yaml:"name"`
	// File is the local cache artifact path. Environment variables are expanded.
	File string `yaml:"file"`
	// Source names the remote source; resolved to connection details via the
	// sources map or the DB_CREDENTIALS environment variable.
	Source string `yaml:"source"`
	// Query is the SQL query executed against the resolved source. Required.
	Query string `yaml:"query"`

	// Format selects the cache artifact format ("csv", "json", "yaml", "xlsx").
	// When empty the format is detected from the file extension, defaulting to CSV.
	Format string `yaml:"format,omitempty"`
	// Delimiter is the CSV field delimiter (default ","). Use '\t' for tab.
	Delimiter string `yaml:"delimiter,omitempty"`
	// SheetName is the XLSX sheet holding the dataset. Defaults to "Sheet1".
	SheetName string `yaml:"sheetName,omitempty"`

	// Filter is an optional boolean expression (govaluate syntax) evaluated
	// against each record after loading; records evaluating false are dropped.
	Filter string `yaml:"filter,omitempty"`
	// Rename maps existing column names to new ones, applied after filtering.
	Rename map[string]string `yaml:"rename,omitempty"`
	// Drop lists columns removed from every record, applied after renaming.
	Drop []string `yaml:"drop,omitempty"`
	// Computed adds columns evaluated per record (govaluate syntax), applied last.
	Computed []ComputedColumn `yaml:"computed,omitempty"`
}

// ComputedColumn defines one derived column.
type ComputedColumn struct {
	// Target is the column name receiving the computed value. Required.
	Target string `yaml:"target"`
	// Expression is the govaluate expression evaluated against each record. Required.
	Expression string `yaml:"expression"`
}

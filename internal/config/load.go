package config

import (
	"fmt"
	"os"

	"acquire-tool/internal/util"

	"gopkg.in/yaml.v3"
)

// LoadConfig reads, parses, and validates the YAML configuration file.
// It applies defaults before returning the validated configuration.
func LoadConfig(filename string) (*AcquireConfig, error) {
	fileBytes, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", filename, err)
	}

	var config AcquireConfig
	err = yaml.Unmarshal(fileBytes, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse YAML in '%s': %w", filename, err)
	}

	applyDefaults(&config)

	if err := ValidateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// applyDefaults sets default values for the configuration sections.
func applyDefaults(cfg *AcquireConfig) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
	for i := range cfg.Datasets {
		ds := &cfg.Datasets[i]
		if ds.Format == FormatCSV && ds.Delimiter == "" {
			ds.Delimiter = DefaultCSVDelimiter
		}
	}
}

// ResolveSource maps a source name to a connection string. A name present in
// the sources map wins; otherwise the DB_CREDENTIALS environment variable is
// the fallback. The result is environment-expanded.
func (c *AcquireConfig) ResolveSource(sourceName string) (string, error) {
	if c != nil {
		if connStr, ok := c.Sources[sourceName]; ok && connStr != "" {
			return util.ExpandEnvUniversal(connStr), nil
		}
	}
	if connStr := os.Getenv(EnvDBCredentials); connStr != "" {
		return util.ExpandEnvUniversal(connStr), nil
	}
	return "", fmt.Errorf("no connection configured for source '%s' (add it to sources or set %s)", sourceName, EnvDBCredentials)
}

// Dataset returns the dataset configuration with the given name.
func (c *AcquireConfig) Dataset(name string) (*DatasetConfig, bool) {
	for i := range c.Datasets {
		if c.Datasets[i].Name == name {
			return &c.Datasets[i], true
		}
	}
	return nil, false
}

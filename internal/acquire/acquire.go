package acquire

import (
	"fmt"
	"os"

	aqio "acquire-tool/internal/io"
	"acquire-tool/internal/logging"
)

// Fetcher retrieves a dataset from a remote source. Implementations own the
// resolution of sourceName into connection details and the transport to the
// source; the loader only ever sees the resulting records.
type Fetcher interface {
	Fetch(sourceName, query string) ([]map[string]interface{}, error)
}

// Transform is the post-load hook applied to every dataset returned by
// GetData. It must be pure with respect to its input so loaders stay
// composable and testable. The default is identity.
type Transform func(records []map[string]interface{}) ([]map[string]interface{}, error)

// Loader produces a tabular dataset either from a local cache artifact or
// from a remote query, optionally writing the fetched result back to the
// cache. It holds no state beyond its configuration; whether the cache is
// warm or cold is purely a filesystem observation at call time.
type Loader struct {
	cachePath  string
	sourceName string
	query      string
	fetcher    Fetcher
	format     aqio.Format
	transform  Transform
}

// NewLoader creates a Loader. The three configuration strings are stored
// verbatim and are not validated; empty values surface as downstream
// failures. No I/O happens here. The cache format defaults to CSV.
func NewLoader(cachePath, sourceName, query string, fetcher Fetcher) *Loader {
	return &Loader{
		cachePath:  cachePath,
		sourceName: sourceName,
		query:      query,
		fetcher:    fetcher,
		format:     &aqio.CSVFormat{Delimiter: ','},
	}
}

// SetFormat replaces the cache artifact format. A nil format is ignored.
func (l *Loader) SetFormat(format aqio.Format) {
	if format != nil {
		l.format = format
	}
}

// SetTransform installs the post-load transformation hook. Passing nil
// restores the identity default.
func (l *Loader) SetTransform(transform Transform) {
	l.transform = transform
}

// GetData acquires the dataset and applies the transformation hook.
//
// If useCache is true and a file exists at the cache path, the dataset is
// read from the cache and the remote source is not contacted, even if the
// query has changed since the artifact was written. Otherwise the query is
// executed against the remote source, and, if cacheData is true, the result
// is persisted to the cache path, replacing any existing artifact.
//
// A cache write failure fails the whole call; the atomic replace in the
// format layer guarantees no partial artifact is left behind.
func (l *Loader) GetData(useCache, cacheData bool) ([]map[string]interface{}, error) {
	records, err := l.load(useCache, cacheData)
	if err != nil {
		return nil, err
	}
	if l.transform == nil {
		return records, nil
	}
	transformed, err := l.transform(records)
	if err != nil {
		return nil, fmt.Errorf("transform failed for cache '%s': %w", l.cachePath, err)
	}
	return transformed, nil
}

// load performs the cache-or-fetch branch.
func (l *Loader) load(useCache, cacheData bool) ([]map[string]interface{}, error) {
	if useCache && l.cacheExists() {
		logging.Logf(logging.Debug, "Loader reading cached dataset from '%s'", l.cachePath)
		records, err := l.format.Read(l.cachePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read cache artifact '%s': %w", l.cachePath, err)
		}
		return records, nil
	}

	logging.Logf(logging.Debug, "Loader fetching dataset from source '%s'", l.sourceName)
	if l.fetcher == nil {
		return nil, fmt.Errorf("loader for cache '%s' has no fetcher configured", l.cachePath)
	}
	records, err := l.fetcher.Fetch(l.sourceName, l.query)
	if err != nil {
		return nil, err
	}

	if cacheData {
		if err := l.format.Write(records, l.cachePath); err != nil {
			return nil, fmt.Errorf("failed to write cache artifact '%s': %w", l.cachePath, err)
		}
		logging.Logf(logging.Debug, "Loader cached %d records to '%s'", len(records), l.cachePath)
	}
	return records, nil
}

// cacheExists reports whether a cache artifact is present. An empty cache
// path never exists, so the remote path is always taken.
func (l *Loader) cacheExists() bool {
	if l.cachePath == "" {
		return false
	}
	info, err := os.Stat(l.cachePath)
	return err == nil && !info.IsDir()
}

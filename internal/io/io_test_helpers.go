package io

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"gopkg.in/yaml.v3"
)

// Helper to create a temporary file with specific content.
// nolint:unused // Used by sibling test files (csv_test.go, etc.)
func createTempFile(t *testing.T, content string, pattern string) string {
	t.Helper()
	tempFile, err := os.CreateTemp(t.TempDir(), pattern)
	if err != nil {
		t.Fatalf("Failed to create temp file (pattern: %s): %v", pattern, err)
	}
	filePath := tempFile.Name()
	_, err = tempFile.WriteString(content)
	if err != nil {
		_ = tempFile.Close()
		t.Fatalf("Failed to write to temp file %s: %v", filePath, err)
	}
	err = tempFile.Close()
	if err != nil {
		t.Fatalf("Failed to close temp file %s: %v", filePath, err)
	}
	return filePath
}

// tempArtifactPath returns a path for a not-yet-existing artifact.
// nolint:unused // Used by sibling test files
func tempArtifactPath(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(t.TempDir(), name)
}

// Helper to compare slices of maps, useful for checking round-trip results.
// Uses reflect.DeepEqual for value comparison. Order matters here.
// Uses YAML marshalling for more readable diffs on error.
// nolint:unused // Used by sibling test files
func compareRecordsDeep(t *testing.T, got, want []map[string]interface{}) bool {
	t.Helper()
	if !reflect.DeepEqual(got, want) {
		gotYAML, errGot := yaml.Marshal(got)
		wantYAML, errWant := yaml.Marshal(want)
		if errGot != nil || errWant != nil {
			t.Errorf("Record mismatch (order matters):\ngot:\n%#v\nwant:\n%#v", got, want)
			return false
		}
		t.Errorf("Record mismatch (order matters):\n--- GOT ---\n%s\n--- WANT ---\n%s", string(gotYAML), string(wantYAML))
		return false
	}
	return true
}

package acquire

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

// mockFetcher counts calls and returns canned records or a canned error.
type mockFetcher struct {
	records    []map[string]interface{}
	err        error
	calls      int
	lastSource string
	lastQuery  string
}

func (m *mockFetcher) Fetch(sourceName, query string) ([]map[string]interface{}, error) {
	m.calls++
	m.lastSource = sourceName
	m.lastQuery = query
	if m.err != nil {
		return nil, m.err
	}
	return m.records, nil
}

// ordersDataset returns a small string-valued dataset. String values survive
// a CSV round-trip unchanged, which keeps warm-cache comparisons exact.
func ordersDataset() []map[string]interface{} {
	return []map[string]interface{}{
		{"id": "1", "item": "widget", "amount": "100"},
		{"id": "2", "item": "gadget", "amount": "250"},
	}
}

func TestNewLoader(t *testing.T) {
	fetcher := &mockFetcher{}
	loader := NewLoader("orders.csv", "shop_db", "SELECT * FROM orders", fetcher)

	if loader == nil {
		t.Fatal("NewLoader returned nil")
	}
	if loader.cachePath != "orders.csv" {
		t.Errorf("loader.cachePath = %q, want %q", loader.cachePath, "orders.csv")
	}
	if loader.sourceName != "shop_db" {
		t.Errorf("loader.sourceName = %q, want %q", loader.sourceName, "shop_db")
	}
	if loader.query != "SELECT * FROM orders" {
		t.Errorf("loader.query = %q, want %q", loader.query, "SELECT * FROM orders")
	}
	if fetcher.calls != 0 {
		t.Errorf("NewLoader performed a fetch: %d calls", fetcher.calls)
	}
	// Construction must have no side effects on the filesystem.
	if _, err := os.Stat("orders.csv"); !os.IsNotExist(err) {
		t.Errorf("NewLoader touched the cache path: stat err = %v", err)
	}
}

func TestLoader_GetData_ColdCacheFetchesAndWrites(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "orders.csv")
	fetcher := &mockFetcher{records: ordersDataset()}
	loader := NewLoader(cachePath, "shop_db", "SELECT * FROM orders", fetcher)

	records, err := loader.GetData(true, true)
	if err != nil {
		t.Fatalf("GetData() unexpected error: %v", err)
	}
	if fetcher.calls != 1 {
		t.Errorf("fetch calls = %d, want 1", fetcher.calls)
	}
	if fetcher.lastSource != "shop_db" || fetcher.lastQuery != "SELECT * FROM orders" {
		t.Errorf("fetch received (%q, %q), want configured source and query", fetcher.lastSource, fetcher.lastQuery)
	}
	if !reflect.DeepEqual(records, ordersDataset()) {
		t.Errorf("GetData() records = %v, want fetched dataset", records)
	}
	if _, err := os.Stat(cachePath); err != nil {
		t.Fatalf("cache artifact was not created: %v", err)
	}

	content, err := os.ReadFile(cachePath)
	if err != nil {
		t.Fatalf("failed to read cache artifact: %v", err)
	}
	wantHeader := "amount,id,item"
	if !strings.HasPrefix(string(content), wantHeader+"\n") {
		t.Errorf("cache artifact header = %q, want %q", strings.SplitN(string(content), "\n", 2)[0], wantHeader)
	}
}

func TestLoader_GetData_WarmCacheSkipsFetch(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "orders.csv")
	fetcher := &mockFetcher{records: ordersDataset()}
	loader := NewLoader(cachePath, "shop_db", "SELECT * FROM orders", fetcher)

	first, err := loader.GetData(true, true)
	if err != nil {
		t.Fatalf("first GetData() unexpected error: %v", err)
	}
	second, err := loader.GetData(true, true)
	if err != nil {
		t.Fatalf("second GetData() unexpected error: %v", err)
	}

	if fetcher.calls != 1 {
		t.Errorf("fetch calls after warm read = %d, want 1", fetcher.calls)
	}
	if !reflect.DeepEqual(second, first) {
		t.Errorf("warm read = %v, want cached dataset %v", second, first)
	}
}

func TestLoader_GetData_UseCacheFalseForcesFetch(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "orders.csv")
	fetcher := &mockFetcher{records: ordersDataset()}
	loader := NewLoader(cachePath, "shop_db", "SELECT * FROM orders", fetcher)

	if _, err := loader.GetData(true, true); err != nil {
		t.Fatalf("priming GetData() unexpected error: %v", err)
	}

	// A changed remote result must overwrite the artifact on refresh.
	fetcher.records = []map[string]interface{}{
		{"id": "3", "item": "sprocket", "amount": "75"},
	}
	records, err := loader.GetData(false, true)
	if err != nil {
		t.Fatalf("GetData(false, true) unexpected error: %v", err)
	}
	if fetcher.calls != 2 {
		t.Errorf("fetch calls = %d, want 2 (cache bypassed)", fetcher.calls)
	}
	if len(records) != 1 || records[0]["item"] != "sprocket" {
		t.Errorf("GetData(false, true) records = %v, want refreshed dataset", records)
	}

	reread, err := loader.GetData(true, true)
	if err != nil {
		t.Fatalf("re-read GetData() unexpected error: %v", err)
	}
	if fetcher.calls != 2 {
		t.Errorf("fetch calls after re-read = %d, want 2", fetcher.calls)
	}
	if !reflect.DeepEqual(reread, records) {
		t.Errorf("artifact was not overwritten: re-read %v, want %v", reread, records)
	}
}

func TestLoader_GetData_CacheDataFalseSuppressesWrite(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "orders.csv")
	fetcher := &mockFetcher{records: ordersDataset()}
	loader := NewLoader(cachePath, "shop_db", "SELECT * FROM orders", fetcher)

	records, err := loader.GetData(true, false)
	if err != nil {
		t.Fatalf("GetData(true, false) unexpected error: %v", err)
	}
	if fetcher.calls != 1 {
		t.Errorf("fetch calls = %d, want 1", fetcher.calls)
	}
	if !reflect.DeepEqual(records, ordersDataset()) {
		t.Errorf("GetData(true, false) records = %v, want fetched dataset", records)
	}
	if _, err := os.Stat(cachePath); !os.IsNotExist(err) {
		t.Errorf("cache artifact exists after cacheData=false: stat err = %v", err)
	}
}

func TestLoader_GetData_EmptyCachePath(t *testing.T) {
	fetcher := &mockFetcher{records: ordersDataset()}
	loader := NewLoader("", "shop_db", "SELECT * FROM orders", fetcher)

	// An empty cache path never "exists", so the remote path is always taken.
	records, err := loader.GetData(true, false)
	if err != nil {
		t.Fatalf("GetData(true, false) unexpected error: %v", err)
	}
	if fetcher.calls != 1 {
		t.Errorf("fetch calls = %d, want 1", fetcher.calls)
	}
	if len(records) != 2 {
		t.Errorf("GetData() returned %d records, want 2", len(records))
	}

	// With caching enabled the write to the empty path fails at the
	// filesystem layer; the loader does not special-case it.
	if _, err := loader.GetData(true, true); err == nil {
		t.Error("GetData(true, true) with empty cache path expected an error, got nil")
	}
}

func TestLoader_GetData_FetchErrorPropagates(t *testing.T) {
	fetchErr := errors.New("connection refused")
	fetcher := &mockFetcher{err: fetchErr}
	loader := NewLoader(filepath.Join(t.TempDir(), "orders.csv"), "shop_db", "SELECT * FROM orders", fetcher)

	records, err := loader.GetData(true, true)
	if records != nil {
		t.Errorf("GetData() records = %v, want nil on fetch failure", records)
	}
	if !errors.Is(err, fetchErr) {
		t.Errorf("GetData() error = %v, want wrapped %v", err, fetchErr)
	}
}

func TestLoader_GetData_CacheReadErrorPropagates(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "orders.csv")
	// An unterminated quote makes the artifact unparsable.
	if err := os.WriteFile(cachePath, []byte("id,name\n\"unterminated\n"), 0644); err != nil {
		t.Fatalf("failed to seed corrupt cache artifact: %v", err)
	}
	fetcher := &mockFetcher{records: ordersDataset()}
	loader := NewLoader(cachePath, "shop_db", "SELECT * FROM orders", fetcher)

	_, err := loader.GetData(true, true)
	if err == nil {
		t.Fatal("GetData() with corrupt cache expected an error, got nil")
	}
	if !strings.Contains(err.Error(), "failed to read cache artifact") {
		t.Errorf("GetData() error = %v, want cache read error", err)
	}
	if fetcher.calls != 0 {
		t.Errorf("fetch calls = %d, want 0 (no silent fallback to remote)", fetcher.calls)
	}
}

func TestLoader_GetData_CacheWriteFailureFailsCall(t *testing.T) {
	// Pointing the cache path at an existing directory makes the final
	// rename fail, exercising the strict write policy.
	cachePath := filepath.Join(t.TempDir(), "orders.csv")
	if err := os.Mkdir(cachePath, 0755); err != nil {
		t.Fatalf("failed to create blocking directory: %v", err)
	}
	fetcher := &mockFetcher{records: ordersDataset()}
	loader := NewLoader(cachePath, "shop_db", "SELECT * FROM orders", fetcher)

	records, err := loader.GetData(true, true)
	if err == nil {
		t.Fatal("GetData() expected cache write error, got nil")
	}
	if !strings.Contains(err.Error(), "failed to write cache artifact") {
		t.Errorf("GetData() error = %v, want cache write error", err)
	}
	if records != nil {
		t.Errorf("GetData() records = %v, want nil under strict write policy", records)
	}
	if fetcher.calls != 1 {
		t.Errorf("fetch calls = %d, want 1 (failure happened after the fetch)", fetcher.calls)
	}
}

func TestLoader_DefaultTransformIsIdentity(t *testing.T) {
	fetcher := &mockFetcher{records: ordersDataset()}
	loader := NewLoader("", "shop_db", "SELECT * FROM orders", fetcher)

	records, err := loader.GetData(true, false)
	if err != nil {
		t.Fatalf("GetData() unexpected error: %v", err)
	}
	if !reflect.DeepEqual(records, ordersDataset()) {
		t.Errorf("default transform altered the dataset: %v", records)
	}
}

func TestLoader_SetTransform(t *testing.T) {
	fetcher := &mockFetcher{records: ordersDataset()}
	loader := NewLoader("", "shop_db", "SELECT * FROM orders", fetcher)
	loader.SetTransform(func(records []map[string]interface{}) ([]map[string]interface{}, error) {
		out := make([]map[string]interface{}, len(records))
		for i, rec := range records {
			clone := make(map[string]interface{}, len(rec)+1)
			for k, v := range rec {
				clone[k] = v
			}
			clone["acquired"] = true
			out[i] = clone
		}
		return out, nil
	})

	records, err := loader.GetData(true, false)
	if err != nil {
		t.Fatalf("GetData() unexpected error: %v", err)
	}
	for i, rec := range records {
		if rec["acquired"] != true {
			t.Errorf("record %d missing transform output: %v", i, rec)
		}
	}

	// Nil restores identity.
	loader.SetTransform(nil)
	records, err = loader.GetData(true, false)
	if err != nil {
		t.Fatalf("GetData() after reset unexpected error: %v", err)
	}
	if !reflect.DeepEqual(records, ordersDataset()) {
		t.Errorf("identity reset failed: %v", records)
	}
}

func TestLoader_TransformErrorPropagates(t *testing.T) {
	fetcher := &mockFetcher{records: ordersDataset()}
	loader := NewLoader("", "shop_db", "SELECT * FROM orders", fetcher)
	loader.SetTransform(func([]map[string]interface{}) ([]map[string]interface{}, error) {
		return nil, fmt.Errorf("bad column")
	})

	_, err := loader.GetData(true, false)
	if err == nil || !strings.Contains(err.Error(), "bad column") {
		t.Errorf("GetData() error = %v, want transform error", err)
	}
}

func TestLoader_NilFetcher(t *testing.T) {
	loader := NewLoader(filepath.Join(t.TempDir(), "orders.csv"), "shop_db", "SELECT * FROM orders", nil)
	_, err := loader.GetData(true, true)
	if err == nil || !strings.Contains(err.Error(), "no fetcher configured") {
		t.Errorf("GetData() error = %v, want missing fetcher error", err)
	}
}

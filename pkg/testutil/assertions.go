package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/eoview/pkg/model"
)

// AssertRecordCount verifies the expected number of records.
func AssertRecordCount(t *testing.T, records []model.Record, expected int) {
	t.Helper()
	if len(records) != expected {
		t.Errorf("expected %d records, got %d", expected, len(records))
	}
}

// AssertNoDuplicateIDs verifies all record IDs are unique.
func AssertNoDuplicateIDs(t *testing.T, records []model.Record) {
	t.Helper()
	seen := make(map[int]bool)
	for _, r := range records {
		if seen[r.ID] {
			t.Errorf("duplicate record ID: %d", r.ID)
		}
		seen[r.ID] = true
	}
}

// AssertIDs verifies the records appear with exactly the given ids, in order.
func AssertIDs(t *testing.T, records []model.Record, want ...int) {
	t.Helper()
	got := GetIDs(records)
	if len(got) != len(want) {
		t.Errorf("ids = %v, want %v", got, want)
		return
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("ids = %v, want %v", got, want)
			return
		}
	}
}

// AssertSubsequence verifies sub appears within full in the same relative
// order. Records are matched by id.
func AssertSubsequence(t *testing.T, full, sub []model.Record) {
	t.Helper()
	i := 0
	for _, r := range full {
		if i < len(sub) && sub[i].ID == r.ID {
			i++
		}
	}
	if i != len(sub) {
		t.Errorf("%v is not an order-preserving subsequence of %v", GetIDs(sub), GetIDs(full))
	}
}

// AssertJSONEqual compares two values by their JSON encoding.
func AssertJSONEqual(t *testing.T, expected, actual interface{}) {
	t.Helper()
	e, err := json.Marshal(expected)
	if err != nil {
		t.Fatalf("marshal expected: %v", err)
	}
	a, err := json.Marshal(actual)
	if err != nil {
		t.Fatalf("marshal actual: %v", err)
	}
	if string(e) != string(a) {
		t.Errorf("JSON mismatch:\nexpected: %s\nactual:   %s", e, a)
	}
}

// GoldenFile compares output against a file under testdata.
type GoldenFile struct {
	t    *testing.T
	path string
}

// NewGoldenFile returns a golden file helper for dir/name.golden.
func NewGoldenFile(t *testing.T, dir, name string) *GoldenFile {
	return &GoldenFile{t: t, path: filepath.Join(dir, name+".golden")}
}

// Path returns the golden file path.
func (g *GoldenFile) Path() string {
	return g.path
}

// Assert compares actual against the golden file. Set UPDATE_GOLDEN=1 to
// rewrite the file instead.
func (g *GoldenFile) Assert(actual string) {
	g.t.Helper()
	if os.Getenv("UPDATE_GOLDEN") == "1" {
		if err := os.MkdirAll(filepath.Dir(g.path), 0o755); err != nil {
			g.t.Fatalf("create golden dir: %v", err)
		}
		if err := os.WriteFile(g.path, []byte(actual), 0o644); err != nil {
			g.t.Fatalf("write golden: %v", err)
		}
		return
	}
	want, err := os.ReadFile(g.path)
	if err != nil {
		g.t.Fatalf("read golden %s: %v (run with UPDATE_GOLDEN=1 to create)", g.path, err)
	}
	if string(want) != actual {
		g.t.Errorf("output differs from %s:\n%s", g.path, diffLines(string(want), actual))
	}
}

func diffLines(want, got string) string {
	wl := strings.Split(want, "\n")
	gl := strings.Split(got, "\n")
	var sb strings.Builder
	for i := 0; i < len(wl) || i < len(gl); i++ {
		var w, g string
		if i < len(wl) {
			w = wl[i]
		}
		if i < len(gl) {
			g = gl[i]
		}
		if w != g {
			fmt.Fprintf(&sb, "line %d:\n  want: %q\n  got:  %q\n", i+1, w, g)
		}
	}
	return sb.String()
}

// WriteRecordsFile writes records as a JSON array to path.
func WriteRecordsFile(t *testing.T, path string, records []model.Record) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(ToJSON(records)), 0o644); err != nil {
		t.Fatalf("write records: %v", err)
	}
}

// WriteRecordsJSONL writes records in JSONL form to path.
func WriteRecordsJSONL(t *testing.T, path string, records []model.Record) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(ToJSONL(records)), 0o644); err != nil {
		t.Fatalf("write records: %v", err)
	}
}

// FindRecord returns the record with id, or nil.
func FindRecord(records []model.Record, id int) *model.Record {
	for i := range records {
		if records[i].ID == id {
			return &records[i]
		}
	}
	return nil
}

// GetIDs returns the ids of records in order.
func GetIDs(records []model.Record) []int {
	ids := make([]int, len(records))
	for i, r := range records {
		ids[i] = r.ID
	}
	return ids
}

// CountByCategory returns how many records carry each category.
func CountByCategory(records []model.Record) map[model.Category]int {
	counts := make(map[model.Category]int)
	for _, r := range records {
		for _, c := range r.Categories {
			counts[c]++
		}
	}
	return counts
}

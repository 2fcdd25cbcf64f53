package loader_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vanderheijden86/eoview/pkg/loader"
	"github.com/vanderheijden86/eoview/pkg/model"
	"github.com/vanderheijden86/eoview/pkg/testutil"
)

// =============================================================================
// FindDataPath Tests
// =============================================================================

func TestFindDataPath_NonExistentDirectory(t *testing.T) {
	_, err := loader.FindDataPath("/nonexistent/path/to/orders")
	if err == nil {
		t.Fatal("Expected error for non-existent directory")
	}
	if !strings.Contains(err.Error(), "failed to read data directory") {
		t.Errorf("Expected 'failed to read data directory' error, got: %v", err)
	}
}

func TestFindDataPath_EmptyDirectory(t *testing.T) {
	_, err := loader.FindDataPath(t.TempDir())
	if !errors.Is(err, loader.ErrNoData) {
		t.Errorf("Expected ErrNoData, got: %v", err)
	}
}

func TestFindDataPath_Preference(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		want  string
	}{
		{
			name:  "orders.json beats data.json",
			files: map[string]string{"orders.json": "[]", "data.json": "[]", "x.jsonl": "{}"},
			want:  "orders.json",
		},
		{
			name:  "data.json beats other files",
			files: map[string]string{"data.json": "[]", "aaa.json": "[]"},
			want:  "data.json",
		},
		{
			name:  "empty preferred file skipped",
			files: map[string]string{"orders.json": "", "orders.jsonl": "{}"},
			want:  "orders.jsonl",
		},
		{
			name:  "backups skipped",
			files: map[string]string{"orders.json.backup": "[]", "zzz.json": "[]"},
			want:  "zzz.json",
		},
		{
			name:  "non-data files ignored",
			files: map[string]string{"readme.txt": "hi", "feed.jsonl": "{}"},
			want:  "feed.jsonl",
		},
		{
			name:  "empty file as last resort",
			files: map[string]string{"only.json": ""},
			want:  "only.json",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for name, content := range tt.files {
				if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
					t.Fatal(err)
				}
			}
			path, err := loader.FindDataPath(dir)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if filepath.Base(path) != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, filepath.Base(path))
			}
		})
	}
}

func TestResolveDataPath_EnvVar(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.json")
	testutil.WriteRecordsFile(t, path, testutil.Pair())
	t.Setenv(loader.DataEnvVar, dir)

	got, err := loader.ResolveDataPath("")
	if err != nil {
		t.Fatalf("ResolveDataPath: %v", err)
	}
	if got != path {
		t.Errorf("Expected %s, got %s", path, got)
	}

	// An explicit path beats the environment.
	other := filepath.Join(t.TempDir(), "mine.jsonl")
	testutil.WriteRecordsJSONL(t, other, testutil.Pair())
	got, err = loader.ResolveDataPath(other)
	if err != nil || got != other {
		t.Errorf("ResolveDataPath(%s) = %s, %v", other, got, err)
	}
}

func TestResolveDataPath_Missing(t *testing.T) {
	_, err := loader.ResolveDataPath(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, loader.ErrNoData) {
		t.Errorf("Expected ErrNoData, got %v", err)
	}
}

// =============================================================================
// Parse Tests
// =============================================================================

func TestLoadRecords_ArrayAndLinesAgree(t *testing.T) {
	recs := testutil.QuickRecords(25)
	dir := t.TempDir()
	arrayPath := filepath.Join(dir, "orders.json")
	linesPath := filepath.Join(dir, "orders.jsonl")
	testutil.WriteRecordsFile(t, arrayPath, recs)
	testutil.WriteRecordsJSONL(t, linesPath, recs)

	fromArray, err := loader.LoadRecordsFromFile(arrayPath)
	if err != nil {
		t.Fatalf("array: %v", err)
	}
	fromLines, err := loader.LoadRecordsFromFile(linesPath)
	if err != nil {
		t.Fatalf("lines: %v", err)
	}
	testutil.AssertJSONEqual(t, recs, fromArray)
	testutil.AssertJSONEqual(t, recs, fromLines)
}

func TestParseRecords_OriginalDataShape(t *testing.T) {
	data := `[
	  {"id": 1, "title": "Unleashing American Energy", "link": "https://x/1",
	   "tldr": "Rescinds climate orders.", "status": "Signed", "forecast": "35%",
	   "impact": 2, "categories": ["Environment", "energy"]},
	  {"id": 2, "title": "Citizenship", "link": "https://x/2", "tldr": "t",
	   "status": "Blocked", "forecast": 85, "impact": 5, "categories": ["immigration"]}
	]`
	recs, err := loader.ParseRecords(strings.NewReader(data))
	if err != nil {
		t.Fatalf("ParseRecords: %v", err)
	}
	testutil.AssertRecordCount(t, recs, 2)
	if recs[0].Summary != "Rescinds climate orders." || recs[0].SourceLink != "https://x/1" {
		t.Errorf("aliases not applied: %+v", recs[0])
	}
	if !recs[0].HasCategory(model.CategoryEnvironment) {
		t.Errorf("category not normalized: %v", recs[0].Categories)
	}
	if recs[1].Forecast != "85" {
		t.Errorf("numeric forecast = %q, want \"85\"", recs[1].Forecast)
	}
}

func TestParseRecords_BOMAndBlankLines(t *testing.T) {
	data := "\xEF\xBB\xBF\n\n" + testutil.ToJSONL(testutil.Pair()) + "\n   \n"
	recs, err := loader.ParseRecords(strings.NewReader(data))
	if err != nil {
		t.Fatalf("ParseRecords: %v", err)
	}
	testutil.AssertIDs(t, recs, 1, 2)
}

func TestParseRecords_Empty(t *testing.T) {
	for _, data := range []string{"", "   \n", "[]"} {
		recs, err := loader.ParseRecords(strings.NewReader(data))
		if err != nil {
			t.Errorf("ParseRecords(%q): %v", data, err)
		}
		if len(recs) != 0 {
			t.Errorf("ParseRecords(%q) returned %d records", data, len(recs))
		}
	}
}

func TestParseRecords_BoundarySkipsAndWarns(t *testing.T) {
	lines := strings.Join([]string{
		`{"id":1,"title":"ok","forecast":"10%","impact":1,"categories":["energy"]}`,
		`{"id":2,"title":"no categories","forecast":"10%","impact":1,"categories":[]}`,
		`{"id":3,"title":"unknown","forecast":"10%","impact":1,"categories":["agriculture"]}`,
		`{"id":1,"title":"duplicate","forecast":"10%","impact":1,"categories":["energy"]}`,
		`{"id":4,"title":"broken"`,
		`{"id":5,"title":"bad impact kept","forecast":"10%","impact":9,"categories":["other"]}`,
	}, "\n")

	var warnings []string
	recs, err := loader.ParseRecordsWithOptions(strings.NewReader(lines), loader.ParseOptions{
		WarningHandler: func(msg string) { warnings = append(warnings, msg) },
	})
	if err != nil {
		t.Fatalf("ParseRecords: %v", err)
	}
	// Malformed impact is not a boundary concern; the view engine reports it.
	testutil.AssertIDs(t, recs, 1, 5)
	if len(warnings) != 4 {
		t.Errorf("Expected 4 warnings, got %d: %v", len(warnings), warnings)
	}
	for _, want := range []string{"no categories", "unknown category", "duplicate id", "malformed JSON"} {
		found := false
		for _, w := range warnings {
			if strings.Contains(w, want) {
				found = true
			}
		}
		if !found {
			t.Errorf("Expected a warning containing %q in %v", want, warnings)
		}
	}
}

func TestParseRecords_CustomVocabulary(t *testing.T) {
	data := `[{"id":1,"forecast":"1","impact":1,"categories":["agriculture"]}]`
	recs, err := loader.ParseRecordsWithOptions(strings.NewReader(data), loader.ParseOptions{
		Vocabulary: model.DefaultVocabulary().With("agriculture"),
		Strict:     true,
	})
	if err != nil {
		t.Fatalf("ParseRecords: %v", err)
	}
	testutil.AssertIDs(t, recs, 1)
}

func TestParseRecords_Strict(t *testing.T) {
	data := `[{"id":1,"forecast":"1","impact":1,"categories":["energy"]},
	          {"id":2,"forecast":"1","impact":1,"categories":["mystery"]}]`
	recs, err := loader.ParseRecordsWithOptions(strings.NewReader(data), loader.ParseOptions{Strict: true})
	if !errors.Is(err, loader.ErrInvalidRecord) {
		t.Fatalf("Expected ErrInvalidRecord, got %v", err)
	}
	if recs != nil {
		t.Errorf("Expected no records on strict failure, got %d", len(recs))
	}
}

func TestParseRecords_InvalidArray(t *testing.T) {
	_, err := loader.ParseRecords(strings.NewReader(`[{"id":1}`))
	if err == nil {
		t.Fatal("Expected error for truncated array")
	}
}

func TestParseRecords_LineTooLong(t *testing.T) {
	const bufferSize = 1024
	long := `{"id":9,"title":"` + strings.Repeat("a", bufferSize) + `","categories":["energy"]}`
	data := long + "\n" + `{"id":1,"forecast":"5","impact":1,"categories":["energy"]}` + "\n"

	var warnings []string
	recs, err := loader.ParseRecordsWithOptions(strings.NewReader(data), loader.ParseOptions{
		BufferSize:     bufferSize,
		WarningHandler: func(msg string) { warnings = append(warnings, msg) },
	})
	if err != nil {
		t.Fatalf("Expected success (skipping long line), got error: %v", err)
	}
	testutil.AssertIDs(t, recs, 1)
	if len(warnings) != 1 || !strings.Contains(warnings[0], "line too long") {
		t.Errorf("Expected one 'line too long' warning, got: %v", warnings)
	}
}

func TestLoadRecordsFromFile_Missing(t *testing.T) {
	_, err := loader.LoadRecordsFromFile(filepath.Join(t.TempDir(), "missing.json"))
	if !errors.Is(err, loader.ErrNoData) {
		t.Errorf("Expected ErrNoData, got %v", err)
	}
}

func BenchmarkLoadRecordsFromFile(b *testing.B) {
	dir := b.TempDir()
	path := filepath.Join(dir, "orders.jsonl")
	if err := os.WriteFile(path, []byte(testutil.ToJSONL(testutil.QuickRecords(5000))), 0644); err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := loader.LoadRecordsFromFile(path); err != nil {
			b.Fatal(err)
		}
	}
}

package datasource

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vanderheijden86/eoview/pkg/export"
	"github.com/vanderheijden86/eoview/pkg/model"
	"github.com/vanderheijden86/eoview/pkg/testutil"
)

var baseTime = time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)

func touch(t *testing.T, path string, mod time.Time) {
	t.Helper()
	if err := os.Chtimes(path, mod, mod); err != nil {
		t.Fatal(err)
	}
}

func writeJSONSource(t *testing.T, dir, name string, recs []model.Record, mod time.Time) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if filepath.Ext(name) == ".jsonl" {
		testutil.WriteRecordsJSONL(t, path, recs)
	} else {
		testutil.WriteRecordsFile(t, path, recs)
	}
	touch(t, path, mod)
	return path
}

func writeSQLiteSource(t *testing.T, dir, name string, recs []model.Record, mod time.Time) string {
	t.Helper()
	path := filepath.Join(dir, name)
	exp := export.NewSQLiteExporter(recs)
	exp.Config.Optimize = false
	if err := exp.Export(path); err != nil {
		t.Fatalf("export sqlite: %v", err)
	}
	touch(t, path, mod)
	return path
}

func quiet() LoadOptions {
	return LoadOptions{WarningHandler: func(string) {}}
}

package datasource

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/vanderheijden86/eoview/pkg/model"
	"github.com/vanderheijden86/eoview/pkg/testutil"
)

func TestSQLiteReader_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	want := testutil.Pair()
	path := writeSQLiteSource(t, dir, "orders.db", want, baseTime)

	r, err := NewSQLiteReader(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if r.Path() != path {
		t.Errorf("Path() = %q", r.Path())
	}
	n, err := r.CountRecords()
	if err != nil || n != 2 {
		t.Fatalf("CountRecords = %d, %v", n, err)
	}

	got, err := r.LoadRecords()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d records, want %d", len(got), len(want))
	}
	for i := range want {
		g, w := got[i], want[i]
		if g.ID != w.ID || g.Title != w.Title || g.Summary != w.Summary || g.Status != w.Status ||
			g.SourceLink != w.SourceLink || g.Forecast != w.Forecast || g.Impact != w.Impact {
			t.Errorf("record %d mismatch:\n got  %+v\n want %+v", i, g, w)
		}
		if len(g.Categories) != len(w.Categories) {
			t.Errorf("record %d categories = %v, want %v", i, g.Categories, w.Categories)
			continue
		}
		for j := range w.Categories {
			if g.Categories[j] != w.Categories[j] {
				t.Errorf("record %d category %d = %s, want %s", i, j, g.Categories[j], w.Categories[j])
			}
		}
	}

	meta, err := r.Meta()
	if err != nil {
		t.Fatal(err)
	}
	if meta["record_count"] != "2" {
		t.Errorf("meta record_count = %q", meta["record_count"])
	}
}

func TestSQLiteReader_PreservesExportOrder(t *testing.T) {
	recs := testutil.Pair()
	recs[0], recs[1] = recs[1], recs[0]
	path := writeSQLiteSource(t, t.TempDir(), "orders.db", recs, baseTime)

	r, err := NewSQLiteReader(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	got, err := r.LoadRecords()
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertIDs(t, got, 2, 1)
}

func TestSQLiteReader_MalformedFieldsSurvive(t *testing.T) {
	recs := testutil.Pair()
	recs[0].Forecast = "unknown"
	recs[1].Impact = 8
	path := writeSQLiteSource(t, t.TempDir(), "orders.db", recs, baseTime)

	r, err := NewSQLiteReader(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	got, err := r.LoadRecords()
	if err != nil {
		t.Fatal(err)
	}
	if got[0].Forecast != "unknown" || got[1].Impact != 8 {
		t.Errorf("raw values should be stored untouched: %+v", got)
	}
}

func TestNewSQLiteReader_NoOrdersTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "other.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`CREATE TABLE issues (id TEXT)`); err != nil {
		t.Fatal(err)
	}
	db.Close()

	if _, err := NewSQLiteReader(path); err == nil {
		t.Error("expected error for database without an orders table")
	}
}

func TestSQLiteReader_MetaWithoutTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bare.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	_, err = db.Exec(`CREATE TABLE orders (id INTEGER PRIMARY KEY, position INTEGER, title TEXT, summary TEXT,
		status TEXT, source_link TEXT, forecast TEXT, impact INTEGER, categories TEXT)`)
	if err != nil {
		t.Fatal(err)
	}
	_, err = db.Exec(`INSERT INTO orders VALUES (3, 0, 't', NULL, NULL, NULL, '50', 3, '["economy"]')`)
	if err != nil {
		t.Fatal(err)
	}
	db.Close()

	r, err := NewSQLiteReader(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	meta, err := r.Meta()
	if err != nil || len(meta) != 0 {
		t.Errorf("Meta() = %v, %v; want empty map", meta, err)
	}
	recs, err := r.LoadRecords()
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || recs[0].Summary != "" || !recs[0].HasCategory(model.CategoryEconomy) {
		t.Errorf("unexpected records: %+v", recs)
	}
}

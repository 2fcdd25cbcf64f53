package export

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/eoview/pkg/metrics"
	"github.com/vanderheijden86/eoview/pkg/model"
	"github.com/vanderheijden86/eoview/pkg/version"
	"github.com/vanderheijden86/eoview/pkg/view"
)

// SQLiteExporter writes a record view to a SQLite database.
type SQLiteExporter struct {
	Records []model.Record
	Filter  view.FilterState
	Sort    view.SortState
	Config  SQLiteExportConfig

	now func() time.Time
}

// NewSQLiteExporter creates an exporter for records, which are written in
// the order given.
func NewSQLiteExporter(records []model.Record) *SQLiteExporter {
	return &SQLiteExporter{
		Records: records,
		Config:  DefaultSQLiteExportConfig(),
		now:     time.Now,
	}
}

// SetView records the filter and sort that produced Records in the meta table.
func (e *SQLiteExporter) SetView(filter view.FilterState, order view.SortState) {
	e.Filter = filter
	e.Sort = order
}

// Export writes the database to path. The file is built next to path and
// renamed into place, so readers never observe a half-written database.
func (e *SQLiteExporter) Export(path string) error {
	defer metrics.Timer(metrics.Export)()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp := path + ".tmp"
	_ = os.Remove(tmp)

	db, err := sql.Open("sqlite", tmp)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	if err := e.write(db); err != nil {
		db.Close()
		os.Remove(tmp)
		return err
	}
	if err := db.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close database: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename database: %w", err)
	}
	return nil
}

func (e *SQLiteExporter) write(db *sql.DB) error {
	if err := CreateSchema(db); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if err := e.insertOrders(db); err != nil {
		return fmt.Errorf("insert orders: %w", err)
	}
	if err := e.insertMeta(db); err != nil {
		return fmt.Errorf("insert meta: %w", err)
	}
	if e.Config.Optimize {
		if err := OptimizeDatabase(db, e.Config.PageSize); err != nil {
			return fmt.Errorf("optimize database: %w", err)
		}
	}
	return nil
}

// insertOrders inserts every record and its category rows in one transaction.
func (e *SQLiteExporter) insertOrders(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	orderStmt, err := tx.Prepare(`
		INSERT INTO orders (id, position, title, summary, status, source_link, forecast, forecast_bucket, impact, impact_class, categories)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer orderStmt.Close()

	catStmt, err := tx.Prepare(`INSERT OR IGNORE INTO order_categories (order_id, category) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer catStmt.Close()

	for pos, r := range e.Records {
		er := NewExportRecord(r)
		cats, err := json.Marshal(er.Categories)
		if err != nil {
			return fmt.Errorf("encode categories of order %d: %w", r.ID, err)
		}
		_, err = orderStmt.Exec(
			er.ID, pos, er.Title, er.Summary, er.Status, er.SourceLink,
			er.Forecast, nullIfEmpty(er.ForecastBucket), er.Impact, nullIfEmpty(er.ImpactClass),
			string(cats),
		)
		if err != nil {
			return fmt.Errorf("insert order %d: %w", r.ID, err)
		}
		for _, c := range er.Categories {
			if _, err := catStmt.Exec(er.ID, c); err != nil {
				return fmt.Errorf("insert category of order %d: %w", r.ID, err)
			}
		}
	}

	return tx.Commit()
}

func (e *SQLiteExporter) insertMeta(db *sql.DB) error {
	m := e.Meta()
	meta := map[string]string{
		"version":        m.Version,
		"generated_at":   m.GeneratedAt.Format(time.RFC3339),
		"record_count":   strconv.Itoa(m.RecordCount),
		"filter":         m.Filter,
		"sort":           m.Sort,
		"schema_version": strconv.Itoa(m.SchemaVersion),
	}
	if m.Title != "" {
		meta["title"] = m.Title
	}

	for key, value := range meta {
		if err := InsertMetaValue(db, key, value); err != nil {
			return fmt.Errorf("insert meta %s: %w", key, err)
		}
	}
	return nil
}

// Meta describes the export.
func (e *SQLiteExporter) Meta() ExportMeta {
	now := time.Now
	if e.now != nil {
		now = e.now
	}
	return ExportMeta{
		Version:       version.Version,
		GeneratedAt:   now().UTC(),
		RecordCount:   len(e.Records),
		Filter:        e.Filter.String(),
		Sort:          e.Sort.String(),
		SchemaVersion: SchemaVersion,
		Title:         e.Config.Title,
	}
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

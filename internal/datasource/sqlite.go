package datasource

import (
	"database/sql"
	"fmt"

	"github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/eoview/pkg/model"
)

// SQLiteReader provides read access to a database written by the exporter.
type SQLiteReader struct {
	db   *sql.DB
	path string
}

// NewSQLiteReader opens path read-only and checks that it holds an orders table.
func NewSQLiteReader(path string) (*SQLiteReader, error) {
	dsn := fmt.Sprintf("file:%s?mode=ro&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}

	var name string
	err = db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'orders'`).Scan(&name)
	if err != nil {
		db.Close()
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s has no orders table", path)
		}
		return nil, fmt.Errorf("cannot read database %s: %w", path, err)
	}

	return &SQLiteReader{db: db, path: path}, nil
}

// Close closes the database connection.
func (r *SQLiteReader) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Path returns the database path.
func (r *SQLiteReader) Path() string {
	return r.path
}

// LoadRecords reads every record in export order.
func (r *SQLiteReader) LoadRecords() ([]model.Record, error) {
	rows, err := r.db.Query(`
		SELECT id, title, summary, status, source_link, forecast, impact, categories
		FROM orders
		ORDER BY position, id
	`)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var records []model.Record
	for rows.Next() {
		var (
			rec                             model.Record
			summary, status, link, catsJSON sql.NullString
			forecast                        string
		)
		if err := rows.Scan(&rec.ID, &rec.Title, &summary, &status, &link, &forecast, &rec.Impact, &catsJSON); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		rec.Summary = summary.String
		rec.Status = status.String
		rec.SourceLink = link.String
		rec.Forecast = model.Forecast(forecast)
		if catsJSON.Valid && catsJSON.String != "" {
			if err := json.Unmarshal([]byte(catsJSON.String), &rec.Categories); err != nil {
				return nil, fmt.Errorf("order %d: bad categories column: %w", rec.ID, err)
			}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}
	return records, nil
}

// CountRecords returns the number of stored records.
func (r *SQLiteReader) CountRecords() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM orders`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// Meta returns the key/value pairs of the meta table, or an empty map when
// the table is absent.
func (r *SQLiteReader) Meta() (map[string]string, error) {
	meta := make(map[string]string)
	rows, err := r.db.Query(`SELECT key, value FROM meta`)
	if err != nil {
		return meta, nil
	}
	defer rows.Close()
	for rows.Next() {
		var k string
		var v sql.NullString
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		meta[k] = v.String
	}
	return meta, rows.Err()
}

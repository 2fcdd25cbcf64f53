// Package export writes record views to other formats: a SQLite database the
// datasource package can read back, a Markdown report, and a forecast bucket
// chart as SVG or PNG.
//
// This file implements SQLite schema creation.
package export

import (
	"database/sql"
	"fmt"
)

// Schema version for tracking migrations
const SchemaVersion = 1

// CreateSchema creates all tables and indexes in the database.
func CreateSchema(db *sql.DB) error {
	if err := createCoreTables(db); err != nil {
		return fmt.Errorf("create core tables: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}

	if err := createMetaTable(db); err != nil {
		return fmt.Errorf("create meta table: %w", err)
	}

	return nil
}

// createCoreTables creates the orders and order_categories tables.
func createCoreTables(db *sql.DB) error {
	// position keeps the exported view order; the reader sorts by it.
	ordersSQL := `
		CREATE TABLE IF NOT EXISTS orders (
			id INTEGER PRIMARY KEY,
			position INTEGER NOT NULL,
			title TEXT NOT NULL,
			summary TEXT,
			status TEXT,
			source_link TEXT,
			forecast TEXT NOT NULL,
			forecast_bucket TEXT,
			impact INTEGER NOT NULL,
			impact_class TEXT,
			categories TEXT NOT NULL
		)
	`
	if _, err := db.Exec(ordersSQL); err != nil {
		return fmt.Errorf("create orders table: %w", err)
	}

	categoriesSQL := `
		CREATE TABLE IF NOT EXISTS order_categories (
			order_id INTEGER NOT NULL,
			category TEXT NOT NULL,
			PRIMARY KEY (order_id, category),
			FOREIGN KEY (order_id) REFERENCES orders(id)
		)
	`
	if _, err := db.Exec(categoriesSQL); err != nil {
		return fmt.Errorf("create order_categories table: %w", err)
	}

	return nil
}

func createIndexes(db *sql.DB) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_orders_position ON orders(position)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_bucket ON orders(forecast_bucket)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_impact ON orders(impact)`,
		`CREATE INDEX IF NOT EXISTS idx_order_categories_category ON order_categories(category)`,
	}
	for _, stmt := range indexes {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}

// createMetaTable creates the export metadata table.
func createMetaTable(db *sql.DB) error {
	metaSQL := `
		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT
		)
	`
	if _, err := db.Exec(metaSQL); err != nil {
		return fmt.Errorf("create meta table: %w", err)
	}

	return nil
}

// OptimizeDatabase compacts the file. Call it as the final step before
// closing the database.
func OptimizeDatabase(db *sql.DB, pageSize int) error {
	if pageSize <= 0 {
		pageSize = 4096
	}

	optimizations := []string{
		// Single file mode (no WAL journal)
		`PRAGMA journal_mode=DELETE`,
		fmt.Sprintf(`PRAGMA page_size=%d`, pageSize),
		`ANALYZE`,
		`PRAGMA optimize`,
	}
	for _, stmt := range optimizations {
		if _, err := db.Exec(stmt); err != nil {
			// Some pragmas may fail depending on state, continue
			continue
		}
	}

	// VACUUM must be last and outside transaction
	if _, err := db.Exec(`VACUUM`); err != nil {
		return fmt.Errorf("vacuum: %w", err)
	}

	return nil
}

// InsertMetaValue inserts or updates a metadata key-value pair.
func InsertMetaValue(db *sql.DB, key, value string) error {
	_, err := db.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)`, key, value)
	return err
}

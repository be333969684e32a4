// Package cache provides the SQLite-backed summary store. The store lives
// in .ctx/cache.db and keeps the facts of every parsed file keyed by its
// relative path and modification time, so a later invocation can skip
// parsing files that have not changed.
package cache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// FileName is the database file created inside the store directory.
const FileName = "cache.db"

// Cache manages the .ctx/cache.db SQLite database.
type Cache struct {
	db     *sql.DB
	dbPath string
}

// Open opens or creates the store in dir, creating dir when missing.
// It initializes the schema if the database is new.
func Open(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	dbPath := filepath.Join(dir, FileName)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	// Index workers write concurrently; sqlite allows one writer.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	cache := &Cache{db: db, dbPath: dbPath}
	if err := cache.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return cache, nil
}

// Close closes the database connection.
func (c *Cache) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Clear removes every stored summary.
func (c *Cache) Clear() error {
	_, err := c.db.Exec(`
		DELETE FROM call_sites;
		DELETE FROM imports;
		DELETE FROM symbols;
		DELETE FROM file_summaries;`)
	if err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	return nil
}

// Path returns the database file path.
func (c *Cache) Path() string {
	return c.dbPath
}

// Stats counts the rows of each table.
type Stats struct {
	Files     int64 `json:"files" yaml:"files"`
	Symbols   int64 `json:"symbols" yaml:"symbols"`
	Imports   int64 `json:"imports" yaml:"imports"`
	CallSites int64 `json:"call_sites" yaml:"call_sites"`
}

// GetStats returns statistics about the store contents.
func (c *Cache) GetStats() (*Stats, error) {
	var stats Stats
	counts := []struct {
		table string
		dst   *int64
	}{
		{"file_summaries", &stats.Files},
		{"symbols", &stats.Symbols},
		{"imports", &stats.Imports},
		{"call_sites", &stats.CallSites},
	}
	for _, q := range counts {
		if err := c.db.QueryRow("SELECT COUNT(*) FROM " + q.table).Scan(q.dst); err != nil {
			return nil, fmt.Errorf("count %s: %w", q.table, err)
		}
	}
	return &stats, nil
}

package cache

// schemaSQL defines the SQLite schema for the summary store.
// Tables:
//   - file_summaries: one row per file, with the modification time the facts were taken at
//   - symbols, imports, call_sites: the facts of each file, in discovery order (seq)
const schemaSQL = `
CREATE TABLE IF NOT EXISTS file_summaries (
    path TEXT PRIMARY KEY,
    mtime INTEGER NOT NULL,
    language TEXT NOT NULL,
    line_count INTEGER NOT NULL DEFAULT 0,
    scanned_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS symbols (
    path TEXT NOT NULL,
    seq INTEGER NOT NULL,
    name TEXT NOT NULL,
    kind TEXT NOT NULL,
    line INTEGER NOT NULL,
    end_line INTEGER NOT NULL,
    signature TEXT NOT NULL DEFAULT '',
    doc_comment TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (path, seq)
);

CREATE TABLE IF NOT EXISTS imports (
    path TEXT NOT NULL,
    seq INTEGER NOT NULL,
    text TEXT NOT NULL,
    line INTEGER NOT NULL,
    PRIMARY KEY (path, seq)
);

CREATE TABLE IF NOT EXISTS call_sites (
    path TEXT NOT NULL,
    seq INTEGER NOT NULL,
    line INTEGER NOT NULL,
    invoked_name TEXT NOT NULL,
    PRIMARY KEY (path, seq)
);

CREATE INDEX IF NOT EXISTS idx_symbols_name ON symbols(name);
CREATE INDEX IF NOT EXISTS idx_call_sites_name ON call_sites(invoked_name);
`

// initSchema creates the database tables and indexes if they don't exist.
func (c *Cache) initSchema() error {
	_, err := c.db.Exec(schemaSQL)
	return err
}

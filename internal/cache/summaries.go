package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hargabyte/ctx/internal/model"
	"github.com/hargabyte/ctx/internal/parser"
)

// FileEntry holds the scan state of a stored file.
type FileEntry struct {
	Path      string    `json:"path" yaml:"path"`
	ModTime   int64     `json:"mtime" yaml:"mtime"`
	Language  string    `json:"language" yaml:"language"`
	LineCount int       `json:"line_count" yaml:"line_count"`
	ScannedAt time.Time `json:"scanned_at" yaml:"scanned_at"`
}

// Get returns the facts stored for path if they were taken at modTime.
// A missing or stale entry is reported as a miss, not an error.
func (c *Cache) Get(path string, modTime int64) (*parser.Facts, bool, error) {
	entry, err := c.GetFileEntry(path)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if entry.ModTime != modTime {
		return nil, false, nil
	}

	summary := &model.FileSummary{
		Path:      path,
		Language:  entry.Language,
		LineCount: entry.LineCount,
		Symbols:   []model.Symbol{},
		Imports:   []model.Import{},
	}

	rows, err := c.db.Query(`
		SELECT name, kind, line, end_line, signature, doc_comment
		FROM symbols WHERE path = ? ORDER BY seq`, path)
	if err != nil {
		return nil, false, fmt.Errorf("query symbols %s: %w", path, err)
	}
	for rows.Next() {
		var s model.Symbol
		var kind string
		if err := rows.Scan(&s.Name, &kind, &s.Line, &s.EndLine, &s.Signature, &s.DocComment); err != nil {
			rows.Close()
			return nil, false, fmt.Errorf("scan symbol row: %w", err)
		}
		s.Kind = model.SymbolKind(kind)
		summary.Symbols = append(summary.Symbols, s)
	}
	if err := closeRows(rows); err != nil {
		return nil, false, err
	}

	rows, err = c.db.Query(`SELECT text, line FROM imports WHERE path = ? ORDER BY seq`, path)
	if err != nil {
		return nil, false, fmt.Errorf("query imports %s: %w", path, err)
	}
	for rows.Next() {
		imp := model.Import{File: path}
		if err := rows.Scan(&imp.Text, &imp.Line); err != nil {
			rows.Close()
			return nil, false, fmt.Errorf("scan import row: %w", err)
		}
		summary.Imports = append(summary.Imports, imp)
	}
	if err := closeRows(rows); err != nil {
		return nil, false, err
	}

	var calls []model.CallSite
	rows, err = c.db.Query(`SELECT line, invoked_name FROM call_sites WHERE path = ? ORDER BY seq`, path)
	if err != nil {
		return nil, false, fmt.Errorf("query call sites %s: %w", path, err)
	}
	for rows.Next() {
		site := model.CallSite{CallerFile: path}
		if err := rows.Scan(&site.CallerLine, &site.InvokedName); err != nil {
			rows.Close()
			return nil, false, fmt.Errorf("scan call site row: %w", err)
		}
		calls = append(calls, site)
	}
	if err := closeRows(rows); err != nil {
		return nil, false, err
	}

	return &parser.Facts{Summary: summary, Calls: calls}, true, nil
}

func closeRows(rows *sql.Rows) error {
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("iterate rows: %w", err)
	}
	return rows.Close()
}

// Put replaces everything stored for path with facts taken at modTime.
func (c *Cache) Put(path string, modTime int64, facts *parser.Facts) error {
	if facts == nil || facts.Summary == nil {
		return fmt.Errorf("put %s: no summary", path)
	}

	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := deleteFile(tx, path); err != nil {
		tx.Rollback()
		return err
	}

	sum := facts.Summary
	_, err = tx.Exec(`
		INSERT INTO file_summaries (path, mtime, language, line_count, scanned_at)
		VALUES (?, ?, ?, ?, ?)`,
		path, modTime, sum.Language, sum.LineCount, time.Now().Format(time.RFC3339),
	)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("save summary %s: %w", path, err)
	}

	for i, s := range sum.Symbols {
		_, err := tx.Exec(`
			INSERT INTO symbols (path, seq, name, kind, line, end_line, signature, doc_comment)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			path, i, s.Name, string(s.Kind), s.Line, s.EndLine, s.Signature, s.DocComment,
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("save symbol %s in %s: %w", s.Name, path, err)
		}
	}
	for i, imp := range sum.Imports {
		_, err := tx.Exec(`INSERT INTO imports (path, seq, text, line) VALUES (?, ?, ?, ?)`,
			path, i, imp.Text, imp.Line)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("save import in %s: %w", path, err)
		}
	}
	for i, site := range facts.Calls {
		_, err := tx.Exec(`INSERT INTO call_sites (path, seq, line, invoked_name) VALUES (?, ?, ?, ?)`,
			path, i, site.CallerLine, site.InvokedName)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("save call site in %s: %w", path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func deleteFile(tx *sql.Tx, path string) error {
	for _, table := range []string{"call_sites", "imports", "symbols", "file_summaries"} {
		if _, err := tx.Exec("DELETE FROM "+table+" WHERE path = ?", path); err != nil {
			return fmt.Errorf("delete %s rows of %s: %w", table, path, err)
		}
	}
	return nil
}

// Invalidate removes path from the store.
func (c *Cache) Invalidate(path string) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := deleteFile(tx, path); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// GetFileEntry retrieves the scan state of a stored file.
// Returns sql.ErrNoRows if the file is not stored.
func (c *Cache) GetFileEntry(path string) (*FileEntry, error) {
	var entry FileEntry
	var scannedAt string
	err := c.db.QueryRow(`
		SELECT path, mtime, language, line_count, scanned_at
		FROM file_summaries WHERE path = ?`,
		path).Scan(&entry.Path, &entry.ModTime, &entry.Language, &entry.LineCount, &scannedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get file entry %s: %w", path, err)
	}
	entry.ScannedAt, _ = time.Parse(time.RFC3339, scannedAt)
	return &entry, nil
}

// GetAllFileEntries retrieves every stored file in path order.
func (c *Cache) GetAllFileEntries() ([]FileEntry, error) {
	rows, err := c.db.Query(`
		SELECT path, mtime, language, line_count, scanned_at
		FROM file_summaries ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("query file entries: %w", err)
	}
	defer rows.Close()

	var entries []FileEntry
	for rows.Next() {
		var entry FileEntry
		var scannedAt string
		if err := rows.Scan(&entry.Path, &entry.ModTime, &entry.Language, &entry.LineCount, &scannedAt); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		entry.ScannedAt, _ = time.Parse(time.RFC3339, scannedAt)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return entries, nil
}

// Prune removes every stored file not in existing and returns how many
// were removed.
func (c *Cache) Prune(existing []string) (int, error) {
	keep := make(map[string]bool, len(existing))
	for _, p := range existing {
		keep[p] = true
	}
	entries, err := c.GetAllFileEntries()
	if err != nil {
		return 0, err
	}

	var pruned int
	for _, entry := range entries {
		if keep[entry.Path] {
			continue
		}
		if err := c.Invalidate(entry.Path); err != nil {
			return pruned, err
		}
		pruned++
	}
	return pruned, nil
}

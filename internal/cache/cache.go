// Package cache provides SQLite-backed persistence for the detail report's
// section index. Rebuilding the index means scanning the whole report, which
// for multi-gigabyte files dominates startup; the cache stores the entries
// keyed by the file's size and modification time so an unchanged report is
// reopened without the scan.
package cache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/covquery/cvq/internal/detail"
)

// Cache manages the cache.db SQLite database.
type Cache struct {
	db     *sql.DB
	dbPath string
}

// Open opens or creates the cache database in the given directory and
// initializes the schema if the database is new.
func Open(dir string) (*Cache, error) {
	dbPath := filepath.Join(dir, "cache.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}

	// WAL mode for concurrent readers during writes
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
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

// Path returns the database file path.
func (c *Cache) Path() string {
	return c.dbPath
}

// Clear removes all cached index entries.
func (c *Cache) Clear() error {
	if _, err := c.db.Exec("DELETE FROM section_index"); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	return nil
}

// fileStamp identifies a report file's content cheaply. Size plus mtime is
// the same staleness signal the coverage tool's own rebuilds rely on.
func fileStamp(path string) (size int64, mtime string, err error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, "", fmt.Errorf("stat %s: %w", path, err)
	}
	return info.Size(), info.ModTime().UTC().Format(time.RFC3339Nano), nil
}

// SaveIndex replaces the cached entries for the report at path in one
// transaction, stamped with the file's current size and mtime.
func (c *Cache) SaveIndex(path string, entries []detail.IndexEntry) error {
	size, mtime, err := fileStamp(path)
	if err != nil {
		return err
	}

	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM section_index WHERE file_path = ?", path); err != nil {
		tx.Rollback()
		return fmt.Errorf("clear stale entries for %s: %w", path, err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO section_index (file_path, file_size, file_mtime, key, kind, byte_offset, byte_length)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.Exec(path, size, mtime, e.Key, int(e.Kind), e.Offset, e.Length); err != nil {
			tx.Rollback()
			return fmt.Errorf("save entry %q: %w", e.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// LoadIndex returns the cached entries for the report at path, or ok=false
// when there is no cache or the file's size/mtime no longer match.
func (c *Cache) LoadIndex(path string) (entries []detail.IndexEntry, ok bool, err error) {
	size, mtime, err := fileStamp(path)
	if err != nil {
		return nil, false, err
	}

	rows, err := c.db.Query(`
		SELECT key, kind, byte_offset, byte_length FROM section_index
		WHERE file_path = ? AND file_size = ? AND file_mtime = ?
		ORDER BY kind, key`,
		path, size, mtime)
	if err != nil {
		return nil, false, fmt.Errorf("query section index for %s: %w", path, err)
	}
	defer rows.Close()

	for rows.Next() {
		var e detail.IndexEntry
		var kind int
		if err := rows.Scan(&e.Key, &kind, &e.Offset, &e.Length); err != nil {
			return nil, false, fmt.Errorf("scan row: %w", err)
		}
		e.Kind = detail.Kind(kind)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate rows: %w", err)
	}

	return entries, len(entries) > 0, nil
}

// Stats returns the number of cached entries across all files.
func (c *Cache) Stats() (int64, error) {
	var n int64
	if err := c.db.QueryRow("SELECT COUNT(*) FROM section_index").Scan(&n); err != nil {
		return 0, fmt.Errorf("count section index: %w", err)
	}
	return n, nil
}

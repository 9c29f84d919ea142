package cache

// schemaSQL defines the SQLite schema for the cache database. One table:
// section_index rows mirror detail.IndexEntry, stamped with the backing
// file's size and mtime for staleness checks.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS section_index (
    file_path  TEXT NOT NULL,
    file_size  INTEGER NOT NULL,
    file_mtime TEXT NOT NULL,
    key        TEXT NOT NULL,
    kind        INTEGER NOT NULL,
    byte_offset INTEGER NOT NULL,
    byte_length INTEGER NOT NULL,
    PRIMARY KEY (file_path, kind, key)
);

CREATE INDEX IF NOT EXISTS idx_section_index_file ON section_index(file_path);
`

// initSchema creates the tables and indexes if they don't exist.
func (c *Cache) initSchema() error {
	_, err := c.db.Exec(schemaSQL)
	return err
}

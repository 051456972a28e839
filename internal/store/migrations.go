package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Searches table - one row per dish lookup, replaces the UI's "last dish" state
		`CREATE TABLE IF NOT EXISTS searches (
			id TEXT PRIMARY KEY,
			dish TEXT NOT NULL,
			input TEXT NOT NULL CHECK(input IN ('typed', 'spoken')),
			status TEXT NOT NULL,
			source TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL
		)`,

		// Cache entries table - serialized lookups with an absolute expiry
		`CREATE TABLE IF NOT EXISTS cache_entries (
			key TEXT PRIMARY KEY,
			value BLOB NOT NULL,
			expires_at DATETIME NOT NULL
		)`,

		// Settings table - application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_searches_created_at ON searches(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_cache_entries_expires_at ON cache_entries(expires_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}

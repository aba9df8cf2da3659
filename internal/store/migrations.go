package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Dispatches table - one row per playback command sent
		`CREATE TABLE IF NOT EXISTS dispatches (
			id TEXT PRIMARY KEY,
			label TEXT NOT NULL,
			command TEXT NOT NULL,
			volume INTEGER NOT NULL DEFAULT -1,
			success INTEGER NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			latency_ms INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Trials table - accuracy harness key presses
		`CREATE TABLE IF NOT EXISTS trials (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			expected TEXT NOT NULL,
			detected TEXT NOT NULL,
			correct INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Settings table - stores application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_dispatches_created_at ON dispatches(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_trials_session_id ON trials(session_id)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}

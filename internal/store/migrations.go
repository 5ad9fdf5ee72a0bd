package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Sessions table - one row per run of the app
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			grid_size INTEGER NOT NULL,
			started_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Action log - every admitted gesture and what it did to the voxel store
		`CREATE TABLE IF NOT EXISTS action_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			gesture TEXT NOT NULL CHECK(gesture IN ('fist', 'point', 'open', 'thumbs_up')),
			action TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT '',
			voxel_count INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_action_log_session_id ON action_log(session_id)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}

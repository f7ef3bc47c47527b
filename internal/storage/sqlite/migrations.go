package sqlite

import "database/sql"

// schema runs on startup to ensure tables exist.
// The session table holds at most one row (id = 1).
const schema = `
CREATE TABLE IF NOT EXISTS session (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    token TEXT NOT NULL,
    user_json TEXT,
    saved_at INTEGER NOT NULL
);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}

package shared

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// busyTimeoutMS is how long a connection waits on a locked database file.
// The serve loop and CLI commands can point at the same file, so a write
// from one should queue rather than fail with SQLITE_BUSY.
const busyTimeoutMS = 5000

// NewDatabase opens the SQLite database at path and verifies the connection.
// Pass ":memory:" for an in-memory database (used throughout the tests).
func NewDatabase(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// dsn attaches connection options to file-backed paths. Memory databases
// take no options; each connection string would otherwise get its own
// private database.
func dsn(path string) string {
	if path == ":memory:" {
		return path
	}
	return fmt.Sprintf("file:%s?_busy_timeout=%d&_journal_mode=WAL", path, busyTimeoutMS)
}

// ConfigureDatabase applies connection pool limits from config. Non-positive
// values keep database/sql's defaults.
func ConfigureDatabase(db *sql.DB, maxOpenConns, maxIdleConns int) {
	if maxOpenConns > 0 {
		db.SetMaxOpenConns(maxOpenConns)
	}
	if maxIdleConns > 0 {
		db.SetMaxIdleConns(maxIdleConns)
	}
}

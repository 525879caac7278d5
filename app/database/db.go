package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite handle used as the item sink.
type DB struct {
	*sql.DB
	path string
}

// Open connects to the SQLite database at path and applies pending migrations.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(time.Hour)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := &DB{DB: conn, path: path}

	if _, _, err := RunMigrations(db); err != nil {
		conn.Close()
		return nil, err
	}

	return db, nil
}

func (db *DB) Path() string {
	return db.path
}

// Package migration owns the SQLite connection configuration and the
// versioned schema migrations applied at startup.
package migration

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// SQLiteConfig describes how the SQLite database is opened.
type SQLiteConfig struct {
	// DSN is the database file path or connection string.
	DSN string

	// BusyTimeout sets how long to wait for database locks.
	BusyTimeout time.Duration

	// EnableForeignKeys enables foreign key constraint checking.
	EnableForeignKeys bool

	// JournalMode sets the SQLite journal mode (WAL, DELETE, TRUNCATE, etc.)
	JournalMode string

	// MaxOpenConns sets the maximum number of open connections.
	MaxOpenConns int

	// MaxIdleConns sets the maximum number of idle connections.
	MaxIdleConns int
}

// DefaultSQLiteConfig returns a configuration suitable for a single-node
// deployment.
func DefaultSQLiteConfig(dsn string) SQLiteConfig {
	return SQLiteConfig{
		DSN:               dsn,
		BusyTimeout:       5 * time.Second,
		EnableForeignKeys: true,
		JournalMode:       "WAL",
		MaxOpenConns:      1,
		MaxIdleConns:      1,
	}
}

// ConnectionManager opens configured SQLite connections.
type ConnectionManager interface {
	GetConnection() (*sql.DB, error)
}

type sqliteConnectionManager struct {
	config SQLiteConfig
}

// NewConnectionManager creates a ConnectionManager for the given config.
func NewConnectionManager(config SQLiteConfig) ConnectionManager {
	return &sqliteConnectionManager{config: config}
}

// GetConnection returns a configured SQLite database connection.
func (cm *sqliteConnectionManager) GetConnection() (*sql.DB, error) {
	if cm.config.DSN == "" {
		return nil, fmt.Errorf("migration: DSN is required")
	}

	if err := cm.ensureDatabaseDir(); err != nil {
		return nil, fmt.Errorf("migration: failed to prepare database path: %w", err)
	}

	db, err := sql.Open("sqlite", cm.config.DSN)
	if err != nil {
		return nil, fmt.Errorf("migration: failed to open SQLite database: %w", err)
	}

	if cm.config.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cm.config.MaxOpenConns)
	}
	if cm.config.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cm.config.MaxIdleConns)
	}

	if err := cm.configure(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration: failed to configure SQLite database: %w", err)
	}

	return db, nil
}

func (cm *sqliteConnectionManager) ensureDatabaseDir() error {
	if cm.config.DSN == ":memory:" || cm.config.DSN == "file::memory:?cache=shared" {
		return nil
	}
	dir := filepath.Dir(cm.config.DSN)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func (cm *sqliteConnectionManager) configure(db *sql.DB) error {
	pragmas := make([]string, 0, 3)
	if cm.config.BusyTimeout > 0 {
		pragmas = append(pragmas, fmt.Sprintf("PRAGMA busy_timeout = %d", cm.config.BusyTimeout.Milliseconds()))
	}
	if cm.config.EnableForeignKeys {
		pragmas = append(pragmas, "PRAGMA foreign_keys = ON")
	}
	if cm.config.JournalMode != "" {
		pragmas = append(pragmas, fmt.Sprintf("PRAGMA journal_mode = %s", cm.config.JournalMode))
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("%s: %w", pragma, err)
		}
	}
	return nil
}

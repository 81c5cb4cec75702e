package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// busyTimeoutMs is how long SQLite itself waits on a locked database
// before returning SQLITE_BUSY.
const busyTimeoutMs = 5000

// maxTxAttempts bounds the retries WithTx makes on SQLITE_BUSY.
const maxTxAttempts = 3

// DB is the history database handle. One DB is opened per command
// invocation and must be closed by the caller.
type DB struct {
	queries
	conn   *sql.DB
	logger *slog.Logger
	dbPath string
}

// Open opens or creates the SQLite database at dbPath, creating the parent
// directory and the schema when needed.
//
// Every connection gets WAL, busy_timeout and synchronous=NORMAL through the
// DSN so pooled connections behave the same. Transactions start with
// BEGIN IMMEDIATE so a writer holds the write lock from the start.
func Open(dbPath string, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dbExists := fileExists(dbPath)

	conn, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// each connection to :memory: is a separate database
		conn.SetMaxOpenConns(1)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{
		queries: queries{q: conn},
		conn:    conn,
		logger:  logger,
		dbPath:  dbPath,
	}

	if !dbExists {
		logger.Debug("Creating new database", "path", dbPath)
	}
	if err := db.migrate(context.Background()); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

func dsn(dbPath string) string {
	params := []string{
		"_pragma=busy_timeout(" + fmt.Sprint(busyTimeoutMs) + ")",
		"_pragma=journal_mode(WAL)",
		"_pragma=synchronous(NORMAL)",
		"_pragma=foreign_keys(ON)",
		"_txlock=immediate",
	}
	return dbPath + "?" + strings.Join(params, "&")
}

// Close closes the database connection
func (db *DB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// Path returns the database file path
func (db *DB) Path() string {
	return db.dbPath
}

// WithTx executes fn within a transaction. If fn returns an error the
// transaction is rolled back, otherwise it is committed. A transaction
// that fails with SQLITE_BUSY is retried from the start with a short backoff;
// fn must therefore be safe to run more than once.
func (db *DB) WithTx(ctx context.Context, fn func(*Tx) error) error {
	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err = db.runTx(ctx, fn)
		if err == nil || !IsBusy(err) || attempt == maxTxAttempts {
			return err
		}
		db.logger.Debug("Database busy, retrying transaction", "attempt", attempt)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt*100) * time.Millisecond):
		}
	}
	return err
}

func (db *DB) runTx(ctx context.Context, fn func(*Tx) error) error {
	sqlTx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = sqlTx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&Tx{queries: queries{q: sqlTx}, tx: sqlTx}); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil {
			db.logger.Error("failed to rollback transaction", "error", err, "rollback_error", rbErr)
		}
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// IsBusy reports whether err indicates an SQLite BUSY/locked condition.
func IsBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") ||
		strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked")
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

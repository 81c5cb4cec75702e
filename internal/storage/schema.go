package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// Schema version tracking
const currentSchemaVersion = 1

// migrations[i] upgrades a database at version i to version i+1.
var migrations = []func(context.Context, *sql.Tx) error{
	// 0 -> 1: visited directories and bookmarks
	func(ctx context.Context, tx *sql.Tx) error {
		stmts := []string{
			`CREATE TABLE IF NOT EXISTS dirs (
				path          TEXT PRIMARY KEY,
				visits        INTEGER NOT NULL CHECK (visits >= 1),
				last_accessed INTEGER NOT NULL,
				first_seen    INTEGER NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_dirs_last_accessed ON dirs(last_accessed DESC)`,
			`CREATE INDEX IF NOT EXISTS idx_dirs_visits ON dirs(visits DESC)`,
			`CREATE TABLE IF NOT EXISTS bookmarks (
				name       TEXT PRIMARY KEY,
				path       TEXT NOT NULL,
				created_at INTEGER NOT NULL DEFAULT 0
			)`,
		}
		return execAll(ctx, tx, stmts)
	},
}

// migrate brings the schema to currentSchemaVersion. An up-to-date database
// is only read; the write transaction is taken when a migration is due.
func (db *DB) migrate(ctx context.Context) error {
	version, err := readSchemaVersion(ctx, db.conn)
	if err != nil {
		return err
	}
	if version == currentSchemaVersion {
		return nil
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", version, currentSchemaVersion)
	}

	return db.WithTx(ctx, func(tx *Tx) error {
		if _, err := tx.tx.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
			return err
		}

		// another process may have migrated while we waited for the lock
		version, err := getSchemaVersion(ctx, tx.tx)
		if err != nil {
			return err
		}
		if version >= currentSchemaVersion {
			return nil
		}

		db.logger.Debug("Running database migrations", "from_version", version, "to_version", currentSchemaVersion)
		for v := version; v < currentSchemaVersion; v++ {
			if err := migrations[v](ctx, tx.tx); err != nil {
				return err
			}
		}
		return setSchemaVersion(ctx, tx.tx, currentSchemaVersion)
	})
}

// SchemaVersion returns the version recorded in the database.
func (db *DB) SchemaVersion(ctx context.Context) (int, error) {
	return readSchemaVersion(ctx, db.conn)
}

// readSchemaVersion reports 0 for a database without a schema_version table.
func readSchemaVersion(ctx context.Context, q querier) (int, error) {
	var n int
	err := q.QueryRowContext(ctx,
		"SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = 'schema_version'",
	).Scan(&n)
	if err != nil || n == 0 {
		return 0, err
	}
	return getSchemaVersion(ctx, q)
}

func getSchemaVersion(ctx context.Context, q querier) (int, error) {
	var version int
	err := q.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return version, err
}

func setSchemaVersion(ctx context.Context, tx *sql.Tx, version int) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM schema_version"); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", version)
	return err
}

func execAll(ctx context.Context, tx *sql.Tx, stmts []string) error {
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Package store provides the SQLite-backed entity store for persons and
// relationships.
package store

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS persons (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	short_name TEXT    NOT NULL,
	full_name  TEXT    NOT NULL,
	age        INTEGER NOT NULL DEFAULT 0,
	gender     TEXT    NOT NULL CHECK (gender IN ('Male', 'Female')),
	status     TEXT    NOT NULL DEFAULT 'alive' CHECK (status IN ('alive', 'deceased')),
	phone      TEXT    NOT NULL DEFAULT '',
	address    TEXT    NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS relationships (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	from_person_id    INTEGER NOT NULL REFERENCES persons(id) ON DELETE CASCADE,
	to_person_id      INTEGER NOT NULL REFERENCES persons(id) ON DELETE CASCADE,
	relationship_type TEXT    NOT NULL CHECK (relationship_type IN ('spouse', 'parent-child')),
	status            TEXT    NOT NULL,
	CHECK (from_person_id <> to_person_id),
	UNIQUE (from_person_id, to_person_id, relationship_type)
);

CREATE INDEX IF NOT EXISTS idx_relationships_from ON relationships(from_person_id);
CREATE INDEX IF NOT EXISTS idx_relationships_to ON relationships(to_person_id);
`

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// runner is satisfied by both *sql.DB and *sql.Tx.
type runner interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// DB wraps a sql.DB with entity store operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Ping checks that the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// inTx runs fn in a transaction and commits when it returns nil.
func (db *DB) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	return nil
}

func execBuilder(ctx context.Context, r runner, b sq.Sqlizer) (sql.Result, error) {
	sqlStr, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	return r.ExecContext(ctx, sqlStr, args...)
}

func queryBuilder(ctx context.Context, r runner, b sq.Sqlizer) (*sql.Rows, error) {
	sqlStr, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	return r.QueryContext(ctx, sqlStr, args...)
}

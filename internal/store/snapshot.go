package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Dump reads the whole store inside one transaction so persons and edges
// come from the same state.
func (db *DB) Dump(ctx context.Context) (Snapshot, error) {
	var s Snapshot
	err := db.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		if s.Persons, err = listPersons(ctx, tx); err != nil {
			return err
		}
		s.Relationships, err = selectRelationships(ctx, tx, EdgeFilter{})
		return err
	})
	return s, err
}

// Restore replaces the content of the store with s, keeping its ids.
func (db *DB) Restore(ctx context.Context, s Snapshot) error {
	return db.inTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"relationships", "persons"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("store: clear %s: %w", table, err)
			}
		}
		for _, p := range s.Persons {
			if _, err := insertPerson(ctx, tx, p.ID, p.Fields()); err != nil {
				return err
			}
		}
		return insertRelationships(ctx, tx, s.Relationships)
	})
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/starford/kinfolk/internal/models"
)

var relationshipColumns = []string{"id", "from_person_id", "to_person_id", "relationship_type", "status"}

// ListRelationships returns every relationship ordered by id.
func (db *DB) ListRelationships(ctx context.Context) ([]models.Relationship, error) {
	return selectRelationships(ctx, db.conn, EdgeFilter{})
}

// SelectRelationships returns the relationships matching f, ordered by id.
func (db *DB) SelectRelationships(ctx context.Context, f EdgeFilter) ([]models.Relationship, error) {
	return selectRelationships(ctx, db.conn, f)
}

func selectRelationships(ctx context.Context, r runner, f EdgeFilter) ([]models.Relationship, error) {
	q := psql.Select(relationshipColumns...).From("relationships").OrderBy("id ASC")
	if !f.IsZero() {
		q = q.Where(f.where())
	}
	rows, err := queryBuilder(ctx, r, q)
	if err != nil {
		return nil, fmt.Errorf("store: select relationships: %w", err)
	}
	defer rows.Close()

	out := []models.Relationship{}
	for rows.Next() {
		var rel models.Relationship
		var typ string
		if err := rows.Scan(&rel.ID, &rel.From, &rel.To, &typ, &rel.Status); err != nil {
			return nil, fmt.Errorf("store: scan relationship: %w", err)
		}
		rel.Type = models.RelationshipType(typ)
		out = append(out, rel)
	}
	return out, rows.Err()
}

// InsertRelationships stores rels in a single transaction. Edges already
// present (same endpoints and type) are skipped.
func (db *DB) InsertRelationships(ctx context.Context, rels []models.Relationship) error {
	if len(rels) == 0 {
		return nil
	}
	return db.inTx(ctx, func(tx *sql.Tx) error {
		return insertRelationships(ctx, tx, rels)
	})
}

func insertRelationships(ctx context.Context, r runner, rels []models.Relationship) error {
	for _, rel := range rels {
		if err := rel.Validate(); err != nil {
			return fmt.Errorf("store: %w", err)
		}
		cols := []string{"from_person_id", "to_person_id", "relationship_type", "status"}
		vals := []any{rel.From, rel.To, string(rel.Type), rel.Status}
		if rel.ID != 0 {
			cols = append([]string{"id"}, cols...)
			vals = append([]any{rel.ID}, vals...)
		}
		q := psql.Insert("relationships").Options("OR IGNORE").Columns(cols...).Values(vals...)
		if _, err := execBuilder(ctx, r, q); err != nil {
			return fmt.Errorf("store: insert relationship %d->%d: %w", rel.From, rel.To, err)
		}
	}
	return nil
}

// DeleteRelationships removes the relationships matching f. An empty filter
// is rejected rather than wiping the table.
func (db *DB) DeleteRelationships(ctx context.Context, f EdgeFilter) error {
	return deleteRelationships(ctx, db.conn, f)
}

func deleteRelationships(ctx context.Context, r runner, f EdgeFilter) error {
	if f.IsZero() {
		return errors.New("store: delete relationships: empty filter")
	}
	if _, err := execBuilder(ctx, r, psql.Delete("relationships").Where(f.where())); err != nil {
		return fmt.Errorf("store: delete relationships: %w", err)
	}
	return nil
}

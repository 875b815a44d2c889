package store

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/starford/kinfolk/internal/models"
)

// Store is the entity store the family service runs against.
// Consumers should depend on this interface rather than *DB.
type Store interface {
	ListPersons(ctx context.Context) ([]models.Person, error)
	GetPerson(ctx context.Context, id int64) (models.Person, error)
	InsertPerson(ctx context.Context, f models.PersonFields) (models.Person, error)
	UpdatePerson(ctx context.Context, id int64, f models.PersonFields) error
	DeletePerson(ctx context.Context, id int64) error

	ListRelationships(ctx context.Context) ([]models.Relationship, error)
	SelectRelationships(ctx context.Context, f EdgeFilter) ([]models.Relationship, error)
	InsertRelationships(ctx context.Context, rels []models.Relationship) error
	DeleteRelationships(ctx context.Context, f EdgeFilter) error

	// CreatePerson inserts a person and the edges returned by edges(newID)
	// in one transaction.
	CreatePerson(ctx context.Context, f models.PersonFields, edges func(id int64) []models.Relationship) (models.Person, error)
	// ReplacePerson updates a person and swaps every edge touching it for
	// edges, in one transaction.
	ReplacePerson(ctx context.Context, id int64, f models.PersonFields, edges []models.Relationship) error

	Dump(ctx context.Context) (Snapshot, error)
	Restore(ctx context.Context, s Snapshot) error
	Close() error
}

// Verify *DB satisfies Store at compile time.
var _ Store = (*DB)(nil)

// Snapshot is the full content of the store.
type Snapshot struct {
	Persons       []models.Person
	Relationships []models.Relationship
}

// EdgeFilter selects relationships. Zero fields are ignored; Either matches
// an id on the from or the to side.
type EdgeFilter struct {
	From   int64
	To     int64
	Either int64
	Type   models.RelationshipType
}

// Touching matches every edge where id is either endpoint.
func Touching(id int64) EdgeFilter { return EdgeFilter{Either: id} }

// IsZero reports whether f selects everything.
func (f EdgeFilter) IsZero() bool { return f == EdgeFilter{} }

func (f EdgeFilter) where() sq.And {
	var cond sq.And
	if f.From != 0 {
		cond = append(cond, sq.Eq{"from_person_id": f.From})
	}
	if f.To != 0 {
		cond = append(cond, sq.Eq{"to_person_id": f.To})
	}
	if f.Either != 0 {
		cond = append(cond, sq.Or{
			sq.Eq{"from_person_id": f.Either},
			sq.Eq{"to_person_id": f.Either},
		})
	}
	if f.Type != "" {
		cond = append(cond, sq.Eq{"relationship_type": string(f.Type)})
	}
	return cond
}

// Package testutil provides shared test helpers for setting up stores and
// seed directories.
package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/starford/kinfolk/internal/models"
	"github.com/starford/kinfolk/internal/seed"
	"github.com/starford/kinfolk/internal/store"
)

// TestStore creates a temporary SQLite store that is automatically cleaned up.
func TestStore(t *testing.T) *store.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "kinfolk-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := store.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestSeedDir creates a temporary seed directory with a seed.Dir over it.
func TestSeedDir(t *testing.T) (string, *seed.Dir) {
	t.Helper()
	root := t.TempDir()
	dir, err := seed.NewDir(root)
	if err != nil {
		t.Fatal(err)
	}
	return root, dir
}

// FailingStore is a store.Store whose reads fail with Err. Writes go to the
// embedded Store, which may be nil when a test only reads.
type FailingStore struct {
	store.Store
	Err error
}

func (f FailingStore) ListPersons(context.Context) ([]models.Person, error) { return nil, f.Err }

func (f FailingStore) GetPerson(context.Context, int64) (models.Person, error) {
	return models.Person{}, f.Err
}

func (f FailingStore) ListRelationships(context.Context) ([]models.Relationship, error) {
	return nil, f.Err
}

func (f FailingStore) Dump(context.Context) (store.Snapshot, error) { return store.Snapshot{}, f.Err }

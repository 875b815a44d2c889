package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/starford/kinfolk/internal/apperr"
	"github.com/starford/kinfolk/internal/models"
)

var personColumns = []string{"id", "short_name", "full_name", "age", "gender", "status", "phone", "address"}

type scanner interface {
	Scan(dest ...any) error
}

func scanPerson(s scanner) (models.Person, error) {
	var p models.Person
	var gender, status string
	if err := s.Scan(&p.ID, &p.ShortName, &p.FullName, &p.Age, &gender, &status, &p.Phone, &p.Address); err != nil {
		return models.Person{}, err
	}
	p.Gender = models.Gender(gender)
	p.Status = models.LifeStatus(status)
	return p, nil
}

// ListPersons returns every person ordered by id.
func (db *DB) ListPersons(ctx context.Context) ([]models.Person, error) {
	return listPersons(ctx, db.conn)
}

func listPersons(ctx context.Context, r runner) ([]models.Person, error) {
	rows, err := queryBuilder(ctx, r, psql.Select(personColumns...).From("persons").OrderBy("id ASC"))
	if err != nil {
		return nil, fmt.Errorf("store: list persons: %w", err)
	}
	defer rows.Close()

	out := []models.Person{}
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan person: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetPerson returns the person with the given id or apperr.ErrNotFound.
func (db *DB) GetPerson(ctx context.Context, id int64) (models.Person, error) {
	sqlStr, args, err := psql.Select(personColumns...).From("persons").Where(sq.Eq{"id": id}).Limit(1).ToSql()
	if err != nil {
		return models.Person{}, fmt.Errorf("store: build get person: %w", err)
	}
	p, err := scanPerson(db.conn.QueryRowContext(ctx, sqlStr, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Person{}, fmt.Errorf("person %d: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return models.Person{}, fmt.Errorf("store: get person %d: %w", id, err)
	}
	return p, nil
}

// InsertPerson stores a new person and returns it with its assigned id.
func (db *DB) InsertPerson(ctx context.Context, f models.PersonFields) (models.Person, error) {
	return insertPerson(ctx, db.conn, 0, f)
}

// insertPerson stores f; a non-zero id is written verbatim, otherwise the
// database assigns one.
func insertPerson(ctx context.Context, r runner, id int64, f models.PersonFields) (models.Person, error) {
	cols := []string{"short_name", "full_name", "age", "gender", "status", "phone", "address"}
	vals := []any{f.ShortName, f.FullName, f.Age, string(f.Gender), string(f.Status), f.Phone, f.Address}
	if id != 0 {
		cols = append([]string{"id"}, cols...)
		vals = append([]any{id}, vals...)
	}
	res, err := execBuilder(ctx, r, psql.Insert("persons").Columns(cols...).Values(vals...))
	if err != nil {
		return models.Person{}, fmt.Errorf("store: insert person %q: %w", f.ShortName, err)
	}
	if id == 0 {
		if id, err = res.LastInsertId(); err != nil {
			return models.Person{}, fmt.Errorf("store: insert person id: %w", err)
		}
	}
	return personFrom(id, f), nil
}

// UpdatePerson overwrites the attributes of an existing person.
func (db *DB) UpdatePerson(ctx context.Context, id int64, f models.PersonFields) error {
	return updatePerson(ctx, db.conn, id, f)
}

func updatePerson(ctx context.Context, r runner, id int64, f models.PersonFields) error {
	q := psql.Update("persons").
		Set("short_name", f.ShortName).
		Set("full_name", f.FullName).
		Set("age", f.Age).
		Set("gender", string(f.Gender)).
		Set("status", string(f.Status)).
		Set("phone", f.Phone).
		Set("address", f.Address).
		Where(sq.Eq{"id": id})
	res, err := execBuilder(ctx, r, q)
	if err != nil {
		return fmt.Errorf("store: update person %d: %w", id, err)
	}
	return requireAffected(res, id)
}

// DeletePerson removes a person and every relationship that references it.
func (db *DB) DeletePerson(ctx context.Context, id int64) error {
	return db.inTx(ctx, func(tx *sql.Tx) error {
		if err := deleteRelationships(ctx, tx, Touching(id)); err != nil {
			return err
		}
		res, err := execBuilder(ctx, tx, psql.Delete("persons").Where(sq.Eq{"id": id}))
		if err != nil {
			return fmt.Errorf("store: delete person %d: %w", id, err)
		}
		return requireAffected(res, id)
	})
}

// CreatePerson inserts a person and its edges atomically.
func (db *DB) CreatePerson(ctx context.Context, f models.PersonFields, edges func(id int64) []models.Relationship) (models.Person, error) {
	var p models.Person
	err := db.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		if p, err = insertPerson(ctx, tx, 0, f); err != nil {
			return err
		}
		if edges == nil {
			return nil
		}
		return insertRelationships(ctx, tx, edges(p.ID))
	})
	if err != nil {
		return models.Person{}, err
	}
	return p, nil
}

// ReplacePerson updates a person and replaces all edges touching it.
func (db *DB) ReplacePerson(ctx context.Context, id int64, f models.PersonFields, edges []models.Relationship) error {
	return db.inTx(ctx, func(tx *sql.Tx) error {
		if err := updatePerson(ctx, tx, id, f); err != nil {
			return err
		}
		if err := deleteRelationships(ctx, tx, Touching(id)); err != nil {
			return err
		}
		return insertRelationships(ctx, tx, edges)
	})
}

func requireAffected(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("person %d: %w", id, apperr.ErrNotFound)
	}
	return nil
}

func personFrom(id int64, f models.PersonFields) models.Person {
	return models.Person{
		ID:        id,
		ShortName: f.ShortName,
		FullName:  f.FullName,
		Age:       f.Age,
		Gender:    f.Gender,
		Status:    f.Status,
		Phone:     f.Phone,
		Address:   f.Address,
	}
}

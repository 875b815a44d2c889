package seed

import (
	"errors"
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"

	"github.com/starford/kinfolk/internal/kinship"
	"github.com/starford/kinfolk/internal/models"
	"github.com/starford/kinfolk/internal/store"
)

// Table file names.
const (
	PersonsFile       = "persons.yaml"
	RelationshipsFile = "relationships.yaml"
	// Legacy split tables, used when RelationshipsFile is absent.
	ParentChildFile = "parent_child_relationships.yaml"
	SpousesFile     = "spouse_relationships.yaml"
)

// ErrMissingTable is returned by Load when a table file is absent. A
// directory missing a table never loads as an empty family.
var ErrMissingTable = errors.New("seed: missing table")

type personRow struct {
	ID        int64  `yaml:"id"`
	ShortName string `yaml:"short_name"`
	FullName  string `yaml:"full_name"`
	Age       int    `yaml:"age"`
	Gender    string `yaml:"gender"`
	Status    string `yaml:"status,omitempty"`
	Phone     string `yaml:"phone,omitempty"`
	Address   string `yaml:"address,omitempty"`
}

type relationshipRow struct {
	ID               int64  `yaml:"id"`
	FromPersonID     int64  `yaml:"from_person_id"`
	ToPersonID       int64  `yaml:"to_person_id"`
	RelationshipType string `yaml:"relationship_type"`
	Status           string `yaml:"status"`
}

// Load reads a snapshot from d. Relationships come from relationships.yaml,
// or from the legacy parent-child and spouse tables when it is missing.
// persons.yaml and one complete set of relationship tables must exist.
func Load(d *Dir) (store.Snapshot, error) {
	var snap store.Snapshot

	var persons []personRow
	if err := readTable(d, PersonsFile, &persons); err != nil {
		return snap, err
	}
	seen := make(map[int64]bool, len(persons))
	for i, r := range persons {
		if r.ID <= 0 {
			return snap, fmt.Errorf("seed: %s entry %d: id must be positive", PersonsFile, i)
		}
		if seen[r.ID] {
			return snap, fmt.Errorf("seed: %s: duplicate id %d", PersonsFile, r.ID)
		}
		seen[r.ID] = true
		status := models.LifeStatus(r.Status)
		if status == "" {
			status = models.StatusAlive
		}
		snap.Persons = append(snap.Persons, models.Person{
			ID:        r.ID,
			ShortName: r.ShortName,
			FullName:  r.FullName,
			Age:       r.Age,
			Gender:    models.Gender(r.Gender),
			Status:    status,
			Phone:     r.Phone,
			Address:   r.Address,
		})
	}

	rels, err := loadRelationships(d)
	if err != nil {
		return snap, err
	}
	for _, r := range rels {
		if err := r.Validate(); err != nil {
			return snap, fmt.Errorf("seed: edge %d: %w", r.ID, err)
		}
		if !seen[r.From] || !seen[r.To] {
			return snap, fmt.Errorf("seed: edge %d references an unknown person", r.ID)
		}
	}
	snap.Relationships = rels
	return snap, nil
}

func loadRelationships(d *Dir) ([]models.Relationship, error) {
	if d.Exists(RelationshipsFile) || !d.Exists(ParentChildFile) && !d.Exists(SpousesFile) {
		var rows []relationshipRow
		if err := readTable(d, RelationshipsFile, &rows); err != nil {
			return nil, err
		}
		out := make([]models.Relationship, len(rows))
		for i, r := range rows {
			out[i] = models.Relationship{
				ID:     r.ID,
				From:   r.FromPersonID,
				To:     r.ToPersonID,
				Type:   models.RelationshipType(r.RelationshipType),
				Status: r.Status,
			}
		}
		return out, nil
	}

	var pc []kinship.ParentChildRow
	if err := readTable(d, ParentChildFile, &pc); err != nil {
		return nil, err
	}
	var sp []kinship.SpouseRow
	if err := readTable(d, SpousesFile, &sp); err != nil {
		return nil, err
	}
	return kinship.FromLegacy(pc, sp), nil
}

// readTable decodes a YAML list into out.
func readTable(d *Dir, name string, out any) error {
	data, err := d.Read(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrMissingTable, name)
		}
		return fmt.Errorf("seed: read %s: %w", name, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("seed: parse %s: %w", name, err)
	}
	return nil
}

// Save writes snap to d in canonical form and removes legacy tables so the
// directory loads back to the same snapshot.
func Save(d *Dir, snap store.Snapshot) error {
	persons := make([]personRow, len(snap.Persons))
	for i, p := range snap.Persons {
		persons[i] = personRow{
			ID:        p.ID,
			ShortName: p.ShortName,
			FullName:  p.FullName,
			Age:       p.Age,
			Gender:    string(p.Gender),
			Status:    string(p.Status),
			Phone:     p.Phone,
			Address:   p.Address,
		}
	}
	rels := make([]relationshipRow, len(snap.Relationships))
	for i, r := range snap.Relationships {
		rels[i] = relationshipRow{
			ID:               r.ID,
			FromPersonID:     r.From,
			ToPersonID:       r.To,
			RelationshipType: string(r.Type),
			Status:           r.Status,
		}
	}
	if err := writeTable(d, PersonsFile, persons); err != nil {
		return err
	}
	if err := writeTable(d, RelationshipsFile, rels); err != nil {
		return err
	}
	for _, legacy := range []string{ParentChildFile, SpousesFile} {
		if err := d.Remove(legacy); err != nil {
			return err
		}
	}
	return nil
}

func writeTable(d *Dir, name string, rows any) error {
	data, err := yaml.Marshal(rows)
	if err != nil {
		return fmt.Errorf("seed: encode %s: %w", name, err)
	}
	return d.Write(name, data)
}

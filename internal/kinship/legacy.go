package kinship

import "github.com/starford/kinfolk/internal/models"

// ParentChildRow is a row of the legacy parent_child_relationships table.
type ParentChildRow struct {
	ID               int64             `yaml:"id" json:"id"`
	ParentID         int64             `yaml:"parent_id" json:"parent_id"`
	ChildID          int64             `yaml:"child_id" json:"child_id"`
	RelationshipType models.ParentType `yaml:"relationship_type" json:"relationship_type"`
}

// SpouseRow is a row of the legacy spouse_relationships table.
type SpouseRow struct {
	ID        int64               `yaml:"id" json:"id"`
	Person1ID int64               `yaml:"person1_id" json:"person1_id"`
	Person2ID int64               `yaml:"person2_id" json:"person2_id"`
	Status    models.SpouseStatus `yaml:"status" json:"status"`
}

// FromLegacy converts the split legacy tables into canonical edges. Parent
// rows come first, then spouse rows; edge ids are reassigned in that order
// so the result sorts the same way on every call.
func FromLegacy(parentChild []ParentChildRow, spouses []SpouseRow) []models.Relationship {
	out := make([]models.Relationship, 0, len(parentChild)+len(spouses))
	var id int64
	for _, r := range parentChild {
		id++
		e := models.NewParentChild(r.ParentID, r.ChildID, r.RelationshipType)
		e.ID = id
		out = append(out, e)
	}
	for _, r := range spouses {
		id++
		e := models.NewSpouse(r.Person1ID, r.Person2ID, r.Status)
		e.ID = id
		out = append(out, e)
	}
	return out
}

// NormalizeLegacy is Normalize for data kept in the legacy split tables.
func NormalizeLegacy(persons []models.Person, parentChild []ParentChildRow, spouses []SpouseRow) []Member {
	return Normalize(persons, FromLegacy(parentChild, spouses))
}

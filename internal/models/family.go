// Package models defines the domain types for Kinfolk.
package models

import "fmt"

// Gender of a person.
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
)

// LifeStatus tells whether a person is alive.
type LifeStatus string

const (
	StatusAlive    LifeStatus = "alive"
	StatusDeceased LifeStatus = "deceased"
)

// Person is a stored individual. Relations are never embedded here; see
// kinship.Member for the derived view.
type Person struct {
	ID        int64      `json:"id"`
	ShortName string     `json:"shortName"`
	FullName  string     `json:"fullName"`
	Age       int        `json:"age"`
	Gender    Gender     `json:"gender"`
	Status    LifeStatus `json:"status"`
	Phone     string     `json:"phone"`
	Address   string     `json:"address"`
}

// PersonFields holds the writable attributes of a person.
type PersonFields struct {
	ShortName string
	FullName  string
	Age       int
	Gender    Gender
	Status    LifeStatus
	Phone     string
	Address   string
}

// Fields returns the writable attributes of p.
func (p Person) Fields() PersonFields {
	return PersonFields{
		ShortName: p.ShortName,
		FullName:  p.FullName,
		Age:       p.Age,
		Gender:    p.Gender,
		Status:    p.Status,
		Phone:     p.Phone,
		Address:   p.Address,
	}
}

// RelationshipType discriminates the edge kinds.
type RelationshipType string

const (
	TypeSpouse      RelationshipType = "spouse"
	TypeParentChild RelationshipType = "parent-child"
)

// ParentType is the status of a parent-child edge.
type ParentType string

const (
	Biological ParentType = "biological"
	Adoptive   ParentType = "adoptive"
)

// SpouseStatus is the status of a spouse edge.
type SpouseStatus string

const (
	SpouseCurrent  SpouseStatus = "current"
	SpouseDeceased SpouseStatus = "deceased"
	SpouseDivorced SpouseStatus = "divorced"
)

// Relationship is a stored edge between two persons.
//
// For parent-child edges From is the parent and To the child. Spouse edges
// are symmetric and stored once. Status holds a ParentType or a SpouseStatus
// depending on Type; use the accessors rather than reading it directly.
type Relationship struct {
	ID     int64            `json:"id"`
	From   int64            `json:"fromPersonId"`
	To     int64            `json:"toPersonId"`
	Type   RelationshipType `json:"relationshipType"`
	Status string           `json:"status"`
}

// NewParentChild returns a parent-child edge from parent to child.
func NewParentChild(parent, child int64, t ParentType) Relationship {
	return Relationship{From: parent, To: child, Type: TypeParentChild, Status: string(t)}
}

// NewSpouse returns a spouse edge between a and b.
func NewSpouse(a, b int64, s SpouseStatus) Relationship {
	return Relationship{From: a, To: b, Type: TypeSpouse, Status: string(s)}
}

// ParentType returns the adoption type of a parent-child edge.
func (r Relationship) ParentType() (ParentType, bool) {
	if r.Type != TypeParentChild {
		return "", false
	}
	t := ParentType(r.Status)
	return t, t.Valid()
}

// SpouseStatus returns the marital status of a spouse edge.
func (r Relationship) SpouseStatus() (SpouseStatus, bool) {
	if r.Type != TypeSpouse {
		return "", false
	}
	s := SpouseStatus(r.Status)
	return s, s.Valid()
}

// Validate checks that the edge is well formed on its own: a known type, a
// status belonging to that type, and two distinct endpoints.
func (r Relationship) Validate() error {
	if r.From == r.To {
		return fmt.Errorf("relationship %s: person %d cannot relate to itself", r.Type, r.From)
	}
	switch r.Type {
	case TypeParentChild:
		if _, ok := r.ParentType(); !ok {
			return fmt.Errorf("relationship parent-child: invalid status %q", r.Status)
		}
	case TypeSpouse:
		if _, ok := r.SpouseStatus(); !ok {
			return fmt.Errorf("relationship spouse: invalid status %q", r.Status)
		}
	default:
		return fmt.Errorf("relationship: unknown type %q", r.Type)
	}
	return nil
}

// Valid reports whether g is a known gender.
func (g Gender) Valid() bool { return g == GenderMale || g == GenderFemale }

// Valid reports whether s is a known life status.
func (s LifeStatus) Valid() bool { return s == StatusAlive || s == StatusDeceased }

// Valid reports whether t is a known parent type.
func (t ParentType) Valid() bool { return t == Biological || t == Adoptive }

// Valid reports whether s is a known spouse status.
func (s SpouseStatus) Valid() bool {
	return s == SpouseCurrent || s == SpouseDeceased || s == SpouseDivorced
}

// ChangeKind names a committed mutation of the family data.
type ChangeKind string

const (
	ChangeCreated  ChangeKind = "created"
	ChangeUpdated  ChangeKind = "updated"
	ChangeDeleted  ChangeKind = "deleted"
	ChangeImported ChangeKind = "imported" // the whole family was replaced
)

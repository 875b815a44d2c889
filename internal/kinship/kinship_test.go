package kinship

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/starford/kinfolk/internal/models"
)

func person(id int64, name string) models.Person {
	return models.Person{ID: id, ShortName: name, FullName: name, Gender: models.GenderMale, Status: models.StatusAlive}
}

func edge(id int64, r models.Relationship) models.Relationship {
	r.ID = id
	return r
}

func fixture() ([]models.Person, []models.Relationship) {
	persons := []models.Person{person(1, "A"), person(2, "S1"), person(3, "S2"), person(4, "C1"), person(5, "C2")}
	rels := []models.Relationship{
		edge(1, models.NewSpouse(1, 2, models.SpouseDivorced)),
		edge(2, models.NewSpouse(3, 1, models.SpouseCurrent)),
		edge(3, models.NewParentChild(1, 4, models.Biological)),
		edge(4, models.NewParentChild(1, 5, models.Adoptive)),
		edge(5, models.NewParentChild(3, 5, models.Biological)),
	}
	return persons, rels
}

func TestNormalize_Children(t *testing.T) {
	persons, rels := fixture()
	idx := Index(Normalize(persons, rels))

	want := []ParentRef{{ID: 4, Type: models.Biological}, {ID: 5, Type: models.Adoptive}}
	if got := idx[1].Children; !reflect.DeepEqual(got, want) {
		t.Errorf("children of 1 = %+v, want %+v", got, want)
	}
	wantParents := []ParentRef{{ID: 1, Type: models.Adoptive}, {ID: 3, Type: models.Biological}}
	if got := idx[5].Parents; !reflect.DeepEqual(got, wantParents) {
		t.Errorf("parents of 5 = %+v, want %+v", got, wantParents)
	}
}

func TestNormalize_SpousesBothSides(t *testing.T) {
	persons, rels := fixture()
	idx := Index(Normalize(persons, rels))

	want := []SpouseRef{{ID: 2, Status: models.SpouseDivorced}, {ID: 3, Status: models.SpouseCurrent}}
	if got := idx[1].Spouses; !reflect.DeepEqual(got, want) {
		t.Errorf("spouses of 1 = %+v, want %+v", got, want)
	}
	if got := idx[3].Spouses; len(got) != 1 || got[0].ID != 1 {
		t.Errorf("spouses of 3 = %+v, want [1]", got)
	}
}

func TestNormalize_NoRelationsYieldsEmptySlices(t *testing.T) {
	members := Normalize([]models.Person{person(9, "Solo")}, nil)
	m := members[0]
	if m.Parents == nil || m.Children == nil || m.Spouses == nil {
		t.Fatal("relation slices must be non-nil")
	}
	if len(m.Parents)+len(m.Children)+len(m.Spouses) != 0 {
		t.Errorf("unexpected relations: %+v", m)
	}
}

func TestNormalize_SkipsMalformedEdges(t *testing.T) {
	persons := []models.Person{person(1, "A"), person(2, "B")}
	rels := []models.Relationship{
		{ID: 1, From: 1, To: 2, Type: models.TypeSpouse, Status: "biological"},
		{ID: 2, From: 1, To: 2, Type: "sibling", Status: "current"},
	}
	for _, m := range Normalize(persons, rels) {
		if len(m.Spouses)+len(m.Children)+len(m.Parents) != 0 {
			t.Errorf("member %d picked up a malformed edge: %+v", m.ID, m)
		}
	}
}

func TestNormalize_Deterministic(t *testing.T) {
	persons, rels := fixture()
	want := Normalize(persons, rels)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		p := append([]models.Person(nil), persons...)
		r := append([]models.Relationship(nil), rels...)
		rng.Shuffle(len(p), func(a, b int) { p[a], p[b] = p[b], p[a] })
		rng.Shuffle(len(r), func(a, b int) { r[a], r[b] = r[b], r[a] })
		if got := Normalize(p, r); !reflect.DeepEqual(got, want) {
			t.Fatalf("shuffle %d produced different output", i)
		}
	}
}

func TestNormalizeLegacy_MatchesCanonical(t *testing.T) {
	persons, _ := fixture()
	pc := []ParentChildRow{
		{ID: 10, ParentID: 1, ChildID: 4, RelationshipType: models.Biological},
		{ID: 11, ParentID: 1, ChildID: 5, RelationshipType: models.Adoptive},
		{ID: 12, ParentID: 3, ChildID: 5, RelationshipType: models.Biological},
	}
	sp := []SpouseRow{
		{ID: 20, Person1ID: 1, Person2ID: 2, Status: models.SpouseDivorced},
		{ID: 21, Person1ID: 3, Person2ID: 1, Status: models.SpouseCurrent},
	}
	legacy := Index(NormalizeLegacy(persons, pc, sp))
	canonical := Index(Normalize(fixture()))
	for id, m := range canonical {
		l := legacy[id]
		if !reflect.DeepEqual(l.Parents, m.Parents) || !reflect.DeepEqual(l.Children, m.Children) {
			t.Errorf("member %d: legacy parents/children differ", id)
		}
		if !reflect.DeepEqual(l.Spouses, m.Spouses) {
			t.Errorf("member %d: legacy spouses = %+v, want %+v", id, l.Spouses, m.Spouses)
		}
	}
}

func TestSelectRoot_LowestID(t *testing.T) {
	persons := []models.Person{person(7, "X"), person(3, "Y"), person(5, "Z")}
	rels := []models.Relationship{edge(1, models.NewParentChild(7, 5, models.Biological))}

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 10; i++ {
		p := append([]models.Person(nil), persons...)
		rng.Shuffle(len(p), func(a, b int) { p[a], p[b] = p[b], p[a] })
		root, ok := SelectRoot(Normalize(p, rels))
		if !ok || root.ID != 3 {
			t.Fatalf("root = %d (ok=%v), want 3", root.ID, ok)
		}
	}
	if got := Roots(Normalize(persons, rels)); !reflect.DeepEqual(got, []int64{3, 7}) {
		t.Errorf("Roots = %v, want [3 7]", got)
	}
}

func TestSelectRoot_None(t *testing.T) {
	if _, ok := SelectRoot(nil); ok {
		t.Error("empty list should have no root")
	}
	persons := []models.Person{person(1, "A"), person(2, "B")}
	rels := []models.Relationship{
		edge(1, models.NewParentChild(1, 2, models.Biological)),
		edge(2, models.NewParentChild(2, 1, models.Biological)),
	}
	if _, ok := SelectRoot(Normalize(persons, rels)); ok {
		t.Error("every member has a parent; expected no root")
	}
}

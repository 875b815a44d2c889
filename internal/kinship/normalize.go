// Package kinship derives per-person relation lists from the stored edge
// list and picks the root of the family tree.
package kinship

import (
	"sort"

	"github.com/starford/kinfolk/internal/models"
)

// ParentRef points from a member to one of its parents or children.
type ParentRef struct {
	ID   int64             `json:"id"`
	Type models.ParentType `json:"type"`
}

// SpouseRef points from a member to one of its spouses.
type SpouseRef struct {
	ID     int64               `json:"id"`
	Status models.SpouseStatus `json:"status"`
}

// Member is a person annotated with relations derived from the edge list.
// The relation slices are a materialized view; rebuild them with Normalize
// instead of editing them.
type Member struct {
	models.Person
	Parents  []ParentRef `json:"parents"`
	Children []ParentRef `json:"children"`
	Spouses  []SpouseRef `json:"spouses"`
}

// Normalize annotates every person with parents, children and spouses taken
// from rels. The result is ordered by person id and every relation slice by
// edge id, so identical input always yields identical output regardless of
// the order rows were fetched in. Edges with an unknown type or a status
// that does not belong to their type are skipped.
func Normalize(persons []models.Person, rels []models.Relationship) []Member {
	members := make([]Member, len(persons))
	byID := make(map[int64]int, len(persons))
	for i, p := range persons {
		members[i] = Member{
			Person:   p,
			Parents:  []ParentRef{},
			Children: []ParentRef{},
			Spouses:  []SpouseRef{},
		}
	}
	sort.SliceStable(members, func(i, j int) bool { return members[i].ID < members[j].ID })
	for i := range members {
		byID[members[i].ID] = i
	}

	edges := make([]models.Relationship, len(rels))
	copy(edges, rels)
	sort.SliceStable(edges, func(i, j int) bool { return edges[i].ID < edges[j].ID })

	for _, e := range edges {
		switch e.Type {
		case models.TypeParentChild:
			t, ok := e.ParentType()
			if !ok {
				continue
			}
			if i, ok := byID[e.To]; ok {
				members[i].Parents = append(members[i].Parents, ParentRef{ID: e.From, Type: t})
			}
			if i, ok := byID[e.From]; ok {
				members[i].Children = append(members[i].Children, ParentRef{ID: e.To, Type: t})
			}
		case models.TypeSpouse:
			s, ok := e.SpouseStatus()
			if !ok {
				continue
			}
			if i, ok := byID[e.From]; ok {
				members[i].Spouses = append(members[i].Spouses, SpouseRef{ID: e.To, Status: s})
			}
			if e.From == e.To {
				continue
			}
			if i, ok := byID[e.To]; ok {
				members[i].Spouses = append(members[i].Spouses, SpouseRef{ID: e.From, Status: s})
			}
		}
	}
	return members
}

// Index maps member ids to members.
func Index(members []Member) map[int64]*Member {
	out := make(map[int64]*Member, len(members))
	for i := range members {
		out[members[i].ID] = &members[i]
	}
	return out
}

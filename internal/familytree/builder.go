// Package familytree expands normalized members into a rooted tree and
// flattens it into the node shape the tree renderer consumes.
package familytree

import (
	"fmt"

	"github.com/starford/kinfolk/internal/apperr"
	"github.com/starford/kinfolk/internal/kinship"
	"github.com/starford/kinfolk/internal/models"
)

// Node is either a person node or a connector. Connectors carry no person
// and only group a spouse, or all children, under one fan-out point.
type Node struct {
	Person   *models.Person
	Relation models.ParentType // type of the edge this node was reached through
	Children []*Node           // nil for leaves
}

// IsConnector reports whether n is a synthetic grouping node.
func (n *Node) IsConnector() bool { return n.Person == nil }

// Tree is the result of a build.
type Tree struct {
	Root *Node
	// DroppedRefs counts spouse or child ids that did not resolve to a
	// member and were left out.
	DroppedRefs int
	// Depth is the length of the longest root-to-person path.
	Depth int
}

type builder struct {
	members map[int64]*kinship.Member
	onPath  map[int64]bool
	dropped int
	depth   int
}

// Build expands the member rootID into a tree.
//
// It fails with apperr.ErrNotFound when rootID is not among members and with
// apperr.ErrCyclicGraph when a member is reached again while it is still on
// the current path. Spouse and child ids that do not resolve are dropped.
func Build(rootID int64, members []kinship.Member) (*Tree, error) {
	b := &builder{
		members: kinship.Index(members),
		onPath:  make(map[int64]bool),
	}
	root, err := b.expand(rootID, "", 1)
	if err != nil {
		return nil, err
	}
	return &Tree{Root: root, DroppedRefs: b.dropped, Depth: b.depth}, nil
}

func (b *builder) expand(id int64, relation models.ParentType, depth int) (*Node, error) {
	m, ok := b.members[id]
	if !ok {
		return nil, fmt.Errorf("person %d: %w", id, apperr.ErrNotFound)
	}
	if b.onPath[id] {
		return nil, fmt.Errorf("person %d is its own ancestor: %w", id, apperr.ErrCyclicGraph)
	}
	b.onPath[id] = true
	defer delete(b.onPath, id)
	if depth > b.depth {
		b.depth = depth
	}

	node := &Node{Person: &m.Person, Relation: relation}

	spouses := make([]*Node, 0, len(m.Spouses))
	for _, s := range m.Spouses {
		sp, ok := b.members[s.ID]
		if !ok {
			b.dropped++
			continue
		}
		spouses = append(spouses, &Node{Person: &sp.Person})
	}

	children := make([]*Node, 0, len(m.Children))
	for _, c := range m.Children {
		if _, ok := b.members[c.ID]; !ok {
			b.dropped++
			continue
		}
		child, err := b.expand(c.ID, c.Type, depth+1)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}

	switch {
	case len(spouses) > 0:
		node.Children = make([]*Node, 0, len(spouses)+1)
		for _, sp := range spouses {
			node.Children = append(node.Children, &Node{Children: []*Node{sp}})
		}
		if len(children) > 0 {
			node.Children = append(node.Children, &Node{Children: children})
		}
	case len(children) > 0:
		node.Children = children
	}
	return node, nil
}

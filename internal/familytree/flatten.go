package familytree

// Attributes are the per-node values the renderer shows and hands back to
// the click callback.
type Attributes struct {
	Gender            string `json:"gender"`
	Age               int    `json:"age"`
	Status            string `json:"status"`
	ID                int64  `json:"id"`
	IsSpouseConnector bool   `json:"isSpouseConnector"`
	Phone             string `json:"phone"`
	Address           string `json:"address"`
	Relation          string `json:"relation,omitempty"`
}

// RenderNode is the generic node shape consumed by the tree renderer.
type RenderNode struct {
	DisplayName string       `json:"name"`
	Attributes  Attributes   `json:"attributes"`
	Children    []RenderNode `json:"children,omitempty"`
}

// Flatten maps n into the renderer's node shape, keeping child order.
// Connectors get an empty name and zero attributes apart from
// IsSpouseConnector.
func Flatten(n *Node) RenderNode {
	var out RenderNode
	if n.IsConnector() {
		out.Attributes.IsSpouseConnector = true
	} else {
		p := n.Person
		out.DisplayName = p.ShortName
		out.Attributes = Attributes{
			Gender:   string(p.Gender),
			Age:      p.Age,
			Status:   string(p.Status),
			ID:       p.ID,
			Phone:    p.Phone,
			Address:  p.Address,
			Relation: string(n.Relation),
		}
	}
	if len(n.Children) > 0 {
		out.Children = make([]RenderNode, len(n.Children))
		for i, c := range n.Children {
			out.Children[i] = Flatten(c)
		}
	}
	return out
}

// Count returns the number of person and connector nodes under n, n included.
func Count(n RenderNode) (persons, connectors int) {
	if n.Attributes.IsSpouseConnector {
		connectors++
	} else {
		persons++
	}
	for _, c := range n.Children {
		p, k := Count(c)
		persons += p
		connectors += k
	}
	return persons, connectors
}

package kinship

import "sort"

// SelectRoot returns the member with no parents. When several qualify the
// one with the lowest id is chosen; this tiebreak is part of the contract.
// ok is false when members is empty or every member has a parent.
func SelectRoot(members []Member) (root Member, ok bool) {
	for _, m := range members {
		if len(m.Parents) != 0 {
			continue
		}
		if !ok || m.ID < root.ID {
			root, ok = m, true
		}
	}
	return root, ok
}

// Roots returns the ids of every member with no parents, ascending.
func Roots(members []Member) []int64 {
	out := []int64{}
	for _, m := range members {
		if len(m.Parents) == 0 {
			out = append(out, m.ID)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

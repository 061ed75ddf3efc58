package atomic

// ConnectedFragments partitions the structure's live atoms into
// bond-connected components, returning each fragment as a sorted slice of
// atom ids. A renderer uses this to highlight pieces that came apart
// after an edit.
//
// Union-find over bonds: merge the two endpoints of every bond, then
// group by root.
//
// Complexity: O(A + B*alpha(A)) where A is the live atom count and B the
// live bond count (alpha is the inverse Ackermann function).
func (s *Structure) ConnectedFragments() [][]uint32 {
	live := s.LiveAtoms()
	if len(live) == 0 {
		return nil
	}

	parent := make(map[uint32]uint32, len(live))
	rank := make(map[uint32]int, len(live))
	for _, a := range live {
		parent[a.ID] = a.ID
	}

	var find func(uint32) uint32
	find = func(x uint32) uint32 {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}
	union := func(x, y uint32) {
		rx, ry := find(x), find(y)
		if rx == ry {
			return
		}
		if rank[rx] < rank[ry] {
			parent[rx] = ry
		} else {
			parent[ry] = rx
			if rank[rx] == rank[ry] {
				rank[rx]++
			}
		}
	}

	for _, a := range live {
		for _, b := range a.Bonds {
			union(a.ID, b.OtherID)
		}
	}

	groups := make(map[uint32][]uint32)
	for _, a := range live {
		root := find(a.ID)
		groups[root] = append(groups[root], a.ID)
	}

	out := make([][]uint32, 0, len(groups))
	for _, ids := range groups {
		out = append(out, sortedUint32(ids))
	}
	return sortFragments(out)
}

func sortedUint32(ids []uint32) []uint32 {
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
	return ids
}

// sortFragments orders fragments by ascending first-atom id, for
// deterministic output.
func sortFragments(frags [][]uint32) [][]uint32 {
	for i := 1; i < len(frags); i++ {
		for j := i; j > 0 && frags[j-1][0] > frags[j][0]; j-- {
			frags[j-1], frags[j] = frags[j], frags[j-1]
		}
	}
	return frags
}

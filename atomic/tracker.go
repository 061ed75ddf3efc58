package atomic

// CellSite is a crystallographic address: a motif-cell coordinate plus a
// site index within that cell's basis.
type CellSite struct {
	CellX, CellY, CellZ int64
	SiteIndex           int
}

// PlacedAtomTracker maintains the map (motif_cell_pos, site_index) -> atom
// id populated by the crystal-fill engine, so bond
// reconstruction and downstream edit-node provenance can resolve a lattice
// address back to a concrete atom.
type PlacedAtomTracker struct {
	byAddress map[CellSite]uint32
}

// NewPlacedAtomTracker constructs an empty tracker.
func NewPlacedAtomTracker() *PlacedAtomTracker {
	return &PlacedAtomTracker{byAddress: make(map[CellSite]uint32)}
}

// Record associates addr with atomID.
func (t *PlacedAtomTracker) Record(addr CellSite, atomID uint32) {
	t.byAddress[addr] = atomID
}

// Lookup returns the atom id placed at addr, if any.
func (t *PlacedAtomTracker) Lookup(addr CellSite) (uint32, bool) {
	id, ok := t.byAddress[addr]
	return id, ok
}

// Len returns the number of tracked addresses.
func (t *PlacedAtomTracker) Len() int { return len(t.byAddress) }

// Addresses returns the tracker's full (motif cell, site index) -> atom id
// map. Callers must not mutate the returned map.
func (t *PlacedAtomTracker) Addresses() map[CellSite]uint32 { return t.byAddress }

func (t *PlacedAtomTracker) clone() *PlacedAtomTracker {
	out := NewPlacedAtomTracker()
	for k, v := range t.byAddress {
		out.byAddress[k] = v
	}
	return out
}

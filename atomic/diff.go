package atomic

import "math"

// DefaultTolerance is the default proximity threshold (in Angstroms) used
// to resolve a diff atom to a base atom by anchor position.
const DefaultTolerance = 0.01

// AtomSource tags where an atom in a composed output structure came from,
// retained so UI tools (e.g. bond-drawing) can map a click on a rendered
// atom back to diff-space ids.
type AtomSource struct {
	Kind AtomSourceKind

	// DiffID is set for DiffMatchedBase and DiffAdded.
	DiffID uint32
	// BaseID is set for DiffMatchedBase.
	BaseID uint32
}

// AtomSourceKind is the closed set of AtomSource variants.
type AtomSourceKind int

const (
	// BasePassthrough: the atom is unmodified from the base structure.
	BasePassthrough AtomSourceKind = iota
	// DiffMatchedBase: the atom exists in the diff and was resolved to a
	// base atom by anchor proximity.
	DiffMatchedBase
	// DiffAdded: the atom has no preimage in the base; it was added by
	// the diff.
	DiffAdded
)

// AtomEditData is the editable overlay over an upstream AtomicStructure: a
// separate Structure in diff mode, plus composition flags and the
// tolerance used to resolve diff atoms to base atoms by anchor position.
type AtomEditData struct {
	Diff *Structure

	// OutputDiff is carried with the overlay as a flag only: Compose does
	// not read it and always returns the composed (base + diff) structure.
	OutputDiff bool

	// IncludeBaseBondsInDiff is carried with the overlay as a flag only:
	// Compose does not read it, and no base bonds are copied into the
	// diff's own bond list.
	IncludeBaseBondsInDiff bool

	Tolerance float64
}

// NewAtomEditData constructs an empty diff overlay with DefaultTolerance.
func NewAtomEditData() *AtomEditData {
	return &AtomEditData{
		Diff:      NewStructure(true),
		Tolerance: DefaultTolerance,
	}
}

// EvalCache is the retained result of the most recent Compose call: the
// composed output plus its per-atom provenance map, handed to the UI so
// clicks on rendered atoms can be resolved back to diff-space ids.
type EvalCache struct {
	Output  *Structure
	Sources map[uint32]AtomSource
}

// Compose re-applies d against a freshly regenerated base structure base,
// producing a fresh output structure and provenance map.
//
// Algorithm (exact, per the diff-composition contract):
//  1. Start a fresh output O = clone(base).
//  2. For each diff atom not identifiable in base (no anchor entry, or an
//     anchor whose nearest base atom exceeds Tolerance), add it to O as
//     DiffAdded.
//  3. For each diff atom with an anchor entry resolving to a base atom
//     within Tolerance, move the base atom to the diff atom's own
//     position and copy its atomic number (DiffMatchedBase); an explicit
//     "deleted" anchor entry (present in AnchorPositions but with no live
//     diff atom at that id) instead deletes the base atom from O.
//  4. For each bond recorded in d.Diff, add it to O (deduplicated).
//  5. Every base atom not touched by steps 2-4 remains BasePassthrough.
func (d *AtomEditData) Compose(base *Structure) *EvalCache {
	out := base.Clone()
	sources := make(map[uint32]AtomSource, out.NumAtomsIncludingDeleted())
	for _, a := range out.LiveAtoms() {
		sources[a.ID] = AtomSource{Kind: BasePassthrough}
	}

	matchedBase := make(map[uint32]bool)

	for _, diffAtom := range d.Diff.LiveAtoms() {
		anchor, hasAnchor := d.Diff.AnchorPositions[diffAtom.ID]
		if !hasAnchor {
			newID := out.AddAtom(diffAtom.AtomicNumber, diffAtom.Position)
			sources[newID] = AtomSource{Kind: DiffAdded, DiffID: diffAtom.ID}
			continue
		}
		baseAtom, dist, err := out.NearestAtom(anchor)
		if err != nil || dist > d.Tolerance {
			newID := out.AddAtom(diffAtom.AtomicNumber, diffAtom.Position)
			sources[newID] = AtomSource{Kind: DiffAdded, DiffID: diffAtom.ID}
			continue
		}
		if ptr, perr := out.atomPtr(baseAtom.ID); perr == nil {
			ptr.Position = diffAtom.Position
			ptr.AtomicNumber = diffAtom.AtomicNumber
		}
		sources[baseAtom.ID] = AtomSource{Kind: DiffMatchedBase, DiffID: diffAtom.ID, BaseID: baseAtom.ID}
		matchedBase[baseAtom.ID] = true
	}

	// Anchor entries with no corresponding live diff atom mark a deletion.
	for diffID, anchor := range d.Diff.AnchorPositions {
		if _, stillLive := liveIndex(d.Diff, diffID); stillLive {
			continue
		}
		if baseAtom, dist, err := out.NearestAtom(anchor); err == nil && dist <= d.Tolerance {
			_ = out.DeleteAtom(baseAtom.ID)
			sources[baseAtom.ID] = AtomSource{Kind: DiffMatchedBase, DiffID: diffID, BaseID: baseAtom.ID}
		}
	}

	for _, bond := range d.Diff.Bonds() {
		aLive, aOK := remapDiffAtom(d, out, uint32(bond[0]), matchedBase)
		bLive, bOK := remapDiffAtom(d, out, uint32(bond[1]), matchedBase)
		if aOK && bOK {
			_ = out.AddBondChecked(aLive, bLive, bond[2])
		}
	}

	return &EvalCache{Output: out, Sources: sources}
}

func liveIndex(s *Structure, id uint32) (Atom, bool) {
	a, err := s.Atom(id)
	if err != nil {
		return Atom{}, false
	}
	return a, true
}

// remapDiffAtom resolves a diff-space atom id to its id in the composed
// output, whether it was matched to a base atom or added fresh.
func remapDiffAtom(d *AtomEditData, out *Structure, diffID uint32, matchedBase map[uint32]bool) (uint32, bool) {
	if anchor, ok := d.Diff.AnchorPositions[diffID]; ok {
		if baseAtom, dist, err := out.NearestAtom(anchor); err == nil && dist <= d.Tolerance {
			return baseAtom.ID, true
		}
	}
	// Fall back to scanning provenance-free: an added atom's position
	// matches its diff source position exactly (set verbatim by Compose).
	diffAtom, err := d.Diff.Atom(diffID)
	if err != nil {
		return 0, false
	}
	best, dist, err := out.NearestAtom(diffAtom.Position)
	if err != nil || dist > 1e-9 {
		return 0, false
	}
	return best.ID, true
}

// AnchorMove records that diffAtomID's base counterpart, before any diff
// edits, sat at anchorPos — used by SetAnchor-style edit tools to mark a
// moved atom.
func (d *AtomEditData) AnchorMove(diffAtomID uint32, anchorPos Vec3) {
	if d.Diff.AnchorPositions == nil {
		d.Diff.AnchorPositions = make(map[uint32]Vec3)
	}
	d.Diff.AnchorPositions[diffAtomID] = anchorPos
}

// MarkDeleted records that the base atom anchored at anchorPos should be
// removed on composition, without needing a live diff atom at that id.
func (d *AtomEditData) MarkDeleted(phantomID uint32, anchorPos Vec3) {
	d.AnchorMove(phantomID, anchorPos)
}

// SetTolerance replaces the anchor-resolution tolerance, clamping
// negative or NaN values to zero.
func (d *AtomEditData) SetTolerance(tol float64) {
	if tol < 0 || math.IsNaN(tol) {
		tol = 0
	}
	d.Tolerance = tol
}

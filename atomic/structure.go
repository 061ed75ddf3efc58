// Package atomic implements AtomicStructure: the concrete atom/bond result
// of evaluating a geometry-to-atomic or motif-fill node, plus the diff
// overlay (AtomEditData) that lets downstream edit nodes layer edits over
// an upstream structure that may itself change shape on re-evaluation.
package atomic

import (
	"errors"
	"fmt"
	"math"
)

// ErrAtomNotFound indicates an operation referenced a tombstoned or
// out-of-range atom id.
var ErrAtomNotFound = errors.New("atomic: atom not found")

// DisplayState tags how a renderer should present an atom (a pass-through
// hint; the renderer itself is out of scope).
type DisplayState int

// The closed set of DisplayState values.
const (
	DisplayNormal DisplayState = iota
	DisplaySelected
	DisplayHidden
)

// BondSlot is one endpoint-local record of a bond: the other atom's id and
// the bond order (1=single, 2=double, 3=triple).
type BondSlot struct {
	OtherID   uint32
	BondOrder int
}

// Atom is one atom in a Structure. Bonds is kept symmetric: a bond between
// A and B appears in both A.Bonds and B.Bonds.
type Atom struct {
	ID           uint32
	AtomicNumber int16
	Position     Vec3
	Bonds        []BondSlot
	Display      DisplayState

	deleted bool
}

// Vec3 is a plain double-precision 3D vector (kept local to avoid a
// dependency on unitcell, which describes lattice frames, not atom
// positions — atoms live in world space once placed).
type Vec3 struct{ X, Y, Z float64 }

func (a Vec3) sub(b Vec3) Vec3 { return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }
func (a Vec3) add(b Vec3) Vec3 { return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
func (a Vec3) scale(s float64) Vec3 { return Vec3{a.X * s, a.Y * s, a.Z * s} }
func (a Vec3) length() float64 { return math.Sqrt(a.X*a.X + a.Y*a.Y + a.Z*a.Z) }

// Add returns a+b.
func (a Vec3) Add(b Vec3) Vec3 { return a.add(b) }

// Scale returns a*s.
func (a Vec3) Scale(s float64) Vec3 { return a.scale(s) }

// ScaleDiv returns a*(1/s), or the zero vector if s is within 1e-12 of zero.
func (a Vec3) ScaleDiv(s float64) Vec3 {
	if s > -1e-12 && s < 1e-12 {
		return Vec3{}
	}
	return a.scale(1 / s)
}

// FrameTransform is a rigid pose (rotation + translation) attached to a
// Structure, giving downstream gadgets a convenience origin.
type FrameTransform struct {
	Translation Vec3
	// Rotation is stored as a 3x3 row-major matrix; identity by default.
	Rotation [3][3]float64
}

// IdentityFrame returns the identity FrameTransform.
func IdentityFrame() FrameTransform {
	return FrameTransform{Rotation: [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}}
}

// Structure holds a dense, tombstone-stable atom table and its symmetric
// bond adjacency.
//
// Lifecycle: atom ids are assigned sequentially by AddAtom and are never
// reused; DeleteAtom marks a tombstone slot rather than compacting the
// table, so ids remain stable for the lifetime of one Structure value
// (padding slots preserve round-trip fidelity across persistence).
type Structure struct {
	atoms []Atom // index i holds the atom with ID i; deleted atoms keep a tombstone

	// DiffMode marks this Structure as the overlay half of an AtomEditData
	// (see diff.go). It does not change AddAtom/DeleteAtom semantics; it is
	// consulted by the diff-composition algorithm.
	DiffMode bool

	FrameTransform FrameTransform

	// AnchorPositions overrides a diff-mode atom's gadget-hint position
	// (keyed by diff-local atom id). Populated by the diff layer, not by
	// ordinary atom placement.
	AnchorPositions map[uint32]Vec3

	// Tracker maintains the (motif cell, site index) -> atom id map used
	// by crystal fill; nil for structures that were not produced by a
	// fill operation.
	Tracker *PlacedAtomTracker
}

// NewStructure constructs an empty Structure. diffMode marks it as the
// overlay half of an AtomEditData.
func NewStructure(diffMode bool) *Structure {
	return &Structure{
		DiffMode:       diffMode,
		FrameTransform: IdentityFrame(),
	}
}

// AddAtom appends a new live atom and returns its id.
//
// Complexity: amortized O(1).
func (s *Structure) AddAtom(atomicNumber int16, pos Vec3) uint32 {
	id := uint32(len(s.atoms))
	s.atoms = append(s.atoms, Atom{ID: id, AtomicNumber: atomicNumber, Position: pos})
	return id
}

// DeleteAtom marks id as a tombstone, removing it (and every bond incident
// to it) from the live view. The slot itself remains so later ids stay
// stable.
//
// Errors:
//   - ErrAtomNotFound if id is out of range or already deleted.
func (s *Structure) DeleteAtom(id uint32) error {
	a, err := s.atomPtr(id)
	if err != nil {
		return err
	}
	for _, slot := range a.Bonds {
		if other, oerr := s.atomPtr(slot.OtherID); oerr == nil {
			other.Bonds = removeBondSlot(other.Bonds, id)
		}
	}
	a.Bonds = nil
	a.deleted = true
	return nil
}

func removeBondSlot(slots []BondSlot, otherID uint32) []BondSlot {
	out := slots[:0]
	for _, s := range slots {
		if s.OtherID != otherID {
			out = append(out, s)
		}
	}
	return out
}

func (s *Structure) atomPtr(id uint32) (*Atom, error) {
	if int(id) >= len(s.atoms) || s.atoms[id].deleted {
		return nil, fmt.Errorf("atomic: atom %d: %w", id, ErrAtomNotFound)
	}
	return &s.atoms[id], nil
}

// Atom returns a copy of the live atom with id, or ErrAtomNotFound.
func (s *Structure) Atom(id uint32) (Atom, error) {
	a, err := s.atomPtr(id)
	if err != nil {
		return Atom{}, err
	}
	return *a, nil
}

// AddBondChecked adds a symmetric bond between a and b with the given
// order, silently deduplicating if the bond already exists (updating its
// order to the new value).
//
// Errors:
//   - ErrAtomNotFound if either endpoint does not exist.
func (s *Structure) AddBondChecked(a, b uint32, order int) error {
	if a == b {
		return nil
	}
	pa, err := s.atomPtr(a)
	if err != nil {
		return err
	}
	pb, err := s.atomPtr(b)
	if err != nil {
		return err
	}
	if idx := findBondSlot(pa.Bonds, b); idx >= 0 {
		pa.Bonds[idx].BondOrder = order
		pb.Bonds[findBondSlot(pb.Bonds, a)].BondOrder = order
		return nil
	}
	pa.Bonds = append(pa.Bonds, BondSlot{OtherID: b, BondOrder: order})
	pb.Bonds = append(pb.Bonds, BondSlot{OtherID: a, BondOrder: order})
	return nil
}

func findBondSlot(slots []BondSlot, otherID uint32) int {
	for i, s := range slots {
		if s.OtherID == otherID {
			return i
		}
	}
	return -1
}

// LiveAtoms returns every non-deleted atom, ordered by ascending id.
func (s *Structure) LiveAtoms() []Atom {
	out := make([]Atom, 0, len(s.atoms))
	for _, a := range s.atoms {
		if !a.deleted {
			out = append(out, a)
		}
	}
	return out
}

// NumAtoms returns the count of live atoms.
func (s *Structure) NumAtoms() int {
	n := 0
	for _, a := range s.atoms {
		if !a.deleted {
			n++
		}
	}
	return n
}

// NumAtomsIncludingDeleted returns the total slot count, tombstones
// included.
func (s *Structure) NumAtomsIncludingDeleted() int { return len(s.atoms) }

// NearestAtom returns the live atom whose position is closest to p, and
// the distance. Used both for ray-picking and diff identity resolution.
//
// Returns ErrAtomNotFound if the structure has no live atoms.
func (s *Structure) NearestAtom(p Vec3) (Atom, float64, error) {
	var best Atom
	bestDist := math.Inf(1)
	found := false
	for _, a := range s.atoms {
		if a.deleted {
			continue
		}
		d := a.Position.sub(p).length()
		if d < bestDist {
			bestDist = d
			best = a
			found = true
		}
	}
	if !found {
		return Atom{}, 0, ErrAtomNotFound
	}
	return best, bestDist, nil
}

// Clone returns a deep copy of s.
func (s *Structure) Clone() *Structure {
	out := &Structure{
		DiffMode:       s.DiffMode,
		FrameTransform: s.FrameTransform,
		atoms:          make([]Atom, len(s.atoms)),
	}
	for i, a := range s.atoms {
		out.atoms[i] = a
		out.atoms[i].Bonds = append([]BondSlot(nil), a.Bonds...)
	}
	if s.AnchorPositions != nil {
		out.AnchorPositions = make(map[uint32]Vec3, len(s.AnchorPositions))
		for k, v := range s.AnchorPositions {
			out.AnchorPositions[k] = v
		}
	}
	if s.Tracker != nil {
		out.Tracker = s.Tracker.clone()
	}
	return out
}

// Bonds returns every live bond exactly once, as (lower id, higher id,
// order) triples grouped by ascending lower id; within one group the
// triples follow the order in which the bonds were added.
func (s *Structure) Bonds() [][3]int {
	var out [][3]int
	for _, a := range s.atoms {
		if a.deleted {
			continue
		}
		for _, slot := range a.Bonds {
			if a.ID < slot.OtherID {
				out = append(out, [3]int{int(a.ID), int(slot.OtherID), slot.BondOrder})
			}
		}
	}
	return out
}

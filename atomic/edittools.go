package atomic

import "errors"

// ErrSameAtomTwice indicates the AddBond tool's second click landed on the
// same atom as its first, which cancels the pending bond instead of
// creating a self-loop.
var ErrSameAtomTwice = errors.New("atomic: AddBond: same atom clicked twice, cancelling")

// ensureDiffAtom resolves a click that landed on atom id into a live
// diff-space atom id. An id that is already a live diff atom (added or
// anchored) is returned as is; any other id (a base-structure atom never
// before touched by the diff) is materialized as a new diff atom anchored
// at clickedPos on first interaction.
func (d *AtomEditData) ensureDiffAtom(clickedID uint32, clickedPos Vec3, atomicNumber int16) uint32 {
	if _, err := d.Diff.Atom(clickedID); err == nil {
		return clickedID
	}
	newID := d.Diff.AddAtom(atomicNumber, clickedPos)
	d.AnchorMove(newID, clickedPos)
	return newID
}

// ApplyDefault replaces the atomic number of every clicked atom.
func (d *AtomEditData) ApplyDefault(clicks []struct {
	ID           uint32
	Position     Vec3
	AtomicNumber int16
}, newAtomicNumber int16) {
	for _, c := range clicks {
		diffID := d.ensureDiffAtom(c.ID, c.Position, c.AtomicNumber)
		if ptr, err := d.Diff.atomPtr(diffID); err == nil {
			ptr.AtomicNumber = newAtomicNumber
		}
	}
}

// ApplyAddAtom appends a new atom at pos with the given atomic number,
// directly to the diff (no anchor entry — it has no base counterpart).
func (d *AtomEditData) ApplyAddAtom(pos Vec3, atomicNumber int16) uint32 {
	return d.Diff.AddAtom(atomicNumber, pos)
}

// BondToolState holds the first-click state for the two-click AddBond
// workflow.
type BondToolState struct {
	pending    uint32
	hasPending bool
}

// Click advances the AddBond tool's state machine. The first call on a
// fresh BondToolState stores clickedID as the pending atom and returns
// (0,false,nil). The second call either emits a new bond of multiplicity 1
// between the pending atom and clickedID (clearing the pending state), or,
// if clickedID equals the pending atom, cancels the pending bond and
// returns ErrSameAtomTwice.
func (st *BondToolState) Click(d *AtomEditData, clickedID uint32, clickedPos Vec3, atomicNumber int16) (bondAdded bool, err error) {
	diffID := d.ensureDiffAtom(clickedID, clickedPos, atomicNumber)

	if !st.hasPending {
		st.pending = diffID
		st.hasPending = true
		return false, nil
	}

	first := st.pending
	st.hasPending = false

	if first == diffID {
		return false, ErrSameAtomTwice
	}

	if aerr := d.Diff.AddBondChecked(first, diffID, 1); aerr != nil {
		return false, aerr
	}
	return true, nil
}

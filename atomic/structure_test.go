package atomic_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanocad-org/structkit/atomic"
)

func TestStructure_AddAtomAndBond(t *testing.T) {
	s := atomic.NewStructure(false)
	a := s.AddAtom(6, atomic.Vec3{})
	b := s.AddAtom(6, atomic.Vec3{X: 1.5})

	require.NoError(t, s.AddBondChecked(a, b, 1))
	require.NoError(t, s.AddBondChecked(a, b, 1)) // dedup

	atomA, err := s.Atom(a)
	require.NoError(t, err)
	assert.Len(t, atomA.Bonds, 1)

	atomB, err := s.Atom(b)
	require.NoError(t, err)
	assert.Len(t, atomB.Bonds, 1)
	assert.Equal(t, a, atomB.Bonds[0].OtherID)
}

func TestStructure_DeleteAtomRemovesIncidentBonds(t *testing.T) {
	s := atomic.NewStructure(false)
	a := s.AddAtom(6, atomic.Vec3{})
	b := s.AddAtom(6, atomic.Vec3{X: 1})
	c := s.AddAtom(6, atomic.Vec3{X: 2})
	require.NoError(t, s.AddBondChecked(a, b, 1))
	require.NoError(t, s.AddBondChecked(b, c, 1))

	require.NoError(t, s.DeleteAtom(b))

	assert.Equal(t, 2, s.NumAtoms())
	assert.Equal(t, 3, s.NumAtomsIncludingDeleted())

	atomA, err := s.Atom(a)
	require.NoError(t, err)
	assert.Empty(t, atomA.Bonds)

	_, err = s.Atom(b)
	assert.ErrorIs(t, err, atomic.ErrAtomNotFound)
}

func TestStructure_NearestAtom(t *testing.T) {
	s := atomic.NewStructure(false)
	s.AddAtom(6, atomic.Vec3{X: 0})
	far := s.AddAtom(6, atomic.Vec3{X: 10})

	nearest, dist, err := s.NearestAtom(atomic.Vec3{X: 9.9})
	require.NoError(t, err)
	assert.Equal(t, far, nearest.ID)
	assert.InDelta(t, 0.1, dist, 1e-9)
}

func TestConnectedFragments(t *testing.T) {
	s := atomic.NewStructure(false)
	a := s.AddAtom(6, atomic.Vec3{})
	b := s.AddAtom(6, atomic.Vec3{X: 1})
	c := s.AddAtom(6, atomic.Vec3{X: 10})
	require.NoError(t, s.AddBondChecked(a, b, 1))
	_ = c

	frags := s.ConnectedFragments()
	require.Len(t, frags, 2)
	assert.Equal(t, []uint32{a, b}, frags[0])
	assert.Equal(t, []uint32{c}, frags[1])
}

func TestDiffCompose_EmptyDiffIsIdentity(t *testing.T) {
	base := atomic.NewStructure(false)
	base.AddAtom(6, atomic.Vec3{})
	base.AddAtom(8, atomic.Vec3{X: 1})

	d := atomic.NewAtomEditData()
	cache := d.Compose(base)

	assert.Equal(t, base.NumAtoms(), cache.Output.NumAtoms())
	for _, a := range cache.Output.LiveAtoms() {
		assert.Equal(t, atomic.BasePassthrough, cache.Sources[a.ID].Kind)
	}
}

func TestDiffCompose_AddedAtomSurvivesBaseRegeneration(t *testing.T) {
	base1 := atomic.NewStructure(false)
	base1.AddAtom(6, atomic.Vec3{})

	d := atomic.NewAtomEditData()
	d.ApplyAddAtom(atomic.Vec3{X: 5}, 7)

	cache1 := d.Compose(base1)
	assert.Equal(t, 2, cache1.Output.NumAtoms())

	base2 := atomic.NewStructure(false)
	base2.AddAtom(6, atomic.Vec3{})
	base2.AddAtom(6, atomic.Vec3{X: 1}) // base grew a new atom upstream

	cache2 := d.Compose(base2)
	assert.Equal(t, 3, cache2.Output.NumAtoms())
}

func TestBondToolState_SameAtomCancels(t *testing.T) {
	d := atomic.NewAtomEditData()
	id := d.ApplyAddAtom(atomic.Vec3{}, 6)

	var st atomic.BondToolState
	added, err := st.Click(d, id, atomic.Vec3{}, 6)
	assert.False(t, added)
	assert.NoError(t, err)

	added, err = st.Click(d, id, atomic.Vec3{}, 6)
	assert.False(t, added)
	assert.ErrorIs(t, err, atomic.ErrSameAtomTwice)
}

func TestBondToolState_TwoClicksAddBond(t *testing.T) {
	d := atomic.NewAtomEditData()
	a := d.ApplyAddAtom(atomic.Vec3{}, 6)
	b := d.ApplyAddAtom(atomic.Vec3{X: 1}, 6)

	var st atomic.BondToolState
	_, err := st.Click(d, a, atomic.Vec3{}, 6)
	require.NoError(t, err)
	added, err := st.Click(d, b, atomic.Vec3{X: 1}, 6)
	require.NoError(t, err)
	assert.True(t, added)

	atomA, err := d.Diff.Atom(a)
	require.NoError(t, err)
	assert.Len(t, atomA.Bonds, 1)
}

func TestDiffCompose_DeletionRemovesAtomAndBonds(t *testing.T) {
	base := atomic.NewStructure(false)
	a := base.AddAtom(6, atomic.Vec3{})
	b := base.AddAtom(6, atomic.Vec3{X: 1})
	c := base.AddAtom(6, atomic.Vec3{X: 2})
	require.NoError(t, base.AddBondChecked(a, b, 1))
	require.NoError(t, base.AddBondChecked(b, c, 1))

	// An anchor entry with no live diff atom at that id marks a deletion.
	d := atomic.NewAtomEditData()
	d.MarkDeleted(0, atomic.Vec3{X: 1})

	cache := d.Compose(base)
	assert.Equal(t, 2, cache.Output.NumAtoms())
	assert.Empty(t, cache.Output.Bonds())

	_, err := cache.Output.Atom(b)
	assert.ErrorIs(t, err, atomic.ErrAtomNotFound)
}

func TestDiffCompose_MovedAtomFollowsDiffPosition(t *testing.T) {
	base := atomic.NewStructure(false)
	base.AddAtom(6, atomic.Vec3{})
	moved := base.AddAtom(6, atomic.Vec3{X: 1})

	d := atomic.NewAtomEditData()
	diffID := d.Diff.AddAtom(6, atomic.Vec3{X: 1.5})
	d.AnchorMove(diffID, atomic.Vec3{X: 1})

	cache := d.Compose(base)
	assert.Equal(t, 2, cache.Output.NumAtoms())

	out, err := cache.Output.Atom(moved)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, out.Position.X, 1e-12)
	assert.Equal(t, atomic.DiffMatchedBase, cache.Sources[moved].Kind)
}

package motif_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanocad-org/structkit/motif"
)

func TestBuildMotif_WiresSitesAndBonds(t *testing.T) {
	var a, b int
	m, err := motif.BuildMotif(nil,
		motif.AddSite(6, motif.FracVec3{}, &a),
		motif.AddSite(6, motif.FracVec3{X: 0.5}, &b),
		motif.AddBond(motif.SiteSpecifier{SiteIndex: a}, motif.SiteSpecifier{SiteIndex: b}, 1),
	)
	require.NoError(t, err)
	assert.Len(t, m.Sites, 2)
	assert.Len(t, m.Bonds, 1)
}

func TestBuildMotif_OutOfRangeBondFails(t *testing.T) {
	_, err := motif.BuildMotif(nil,
		motif.AddBond(motif.SiteSpecifier{SiteIndex: 0}, motif.SiteSpecifier{SiteIndex: 1}, 1),
	)
	assert.Error(t, err)
}

func TestDiamond_ConventionalCell(t *testing.T) {
	d := motif.Diamond()
	assert.Len(t, d.Sites, 8)
	assert.Len(t, d.Bonds, 16)
	for _, s := range d.Sites {
		assert.Equal(t, int16(6), s.AtomicNumber)
	}

	// Every site is sp3: exactly four bonds counting both adjacency
	// directions.
	for i := range d.Sites {
		total := len(d.BondsBySite1Index[i]) + len(d.BondsBySite2Index[i])
		assert.Equal(t, 4, total, "site %d", i)
	}
}

func TestZincblende_ParameterizedSublattices(t *testing.T) {
	z := motif.Zincblende()
	require.Len(t, z.Parameters, 2)
	require.Len(t, z.Sites, 8)
	eff := z.EffectiveParameterElementValues(nil)
	cation, err := z.ResolveAtomicNumber(z.Sites[0], eff)
	require.NoError(t, err)
	anion, err := z.ResolveAtomicNumber(z.Sites[4], eff)
	require.NoError(t, err)
	assert.Equal(t, int16(31), cation)
	assert.Equal(t, int16(33), anion)
}

func TestGraphene_HoneycombBonds(t *testing.T) {
	g := motif.Graphene()
	assert.Len(t, g.Sites, 2)
	assert.Len(t, g.Bonds, 3)
}

package cnndio_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanocad-org/structkit/atomic"
	"github.com/nanocad-org/structkit/cnndio"
)

func TestWriteThenReadXYZRoundTrips(t *testing.T) {
	s := atomic.NewStructure(false)
	s.AddAtom(6, atomic.Vec3{X: 0, Y: 0, Z: 0})
	s.AddAtom(1, atomic.Vec3{X: 1.5, Y: 0, Z: 0})

	var buf bytes.Buffer
	require.NoError(t, cnndio.WriteXYZ(&buf, s, "methylidyne fragment"))

	parsed, err := cnndio.ReadXYZ(&buf)
	require.NoError(t, err)
	atoms := parsed.LiveAtoms()
	require.Len(t, atoms, 2)
	assert.Equal(t, int16(6), atoms[0].AtomicNumber)
	assert.Equal(t, int16(1), atoms[1].AtomicNumber)
	assert.InDelta(t, 1.5, atoms[1].Position.X, 1e-6)
}

func TestReadXYZNormalizesWhitespace(t *testing.T) {
	text := "1\ncomment\nC    0.0   0.0    0.0\n"
	parsed, err := cnndio.ReadXYZ(strings.NewReader(text))
	require.NoError(t, err)
	assert.Len(t, parsed.LiveAtoms(), 1)
}

func TestReadXYZRejectsUnknownSymbol(t *testing.T) {
	text := "1\ncomment\nXx 0.0 0.0 0.0\n"
	_, err := cnndio.ReadXYZ(strings.NewReader(text))
	assert.ErrorIs(t, err, cnndio.ErrUnknownElement)
}

func TestReadPDBParsesAtomRecords(t *testing.T) {
	line := "ATOM      1  CA  ALA A   1       0.000   1.500   3.000  1.00  0.00           C"
	parsed, err := cnndio.ReadPDB(strings.NewReader(line + "\n"))
	require.NoError(t, err)
	atoms := parsed.LiveAtoms()
	require.Len(t, atoms, 1)
	assert.Equal(t, int16(6), atoms[0].AtomicNumber)
	assert.InDelta(t, 1.5, atoms[0].Position.Y, 1e-6)
}

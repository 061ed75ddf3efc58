package navhistory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanocad-org/structkit/navhistory"
)

func TestVisitAndBackForward(t *testing.T) {
	h := navhistory.New()
	_, ok := h.Current()
	require.False(t, ok)

	h.Visit("main")
	h.Visit("sub1")
	h.Visit("sub2")

	cur, ok := h.Current()
	require.True(t, ok)
	assert.Equal(t, "sub2", cur)

	cur, _ = h.Back()
	assert.Equal(t, "sub1", cur)
	cur, _ = h.Back()
	assert.Equal(t, "main", cur)
	assert.False(t, h.CanBack())

	cur, _ = h.Forward()
	assert.Equal(t, "sub1", cur)
}

func TestVisitTruncatesForwardHistory(t *testing.T) {
	h := navhistory.New()
	h.Visit("a")
	h.Visit("b")
	h.Visit("c")
	h.Back()
	h.Back()

	h.Visit("d")
	assert.False(t, h.CanForward())
	cur, _ := h.Current()
	assert.Equal(t, "d", cur)
	assert.Equal(t, 2, h.Len())
}

func TestRenameNetwork(t *testing.T) {
	h := navhistory.New()
	h.Visit("a")
	h.Visit("b")
	h.RenameNetwork("a", "a2")

	h.Back()
	cur, _ := h.Current()
	assert.Equal(t, "a2", cur)
}

func TestRemoveNetworkClampsIndex(t *testing.T) {
	h := navhistory.New()
	h.Visit("a")
	h.Visit("b")
	h.Visit("c")

	h.RemoveNetwork("c")
	cur, ok := h.Current()
	require.True(t, ok)
	assert.Equal(t, "b", cur)

	h.RemoveNetwork("a")
	h.RemoveNetwork("b")
	_, ok = h.Current()
	assert.False(t, ok)
}

package refresh_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nanocad-org/structkit/refresh"
)

func TestLightweightByDefault(t *testing.T) {
	c := refresh.NewCoordinator()
	mode, touched := c.Flush()
	assert.Equal(t, refresh.ModeLightweight, mode)
	assert.Empty(t, touched)
}

func TestDataChangedEscalatesToPartial(t *testing.T) {
	c := refresh.NewCoordinator()
	c.DataChanged(5)
	mode, touched := c.Flush()
	assert.Equal(t, refresh.ModePartial, mode)
	assert.Equal(t, []uint64{5}, touched)
}

func TestTopologyChangedEscalatesToFullAndNeverDowngrades(t *testing.T) {
	c := refresh.NewCoordinator()
	c.DataChanged(1)
	c.TopologyChanged()
	c.VisibilityChanged(2)
	mode, _ := c.Flush()
	assert.Equal(t, refresh.ModeFull, mode)
}

func TestFlushResetsState(t *testing.T) {
	c := refresh.NewCoordinator()
	c.TopologyChanged()
	c.Flush()
	mode, touched := c.Flush()
	assert.Equal(t, refresh.ModeLightweight, mode)
	assert.Empty(t, touched)
}

func TestSelectionChangeTracksBothIDs(t *testing.T) {
	c := refresh.NewCoordinator()
	c.SelectionChanged(1, true, 2, true)
	sel := c.LastSelection()
	assert.Equal(t, uint64(1), sel.PreviousID)
	assert.Equal(t, uint64(2), sel.CurrentID)
	_, touched := c.Flush()
	assert.ElementsMatch(t, []uint64{1, 2}, touched)
}

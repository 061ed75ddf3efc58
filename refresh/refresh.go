// Package refresh implements the minimal-invalidation policy that
// decides, from a batch of accumulated mutations, whether the next
// evaluator pass needs a full re-evaluation, a partial one scoped to a
// dependency cone, or none at all beyond gadget re-tessellation.
//
// A tiny three-state accumulator over map[uint64]struct{} sets; nothing
// here touches evaluation itself, only the scope decision.
package refresh

// Mode is the refresh scope the coordinator has settled on for the next
// evaluator pass.
type Mode int

// The closed set of Mode values, ordered from cheapest to most expensive;
// Mode itself is monotonic within one accumulation window (escalate never
// downgrades).
const (
	ModeLightweight Mode = iota
	ModePartial
	ModeFull
)

// String renders m for diagnostics.
func (m Mode) String() string {
	switch m {
	case ModeLightweight:
		return "Lightweight"
	case ModePartial:
		return "Partial"
	case ModeFull:
		return "Full"
	default:
		return "Unknown"
	}
}

// SelectionChange carries both the previously- and currently-selected node
// id, so a downstream cache keyed by selected node (e.g.
// evaluator.Context.SelectedNodeEvalCache) can be invalidated precisely
// rather than wholesale.
type SelectionChange struct {
	PreviousID  uint64
	HasPrevious bool
	CurrentID   uint64
	HasCurrent  bool
}

// Coordinator accumulates touched-node sets between flushes and reports
// the minimal Mode the evaluator driver needs to honor them.
//
// Concurrency: Coordinator is not safe for concurrent use (it is owned,
// like the NodeNetwork it tracks, by the single designer thread).
type Coordinator struct {
	mode Mode

	visibilityChanged map[uint64]struct{}
	dataChanged       map[uint64]struct{}
	touched           map[uint64]struct{}

	lastSelection SelectionChange
}

// NewCoordinator constructs an empty Coordinator at ModeLightweight.
func NewCoordinator() *Coordinator {
	return &Coordinator{
		visibilityChanged: make(map[uint64]struct{}),
		dataChanged:       make(map[uint64]struct{}),
		touched:           make(map[uint64]struct{}),
	}
}

// escalate raises the accumulated mode to at least m (never downgrades).
func (c *Coordinator) escalate(m Mode) {
	if m > c.mode {
		c.mode = m
	}
}

// VisibilityChanged marks id's display flag as touched: escalates to at
// least Partial (the node's own gadget must re-tessellate, and everything
// downstream of it that depends on display state must re-evaluate).
func (c *Coordinator) VisibilityChanged(id uint64) {
	c.visibilityChanged[id] = struct{}{}
	c.touched[id] = struct{}{}
	c.escalate(ModePartial)
}

// DataChanged marks id's NodeData as touched: escalates to at least
// Partial, since id's dependency cone must re-evaluate.
func (c *Coordinator) DataChanged(id uint64) {
	c.dataChanged[id] = struct{}{}
	c.touched[id] = struct{}{}
	c.escalate(ModePartial)
}

// TopologyChanged marks that nodes/wires themselves were added, removed,
// or reconnected: escalates to Full, since the dependency cone of a
// topology edit cannot be soundly bounded by the touched-node set alone.
func (c *Coordinator) TopologyChanged() {
	c.escalate(ModeFull)
}

// SelectionChanged records a UI selection transition; it does not by
// itself escalate beyond Lightweight (selection alone does not invalidate
// evaluated geometry), but callers needing to flush a selected-node cache
// consult LastSelection after Flush.
func (c *Coordinator) SelectionChanged(previous uint64, hasPrevious bool, current uint64, hasCurrent bool) {
	c.lastSelection = SelectionChange{PreviousID: previous, HasPrevious: hasPrevious, CurrentID: current, HasCurrent: hasCurrent}
	if hasPrevious {
		c.touched[previous] = struct{}{}
	}
	if hasCurrent {
		c.touched[current] = struct{}{}
	}
}

// TouchedNodeIDs returns the union of visibility-changed, data-changed,
// and selection-touched node ids accumulated since the last Flush — the
// dependency-cone roots a Partial refresh must re-evaluate from.
func (c *Coordinator) TouchedNodeIDs() []uint64 {
	out := make([]uint64, 0, len(c.touched))
	for id := range c.touched {
		out = append(out, id)
	}
	return sortUint64(out)
}

// Mode returns the accumulated refresh mode since the last Flush.
func (c *Coordinator) Mode() Mode { return c.mode }

// LastSelection returns the most recent SelectionChanged call's payload.
func (c *Coordinator) LastSelection() SelectionChange { return c.lastSelection }

// Flush returns the accumulated Mode and touched-node set, then resets the
// Coordinator to an empty ModeLightweight state for the next accumulation
// window. The evaluator driver calls this once per refresh tick.
func (c *Coordinator) Flush() (Mode, []uint64) {
	mode := c.mode
	touched := c.TouchedNodeIDs()
	c.mode = ModeLightweight
	c.visibilityChanged = make(map[uint64]struct{})
	c.dataChanged = make(map[uint64]struct{})
	c.touched = make(map[uint64]struct{})
	return mode, touched
}

func sortUint64(s []uint64) []uint64 {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
	return s
}

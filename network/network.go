// Package network implements NodeNetwork: a typed, mutex-guarded directed
// graph of node-graph operators, with multi-input array pins, topological
// ordering, and display/return-node bookkeeping.
//
// Unlike a generic string-keyed adjacency graph, wiring here is per-pin: a
// wire carries a (srcID, outIdx) pair into a destination's (inIdx) pin,
// and connecting must reject a type-incompatible pin, not just a cycle.
package network

import (
	"errors"
	"fmt"
	"sync"

	"github.com/nanocad-org/structkit/dtype"
)

// Sentinel errors for network mutation.
var (
	ErrNodeNotFound       = errors.New("network: node not found")
	ErrCycle              = errors.New("network: connection would create a cycle")
	ErrPinIncompatible    = errors.New("network: wire source type incompatible with destination pin")
	ErrPinIndexOutOfRange = errors.New("network: pin index out of range")
	ErrSingleWireOccupied = errors.New("network: single-wire input pin already has a wire")
)

// NodeData is the custom per-node-type hook surface: every node type owns
// its own data layout and behavior behind these five methods, so the
// network and evaluator stay agnostic to what any particular node computes.
type NodeData interface {
	// CalculateCustomNodeType re-derives this node's synthesized NodeType
	// (used by nodes whose output type depends on their data, e.g. a
	// parameter node's declared DataType). Returns ok=false if the node's
	// type is fixed and never varies with data.
	CalculateCustomNodeType() (dtype.DataType, bool)

	// Eval implements the node's own computation given already-evaluated
	// argument values; the evaluator calls this for any node type that
	// isn't special-cased (parameter, closure, subnetwork instantiation).
	Eval(args []dtype.NetworkResult) dtype.NetworkResult

	// GetSubtitle renders a short one-line status string for display.
	GetSubtitle() string

	// GetTextProperties/SetTextProperties produce/consume this node's
	// text-format property map; a NodeData that has no properties may
	// return a nil map and ignore SetTextProperties.
	GetTextProperties() map[string]string
	SetTextProperties(map[string]string)
}

// Position is a 2D canvas placement (display-only; does not affect
// evaluation).
type Position struct{ X, Y float64 }

// PinBinding is the ordered set of wires feeding one input pin: at most one
// element for a single-wire pin, any number for an Array(T) pin.
//
// Insertion order is the evaluation order of a multi-wire pin, so a Go map
// alone (randomized iteration) cannot hold it: wires is the ordered slice
// of truth; present mirrors it for O(1) membership checks during
// Connect/Disconnect.
type PinBinding struct {
	wires   []Wire
	present map[Wire]struct{}
}

// Wire identifies one connection's source.
type Wire struct {
	SrcID  uint64
	OutIdx int
}

// Wires returns the pin's wires in insertion order. Callers must not
// mutate the returned slice.
func (p *PinBinding) Wires() []Wire { return p.wires }

func (p *PinBinding) add(w Wire) bool {
	if p.present == nil {
		p.present = make(map[Wire]struct{})
	}
	if _, ok := p.present[w]; ok {
		return false
	}
	p.present[w] = struct{}{}
	p.wires = append(p.wires, w)
	return true
}

func (p *PinBinding) remove(w Wire) bool {
	if _, ok := p.present[w]; !ok {
		return false
	}
	delete(p.present, w)
	for i, e := range p.wires {
		if e == w {
			p.wires = append(p.wires[:i], p.wires[i+1:]...)
			break
		}
	}
	return true
}

// NodeType describes a node's static pin shape, used to type-check wiring
// (the registry supplies the built-in catalog; a user network's own
// synthesized NodeType is computed by the validator).
type NodeType struct {
	Name      string
	InputName []string
	InputType []dtype.DataType
	Output    dtype.DataType
}

// Node is one vertex of a NodeNetwork.
type Node struct {
	ID       uint64
	TypeName string
	Position Position
	Data     NodeData

	// Inputs holds one PinBinding per input pin, parallel to the node's
	// resolved NodeType.InputType.
	Inputs []PinBinding
}

// NodeNetwork is a thread-safe typed node graph.
type NodeNetwork struct {
	mu sync.RWMutex

	nextID uint64
	nodes  map[uint64]*Node

	returnNodeID     uint64
	hasReturnNode    bool
	displayedNodeIDs map[uint64]bool

	// resolveType looks up a node's NodeType by TypeName; injected so this
	// package has no import-time dependency on registry (which itself
	// references network types for subnetworks).
	resolveType func(typeName string) (NodeType, bool)
}

// NetworkOption configures a NodeNetwork at construction.
type NetworkOption func(*NodeNetwork)

// WithNextID seeds the node-id counter (used by deserialization to resume
// numbering after the highest id in a loaded network).
func WithNextID(id uint64) NetworkOption {
	return func(n *NodeNetwork) { n.nextID = id }
}

// WithTypeResolver installs the type-resolution callback Connect uses for
// pin-compatibility checks.
func WithTypeResolver(resolve func(typeName string) (NodeType, bool)) NetworkOption {
	return func(n *NodeNetwork) { n.resolveType = resolve }
}

// NewNodeNetwork constructs an empty network.
func NewNodeNetwork(opts ...NetworkOption) *NodeNetwork {
	n := &NodeNetwork{
		nodes:            make(map[uint64]*Node),
		displayedNodeIDs: make(map[uint64]bool),
		resolveType:      func(string) (NodeType, bool) { return NodeType{}, false },
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// AddNode appends a new node and returns its id.
func (n *NodeNetwork) AddNode(typeName string, pos Position, arity int, data NodeData) uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	n.nodes[id] = &Node{
		ID:       id,
		TypeName: typeName,
		Position: pos,
		Data:     data,
		Inputs:   make([]PinBinding, arity),
	}
	return id
}

// RemoveNode deletes id, severing every wire incident to it (as a source
// or a destination) and clearing return/display references.
func (n *NodeNetwork) RemoveNode(id uint64) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, ok := n.nodes[id]; !ok {
		return fmt.Errorf("network: RemoveNode(%d): %w", id, ErrNodeNotFound)
	}
	delete(n.nodes, id)
	delete(n.displayedNodeIDs, id)
	if n.hasReturnNode && n.returnNodeID == id {
		n.hasReturnNode = false
	}
	for _, other := range n.nodes {
		for i := range other.Inputs {
			other.Inputs[i].removeSource(id)
		}
	}
	return nil
}

func (p *PinBinding) removeSource(srcID uint64) {
	if p.present == nil {
		return
	}
	kept := p.wires[:0]
	for _, w := range p.wires {
		if w.SrcID == srcID {
			delete(p.present, w)
			continue
		}
		kept = append(kept, w)
	}
	p.wires = kept
}

// Connect adds a wire from (srcID,outIdx) into (dstID,inIdx), rejecting the
// mutation (network left unchanged) if it would create a cycle, violate
// pin-type compatibility, or overflow a single-wire pin.
func (n *NodeNetwork) Connect(srcID uint64, outIdx int, dstID uint64, inIdx int) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	src, ok := n.nodes[srcID]
	if !ok {
		return fmt.Errorf("network: Connect: src %d: %w", srcID, ErrNodeNotFound)
	}
	dst, ok := n.nodes[dstID]
	if !ok {
		return fmt.Errorf("network: Connect: dst %d: %w", dstID, ErrNodeNotFound)
	}
	if inIdx < 0 || inIdx >= len(dst.Inputs) {
		return fmt.Errorf("network: Connect: input index %d: %w", inIdx, ErrPinIndexOutOfRange)
	}

	srcType, _ := n.resolveType(src.TypeName)
	dstType, _ := n.resolveType(dst.TypeName)

	// A node whose data synthesizes a custom output type (e.g. a parameter
	// node's declared DataType) overrides the catalog's static output.
	srcOut := srcType.Output
	if src.Data != nil {
		if custom, hasCustom := src.Data.CalculateCustomNodeType(); hasCustom {
			srcOut = custom
		}
	}

	if inIdx < len(dstType.InputType) && outIdx == 0 {
		// An Array(T) pin accepts any number of wires, each carrying a T;
		// every other pin accepts exactly one wire of its own type.
		want := dstType.InputType[inIdx]
		if want.AcceptsMultiWire() {
			if want.Elem != nil && !srcOut.CompatibleWith(*want.Elem) {
				return fmt.Errorf("network: Connect: %w", ErrPinIncompatible)
			}
		} else {
			if !srcOut.CompatibleWith(want) {
				return fmt.Errorf("network: Connect: %w", ErrPinIncompatible)
			}
			if len(dst.Inputs[inIdx].wires) > 0 {
				return fmt.Errorf("network: Connect: %w", ErrSingleWireOccupied)
			}
		}
	}

	w := Wire{SrcID: srcID, OutIdx: outIdx}
	if !dst.Inputs[inIdx].add(w) {
		return nil // already connected; idempotent
	}
	if n.hasCycleLocked() {
		dst.Inputs[inIdx].remove(w)
		return ErrCycle
	}
	return nil
}

// Disconnect removes a previously-added wire; a no-op if it was not
// present.
func (n *NodeNetwork) Disconnect(srcID uint64, outIdx int, dstID uint64, inIdx int) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	dst, ok := n.nodes[dstID]
	if !ok {
		return fmt.Errorf("network: Disconnect: dst %d: %w", dstID, ErrNodeNotFound)
	}
	if inIdx < 0 || inIdx >= len(dst.Inputs) {
		return fmt.Errorf("network: Disconnect: input index %d: %w", inIdx, ErrPinIndexOutOfRange)
	}
	dst.Inputs[inIdx].remove(Wire{SrcID: srcID, OutIdx: outIdx})
	return nil
}

// SetReturnNode marks id as the network's return node.
func (n *NodeNetwork) SetReturnNode(id uint64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.nodes[id]; !ok {
		return fmt.Errorf("network: SetReturnNode(%d): %w", id, ErrNodeNotFound)
	}
	n.returnNodeID = id
	n.hasReturnNode = true
	return nil
}

// ReturnNode returns the current return node id, if any.
func (n *NodeNetwork) ReturnNode() (uint64, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.returnNodeID, n.hasReturnNode
}

// SetDisplay toggles id's display flag.
func (n *NodeNetwork) SetDisplay(id uint64, displayed bool) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.nodes[id]; !ok {
		return fmt.Errorf("network: SetDisplay(%d): %w", id, ErrNodeNotFound)
	}
	if displayed {
		n.displayedNodeIDs[id] = true
	} else {
		delete(n.displayedNodeIDs, id)
	}
	return nil
}

// DisplayedNodeIDs returns the current set of displayed node ids.
func (n *NodeNetwork) DisplayedNodeIDs() []uint64 {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]uint64, 0, len(n.displayedNodeIDs))
	for id := range n.displayedNodeIDs {
		out = append(out, id)
	}
	return out
}

// SetNodeData replaces id's NodeData, re-invoking CalculateCustomNodeType
// and severing any now-incompatible downstream wires (the synthesized
// type changed and an existing connection no longer type-checks).
func (n *NodeNetwork) SetNodeData(id uint64, data NodeData) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	node, ok := n.nodes[id]
	if !ok {
		return fmt.Errorf("network: SetNodeData(%d): %w", id, ErrNodeNotFound)
	}
	node.Data = data

	newType, hasCustom := data.CalculateCustomNodeType()
	if !hasCustom {
		return nil
	}
	for _, other := range n.nodes {
		otherType, _ := n.resolveType(other.TypeName)
		for i, binding := range other.Inputs {
			if i >= len(otherType.InputType) {
				continue
			}
			want := otherType.InputType[i]
			if want.AcceptsMultiWire() && want.Elem != nil {
				want = *want.Elem
			}
			kept := binding.wires[:0]
			for _, w := range binding.wires {
				if w.SrcID != id {
					kept = append(kept, w)
					continue
				}
				if newType.CompatibleWith(want) {
					kept = append(kept, w)
				} else {
					delete(binding.present, w)
				}
			}
			other.Inputs[i].wires = kept
		}
	}
	return nil
}

// MoveNode repositions id (display-only).
func (n *NodeNetwork) MoveNode(id uint64, pos Position) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	node, ok := n.nodes[id]
	if !ok {
		return fmt.Errorf("network: MoveNode(%d): %w", id, ErrNodeNotFound)
	}
	node.Position = pos
	return nil
}

// Node returns the live *Node stored under id (not a copy; callers must
// not mutate it).
func (n *NodeNetwork) Node(id uint64) (*Node, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	node, ok := n.nodes[id]
	return node, ok
}

// NodeIDs returns every node id, unordered.
func (n *NodeNetwork) NodeIDs() []uint64 {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]uint64, 0, len(n.nodes))
	for id := range n.nodes {
		out = append(out, id)
	}
	return out
}

// NumNodes returns the node count.
func (n *NodeNetwork) NumNodes() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.nodes)
}

// Package registry implements NodeTypeRegistry: the catalog of built-in
// node types plus the set of user-authored subnetworks available for
// instantiation, and the transitive-dependency closure used by import.
package registry

import (
	"errors"
	"sort"

	"github.com/nanocad-org/structkit/network"
)

// ErrTypeNotFound indicates Resolve was asked for a name that is neither a
// built-in type nor a known user network.
var ErrTypeNotFound = errors.New("registry: node type not found")

// NodeTypeRegistry holds built-in node types, user-authored subnetworks,
// and (optionally) the design file these networks were loaded from.
type NodeTypeRegistry struct {
	builtInTypes   map[string]network.NodeType
	nodeNetworks   map[string]*network.NodeNetwork
	designFileName string
	hasDesignFile  bool

	// typeNamesOf returns every node's TypeName in a given user network
	// (built-in and subnetwork names alike); callers supply it, and
	// TransitiveDependencies itself keeps only the names that are known
	// user networks.
	typeNamesOf func(n *network.NodeNetwork) []string
}

// NewNodeTypeRegistry constructs an empty registry. typeNamesOf extracts
// every node's TypeName from a network (used for dependency closure); pass
// nil to disable TransitiveDependencies (it will then return an empty set).
func NewNodeTypeRegistry(typeNamesOf func(*network.NodeNetwork) []string) *NodeTypeRegistry {
	return &NodeTypeRegistry{
		builtInTypes: make(map[string]network.NodeType),
		nodeNetworks: make(map[string]*network.NodeNetwork),
		typeNamesOf:  typeNamesOf,
	}
}

// RegisterBuiltIn adds or replaces a built-in node type.
func (r *NodeTypeRegistry) RegisterBuiltIn(name string, t network.NodeType) {
	r.builtInTypes[name] = t
}

// RegisterNetwork adds or replaces a user-authored subnetwork, addressable
// by name for instantiation.
func (r *NodeTypeRegistry) RegisterNetwork(name string, n *network.NodeNetwork) {
	r.nodeNetworks[name] = n
}

// RemoveNetwork deletes a user-authored subnetwork by name.
func (r *NodeTypeRegistry) RemoveNetwork(name string) {
	delete(r.nodeNetworks, name)
}

// SetDesignFileName records the originating .cnnd path (relative paths in
// node data are resolved against this at load, relativized at save).
func (r *NodeTypeRegistry) SetDesignFileName(name string) {
	r.designFileName = name
	r.hasDesignFile = true
}

// DesignFileName returns the recorded design file name, if any.
func (r *NodeTypeRegistry) DesignFileName() (string, bool) {
	return r.designFileName, r.hasDesignFile
}

// Network returns the user network registered under name.
func (r *NodeTypeRegistry) Network(name string) (*network.NodeNetwork, bool) {
	n, ok := r.nodeNetworks[name]
	return n, ok
}

// Resolve returns the NodeType for name: a built-in type directly, or the
// synthesized NodeType of a user network's own interface (supplied by
// synthesize, since computing a subnetwork's parameter-derived interface
// is the validator's job, not the registry's).
func (r *NodeTypeRegistry) Resolve(name string, synthesize func(*network.NodeNetwork) network.NodeType) (network.NodeType, error) {
	if t, ok := r.builtInTypes[name]; ok {
		return t, nil
	}
	if n, ok := r.nodeNetworks[name]; ok {
		if synthesize == nil {
			return network.NodeType{}, ErrTypeNotFound
		}
		return synthesize(n), nil
	}
	return network.NodeType{}, ErrTypeNotFound
}

// TransitiveDependencies returns the closure of user-network names
// referenced (directly or indirectly) by the given starting names, via a
// breadth-first worklist over each network's node type names, following
// only edges that land on another known user network (built-in node types
// are leaves of this closure).
func (r *NodeTypeRegistry) TransitiveDependencies(names []string) []string {
	seen := make(map[string]bool, len(names))
	var queue []string
	for _, name := range names {
		if !seen[name] {
			seen[name] = true
			queue = append(queue, name)
		}
	}

	result := make(map[string]bool)
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]

		n, ok := r.nodeNetworks[name]
		if !ok || r.typeNamesOf == nil {
			continue
		}
		result[name] = true
		for _, dep := range r.typeNamesOf(n) {
			if _, ok := r.nodeNetworks[dep]; !ok {
				continue
			}
			if !seen[dep] {
				seen[dep] = true
				queue = append(queue, dep)
			}
		}
	}

	out := make([]string, 0, len(result))
	for name := range result {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

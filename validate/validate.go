// Package validate implements the structural checks recomputed on every
// network mutation, plus the parameter-node-driven synthesis of a
// network's own NodeType (its input parameter list).
//
// Parameter nodes must have unique names and unique sort orders; sorted
// by sort order they synthesize the network's parameter list, and
// InterfaceChanged compares that list (by name and data type) against its
// previous state.
package validate

import (
	"fmt"
	"sort"

	"github.com/nanocad-org/structkit/dtype"
	"github.com/nanocad-org/structkit/network"
)

// ValidationError names one structural defect and the node responsible
// (zero NodeID if the defect is not node-scoped, e.g. a missing return
// node).
type ValidationError struct {
	Message string
	NodeID  uint64
	HasNode bool
}

func (e ValidationError) Error() string { return e.Message }

// Parameter is one entry of a network's synthesized input parameter list.
type Parameter struct {
	Name     string
	DataType dtype.DataType
}

// Result is the outcome of validating one network: whether it is valid,
// every ValidationError found, and the synthesized parameter list in
// sort_order (filled in whether or not the network is valid).
type Result struct {
	Valid      bool
	Errors     []ValidationError
	Parameters []Parameter
}

// Validate recomputes every structural check for n: parameter-node
// uniqueness (name and sort_order), return-node existence (if one was
// ever set — a network with no return node is not itself invalid, a
// nil-return network simply can't be instantiated as another's output),
// and cycle-freedom via TopologicalSort. paramTypeOf supplies each
// parameter node's declared DataType (from CalculateCustomNodeType,
// which only NodeData itself can compute).
func Validate(n *network.NodeNetwork, paramTypeOf func(network.ParameterNodeData) dtype.DataType) Result {
	var errs []ValidationError

	type paramEntry struct {
		nodeID    uint64
		name      string
		sortOrder int
	}
	var params []paramEntry
	seenNames := make(map[string]uint64)
	seenOrders := make(map[int]uint64)

	for _, id := range n.NodeIDs() {
		node, ok := n.Node(id)
		if !ok {
			continue
		}
		pd, isParam := node.Data.(network.ParameterNodeData)
		if !isParam {
			continue
		}
		name := pd.ParamName()
		order := pd.ParamSortOrder()

		if prior, dup := seenNames[name]; dup {
			errs = append(errs, ValidationError{
				Message: fmt.Sprintf("validate: duplicate parameter name %q (nodes %d and %d)", name, prior, id),
				NodeID:  id, HasNode: true,
			})
		} else {
			seenNames[name] = id
		}

		if prior, dup := seenOrders[order]; dup {
			errs = append(errs, ValidationError{
				Message: fmt.Sprintf("validate: duplicate parameter sort_order %d (nodes %d and %d)", order, prior, id),
				NodeID:  id, HasNode: true,
			})
		} else {
			seenOrders[order] = id
		}

		params = append(params, paramEntry{nodeID: id, name: name, sortOrder: order})
	}

	sort.Slice(params, func(i, j int) bool { return params[i].sortOrder < params[j].sortOrder })

	if _, hasReturn := n.ReturnNode(); hasReturn {
		if _, ok := n.Node(mustReturnID(n)); !ok {
			errs = append(errs, ValidationError{Message: "validate: return node does not exist"})
		}
	}

	if _, err := n.TopologicalSort(); err != nil {
		errs = append(errs, ValidationError{Message: fmt.Sprintf("validate: %s", err.Error())})
	}

	var paramList []Parameter
	for _, p := range params {
		node, _ := n.Node(p.nodeID)
		pd := node.Data.(network.ParameterNodeData)
		dt := dtype.Leaf(dtype.KindNone)
		if paramTypeOf != nil {
			dt = paramTypeOf(pd)
		}
		paramList = append(paramList, Parameter{Name: p.name, DataType: dt})
	}

	return Result{
		Valid:      len(errs) == 0,
		Errors:     errs,
		Parameters: paramList,
	}
}

func mustReturnID(n *network.NodeNetwork) uint64 {
	id, _ := n.ReturnNode()
	return id
}

// InterfaceChanged reports whether the synthesized parameter list changed
// (by name and DataType, in order) from previous to current.
func InterfaceChanged(previous, current []Parameter) bool {
	if len(previous) != len(current) {
		return true
	}
	for i := range previous {
		if previous[i].Name != current[i].Name {
			return true
		}
		if !previous[i].DataType.Equal(current[i].DataType) {
			return true
		}
	}
	return false
}

// SynthesizeNodeType builds the NodeType a subnetwork exposes to its
// instantiating nodes: one input per synthesized Parameter, in sort_order,
// and the return node's own output DataType (outputType supplies it,
// since computing a node's output type is component D/E's job).
func SynthesizeNodeType(name string, params []Parameter, outputType dtype.DataType) network.NodeType {
	nt := network.NodeType{
		Name:   name,
		Output: outputType,
	}
	for _, p := range params {
		nt.InputName = append(nt.InputName, p.Name)
		nt.InputType = append(nt.InputType, p.DataType)
	}
	return nt
}
